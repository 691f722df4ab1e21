package mutation

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/EastAgile/google-docs-mcp/internal/docerr"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
)

// Builders return nil when the request would change nothing.

// InsertText inserts text at offset. Empty text is elided.
func InsertText(at int, text string) *Request {
	if text == "" {
		return nil
	}
	return &Request{InsertText: &InsertTextRequest{Location: &Location{Index: at}, Text: text}}
}

// DeleteRange deletes r. An empty range is elided.
func DeleteRange(r docmodel.Range) *Request {
	if r.Empty() {
		return nil
	}
	return &Request{DeleteContentRange: &DeleteContentRangeRequest{Range: wireRange(r)}}
}

// InsertTable inserts an empty rows x columns table at offset.
func InsertTable(at, rows, columns int) (*Request, error) {
	if rows <= 0 || columns <= 0 {
		return nil, docerr.New(docerr.KindInvalidRequest, "table dimensions must be positive, got %dx%d", rows, columns)
	}
	return &Request{InsertTable: &InsertTableRequest{Location: &Location{Index: at}, Rows: rows, Columns: columns}}, nil
}

// InsertPageBreak inserts a page break at offset.
func InsertPageBreak(at int) *Request {
	return &Request{InsertPageBreak: &InsertPageBreakRequest{Location: &Location{Index: at}}}
}

// InsertImage inserts the image at uri. Width and height are in points;
// zero leaves the dimension to the server.
func InsertImage(at int, uri string, width, height float64) (*Request, error) {
	u, err := url.Parse(uri)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, docerr.New(docerr.KindInvalidRequest, "image uri must be an absolute http(s) URL: %q", uri)
	}
	if width < 0 || height < 0 {
		return nil, docerr.New(docerr.KindInvalidRequest, "image size must not be negative")
	}
	req := &InsertInlineImageRequest{Location: &Location{Index: at}, URI: uri}
	if width > 0 || height > 0 {
		req.ObjectSize = &ObjectSize{}
		if width > 0 {
			req.ObjectSize.Width = docmodel.Points(width)
		}
		if height > 0 {
			req.ObjectSize.Height = docmodel.Points(height)
		}
	}
	return &Request{InsertInlineImage: req}, nil
}

// CreateBullets turns every paragraph overlapping r into a list item.
func CreateBullets(r docmodel.Range, preset string) *Request {
	if r.Empty() {
		return nil
	}
	return &Request{CreateParagraphBullets: &CreateParagraphBulletsRequest{Range: wireRange(r), BulletPreset: preset}}
}

// RemoveBullets removes list membership from paragraphs overlapping r.
func RemoveBullets(r docmodel.Range) *Request {
	if r.Empty() {
		return nil
	}
	return &Request{DeleteParagraphBullets: &DeleteParagraphBulletsRequest{Range: wireRange(r)}}
}

// TextStyleOptions lists the character style fields to change. Nil fields
// are left untouched.
type TextStyleOptions struct {
	Bold            *bool    `json:"bold,omitempty"`
	Italic          *bool    `json:"italic,omitempty"`
	Underline       *bool    `json:"underline,omitempty"`
	Strikethrough   *bool    `json:"strikethrough,omitempty"`
	FontSize        *float64 `json:"font_size,omitempty"`
	FontFamily      *string  `json:"font_family,omitempty"`
	ForegroundColor *string  `json:"foreground_color,omitempty"`
	BackgroundColor *string  `json:"background_color,omitempty"`
	LinkURL         *string  `json:"link_url,omitempty"`
}

// Empty reports whether no field is set.
func (o TextStyleOptions) Empty() bool {
	return o.Bold == nil && o.Italic == nil && o.Underline == nil && o.Strikethrough == nil &&
		o.FontSize == nil && o.FontFamily == nil && o.ForegroundColor == nil &&
		o.BackgroundColor == nil && o.LinkURL == nil
}

// TextStyle builds a style update for r. It returns nil, nil when no field
// is set.
func TextStyle(r docmodel.Range, o TextStyleOptions) (*Request, error) {
	style := &docmodel.TextStyle{}
	var fields []string

	if o.Bold != nil {
		style.Bold = o.Bold
		fields = append(fields, "bold")
	}
	if o.Italic != nil {
		style.Italic = o.Italic
		fields = append(fields, "italic")
	}
	if o.Underline != nil {
		style.Underline = o.Underline
		fields = append(fields, "underline")
	}
	if o.Strikethrough != nil {
		style.Strikethrough = o.Strikethrough
		fields = append(fields, "strikethrough")
	}
	if o.FontSize != nil {
		if *o.FontSize <= 0 {
			return nil, docerr.New(docerr.KindInvalidRequest, "font size must be positive")
		}
		style.FontSize = docmodel.Points(*o.FontSize)
		fields = append(fields, "fontSize")
	}
	if o.FontFamily != nil {
		style.WeightedFontFamily = &docmodel.WeightedFontFamily{FontFamily: *o.FontFamily}
		fields = append(fields, "weightedFontFamily")
	}
	if o.ForegroundColor != nil {
		c, err := ParseHexColor(*o.ForegroundColor)
		if err != nil {
			return nil, err
		}
		style.ForegroundColor = c
		fields = append(fields, "foregroundColor")
	}
	if o.BackgroundColor != nil {
		c, err := ParseHexColor(*o.BackgroundColor)
		if err != nil {
			return nil, err
		}
		style.BackgroundColor = c
		fields = append(fields, "backgroundColor")
	}
	if o.LinkURL != nil {
		style.Link = &docmodel.Link{URL: *o.LinkURL}
		fields = append(fields, "link")
	}

	if len(fields) == 0 || r.Empty() {
		return nil, nil
	}
	return &Request{UpdateTextStyle: &UpdateTextStyleRequest{
		Range:     wireRange(r),
		TextStyle: style,
		Fields:    strings.Join(fields, ","),
	}}, nil
}

// ParagraphStyleOptions lists the paragraph style fields to change.
// Spacing and indent values are in points.
type ParagraphStyleOptions struct {
	NamedStyleType *string  `json:"named_style_type,omitempty"`
	Alignment      *string  `json:"alignment,omitempty"`
	LineSpacing    *float64 `json:"line_spacing,omitempty"`
	SpaceAbove     *float64 `json:"space_above,omitempty"`
	SpaceBelow     *float64 `json:"space_below,omitempty"`
	IndentStart    *float64 `json:"indent_start,omitempty"`
	IndentEnd      *float64 `json:"indent_end,omitempty"`
	KeepWithNext   *bool    `json:"keep_with_next,omitempty"`
}

// Empty reports whether no field is set.
func (o ParagraphStyleOptions) Empty() bool {
	return o.NamedStyleType == nil && o.Alignment == nil && o.LineSpacing == nil &&
		o.SpaceAbove == nil && o.SpaceBelow == nil && o.IndentStart == nil &&
		o.IndentEnd == nil && o.KeepWithNext == nil
}

var namedStyles = map[string]bool{
	"NORMAL_TEXT": true, "TITLE": true, "SUBTITLE": true,
	"HEADING_1": true, "HEADING_2": true, "HEADING_3": true,
	"HEADING_4": true, "HEADING_5": true, "HEADING_6": true,
}

var alignments = map[string]bool{
	"START": true, "CENTER": true, "END": true, "JUSTIFIED": true,
}

// ParagraphStyle builds a paragraph style update for r. It returns nil, nil
// when no field is set.
func ParagraphStyle(r docmodel.Range, o ParagraphStyleOptions) (*Request, error) {
	style := &docmodel.ParagraphStyle{}
	var fields []string

	if o.NamedStyleType != nil {
		name := strings.ToUpper(*o.NamedStyleType)
		if !namedStyles[name] {
			return nil, docerr.New(docerr.KindInvalidRequest, "unknown named style %q", *o.NamedStyleType)
		}
		style.NamedStyleType = name
		fields = append(fields, "namedStyleType")
	}
	if o.Alignment != nil {
		a := strings.ToUpper(*o.Alignment)
		if !alignments[a] {
			return nil, docerr.New(docerr.KindInvalidRequest, "unknown alignment %q", *o.Alignment)
		}
		style.Alignment = a
		fields = append(fields, "alignment")
	}
	if o.LineSpacing != nil {
		style.LineSpacing = o.LineSpacing
		fields = append(fields, "lineSpacing")
	}
	if o.SpaceAbove != nil {
		style.SpaceAbove = docmodel.Points(*o.SpaceAbove)
		fields = append(fields, "spaceAbove")
	}
	if o.SpaceBelow != nil {
		style.SpaceBelow = docmodel.Points(*o.SpaceBelow)
		fields = append(fields, "spaceBelow")
	}
	if o.IndentStart != nil {
		style.IndentStart = docmodel.Points(*o.IndentStart)
		fields = append(fields, "indentStart")
	}
	if o.IndentEnd != nil {
		style.IndentEnd = docmodel.Points(*o.IndentEnd)
		fields = append(fields, "indentEnd")
	}
	if o.KeepWithNext != nil {
		style.KeepWithNext = o.KeepWithNext
		fields = append(fields, "keepWithNext")
	}

	if len(fields) == 0 || r.Empty() {
		return nil, nil
	}
	return &Request{UpdateParagraphStyle: &UpdateParagraphStyleRequest{
		Range:          wireRange(r),
		ParagraphStyle: style,
		Fields:         strings.Join(fields, ","),
	}}, nil
}

// ParseHexColor converts "#RRGGBB" or "#RGB" into the remote color shape.
func ParseHexColor(s string) (*docmodel.OptionalColor, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return nil, docerr.New(docerr.KindInvalidRequest, "invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, docerr.New(docerr.KindInvalidRequest, "invalid hex color %q", s)
	}
	return &docmodel.OptionalColor{Color: &docmodel.Color{RGBColor: &docmodel.RGBColor{
		Red:   float64(v>>16&0xff) / 255,
		Green: float64(v>>8&0xff) / 255,
		Blue:  float64(v&0xff) / 255,
	}}}, nil
}
