// Package mutation builds offset-addressed write requests in the remote
// batchUpdate shape and orders them so no request in a batch invalidates
// the offsets of another.
//
// A request is only valid against the snapshot its offsets were computed
// from.
package mutation

import (
	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
)

// Kind tags the variant held by a Request.
type Kind int

const (
	KindUnknown Kind = iota
	KindInsertText
	KindDeleteRange
	KindInsertTable
	KindInsertImage
	KindInsertPageBreak
	KindTextStyle
	KindParagraphStyle
	KindCreateBullets
	KindRemoveBullets
)

func (k Kind) String() string {
	switch k {
	case KindInsertText:
		return "insert_text"
	case KindDeleteRange:
		return "delete_range"
	case KindInsertTable:
		return "insert_table"
	case KindInsertImage:
		return "insert_image"
	case KindInsertPageBreak:
		return "insert_page_break"
	case KindTextStyle:
		return "text_style"
	case KindParagraphStyle:
		return "paragraph_style"
	case KindCreateBullets:
		return "create_bullets"
	case KindRemoveBullets:
		return "remove_bullets"
	default:
		return "unknown"
	}
}

// Location is a single insertion point.
type Location struct {
	Index     int    `json:"index"`
	SegmentID string `json:"segmentId,omitempty"`
	TabID     string `json:"tabId,omitempty"`
}

// Range is the wire form of an offset range.
type Range struct {
	StartIndex int    `json:"startIndex"`
	EndIndex   int    `json:"endIndex"`
	SegmentID  string `json:"segmentId,omitempty"`
	TabID      string `json:"tabId,omitempty"`
}

func wireRange(r docmodel.Range) *Range {
	return &Range{StartIndex: r.Start, EndIndex: r.End}
}

// Request is one entry of a batch. Exactly one field is set.
type Request struct {
	InsertText             *InsertTextRequest             `json:"insertText,omitempty"`
	DeleteContentRange     *DeleteContentRangeRequest     `json:"deleteContentRange,omitempty"`
	InsertTable            *InsertTableRequest            `json:"insertTable,omitempty"`
	InsertInlineImage      *InsertInlineImageRequest      `json:"insertInlineImage,omitempty"`
	InsertPageBreak        *InsertPageBreakRequest        `json:"insertPageBreak,omitempty"`
	UpdateTextStyle        *UpdateTextStyleRequest        `json:"updateTextStyle,omitempty"`
	UpdateParagraphStyle   *UpdateParagraphStyleRequest   `json:"updateParagraphStyle,omitempty"`
	CreateParagraphBullets *CreateParagraphBulletsRequest `json:"createParagraphBullets,omitempty"`
	DeleteParagraphBullets *DeleteParagraphBulletsRequest `json:"deleteParagraphBullets,omitempty"`
}

type InsertTextRequest struct {
	Location *Location `json:"location"`
	Text     string    `json:"text"`
}

type DeleteContentRangeRequest struct {
	Range *Range `json:"range"`
}

type InsertTableRequest struct {
	Location *Location `json:"location"`
	Rows     int       `json:"rows"`
	Columns  int       `json:"columns"`
}

type InsertInlineImageRequest struct {
	Location   *Location   `json:"location"`
	URI        string      `json:"uri"`
	ObjectSize *ObjectSize `json:"objectSize,omitempty"`
}

type ObjectSize struct {
	Width  *docmodel.Dimension `json:"width,omitempty"`
	Height *docmodel.Dimension `json:"height,omitempty"`
}

type InsertPageBreakRequest struct {
	Location *Location `json:"location"`
}

type UpdateTextStyleRequest struct {
	Range     *Range              `json:"range"`
	TextStyle *docmodel.TextStyle `json:"textStyle"`
	Fields    string              `json:"fields"`
}

type UpdateParagraphStyleRequest struct {
	Range          *Range                   `json:"range"`
	ParagraphStyle *docmodel.ParagraphStyle `json:"paragraphStyle"`
	Fields         string                   `json:"fields"`
}

type CreateParagraphBulletsRequest struct {
	Range        *Range `json:"range"`
	BulletPreset string `json:"bulletPreset"`
}

type DeleteParagraphBulletsRequest struct {
	Range *Range `json:"range"`
}

// Kind returns the variant tag.
func (r *Request) Kind() Kind {
	switch {
	case r == nil:
		return KindUnknown
	case r.InsertText != nil:
		return KindInsertText
	case r.DeleteContentRange != nil:
		return KindDeleteRange
	case r.InsertTable != nil:
		return KindInsertTable
	case r.InsertInlineImage != nil:
		return KindInsertImage
	case r.InsertPageBreak != nil:
		return KindInsertPageBreak
	case r.UpdateTextStyle != nil:
		return KindTextStyle
	case r.UpdateParagraphStyle != nil:
		return KindParagraphStyle
	case r.CreateParagraphBullets != nil:
		return KindCreateBullets
	case r.DeleteParagraphBullets != nil:
		return KindRemoveBullets
	}
	return KindUnknown
}

// Shifts reports whether applying the request moves the offsets that
// follow it.
func (r *Request) Shifts() bool {
	switch r.Kind() {
	case KindInsertText, KindDeleteRange, KindInsertTable, KindInsertImage, KindInsertPageBreak:
		return true
	}
	return false
}

// Target returns the range the request addresses. Inserts return an empty
// range at their insertion point.
func (r *Request) Target() docmodel.Range {
	if loc := r.location(); loc != nil {
		return docmodel.Range{Start: loc.Index, End: loc.Index}
	}
	if rg := r.wireRange(); rg != nil {
		return docmodel.Range{Start: rg.StartIndex, End: rg.EndIndex}
	}
	return docmodel.Range{}
}

// Delta returns the signed length change the request applies at its
// target, when it is known without a round trip.
func (r *Request) Delta() (int, bool) {
	switch r.Kind() {
	case KindInsertText:
		return docmodel.Len16(r.InsertText.Text), true
	case KindDeleteRange:
		return -r.Target().Len(), true
	case KindInsertPageBreak, KindInsertImage:
		return 1, true
	case KindInsertTable:
		return 0, false
	}
	return 0, true
}

// SetTab stamps tabID on the request's location or range.
func (r *Request) SetTab(tabID string) {
	if loc := r.location(); loc != nil {
		loc.TabID = tabID
	}
	if rg := r.wireRange(); rg != nil {
		rg.TabID = tabID
	}
}

func (r *Request) location() *Location {
	switch r.Kind() {
	case KindInsertText:
		return r.InsertText.Location
	case KindInsertTable:
		return r.InsertTable.Location
	case KindInsertImage:
		return r.InsertInlineImage.Location
	case KindInsertPageBreak:
		return r.InsertPageBreak.Location
	}
	return nil
}

func (r *Request) wireRange() *Range {
	switch r.Kind() {
	case KindDeleteRange:
		return r.DeleteContentRange.Range
	case KindTextStyle:
		return r.UpdateTextStyle.Range
	case KindParagraphStyle:
		return r.UpdateParagraphStyle.Range
	case KindCreateBullets:
		return r.CreateParagraphBullets.Range
	case KindRemoveBullets:
		return r.DeleteParagraphBullets.Range
	}
	return nil
}

// Result is the remote response to a batch.
type Result struct {
	DocumentID string  `json:"documentId"`
	Replies    []Reply `json:"replies,omitempty"`
}

// Reply is the per-request response; most requests reply with an empty
// object.
type Reply struct {
	InsertInlineImage *struct {
		ObjectID string `json:"objectId"`
	} `json:"insertInlineImage,omitempty"`
}
