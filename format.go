package cellgraph

import "github.com/mohae/deepcopy"

// HorizontalAlign is the horizontal text alignment of a cell.
type HorizontalAlign int

const (
	AlignLeft HorizontalAlign = iota
	AlignCenter
	AlignRight
)

// VerticalAlign is the vertical text alignment of a cell.
type VerticalAlign int

const (
	AlignTop VerticalAlign = iota
	AlignMiddle
	AlignBottom
)

// CellFormat carries optional display/formatting attributes. Every field
// is a pointer so SetFormat can distinguish "leave unchanged" (nil) from
// "set to this value" (non-nil), per spec's per-field merge semantics.
type CellFormat struct {
	NumberFormat  *string          `json:"numberFormat,omitempty"`
	FontBold      *bool            `json:"fontBold,omitempty"`
	FontItalic    *bool            `json:"fontItalic,omitempty"`
	FontUnderline *bool            `json:"fontUnderline,omitempty"`
	FontFamily    *string          `json:"fontFamily,omitempty"`
	FontSize      *float32         `json:"fontSize,omitempty"`
	FontColor     *string          `json:"fontColor,omitempty"`
	BGColor       *string          `json:"bgColor,omitempty"`
	AlignH        *HorizontalAlign `json:"alignH,omitempty"`
	AlignV        *VerticalAlign   `json:"alignV,omitempty"`
}

// mergeInto overwrites each field of dst that patch sets explicitly,
// leaving the rest of dst untouched.
func (patch *CellFormat) mergeInto(dst *CellFormat) {
	if patch == nil || dst == nil {
		return
	}
	if patch.NumberFormat != nil {
		dst.NumberFormat = patch.NumberFormat
	}
	if patch.FontBold != nil {
		dst.FontBold = patch.FontBold
	}
	if patch.FontItalic != nil {
		dst.FontItalic = patch.FontItalic
	}
	if patch.FontUnderline != nil {
		dst.FontUnderline = patch.FontUnderline
	}
	if patch.FontFamily != nil {
		dst.FontFamily = patch.FontFamily
	}
	if patch.FontSize != nil {
		dst.FontSize = patch.FontSize
	}
	if patch.FontColor != nil {
		dst.FontColor = patch.FontColor
	}
	if patch.BGColor != nil {
		dst.BGColor = patch.BGColor
	}
	if patch.AlignH != nil {
		dst.AlignH = patch.AlignH
	}
	if patch.AlignV != nil {
		dst.AlignV = patch.AlignV
	}
}

// clone deep-copies f so the returned value shares no pointers with the
// grid's internal storage. Used when handing a CellFormat out of the grid
// as part of a range snapshot (spec: range queries return owned data).
func (f *CellFormat) clone() *CellFormat {
	if f == nil {
		return nil
	}
	return deepcopy.Copy(f).(*CellFormat)
}
