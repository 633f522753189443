// Package layout provides document layout classification. Given a rendered
// page raster it returns typed regions (text, formula, table, figure,
// caption and friends) with bounding boxes, backed by a DocLayout-YOLO
// ONNX model.
package layout

// Kind is the classified type of a page region.
type Kind string

const (
	KindText          Kind = "text"
	KindTitle         Kind = "title"
	KindSectionHeader Kind = "section_header"
	KindListItem      Kind = "list_item"
	KindCaption       Kind = "caption"
	KindFootnote      Kind = "footnote"
	KindFormula       Kind = "formula"
	KindTable         Kind = "table"
	KindFigure        Kind = "figure"
	KindPageHeader    Kind = "page_header"
	KindPageFooter    Kind = "page_footer"
)

// IsTranslatable reports whether text inside a region of this kind should
// be sent for translation. Formulas, tables, figures and running
// headers/footers are reproduced verbatim.
func (k Kind) IsTranslatable() bool {
	switch k {
	case KindText, KindTitle, KindSectionHeader, KindListItem,
		KindCaption, KindFootnote:
		return true
	case KindFormula, KindTable, KindFigure, KindPageHeader, KindPageFooter:
		return false
	default:
		return true
	}
}

// IsUnitBoundary reports whether a region of this kind always starts its
// own translation unit. Captions and structural headings never merge with
// surrounding body text.
func (k Kind) IsUnitBoundary() bool {
	switch k {
	case KindTitle, KindSectionHeader, KindCaption, KindListItem:
		return true
	default:
		return false
	}
}

// Rect is an axis-aligned rectangle in page coordinates (origin bottom-left,
// units are PDF points).
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the rectangle area; zero or negative dimensions yield 0.
func (r Rect) Area() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// ContainsRect reports whether other lies entirely inside r.
func (r Rect) ContainsRect(other Rect) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.X+other.Width <= r.X+r.Width &&
		other.Y+other.Height <= r.Y+r.Height
}

// Union returns the smallest rectangle covering both r and other.
func (r Rect) Union(other Rect) Rect {
	if r.Area() == 0 {
		return other
	}
	if other.Area() == 0 {
		return r
	}
	x0 := min(r.X, other.X)
	y0 := min(r.Y, other.Y)
	x1 := max(r.X+r.Width, other.X+other.Width)
	y1 := max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Region is one classified area of a page. Regions may overlap; consumers
// resolve overlap by containment priority (the smallest enclosing region
// wins).
type Region struct {
	Kind       Kind    `json:"kind"`
	Box        Rect    `json:"box"`
	Page       int     `json:"page"`
	Confidence float64 `json:"confidence"`
}

// FullPage returns the degraded-classification fallback: a single
// full-page text region. Used when the classifier fails for a page so the
// document still translates instead of aborting.
func FullPage(page int, width, height float64) []Region {
	return []Region{{
		Kind:       KindText,
		Box:        Rect{X: 0, Y: 0, Width: width, Height: height},
		Page:       page,
		Confidence: 0,
	}}
}
