package pdf

import (
	"fmt"
	"strings"

	"pdf-translator/internal/logger"
)

// DefaultGapFactor is the maximum vertical baseline gap between two lines
// that still merge into one unit, as a multiple of the font size. Line
// spacing in body text sits around 1.2x; anything past 1.6x is a
// paragraph break.
const DefaultGapFactor = 1.6

// Segment groups the translatable elements into translation units: maximal
// runs of consecutive lines that belong to the same paragraph. Opaque
// elements break a run, as do page changes, font family changes and column
// jumps. Structural kinds (headings, captions, list items) stand alone per
// item; only a hanging-indent wrap continues one across lines. Every
// translatable element lands in exactly one unit, and
// identical input always yields identical units and IDs.
func Segment(elements []ContentElement, gapFactor float64) []Unit {
	if gapFactor <= 0 {
		gapFactor = DefaultGapFactor
	}

	var units []Unit
	var cur *Unit
	var prev *ContentElement

	flush := func() {
		if cur != nil {
			units = append(units, *cur)
			cur = nil
		}
		prev = nil
	}

	for i := range elements {
		el := &elements[i]
		if !el.Translatable {
			flush()
			continue
		}

		if cur != nil && canMerge(prev, el, gapFactor) {
			cur.SourceText += " " + el.Text
			cur.Members = append(cur.Members, el.Seq)
			cur.Box = cur.Box.Union(el.Box)
			if el.TOCTarget != 0 {
				cur.TOCTarget = el.TOCTarget
			}
			prev = el
			continue
		}

		flush()
		cur = &Unit{
			ID:         fmt.Sprintf("u_%d_%d", el.Page, el.Seq),
			SourceText: el.Text,
			Members:    []int{el.Seq},
			Page:       el.Page,
			Box:        el.Box,
			FontSize:   el.FontSize,
			TOCTarget:  el.TOCTarget,
		}
		prev = el
	}
	flush()

	logger.Debug("segmentation complete",
		logger.Int("elements", len(elements)),
		logger.Int("units", len(units)))

	return units
}

// canMerge decides whether el continues the line run ending at prev.
func canMerge(prev, el *ContentElement, gapFactor float64) bool {
	if prev == nil {
		return false
	}
	if el.Page != prev.Page {
		return false
	}
	if el.Region != prev.Region {
		return false
	}
	// A table-of-contents entry is always its own unit so its page
	// reference stays addressable.
	if el.TOCTarget != 0 || prev.TOCTarget != 0 {
		return false
	}
	// Headings, captions and list items each start their own unit. A
	// following line of the same kind continues the item only as a
	// hanging-indent wrap; an aligned or outdented start is the next
	// item, not a continuation.
	if el.Region.IsUnitBoundary() && el.Box.X <= prev.Box.X {
		return false
	}
	if fontFamily(el.FontName) != fontFamily(prev.FontName) {
		return false
	}

	size := prev.FontSize
	if size <= 0 {
		size = el.FontSize
	}
	if size <= 0 {
		return false
	}

	// el must sit below prev on the page; a jump upward means a new
	// column or a fresh flow.
	gap := prev.Baseline - el.Baseline
	if gap <= 0 {
		return false
	}
	return gap < gapFactor*size
}

// fontFamily normalizes a PDF font name for comparison, dropping the
// 6-letter subset prefix ("ABCDEF+Times-Roman" and "GHIJKL+Times-Roman"
// are the same face).
func fontFamily(name string) string {
	if i := strings.IndexByte(name, '+'); i == 6 {
		return name[i+1:]
	}
	return name
}
