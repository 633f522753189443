package pdf

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"pdf-translator/internal/layout"
	"pdf-translator/internal/logger"
)

// TextRun is one raw positioned text run from the parser, in content
// stream order.
type TextRun struct {
	Text     string
	X        float64 // left edge
	Baseline float64 // baseline Y, PDF coordinates (origin bottom-left)
	Width    float64
	Height   float64
	FontName string
	FontSize float64
}

// Extract walks the document in page order and, within each page, in
// source stream order, and emits the ordered element sequence the rest of
// the pipeline consumes. Runs inside translatable regions become
// translatable elements; everything else becomes an opaque element that
// reconstruction leaves untouched. A page whose content cannot be parsed
// degrades to a single opaque full-page element instead of failing the
// document.
func Extract(pdfPath string, regionsByPage map[int][]layout.Region, pageDims [][2]float64) ([]ContentElement, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, NewPDFError(ErrPDFInvalid, "cannot open PDF file", err)
	}
	defer f.Close()

	var elements []ContentElement
	seq := 0

	totalPages := r.NumPage()
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		var dims [2]float64
		if pageNum-1 < len(pageDims) {
			dims = pageDims[pageNum-1]
		}

		runs, err := pageRuns(r.Page(pageNum))
		if err != nil {
			logger.Warn("page extraction failed, copying page verbatim",
				logger.Int("page", pageNum), logger.Err(err))
			elements = append(elements, ContentElement{
				Seq:  seq,
				Page: pageNum,
				Box:  layout.Rect{Width: dims[0], Height: dims[1]},
			})
			seq++
			continue
		}

		pageElements := extractPage(pageNum, runs, regionsByPage[pageNum], &seq)
		elements = append(elements, pageElements...)
	}

	logger.Info("content extracted",
		logger.Int("pages", totalPages),
		logger.Int("elements", len(elements)))

	return elements, nil
}

// pageRuns collects one run per text row, merging the row's fragments
// while tracking the bounding geometry.
func pageRuns(page pdf.Page) ([]TextRun, error) {
	if page.V.IsNull() {
		return nil, nil
	}
	if page.V.Key("Contents").Kind() == pdf.Null {
		return nil, nil
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, NewPDFError(ErrExtractFailed, "cannot read page text", err)
	}

	var runs []TextRun
	for _, row := range rows {
		if len(row.Content) == 0 {
			continue
		}

		var sb strings.Builder
		var minX, maxX, baseline float64
		var totalFontSize float64
		var fontName string
		fragments := 0

		for _, t := range row.Content {
			if t.S == "" {
				continue
			}
			sb.WriteString(t.S)

			if fragments == 0 {
				minX = t.X
				maxX = t.X + t.W
				baseline = t.Y
				fontName = t.Font
			} else {
				if t.X < minX {
					minX = t.X
				}
				if t.X+t.W > maxX {
					maxX = t.X + t.W
				}
			}
			totalFontSize += t.FontSize
			fragments++
		}

		text := strings.TrimSpace(sb.String())
		if text == "" || fragments == 0 {
			continue
		}

		fontSize := totalFontSize / float64(fragments)
		if fontSize <= 0 {
			fontSize = 10.0
		}

		runs = append(runs, TextRun{
			Text:     text,
			X:        minX,
			Baseline: baseline,
			Width:    maxX - minX,
			Height:   fontSize * 1.2,
			FontName: fontName,
			FontSize: fontSize,
		})
	}

	return runs, nil
}

// extractPage classifies each run against the page regions and emits
// elements in run order. Zero-area runs contribute no visible content and
// are dropped.
func extractPage(pageNum int, runs []TextRun, regions []layout.Region, seq *int) []ContentElement {
	var elements []ContentElement

	for _, run := range runs {
		if run.Width <= 0 || run.Height <= 0 {
			continue
		}

		box := layout.Rect{
			X:      run.X,
			Y:      run.Baseline - run.Height*0.2,
			Width:  run.Width,
			Height: run.Height,
		}

		kind := enclosingKind(regions, box)

		el := ContentElement{
			Seq:    *seq,
			Page:   pageNum,
			Box:    box,
			Region: kind,
		}
		*seq++

		if kind.IsTranslatable() {
			el.Translatable = true
			el.Text = run.Text
			el.FontName = run.FontName
			el.FontSize = run.FontSize
			el.Baseline = run.Baseline
			el.TOCTarget = tocTarget(run.Text)
		}

		elements = append(elements, el)
	}

	return elements
}

// enclosingKind resolves the region kind for a run box. Overlapping
// regions are resolved by containment priority: the smallest region whose
// box contains the run center wins. A run outside every region defaults
// to body text.
func enclosingKind(regions []layout.Region, box layout.Rect) layout.Kind {
	cx := box.X + box.Width/2
	cy := box.Y + box.Height/2

	best := layout.KindText
	bestArea := -1.0

	for _, region := range regions {
		if !region.Box.Contains(cx, cy) {
			continue
		}
		area := region.Box.Area()
		if bestArea < 0 || area < bestArea {
			best = region.Kind
			bestArea = area
		}
	}

	return best
}

// tocLeader matches table-of-contents entries: text, a run of dot leaders
// (possibly spaced), then a page number.
var tocLeader = regexp.MustCompile(`(?:\.\s*){4,}\s*(\d{1,4})\s*$`)

// tocTarget returns the referenced page for a table-of-contents entry, or
// 0 when the text is not one. The target page reference is preserved so
// destinations stay correct in the translated output.
func tocTarget(text string) int {
	m := tocLeader.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
