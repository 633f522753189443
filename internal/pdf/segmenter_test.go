package pdf

import (
	"reflect"
	"testing"

	"pdf-translator/internal/layout"
)

// line builds a translatable body-text element for segmentation tests.
func line(seq, page int, text string, baseline float64) ContentElement {
	return ContentElement{
		Seq:          seq,
		Page:         page,
		Box:          layout.Rect{X: 72, Y: baseline - 2, Width: 400, Height: 12},
		Translatable: true,
		Text:         text,
		FontName:     "ABCDEF+Times-Roman",
		FontSize:     10,
		Baseline:     baseline,
		Region:       layout.KindText,
	}
}

func opaque(seq, page int) ContentElement {
	return ContentElement{
		Seq:    seq,
		Page:   page,
		Box:    layout.Rect{X: 72, Y: 300, Width: 400, Height: 100},
		Region: layout.KindFormula,
	}
}

func TestSegmentMergesAdjacentLines(t *testing.T) {
	elements := []ContentElement{
		line(0, 1, "The quick brown fox", 700),
		line(1, 1, "jumps over the lazy dog.", 688),
	}

	units := Segment(elements, DefaultGapFactor)
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0].SourceText != "The quick brown fox jumps over the lazy dog." {
		t.Errorf("unexpected merged text: %q", units[0].SourceText)
	}
	if !reflect.DeepEqual(units[0].Members, []int{0, 1}) {
		t.Errorf("unexpected members: %v", units[0].Members)
	}
}

func TestSegmentBreaks(t *testing.T) {
	testCases := []struct {
		name     string
		elements []ContentElement
		want     int
	}{
		{
			name: "paragraph gap",
			elements: []ContentElement{
				line(0, 1, "first paragraph", 700),
				line(1, 1, "second paragraph", 660), // 40pt gap at 10pt font
			},
			want: 2,
		},
		{
			name: "page change",
			elements: []ContentElement{
				line(0, 1, "end of page one", 100),
				line(1, 2, "start of page two", 700),
			},
			want: 2,
		},
		{
			name: "opaque element between lines",
			elements: []ContentElement{
				line(0, 1, "before the formula", 700),
				opaque(1, 1),
				line(2, 1, "after the formula", 688),
			},
			want: 2,
		},
		{
			name: "font family change",
			elements: func() []ContentElement {
				a := line(0, 1, "roman text", 700)
				b := line(1, 1, "bold continuation", 688)
				b.FontName = "GHIJKL+Times-Bold"
				return []ContentElement{a, b}
			}(),
			want: 2,
		},
		{
			name: "region kind change",
			elements: func() []ContentElement {
				a := line(0, 1, "Figure 3: a diagram", 700)
				a.Region = layout.KindCaption
				b := line(1, 1, "body text resumes", 688)
				return []ContentElement{a, b}
			}(),
			want: 2,
		},
		{
			name: "column jump upward",
			elements: []ContentElement{
				line(0, 1, "bottom of left column", 100),
				line(1, 1, "top of right column", 700),
			},
			want: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			units := Segment(tc.elements, DefaultGapFactor)
			if len(units) != tc.want {
				t.Errorf("expected %d units, got %d", tc.want, len(units))
			}
		})
	}
}

func TestSegmentSubsetFontPrefixesMerge(t *testing.T) {
	a := line(0, 1, "one subset", 700)
	a.FontName = "ABCDEF+Times-Roman"
	b := line(1, 1, "another subset of the same face", 688)
	b.FontName = "ZYXWVU+Times-Roman"

	units := Segment([]ContentElement{a, b}, DefaultGapFactor)
	if len(units) != 1 {
		t.Errorf("subset prefixes of the same face should merge, got %d units", len(units))
	}
}

func TestSegmentListItemsStandAlone(t *testing.T) {
	a := line(0, 1, "first bullet point", 700)
	a.Region = layout.KindListItem
	b := line(1, 1, "second bullet point", 688)
	b.Region = layout.KindListItem

	units := Segment([]ContentElement{a, b}, DefaultGapFactor)
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[0].SourceText != "first bullet point" || units[1].SourceText != "second bullet point" {
		t.Errorf("list items merged: %q, %q", units[0].SourceText, units[1].SourceText)
	}
}

func TestSegmentListItemWrapMerges(t *testing.T) {
	a := line(0, 1, "a bullet long enough", 700)
	a.Region = layout.KindListItem
	b := line(1, 1, "to wrap onto a second line", 688)
	b.Region = layout.KindListItem
	b.Box.X = 90 // hanging indent past the marker

	units := Segment([]ContentElement{a, b}, DefaultGapFactor)
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0].SourceText != "a bullet long enough to wrap onto a second line" {
		t.Errorf("unexpected merged text: %q", units[0].SourceText)
	}
}

func TestSegmentHeadingsStandAlone(t *testing.T) {
	a := line(0, 1, "3 Methods", 700)
	a.Region = layout.KindSectionHeader
	b := line(1, 1, "3.1 Dataset", 688)
	b.Region = layout.KindSectionHeader

	units := Segment([]ContentElement{a, b}, DefaultGapFactor)
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
}

func TestSegmentTOCEntriesStandAlone(t *testing.T) {
	a := line(0, 1, "1 Introduction ....... 3", 700)
	a.TOCTarget = 3
	b := line(1, 1, "2 Related Work ....... 7", 688)
	b.TOCTarget = 7

	units := Segment([]ContentElement{a, b}, DefaultGapFactor)
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[0].TOCTarget != 3 || units[1].TOCTarget != 7 {
		t.Errorf("TOC targets not carried: %d, %d", units[0].TOCTarget, units[1].TOCTarget)
	}
}

// Every translatable element must land in exactly one unit.
func TestSegmentCoverage(t *testing.T) {
	elements := []ContentElement{
		line(0, 1, "a", 700),
		line(1, 1, "b", 688),
		opaque(2, 1),
		line(3, 1, "c", 500),
		line(4, 2, "d", 700),
	}

	units := Segment(elements, DefaultGapFactor)

	seen := make(map[int]int)
	for _, u := range units {
		for _, seq := range u.Members {
			seen[seq]++
		}
	}
	for _, el := range elements {
		if !el.Translatable {
			if seen[el.Seq] != 0 {
				t.Errorf("opaque element %d appears in a unit", el.Seq)
			}
			continue
		}
		if seen[el.Seq] != 1 {
			t.Errorf("element %d appears in %d units, want 1", el.Seq, seen[el.Seq])
		}
	}
}

func TestSegmentDeterministic(t *testing.T) {
	elements := []ContentElement{
		line(0, 1, "alpha", 700),
		line(1, 1, "beta", 688),
		opaque(2, 1),
		line(3, 1, "gamma", 500),
	}

	first := Segment(elements, DefaultGapFactor)
	second := Segment(elements, DefaultGapFactor)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input produced different units")
	}

	if first[0].ID != "u_1_0" || first[1].ID != "u_1_3" {
		t.Errorf("unexpected unit IDs: %s, %s", first[0].ID, first[1].ID)
	}
}
