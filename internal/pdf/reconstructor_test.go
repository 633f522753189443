package pdf

import (
	"strings"
	"testing"
)

func TestFitFontSize(t *testing.T) {
	testCases := []struct {
		name      string
		text      string
		fontSize  float64
		maxWidth  float64
		maxHeight float64
		check     func(t *testing.T, got float64)
	}{
		{
			name: "short text keeps size",
			text: "hello", fontSize: 10, maxWidth: 400, maxHeight: 14,
			check: func(t *testing.T, got float64) {
				if got != 10 {
					t.Errorf("got %v, want 10", got)
				}
			},
		},
		{
			name: "long text shrinks",
			text: strings.Repeat("long translated sentence ", 10), fontSize: 10, maxWidth: 200, maxHeight: 14,
			check: func(t *testing.T, got float64) {
				if got >= 10 {
					t.Errorf("got %v, want < 10", got)
				}
				if got < MinFontSize {
					t.Errorf("got %v, below floor %v", got, MinFontSize)
				}
			},
		},
		{
			name: "never below floor",
			text: strings.Repeat("x", 10000), fontSize: 12, maxWidth: 50, maxHeight: 14,
			check: func(t *testing.T, got float64) {
				if got != MinFontSize {
					t.Errorf("got %v, want %v", got, MinFontSize)
				}
			},
		},
		{
			name: "cjk counts double width",
			text: strings.Repeat("翻译", 40), fontSize: 10, maxWidth: 300, maxHeight: 14,
			check: func(t *testing.T, got float64) {
				if got >= 10 {
					t.Errorf("got %v, want < 10", got)
				}
			},
		},
		{
			name: "zero box keeps size",
			text: "anything", fontSize: 9, maxWidth: 0, maxHeight: 0,
			check: func(t *testing.T, got float64) {
				if got != 9 {
					t.Errorf("got %v, want 9", got)
				}
			},
		},
		{
			name: "multiline box fits more",
			text: strings.Repeat("word ", 30), fontSize: 10, maxWidth: 200, maxHeight: 60,
			check: func(t *testing.T, got float64) {
				// five lines available; same text in one line would shrink harder
				oneLine := fitFontSize(strings.Repeat("word ", 30), 10, 200, 12)
				if got < oneLine {
					t.Errorf("taller box fitted smaller: %v < %v", got, oneLine)
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, fitFontSize(tc.text, tc.fontSize, tc.maxWidth, tc.maxHeight))
		})
	}
}

func TestRewriteTOCEntry(t *testing.T) {
	testCases := []struct {
		name       string
		translated string
		target     int
		wantSuffix string
	}{
		{"number kept", "引言 ........ 3", 3, " 3"},
		{"number dropped by backend", "引言", 3, " 3"},
		{"number altered by backend", "引言 ...... 7", 3, " 3"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := rewriteTOCEntry(tc.translated, tc.target)
			if !strings.HasSuffix(got, tc.wantSuffix) {
				t.Errorf("rewriteTOCEntry(%q, %d) = %q, want suffix %q",
					tc.translated, tc.target, got, tc.wantSuffix)
			}
			if !strings.Contains(got, "引言") {
				t.Errorf("translated heading lost: %q", got)
			}
		})
	}
}

func TestPageSuffixOrdering(t *testing.T) {
	files := []string{
		"doc_10.pdf",
		"doc_2.pdf",
		"doc_1.pdf",
	}
	if pageSuffix(files[0]) != 10 || pageSuffix(files[1]) != 2 || pageSuffix(files[2]) != 1 {
		t.Errorf("page suffixes parsed wrong: %d %d %d",
			pageSuffix(files[0]), pageSuffix(files[1]), pageSuffix(files[2]))
	}
	if pageSuffix("nonsense.pdf") != 0 {
		t.Errorf("unparseable name should yield 0")
	}
}

func TestSanitizeOverlayText(t *testing.T) {
	got := sanitizeOverlayText("  line one\nline two\r\n  ")
	if got != "line one line two" {
		t.Errorf("sanitizeOverlayText = %q", got)
	}
}
