package layout

import (
	"image"
	"math"
	"testing"
)

func TestKindIsTranslatable(t *testing.T) {
	translatable := []Kind{KindText, KindTitle, KindSectionHeader, KindListItem, KindCaption, KindFootnote}
	for _, k := range translatable {
		if !k.IsTranslatable() {
			t.Errorf("%s should be translatable", k)
		}
	}

	opaque := []Kind{KindFormula, KindTable, KindFigure, KindPageHeader, KindPageFooter}
	for _, k := range opaque {
		if k.IsTranslatable() {
			t.Errorf("%s should be opaque", k)
		}
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{X: 10, Y: 10, Width: 20, Height: 20}
	b := Rect{X: 50, Y: 40, Width: 10, Height: 10}

	u := a.Union(b)
	if u.X != 10 || u.Y != 10 || u.Width != 50 || u.Height != 40 {
		t.Errorf("Union = %+v", u)
	}

	// union with an empty rect is the identity
	if got := a.Union(Rect{}); got != a {
		t.Errorf("Union with empty = %+v, want %+v", got, a)
	}
	if got := (Rect{}).Union(b); got != b {
		t.Errorf("empty Union b = %+v, want %+v", got, b)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 100, Height: 50}
	if !r.Contains(50, 30) {
		t.Error("interior point not contained")
	}
	if !r.Contains(10, 10) {
		t.Error("corner not contained")
	}
	if r.Contains(5, 30) || r.Contains(50, 100) {
		t.Error("exterior point contained")
	}

	inner := Rect{X: 20, Y: 20, Width: 30, Height: 20}
	if !r.ContainsRect(inner) {
		t.Error("inner rect not contained")
	}
	if inner.ContainsRect(r) {
		t.Error("outer rect contained in inner")
	}
}

func TestScaleToPage(t *testing.T) {
	// a 100x50 box at the top-left of a 1000x1500 raster on a 500x750pt page
	regions := []Region{{
		Kind: KindText,
		Box:  Rect{X: 0, Y: 0, Width: 100, Height: 50},
		Page: 1,
	}}

	scaled := ScaleToPage(regions, 1000, 1500, 500, 750)
	got := scaled[0].Box

	if got.X != 0 || got.Width != 50 || got.Height != 25 {
		t.Errorf("scaled box = %+v", got)
	}
	// top of the raster is the top of the page in PDF coordinates
	if math.Abs(got.Y-(750-25)) > 1e-9 {
		t.Errorf("Y = %v, want %v", got.Y, 750-25)
	}
}

func TestFullPageFallback(t *testing.T) {
	regions := FullPage(3, 612, 792)
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}
	r := regions[0]
	if r.Kind != KindText || r.Page != 3 {
		t.Errorf("fallback region = %+v", r)
	}
	if r.Box.Width != 612 || r.Box.Height != 792 {
		t.Errorf("fallback box = %+v", r.Box)
	}
}

func TestLetterboxMapping(t *testing.T) {
	// 200x100 landscape image into a 1024 square: scale 5.12, vertical padding
	img := image.NewNRGBA(image.Rect(0, 0, 200, 100))
	data, lb := letterbox(img, 1024)

	if len(data) != 3*1024*1024 {
		t.Fatalf("tensor length = %d", len(data))
	}
	if lb.padX != 0 {
		t.Errorf("padX = %v, want 0", lb.padX)
	}
	if lb.padY == 0 {
		t.Error("expected vertical padding")
	}

	// a box covering the full fitted image maps back to the full source
	box, ok := lb.toImage(Rect{X: 0, Y: lb.padY, Width: 1024, Height: 1024 - 2*lb.padY})
	if !ok {
		t.Fatal("full box rejected")
	}
	if math.Abs(box.Width-200) > 1 || math.Abs(box.Height-100) > 1 {
		t.Errorf("mapped box = %+v", box)
	}

	// a box entirely in the padding is rejected
	if _, ok := lb.toImage(Rect{X: 0, Y: 0, Width: 1024, Height: lb.padY - 1}); ok {
		t.Error("padding-only box accepted")
	}
}
