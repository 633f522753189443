package pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/color"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"pdf-translator/internal/logger"
)

// MinFontSize is the smallest font size the reconstructor will shrink
// overlay text to. Translations that still do not fit at this size are
// placed anyway and logged as overflow.
const MinFontSize = 6.0

// Reconstructor builds the output documents: a mono PDF where translated
// text replaces the original in place, and a dual PDF interleaving
// original and translated pages. Outputs are written to a temporary file
// first and published with an atomic rename, so a crash mid-build never
// leaves a half-written document at the target path.
type Reconstructor struct {
	fontName string
	conf     *model.Configuration
}

// NewReconstructor creates a reconstructor using the given overlay font.
// An empty name selects Helvetica, which pdfcpu ships with.
func NewReconstructor(fontName string) *Reconstructor {
	if fontName == "" {
		fontName = "Helvetica"
	}
	return &Reconstructor{
		fontName: fontName,
		conf:     model.NewDefaultConfiguration(),
	}
}

// BuildMono writes the mono output: a copy of the source document where
// each translated unit covers its original box with a white fill and the
// translated text on top. Units whose translation equals the source text
// are left untouched; the reader sees the original rendering. Overlay
// failures degrade to keeping the original text for that unit.
func (r *Reconstructor) BuildMono(srcPath string, units []Unit, translations map[string]string, outPath string) error {
	return r.build(srcPath, units, translations, outPath, nil)
}

// build overlays the translations onto a copy of srcPath and publishes it
// at outPath. tocPage, when set, remaps table-of-contents page references
// for output layouts whose pagination differs from the source.
func (r *Reconstructor) build(srcPath string, units []Unit, translations map[string]string, outPath string, tocPage func(int) int) error {
	tmpPath := outPath + ".tmp"
	if err := copyFile(srcPath, tmpPath); err != nil {
		return NewPDFError(ErrRebuildFailed, "cannot stage output file", err)
	}
	defer os.Remove(tmpPath)

	overflows := 0
	for _, unit := range units {
		translated, ok := translations[unit.ID]
		if !ok || translated == "" || translated == unit.SourceText {
			continue
		}
		if unit.TOCTarget != 0 {
			target := unit.TOCTarget
			if tocPage != nil {
				target = tocPage(target)
			}
			translated = rewriteTOCEntry(translated, target)
		}

		fitted := fitFontSize(translated, unit.FontSize, unit.Box.Width, unit.Box.Height)
		if fitted <= MinFontSize && unit.FontSize > MinFontSize {
			overflows++
			logger.Warn("translated text overflows its box",
				logger.String("unit", unit.ID),
				logger.Int("page", unit.Page),
				logger.Float64("font_size", fitted))
		}

		if err := r.overlayUnit(tmpPath, unit, translated, fitted); err != nil {
			logger.Warn("overlay failed, keeping original text",
				logger.String("unit", unit.ID),
				logger.Int("page", unit.Page),
				logger.Err(err))
		}
	}

	if err := api.ValidateFile(tmpPath, r.conf); err != nil {
		return NewPDFError(ErrRebuildFailed, "rebuilt document failed validation", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return NewPDFError(ErrRebuildFailed, "cannot publish output file", err)
	}

	logger.Info("translated document built",
		logger.String("output", filepath.Base(outPath)),
		logger.Int("units", len(units)),
		logger.Int("overflows", overflows))

	return nil
}

// overlayUnit covers one unit's box with a white fill and stamps the
// translated text over it.
func (r *Reconstructor) overlayUnit(pdfPath string, unit Unit, text string, fontSize float64) error {
	pages := []string{fmt.Sprintf("%d", unit.Page)}

	white := color.White
	blank := &model.Watermark{
		Mode:       model.WMText,
		TextString: " ",
		BgColor:    &white,
		Opacity:    1.0,
		OnTop:      true,
		Pos:        types.BottomLeft,
		Dx:         unit.Box.X,
		Dy:         unit.Box.Y,
		Width:      int(unit.Box.Width),
		Height:     int(unit.Box.Height),
	}
	if err := api.AddWatermarksFile(pdfPath, "", pages, blank, r.conf); err != nil {
		return NewPDFErrorWithPage(ErrRebuildFailed, "cannot blank original text", unit.Page, err)
	}

	wm := &model.Watermark{
		Mode:           model.WMText,
		TextString:     sanitizeOverlayText(text),
		FontName:       r.fontName,
		FontSize:       int(fontSize),
		ScaledFontSize: int(fontSize),
		Color:          color.Black,
		Opacity:        1.0,
		OnTop:          true,
		Pos:            types.BottomLeft,
		Dx:             unit.Box.X,
		Dy:             unit.Box.Y,
		Width:          int(unit.Box.Width),
		Height:         int(unit.Box.Height),
	}
	if err := api.AddWatermarksFile(pdfPath, "", pages, wm, r.conf); err != nil {
		return NewPDFErrorWithPage(ErrRebuildFailed, "cannot stamp translated text", unit.Page, err)
	}

	return nil
}

// BuildDual writes the dual output: original page 1, translated page 1,
// original page 2, and so on. The translated pages are overlaid fresh
// rather than reusing the mono output because table-of-contents entries
// must reference the interleaved pagination: source page n sits at dual
// page 2n-1.
func (r *Reconstructor) BuildDual(srcPath string, units []Unit, translations map[string]string, outPath string) error {
	workDir, err := os.MkdirTemp(filepath.Dir(outPath), "dual_*")
	if err != nil {
		return NewPDFError(ErrRebuildFailed, "cannot create staging dir", err)
	}
	defer os.RemoveAll(workDir)

	translatedPath := filepath.Join(workDir, "translated.pdf")
	if err := r.build(srcPath, units, translations, translatedPath, func(page int) int {
		return 2*page - 1
	}); err != nil {
		return err
	}

	srcDir := filepath.Join(workDir, "src")
	monoDir := filepath.Join(workDir, "translated")

	srcPages, err := splitToPages(srcPath, srcDir)
	if err != nil {
		return err
	}
	monoPages, err := splitToPages(translatedPath, monoDir)
	if err != nil {
		return err
	}
	if len(srcPages) != len(monoPages) {
		return NewPDFError(ErrRebuildFailed,
			fmt.Sprintf("page count mismatch: %d original vs %d translated", len(srcPages), len(monoPages)), nil)
	}

	interleaved := make([]string, 0, len(srcPages)*2)
	for i := range srcPages {
		interleaved = append(interleaved, srcPages[i], monoPages[i])
	}

	tmpPath := outPath + ".tmp"
	defer os.Remove(tmpPath)
	if err := api.MergeCreateFile(interleaved, tmpPath, false, r.conf); err != nil {
		return NewPDFError(ErrRebuildFailed, "cannot merge interleaved pages", err)
	}
	if err := api.ValidateFile(tmpPath, r.conf); err != nil {
		return NewPDFError(ErrRebuildFailed, "dual document failed validation", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return NewPDFError(ErrRebuildFailed, "cannot publish output file", err)
	}

	logger.Info("dual document built",
		logger.String("output", filepath.Base(outPath)),
		logger.Int("pages", len(interleaved)))

	return nil
}

// splitToPages splits a document into single-page files and returns them
// in page order. pdfcpu names split files <stem>_<page>.pdf, which does
// not sort lexically past page 9, so ordering goes by the numeric suffix.
func splitToPages(pdfPath, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, NewPDFError(ErrRebuildFailed, "cannot create split dir", err)
	}
	if err := api.SplitFile(pdfPath, outputDir, 1, nil); err != nil {
		return nil, NewPDFError(ErrRebuildFailed, "cannot split document", err)
	}

	files, err := filepath.Glob(filepath.Join(outputDir, "*.pdf"))
	if err != nil || len(files) == 0 {
		return nil, NewPDFError(ErrRebuildFailed, "split produced no pages", err)
	}

	sort.Slice(files, func(i, j int) bool {
		return pageSuffix(files[i]) < pageSuffix(files[j])
	})
	return files, nil
}

var pageSuffixRe = regexp.MustCompile(`_(\d+)\.pdf$`)

func pageSuffix(path string) int {
	m := pageSuffixRe.FindStringSubmatch(path)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// fitFontSize shrinks the font size until the text fits the box, down to
// MinFontSize. Width estimation treats CJK glyphs as a full em and Latin
// glyphs as half, matching typical metrics closely enough for layout.
func fitFontSize(text string, fontSize, maxWidth, maxHeight float64) float64 {
	if fontSize <= 0 {
		fontSize = 10
	}
	if maxWidth <= 0 || maxHeight <= 0 {
		return fontSize
	}

	wide := 0
	narrow := 0
	for _, r := range text {
		if isCJK(r) {
			wide++
		} else {
			narrow++
		}
	}
	if wide+narrow == 0 {
		return fontSize
	}

	ems := float64(wide) + float64(narrow)*0.5
	lines := maxHeight / (fontSize * 1.2)
	if lines < 1 {
		lines = 1
	}

	estimated := ems * fontSize
	available := maxWidth * lines
	if estimated <= available {
		return fontSize
	}

	fitted := fontSize * available / estimated
	if fitted < MinFontSize {
		fitted = MinFontSize
	}
	return fitted
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || // CJK Unified Ideographs
		(r >= 0x3400 && r <= 0x4DBF) || // Extension A
		(r >= 0x3040 && r <= 0x30FF) || // Hiragana, Katakana
		(r >= 0xAC00 && r <= 0xD7AF) || // Hangul
		(r >= 0xFF00 && r <= 0xFFEF) // full-width forms
}

// sanitizeOverlayText flattens text for a single stamp and escapes the
// characters pdfcpu's description parser treats specially.
func sanitizeOverlayText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\n", " ")
	return text
}

var tocTrailingPage = regexp.MustCompile(`(\.\s*){2,}\s*\d{1,4}\s*$|\d{1,4}\s*$`)

// rewriteTOCEntry pins the page reference of a translated
// table-of-contents line back to its original target, in case the backend
// dropped or altered the trailing number.
func rewriteTOCEntry(translated string, target int) string {
	trimmed := strings.TrimSpace(translated)
	stripped := tocTrailingPage.ReplaceAllString(trimmed, "")
	stripped = strings.TrimRight(stripped, ". ")
	return fmt.Sprintf("%s ..... %d", stripped, target)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
