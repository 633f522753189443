// Package tool wires the whole pipeline together: input validation, page
// rendering and layout classification, content extraction, segmentation,
// concurrent translation, and document reconstruction.
package tool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"

	"pdf-translator/internal/config"
	"pdf-translator/internal/layout"
	"pdf-translator/internal/logger"
	"pdf-translator/internal/pdf"
	"pdf-translator/internal/translator"
	"pdf-translator/internal/types"
)

// Request describes one translation job. File and OutputDir may be
// relative; they resolve against the workspace root.
type Request struct {
	File      string
	LangIn    string
	LangOut   string
	OutputDir string
}

// Result reports where the outputs landed and what happened on the way.
type Result struct {
	MonoPath   string
	DualPath   string
	Pages      int
	TotalUnits int
	Translated int
	CacheHits  int
	Fallbacks  int
}

// ProgressFunc receives (done, total) in pages as the job advances.
// done never decreases and the final call is (total, total).
type ProgressFunc func(done, total int)

// Language is one supported language pair entry.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// supportedLanguages is the fixed language table, in presentation order.
// "auto" is only valid as a source language.
var supportedLanguages = []Language{
	{Code: "en", Name: "English"},
	{Code: "zh", Name: "Simplified Chinese"},
	{Code: "zh-TW", Name: "Traditional Chinese"},
	{Code: "ja", Name: "Japanese"},
	{Code: "ko", Name: "Korean"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "es", Name: "Spanish"},
	{Code: "it", Name: "Italian"},
	{Code: "ru", Name: "Russian"},
	{Code: "pt", Name: "Portuguese"},
	{Code: "ar", Name: "Arabic"},
	{Code: "th", Name: "Thai"},
	{Code: "hi", Name: "Hindi"},
	{Code: "uk", Name: "Ukrainian"},
	{Code: "auto", Name: "Auto-detect"},
}

// ListSupportedLanguages returns the supported language table in stable
// order.
func ListSupportedLanguages() []Language {
	out := make([]Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// Tool is the translation pipeline front door.
type Tool struct {
	cfg        *config.Manager
	backend    translator.Backend
	cache      *translator.Cache
	classifier layout.Classifier
	renderer   *pdf.Renderer
}

// New assembles a Tool from configuration. The layout classifier is
// optional equipment: when the model or the page renderer is unavailable
// every page degrades to a single full-page text region and translation
// still proceeds.
func New(ctx context.Context, cfg *config.Manager) (*Tool, error) {
	backend, err := translator.NewOpenAIBackend(ctx, translator.OpenAIConfig{
		APIKey:      cfg.APIKey(),
		BaseURL:     cfg.BaseURL(),
		Model:       cfg.Model(),
		Temperature: cfg.Config().Temperature,
	})
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "cannot configure translation backend", err)
	}

	cache := translator.NewCache(cfg.CachePath())
	if err := cache.Load(); err != nil {
		logger.Warn("cannot load translation cache, starting empty", logger.Err(err))
	}

	t := &Tool{
		cfg:      cfg,
		backend:  backend,
		cache:    cache,
		renderer: pdf.NewRenderer(144),
	}

	if modelPath := cfg.LayoutModelPath(); modelPath != "" {
		if !t.renderer.Available() {
			logger.Warn("pdftoppm not found, layout classification disabled")
		} else if detector, err := layout.NewDetector(layout.DetectorConfig{ModelPath: modelPath}); err != nil {
			logger.Warn("cannot load layout model, classification disabled", logger.Err(err))
		} else {
			t.classifier = detector
		}
	}

	return t, nil
}

// SetClassifier replaces the layout classifier. Mainly for tests.
func (t *Tool) SetClassifier(c layout.Classifier) {
	t.classifier = c
}

// SetBackend replaces the translation backend. Mainly for tests.
func (t *Tool) SetBackend(b translator.Backend) {
	t.backend = b
}

// Close releases pipeline resources.
func (t *Tool) Close() {
	if t.renderer != nil {
		t.renderer.Cleanup()
	}
	if d, ok := t.classifier.(*layout.Detector); ok {
		d.Close()
	}
}

// TranslatePDF runs the full pipeline for one document and returns the
// paths of the mono and dual outputs. Validation failures abort up front;
// once the pipeline is running, page-level and unit-level failures
// degrade (full-page regions, source-text fallbacks) rather than fail
// the job.
func (t *Tool) TranslatePDF(ctx context.Context, req Request, onProgress ProgressFunc) (*Result, error) {
	langIn, err := t.resolveLanguage(req.LangIn, t.cfg.Config().LangIn, true)
	if err != nil {
		return nil, err
	}
	langOut, err := t.resolveLanguage(req.LangOut, t.cfg.Config().LangOut, false)
	if err != nil {
		return nil, err
	}

	workspaceRoot, err := t.cfg.WorkspaceRoot()
	if err != nil {
		return nil, err
	}

	inputPath := resolvePath(req.File, workspaceRoot)
	if !strings.EqualFold(filepath.Ext(inputPath), ".pdf") {
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"input must be a PDF file", inputPath, nil)
	}

	info, err := pdf.GetPDFInfo(inputPath)
	if err != nil {
		var pdfErr *pdf.PDFError
		if errors.As(err, &pdfErr) && pdfErr.Code == pdf.ErrPDFNotFound {
			return nil, types.NewAppErrorWithDetails(types.ErrFileNotFound, "input file not found", inputPath, err)
		}
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput, "cannot read input file", inputPath, err)
	}
	if !info.IsTextPDF {
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"document has no extractable text; scanned PDFs require OCR", inputPath, nil)
	}

	outputDir := workspaceRoot
	if req.OutputDir != "" {
		outputDir = resolvePath(req.OutputDir, workspaceRoot)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, types.NewAppError(types.ErrInternal, "cannot create output directory", err)
	}

	if maxSec := t.cfg.Config().MaxDurationS; maxSec > 0 {
		if _, has := ctx.Deadline(); !has {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(maxSec)*time.Second)
			defer cancel()
		}
	}

	logger.Info("translation started",
		logger.String("file", info.FileName),
		logger.Int("pages", info.PageCount),
		logger.String("lang_in", langIn),
		logger.String("lang_out", langOut))

	pageDims, err := pdf.PageDimensions(inputPath)
	if err != nil {
		return nil, types.NewAppError(types.ErrInvalidInput, "cannot read page geometry", err)
	}

	regionsByPage := t.classifyPages(inputPath, info.PageCount, pageDims)

	elements, err := pdf.Extract(inputPath, regionsByPage, pageDims)
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "content extraction failed", err)
	}

	units := pdf.Segment(elements, pdf.DefaultGapFactor)

	translations, dispatch := t.translateUnits(ctx, units, langIn, langOut, info.PageCount, onProgress)

	stem := strings.TrimSuffix(info.FileName, filepath.Ext(info.FileName))
	monoPath := filepath.Join(outputDir, stem+"-mono.pdf")
	dualPath := filepath.Join(outputDir, stem+"-dual.pdf")

	rec := pdf.NewReconstructor("")
	if err := rec.BuildMono(inputPath, units, translations, monoPath); err != nil {
		return nil, types.NewAppError(types.ErrInternal, "cannot build translated document", err)
	}
	if err := rec.BuildDual(inputPath, units, translations, dualPath); err != nil {
		return nil, types.NewAppError(types.ErrInternal, "cannot build interleaved document", err)
	}

	if err := t.cache.Save(); err != nil {
		logger.Warn("cannot persist translation cache", logger.Err(err))
	}

	result := &Result{
		MonoPath:   monoPath,
		DualPath:   dualPath,
		Pages:      info.PageCount,
		TotalUnits: len(units),
		Translated: dispatch.Translated,
		CacheHits:  dispatch.CacheHits,
		Fallbacks:  dispatch.Fallbacks,
	}

	logger.Info("translation finished",
		logger.String("mono", result.MonoPath),
		logger.String("dual", result.DualPath),
		logger.Int("units", result.TotalUnits),
		logger.Int("cache_hits", result.CacheHits),
		logger.Int("fallbacks", result.Fallbacks))

	return result, nil
}

// classifyPages renders and classifies each page. Any failure on a page
// degrades that page to a single full-page text region.
func (t *Tool) classifyPages(inputPath string, pageCount int, pageDims [][2]float64) map[int][]layout.Region {
	regionsByPage := make(map[int][]layout.Region, pageCount)

	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		var w, h float64
		if pageNum-1 < len(pageDims) {
			w, h = pageDims[pageNum-1][0], pageDims[pageNum-1][1]
		}

		if t.classifier == nil {
			regionsByPage[pageNum] = layout.FullPage(pageNum, w, h)
			continue
		}

		img, err := t.renderer.RenderPage(inputPath, pageNum)
		if err != nil {
			logger.Warn("page render failed, using full-page region",
				logger.Int("page", pageNum), logger.Err(err))
			regionsByPage[pageNum] = layout.FullPage(pageNum, w, h)
			continue
		}

		regions, err := t.classifier.Classify(img, pageNum)
		if err != nil {
			logger.Warn("layout classification failed, using full-page region",
				logger.Int("page", pageNum), logger.Err(err))
			regionsByPage[pageNum] = layout.FullPage(pageNum, w, h)
			continue
		}

		bounds := img.Bounds()
		regionsByPage[pageNum] = layout.ScaleToPage(regions, bounds.Dx(), bounds.Dy(), w, h)
	}

	return regionsByPage
}

// translateUnits dispatches the units and returns the unit ID to
// translated text mapping. Progress in units is mapped onto pages so the
// caller sees page-granular, monotonic progress.
func (t *Tool) translateUnits(ctx context.Context, units []pdf.Unit, langIn, langOut string, pageCount int, onProgress ProgressFunc) (map[string]string, *translator.Result) {
	reqs := make([]translator.Request, len(units))
	for i, u := range units {
		reqs[i] = translator.Request{
			ID:      u.ID,
			Text:    u.SourceText,
			LangIn:  langIn,
			LangOut: langOut,
		}
	}

	var progress translator.ProgressFunc
	if onProgress != nil {
		if len(units) == 0 {
			onProgress(pageCount, pageCount)
		} else {
			progress = func(completed, total int) {
				onProgress(completed*pageCount/total, pageCount)
			}
		}
	}

	dispatch := translator.Run(ctx, reqs, t.backend, t.cache, translator.Options{
		Concurrency: t.cfg.Concurrency(),
	}, progress)

	translations := make(map[string]string, len(dispatch.Outcomes))
	for id, outcome := range dispatch.Outcomes {
		translations[id] = outcome.Text
	}
	return translations, dispatch
}

// resolveLanguage validates a language code against the supported table,
// filling in the configured default when the code is empty.
func (t *Tool) resolveLanguage(code, fallback string, allowAuto bool) (string, error) {
	if code == "" {
		code = fallback
	}
	if code == "auto" {
		if !allowAuto {
			return "", types.NewAppError(types.ErrUnsupported,
				"auto-detect is only valid as a source language", nil)
		}
		return code, nil
	}

	tag, err := language.Parse(code)
	if err != nil {
		return "", types.NewAppErrorWithDetails(types.ErrUnsupported,
			"unsupported language code", code, err)
	}

	canonical := tag.String()
	for _, lang := range supportedLanguages {
		if strings.EqualFold(lang.Code, canonical) {
			return lang.Code, nil
		}
	}
	return "", types.NewAppErrorWithDetails(types.ErrUnsupported,
		fmt.Sprintf("language %q is not in the supported set", code), code, nil)
}

// resolvePath resolves p against the workspace root unless it is already
// absolute.
func resolvePath(p, workspaceRoot string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(workspaceRoot, p)
}
