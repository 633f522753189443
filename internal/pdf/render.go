package pdf

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"

	"pdf-translator/internal/logger"
)

// Renderer converts PDF pages to raster images for the layout classifier.
// It shells out to pdftoppm (poppler-utils) which renders faithfully at
// arbitrary resolution; there is no mature pure-Go PDF rasterizer.
type Renderer struct {
	dpi     int
	tempDir string
}

// NewRenderer creates a page renderer at the given resolution.
func NewRenderer(dpi int) *Renderer {
	if dpi <= 0 {
		dpi = 144
	}
	return &Renderer{dpi: dpi}
}

// Available reports whether pdftoppm can be invoked.
func (r *Renderer) Available() bool {
	return exec.Command("pdftoppm", "-v").Run() == nil
}

// RenderPage rasterizes one page (1-based) to an image.
func (r *Renderer) RenderPage(pdfPath string, pageNum int) (image.Image, error) {
	if r.tempDir == "" {
		tempDir, err := os.MkdirTemp("", "pdf2img_*")
		if err != nil {
			return nil, NewPDFError(ErrRenderFailed, "failed to create temp dir", err)
		}
		r.tempDir = tempDir
	}

	outputPrefix := filepath.Join(r.tempDir, fmt.Sprintf("page_%d", pageNum))

	args := []string{
		"-f", fmt.Sprintf("%d", pageNum),
		"-l", fmt.Sprintf("%d", pageNum),
		"-png",
		"-r", fmt.Sprintf("%d", r.dpi),
		"-singlefile",
		pdfPath,
		outputPrefix,
	}

	cmd := exec.Command("pdftoppm", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, NewPDFErrorWithPage(ErrRenderFailed,
			fmt.Sprintf("pdftoppm failed: %s", string(output)), pageNum, err)
	}

	imgPath := outputPrefix + ".png"
	img, err := loadImage(imgPath)
	if err != nil {
		return nil, NewPDFErrorWithPage(ErrRenderFailed, "failed to load rendered page", pageNum, err)
	}
	os.Remove(imgPath)

	logger.Debug("page rendered",
		logger.Int("page", pageNum),
		logger.Int("width", img.Bounds().Dx()),
		logger.Int("height", img.Bounds().Dy()))

	return img, nil
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Cleanup removes temporary render files.
func (r *Renderer) Cleanup() {
	if r.tempDir != "" {
		os.RemoveAll(r.tempDir)
		r.tempDir = ""
	}
}
