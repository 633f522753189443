package pdf

import (
	"os"
	"path/filepath"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// GetPDFInfo returns basic information about a PDF file: page count, size,
// and whether it carries extractable text.
func GetPDFInfo(pdfPath string) (*PDFInfo, error) {
	fileInfo, err := os.Stat(pdfPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewPDFError(ErrPDFNotFound, "file not found", err)
		}
		return nil, NewPDFError(ErrPDFInvalid, "cannot access file", err)
	}
	if fileInfo.IsDir() {
		return nil, NewPDFError(ErrPDFInvalid, "path is a directory, not a file", nil)
	}

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, NewPDFError(ErrPDFInvalid, "cannot open PDF file", err)
	}
	defer f.Close()

	pageCount := r.NumPage()

	isTextPDF, err := IsTextPDF(pdfPath)
	if err != nil {
		isTextPDF = false
	}

	return &PDFInfo{
		FilePath:  pdfPath,
		FileName:  filepath.Base(pdfPath),
		PageCount: pageCount,
		FileSize:  fileInfo.Size(),
		IsTextPDF: isTextPDF,
	}, nil
}

// IsTextPDF reports whether the document contains extractable text.
// Scanned image-only documents return false; translating those would
// require OCR, which this tool does not do.
func IsTextPDF(pdfPath string) (bool, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return false, NewPDFError(ErrPDFInvalid, "cannot open PDF file", err)
	}
	defer f.Close()

	// Probing the first few pages is enough; a text PDF shows text early.
	maxPagesToCheck := 3
	if r.NumPage() < maxPagesToCheck {
		maxPagesToCheck = r.NumPage()
	}

	totalTextLength := 0
	for pageNum := 1; pageNum <= maxPagesToCheck; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		for _, r := range content {
			if !unicode.IsSpace(r) {
				totalTextLength++
			}
		}
		if totalTextLength > 50 {
			return true, nil
		}
	}

	return totalTextLength > 0, nil
}

// PageDimensions returns the width and height of every page in points,
// 0-indexed.
func PageDimensions(pdfPath string) ([][2]float64, error) {
	ctx, err := api.ReadContextFile(pdfPath)
	if err != nil {
		return nil, NewPDFError(ErrPDFInvalid, "cannot read PDF structure", err)
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, NewPDFError(ErrPDFInvalid, "cannot determine page dimensions", err)
	}

	out := make([][2]float64, len(dims))
	for i, d := range dims {
		out[i] = [2]float64{d.Width, d.Height}
	}
	return out, nil
}
