// Package pdf provides the document side of the translation pipeline:
// content extraction, segmentation into translation units, and
// reconstruction of mono and dual output documents.
package pdf

import (
	"pdf-translator/internal/layout"
)

// PDFInfo describes basic properties of an input document.
type PDFInfo struct {
	FilePath  string `json:"file_path"`
	FileName  string `json:"file_name"`
	PageCount int    `json:"page_count"`
	FileSize  int64  `json:"file_size"`
	IsTextPDF bool   `json:"is_text_pdf"`
}

// ContentElement is one ordered unit of page content emitted by the
// extractor. Seq is a strictly increasing document-order key and the sole
// ordering invariant the reconstructor relies on; elements are never
// reordered.
type ContentElement struct {
	Seq  int         `json:"seq"`
	Page int         `json:"page"`
	Box  layout.Rect `json:"box"`

	// Translatable elements carry a text run; opaque elements only mark
	// the region they cover so reconstruction leaves it untouched.
	Translatable bool        `json:"translatable"`
	Text         string      `json:"text,omitempty"`
	FontName     string      `json:"font_name,omitempty"`
	FontSize     float64     `json:"font_size,omitempty"`
	Baseline     float64     `json:"baseline,omitempty"`
	Region       layout.Kind `json:"region"`

	// TOCTarget is the referenced page for table-of-contents entries,
	// 0 for everything else.
	TOCTarget int `json:"toc_target,omitempty"`
}

// Unit is a maximal run of layout-adjacent translatable text treated as a
// single translation request.
type Unit struct {
	ID         string      `json:"id"`
	SourceText string      `json:"source_text"`
	Members    []int       `json:"members"` // element seqs, in order
	Page       int         `json:"page"`
	Box        layout.Rect `json:"box"`
	FontSize   float64     `json:"font_size"`
	TOCTarget  int         `json:"toc_target,omitempty"`
}

// ErrorCode classifies document-side failures.
type ErrorCode string

const (
	ErrPDFNotFound     ErrorCode = "PDF_NOT_FOUND"
	ErrPDFInvalid      ErrorCode = "PDF_INVALID"
	ErrPDFNoText       ErrorCode = "PDF_NO_TEXT"
	ErrExtractFailed   ErrorCode = "EXTRACT_FAILED"
	ErrRenderFailed    ErrorCode = "RENDER_FAILED"
	ErrRebuildFailed   ErrorCode = "REBUILD_FAILED"
	ErrRebuildOverflow ErrorCode = "REBUILD_OVERFLOW"
)

// PDFError is the document-side error type. Page is 1-based when set.
type PDFError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Page    int       `json:"page,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for PDFError
func (e *PDFError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *PDFError) Unwrap() error {
	return e.Cause
}

// NewPDFError creates a new PDFError with the given code, message, and optional cause
func NewPDFError(code ErrorCode, message string, cause error) *PDFError {
	return &PDFError{Code: code, Message: message, Cause: cause}
}

// NewPDFErrorWithPage creates a new PDFError carrying page information
func NewPDFErrorWithPage(code ErrorCode, message string, page int, cause error) *PDFError {
	return &PDFError{Code: code, Message: message, Page: page, Cause: cause}
}
