// Package filetype decides how an uploaded document is analyzed.
package filetype

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"billaudit/internal/domain"
)

const pdfContentType = "application/pdf"

// Detection is the analysis route for one file.
type Detection struct {
	FileType    domain.FileType
	ContentType string
	// Text is the extracted text of a text-bearing PDF.
	Text        string
	Processable bool
}

// Extension returns the lower-cased extension of filename without the dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Detect routes image extensions to the vision model and text-bearing PDFs to
// the text model. PDFs without extractable text and anything else are not processable.
func Detect(filename string, data []byte) Detection {
	ext := Extension(filename)
	if domain.ImageExtensions[ext] {
		return Detection{
			FileType:    domain.FileTypeImage,
			ContentType: domain.AllowedContentTypes[ext],
			Processable: true,
		}
	}

	d := Detection{FileType: domain.FileTypeText, ContentType: http.DetectContentType(data)}
	if ext != "pdf" && !strings.HasPrefix(d.ContentType, pdfContentType) {
		return d
	}
	d.ContentType = pdfContentType

	text, err := ExtractPDFText(data)
	if err != nil {
		return d
	}
	d.Text = strings.TrimSpace(text)
	d.Processable = d.Text != ""
	return d
}

// ExtractPDFText returns the plain text of every page of a PDF.
func ExtractPDFText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}
		t, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("reading page %d: %w", i, err)
		}
		b.WriteString(t)
	}
	return b.String(), nil
}
