// Package pdftext extracts plain text from PDF files.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// Extract returns the plain text of every page of the PDF in data, pages
// joined by a newline. Pages without content are skipped.
func Extract(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", errors.New("empty pdf")
	}
	// the reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, pageText)
	}
	log.Debug().Int("pages", numPages).Int("bytes", len(data)).Msg("extracted pdf text")
	return strings.Join(pages, "\n"), nil
}

// ExtractFile reads the PDF at path and extracts its text.
func ExtractFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Extract(data)
}

// IsPDF reports whether data starts with the PDF file signature.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}
