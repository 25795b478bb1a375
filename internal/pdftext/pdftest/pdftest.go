// Package pdftest builds small text PDFs for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Build returns a PDF with one page per element of pages. Each line of a
// page is written as its own text cell.
func Build(pages ...string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetMargins(10, 10, 10)
	pdf.SetFont("Arial", "", 11)

	for _, page := range pages {
		pdf.AddPage()
		for _, line := range strings.Split(page, "\n") {
			pdf.Cell(0, 8, line)
			pdf.Ln(8)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// MustBuild is Build that panics on error.
func MustBuild(pages ...string) []byte {
	data, err := Build(pages...)
	if err != nil {
		panic(err)
	}
	return data
}
