// Package pdftext is the degraded local extraction path: when OCR is
// unavailable it pulls the PDF's embedded text layer, position-sorted, with
// no true OCR involved.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ExtractText reads the text layer of a PDF, row by row in reading order.
// Returns the joined text and the number of pages that contributed. Scanned
// PDFs with no text layer return an empty string, which the caller treats as
// insufficient content.
func ExtractText(content []byte) (string, int, error) {
	if len(content) == 0 {
		return "", 0, fmt.Errorf("empty PDF content")
	}

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	var text strings.Builder
	pages := 0
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText := extractPageText(page)
		if pageText == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(pageText)
		pages++
	}

	return strings.TrimSpace(text.String()), pages, nil
}

// extractPageText renders one page as newline-separated rows. GetTextByRow
// groups words by vertical position; within a row words are kept in
// horizontal order. Falls back to the flat text stream when row extraction
// fails.
func extractPageText(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		var sb strings.Builder
		for _, row := range rows {
			var line strings.Builder
			for _, word := range row.Content {
				line.WriteString(word.S)
			}
			trimmed := strings.TrimSpace(line.String())
			if trimmed == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(trimmed)
		}
		return sb.String()
	}

	plain, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(plain)
}

// PageCount returns the number of pages in a PDF. Used to validate uploads
// before handing them to a provider.
func PageCount(content []byte) (int, error) {
	count, err := api.PageCount(bytes.NewReader(content), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return count, nil
}
