package pdfparse

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PageTexts reads a PDF from disk and returns the plain text of each page in
// order. Pages whose text cannot be decoded are returned as empty strings so
// one bad page does not lose the rest of the file.
func PageTexts(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// ExtractFile is the convenience path used by the importer and the ward
// cache: read the file and run the given extractor over its pages.
func ExtractFile(e Extractor, path, targetID string) (map[string]Record, error) {
	pages, err := PageTexts(path)
	if err != nil {
		return nil, err
	}
	return e.Extract(pages, targetID), nil
}
