package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// siteSummary is the exported site-level record shape.
type siteSummary struct {
	URL             string   `json:"url"`
	Rank            int      `json:"rank"`
	Status          int      `json:"status"`
	Outcome         Outcome  `json:"outcome"`
	Title           string   `json:"title,omitempty"`
	StructuralPaths []string `json:"structural_paths"`
}

// contentItem is the exported content-level record shape.
type contentItem struct {
	URL            string `json:"url"`
	Rank           int    `json:"rank"`
	ContentID      string `json:"content_id"`
	StructuralPath string `json:"structural_path"`
	Text           string `json:"text"`
	TextLength     int    `json:"text_length"`
}

// exportDocument is the envelope WriteJSON emits.
type exportDocument struct {
	Keyword  string        `json:"keyword"`
	Sites    []siteSummary `json:"sites"`
	Contents []contentItem `json:"contents"`
}

// WriteJSON drains the iterator and writes the run results to w as a
// single indented JSON document holding the site summaries and the
// flattened content items, both in iterator order.
func WriteJSON(w io.Writer, keyword string, it Iterator) error {
	doc := exportDocument{
		Keyword:  keyword,
		Sites:    make([]siteSummary, 0),
		Contents: make([]contentItem, 0),
	}

	for it.Next() {
		r := it.Report()

		doc.Sites = append(doc.Sites, siteSummary{
			URL:             r.URL,
			Rank:            r.Rank,
			Status:          r.StatusCode,
			Outcome:         r.Outcome,
			Title:           r.Title,
			StructuralPaths: append([]string{}, r.Paths...),
		})

		for _, content := range r.Contents {
			doc.Contents = append(doc.Contents, contentItem{
				URL:            content.URL,
				Rank:           content.Rank,
				ContentID:      content.ID.String(),
				StructuralPath: content.Path,
				Text:           content.Text,
				TextLength:     content.Length,
			})
		}
	}

	if err := it.Error(); err != nil {
		return fmt.Errorf("export: draining report iterator: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("export: encoding report document: %w", err)
	}

	return nil
}
