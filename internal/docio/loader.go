// Package docio loads pre-extracted document batches. The extraction
// collaborator produces a JSON file of documents with UTF-8 plain text and
// section locators; parsing binary document formats is out of scope here.
package docio

import (
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"

	"corpagent/internal/schema"
)

// Batch is the input file layout.
type Batch struct {
	Documents []schema.Document `json:"documents"`
}

// Load reads a batch file from disk and validates the input contract:
// unique non-empty document ids and valid UTF-8 text.
func Load(path string) ([]schema.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}

	var batch Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}

	seen := make(map[string]bool, len(batch.Documents))
	for i, d := range batch.Documents {
		if d.DocID == "" {
			return nil, fmt.Errorf("document[%d]: doc_id is required", i)
		}
		if seen[d.DocID] {
			return nil, fmt.Errorf("document[%d]: duplicate doc_id %q", i, d.DocID)
		}
		seen[d.DocID] = true
		if !utf8.ValidString(d.RawText) {
			return nil, fmt.Errorf("document %q: raw_text is not valid UTF-8", d.DocID)
		}
		for j, p := range d.Paragraphs {
			if p.Section == "" {
				return nil, fmt.Errorf("document %q: paragraph[%d]: section locator is required", d.DocID, j)
			}
			if !utf8.ValidString(p.Text) {
				return nil, fmt.Errorf("document %q: paragraph[%d]: text is not valid UTF-8", d.DocID, j)
			}
		}
	}

	return batch.Documents, nil
}
