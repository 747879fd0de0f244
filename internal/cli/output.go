// Package cli provides output formatting for the bunko command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bunkolab/bunko/internal/models"
	"github.com/bunkolab/bunko/pkg/utils"
)

// OutputFormat selects how results are rendered.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteAskResult writes an answer with its context to w in the given format.
func WriteAskResult(w io.Writer, resp *models.AskResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	default:
		writeAskResultText(w, resp)
		return nil
	}
}

func writeAskResultText(w io.Writer, resp *models.AskResponse) {
	if resp.AnswerError != "" {
		fmt.Fprintf(w, "Answer unavailable: %s\n", resp.AnswerError)
	} else {
		fmt.Fprintf(w, "%s\n", resp.Answer)
	}
	if len(resp.Sources) > 0 {
		fmt.Fprintf(w, "\nSources: %s\n", strings.Join(resp.Sources, ", "))
	}
	for _, c := range resp.Context {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "[%s] Score: %.4f\n%s\n", c.Source, c.Score, utils.Truncate(c.Text, 200))
	}
}

// WriteDocumentList writes a document listing to w in the given format.
func WriteDocumentList(w io.Writer, docs []*models.Document, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	default:
		if len(docs) == 0 {
			fmt.Fprintln(w, "No documents indexed.")
			return nil
		}
		for _, d := range docs {
			fmt.Fprintf(w, "%-40s org=%-12s model=%-16s chunk_size=%d uploaded=%s\n",
				d.Name, d.Org, d.Model, d.ChunkSize, d.UploadTime.Format("2006-01-02 15:04"))
		}
		return nil
	}
}
