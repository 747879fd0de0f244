package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/bunkolab/bunko/internal/models"
)

func TestWriteAskResultText(t *testing.T) {
	resp := &models.AskResponse{
		Answer:  "Paris.",
		Sources: []string{"geo.pdf"},
		Context: []models.ContextChunk{
			{Source: "geo.pdf", Text: "The capital of France is Paris.", Score: 0.91},
		},
	}
	var buf bytes.Buffer
	if err := WriteAskResult(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Paris.", "Sources: geo.pdf", "[geo.pdf]", "0.91"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteAskResultAnswerError(t *testing.T) {
	var buf bytes.Buffer
	err := WriteAskResult(&buf, &models.AskResponse{AnswerError: "upstream timeout"}, OutputText)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Answer unavailable: upstream timeout") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteAskResultJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAskResult(&buf, &models.AskResponse{Answer: "yes"}, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.AskResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Answer != "yes" {
		t.Errorf("answer = %q", decoded.Answer)
	}
}

func TestWriteDocumentList(t *testing.T) {
	docs := []*models.Document{
		{Name: "a.pdf", Org: "default", Model: "all-minilm", ChunkSize: 200, UploadTime: time.Now()},
	}
	var buf bytes.Buffer
	if err := WriteDocumentList(&buf, docs, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "a.pdf") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	if err := WriteDocumentList(&buf, nil, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No documents") {
		t.Errorf("output = %q", buf.String())
	}
}
