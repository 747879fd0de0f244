package models

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
	Model    string `json:"model,omitempty"`
	LLMModel string `json:"llm_model,omitempty"`
	Org      string `json:"org,omitempty"`
}

// ContextChunk is one ranked chunk returned as answer context.
type ContextChunk struct {
	Source string  `json:"source"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}

// AskResponse carries the generated answer together with the retrieval context.
// AnswerError is set when retrieval succeeded but answer generation failed.
type AskResponse struct {
	Answer      string         `json:"answer"`
	Context     []ContextChunk `json:"context"`
	Sources     []string       `json:"sources"`
	AnswerError string         `json:"answer_error,omitempty"`
}

// UploadResponse is returned by POST /api/v1/documents once the file is stored
// and indexing has been scheduled.
type UploadResponse struct {
	Name       string `json:"name"`
	JobID      string `json:"job_id"`
	Status     string `json:"status"`
	Model      string `json:"model"`
	ChunkSize  int    `json:"chunk_size"`
	Overlap    int    `json:"overlap"`
	Background bool   `json:"indexing_in_background"`
}

// RemoveResponse reports per-target outcomes of a document removal.
type RemoveResponse struct {
	Name    string            `json:"name"`
	Success bool              `json:"success"`
	Targets map[string]string `json:"targets"`
}
