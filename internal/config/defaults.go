package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "/usr/local/var/bunko/data"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/bunko/data/db/bunko.db"
	}
	if len(cfg.Storage.Backends) == 0 {
		cfg.Storage.Backends = []string{"pairfile", "sqlite"}
	}
	if cfg.Storage.ReadBackend == "" {
		cfg.Storage.ReadBackend = "sqlite"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "ollama"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "all-minilm"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:11434"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/bunko/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.Workers == 0 {
		cfg.Embedding.Workers = 4
	}
	if cfg.Embedding.MinBatch == 0 {
		cfg.Embedding.MinBatch = 16
	}
	if cfg.Embedding.ParallelThreshold == 0 {
		cfg.Embedding.ParallelThreshold = 10
	}
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = 200
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = 30
	}
	if cfg.Retrieval.DefaultTopK == 0 {
		cfg.Retrieval.DefaultTopK = 3
	}
	if cfg.Retrieval.MaxTopK == 0 {
		cfg.Retrieval.MaxTopK = 50
	}
	if cfg.Retrieval.DefaultOrg == "" {
		cfg.Retrieval.DefaultOrg = "default"
	}
	if cfg.Answer.Provider == "" {
		cfg.Answer.Provider = "groq"
	}
	if cfg.Answer.Model == "" {
		cfg.Answer.Model = "llama-3.1-8b-instant"
	}
	if cfg.Answer.BaseURL == "" {
		cfg.Answer.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Answer.APIKeyEnv == "" {
		cfg.Answer.APIKeyEnv = "GROQ_API_KEY"
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".pdf", ".docx", ".xlsx", ".txt", ".md"}
	}
}
