package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bunkolab/bunko/internal/artifact"
	"github.com/bunkolab/bunko/internal/extract"
	"github.com/bunkolab/bunko/internal/models"
	"github.com/bunkolab/bunko/internal/pipeline"
	"github.com/bunkolab/bunko/internal/rag"
	"github.com/bunkolab/bunko/internal/retriever"
	"github.com/bunkolab/bunko/internal/store"
	"github.com/bunkolab/bunko/pkg/utils"
)

const maxUploadBytes = 100 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload stores the original file and schedules indexing. The response
// is 202: indexing runs in the background and the client does not wait.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if !extract.Supported(ext) {
		s.respondError(w, http.StatusBadRequest, "unsupported file type: "+ext)
		return
	}

	chunkSize := s.formInt(r, "chunk_size", s.cfg.Chunking.ChunkSize)
	overlap := s.formInt(r, "overlap", s.cfg.Chunking.Overlap)
	if chunkSize <= 0 {
		s.respondError(w, http.StatusBadRequest, "chunk_size must be positive")
		return
	}
	if overlap < 0 {
		s.respondError(w, http.StatusBadRequest, "overlap must not be negative")
		return
	}
	model := r.FormValue("model")
	if model == "" {
		model = s.cfg.Embedding.Model
	}
	org := r.FormValue("org")
	if org == "" {
		org = s.cfg.Retrieval.DefaultOrg
	}

	if err := s.files.SaveOriginal(name, file); err != nil {
		s.logger.Error("saving upload failed", zap.String("document", name), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	jobID := s.scheduler.Schedule(pipeline.Request{
		Name:      name,
		Org:       org,
		ChunkSize: chunkSize,
		Overlap:   overlap,
		Model:     model,
	})
	s.logger.Info("upload accepted",
		zap.String("document", name),
		zap.String("job_id", jobID),
		zap.String("org", org),
		zap.Int("chunk_size", chunkSize))

	s.respondJSON(w, http.StatusAccepted, models.UploadResponse{
		Name:       name,
		JobID:      jobID,
		Status:     "accepted",
		Model:      model,
		ChunkSize:  chunkSize,
		Overlap:    overlap,
		Background: true,
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.read.ListActive(r.Context(), r.URL.Query().Get("org"))
	if err != nil {
		s.logger.Error("listing documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"documents": docs, "count": len(docs)})
}

// handleDocumentText returns a preview of the extracted text: the first and
// last lines with the middle elided.
func (s *Server) handleDocumentText(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	text, err := s.files.ReadText(name, artifact.RawText)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "no extracted text for "+name)
		return
	}
	n := 10
	if v := r.URL.Query().Get("lines"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			n = parsed
		}
	}
	lines := utils.PreviewLines(strings.Split(text, "\n"), n)
	s.respondJSON(w, http.StatusOK, map[string]any{"name": name, "preview": lines})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path, err := s.files.OriginalPath(name)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "no original for "+name)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, path)
}

// handleRemoveDocument removes the document from every write backend and the
// file area, reporting each target's outcome separately. Partial failure is
// a 200 with Success false, not an opaque 500.
func (s *Server) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	org := r.URL.Query().Get("org")
	if org == "" {
		org = s.cfg.Retrieval.DefaultOrg
	}

	resp := models.RemoveResponse{Name: name, Success: true, Targets: make(map[string]string)}
	for _, b := range s.backends {
		if err := b.Store.Remove(r.Context(), name, org); err != nil {
			resp.Success = false
			resp.Targets[b.Name] = err.Error()
			s.logger.Warn("backend removal failed",
				zap.String("document", name),
				zap.String("backend", b.Name),
				zap.Error(err))
		} else {
			resp.Targets[b.Name] = "removed"
		}
	}
	if err := s.files.RemoveAll(name); err != nil {
		resp.Success = false
		resp.Targets["artifacts"] = err.Error()
	} else {
		resp.Targets["artifacts"] = "removed"
	}

	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.respondError(w, http.StatusBadRequest, "question is required")
		return
	}
	s.logger.Debug("ask request", zap.String("question", utils.Truncate(req.Question, 120)))

	resp, err := s.rag.Ask(r.Context(), &req)
	if err != nil {
		if errors.Is(err, rag.ErrEmptyCorpus) {
			s.respondError(w, http.StatusNotFound, "no indexed documents to search")
			return
		}
		if errors.Is(err, retriever.ErrDimensionMismatch) {
			s.respondError(w, http.StatusConflict, "indexed documents were embedded with a different model")
			return
		}
		s.logger.Error("ask failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var docCount, chunkCount int
	if counter, ok := s.read.(store.Counter); ok {
		nd, err := counter.CountDocuments(ctx)
		if err != nil {
			s.logger.Error("status: count documents failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		nc, err := counter.CountChunks(ctx)
		if err != nil {
			s.logger.Error("status: count chunks failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		docCount, chunkCount = int(nd), int(nc)
	} else {
		docs, err := s.read.ListActive(ctx, "")
		if err != nil {
			s.logger.Error("status: list documents failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		docCount = len(docs)
		for _, doc := range docs {
			chunks, _, err := s.read.Get(ctx, doc.Name)
			if err != nil {
				continue
			}
			chunkCount += len(chunks)
		}
	}

	backendNames := make([]string, 0, len(s.backends))
	for _, b := range s.backends {
		backendNames = append(backendNames, b.Name)
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"documents":    docCount,
		"chunks":       chunkCount,
		"read_backend": s.readName,
		"config": map[string]any{
			"backends":             backendNames,
			"embedding_model":      s.cfg.Embedding.Model,
			"embedding_dimensions": s.cfg.Embedding.Dimensions,
			"chunk_size":           s.cfg.Chunking.ChunkSize,
			"chunk_overlap":        s.cfg.Chunking.Overlap,
			"default_top_k":        s.cfg.Retrieval.DefaultTopK,
		},
	})
}

func (s *Server) formInt(r *http.Request, field string, def int) int {
	v := r.FormValue(field)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
