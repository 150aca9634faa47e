package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/agrodex/searchd/internal/core"
	"github.com/agrodex/searchd/internal/indexer"
	"github.com/agrodex/searchd/internal/search"
)

type handlers struct {
	engine  *search.Engine
	indexer *indexer.Indexer
	logger  *slog.Logger
}

// searchRequest is the JSON body of POST /api/v1/search. The run flags are
// decided by the caller; both default to true when the body omits them.
type searchRequest struct {
	Query      string `json:"query"`
	Corpus     string `json:"corpus"`
	RunLexical *bool  `json:"run_lexical"`
	RunVector  *bool  `json:"run_vector"`
	Limit      int    `json:"limit"`
	Enhanced   *bool  `json:"enhanced"`
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	corpus := core.Corpus(req.Corpus)
	if req.Corpus == "" {
		corpus = core.CorpusProducts
	}
	if !corpus.Valid() {
		writeError(w, http.StatusBadRequest, "unknown corpus")
		return
	}

	runLexical := req.RunLexical == nil || *req.RunLexical
	runVector := req.RunVector == nil || *req.RunVector
	if !runLexical && !runVector {
		writeError(w, http.StatusBadRequest, "at least one of run_lexical and run_vector must be enabled")
		return
	}

	resp, err := h.engine.Search(r.Context(), search.Request{
		Query:      req.Query,
		Corpus:     corpus,
		RunLexical: runLexical,
		RunVector:  runVector,
		Limit:      req.Limit,
		Enhanced:   req.Enhanced,
	})
	if err != nil {
		h.logger.Error("search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) reindex(w http.ResponseWriter, r *http.Request) {
	corpus := core.Corpus(chi.URLParam(r, "corpus"))
	if !corpus.Valid() {
		writeError(w, http.StatusBadRequest, "unknown corpus")
		return
	}

	result, err := h.indexer.Reindex(r.Context(), corpus)
	if err != nil {
		h.logger.Error("reindex failed", "corpus", corpus, "error", err)
		writeError(w, http.StatusInternalServerError, "reindex failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Describe())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
