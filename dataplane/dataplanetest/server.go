// Package dataplanetest provides a fake collection endpoint for tests.
//
// The server accepts only requests signed for the aoss service in unsigned
// payload mode and implements index creation and document indexing.
package dataplanetest

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/flashbots/go-utils/httplogger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/atomic"
)

// Server is a fake OpenSearch Serverless collection endpoint.
type Server struct {
	*httptest.Server

	Region  string
	Service string

	CreateIndexCalls   atomic.Int32
	IndexDocumentCalls atomic.Int32
	Rejected           atomic.Int32

	mutex   sync.Mutex
	indexes map[string][]json.RawMessage
}

// NewServer starts a fake endpoint expecting requests signed for region.
func NewServer(log *slog.Logger, region string) *Server {
	s := &Server{
		Region:  region,
		Service: "aoss",
		indexes: make(map[string][]json.RawMessage),
	}

	mux := chi.NewRouter()
	mux.Use(s.requireSignature)
	mux.Put("/{index}", s.handleCreateIndex)
	mux.Post("/{index}/_doc", s.handleIndexDocument)

	s.Server = httptest.NewServer(httplogger.LoggingMiddlewareSlog(log, mux))
	return s
}

// Documents returns the documents stored in index.
func (s *Server) Documents(index string) []json.RawMessage {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]json.RawMessage(nil), s.indexes[index]...)
}

// HasIndex reports whether index was created.
func (s *Server) HasIndex(index string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, ok := s.indexes[index]
	return ok
}

func (s *Server) requireSignature(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		scope := fmt.Sprintf("/%s/%s/aws4_request", s.Region, s.Service)

		switch {
		case !strings.HasPrefix(auth, "AWS4-HMAC-SHA256 "):
			s.reject(w, "missing SigV4 authorization")
			return
		case !strings.Contains(auth, scope):
			s.reject(w, "credential scope does not match "+scope)
			return
		case r.Header.Get("X-Amz-Content-Sha256") != "UNSIGNED-PAYLOAD":
			s.reject(w, "payload must be unsigned")
			return
		case signsContentLength(auth):
			s.reject(w, "content-length must not be signed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// signsContentLength reports whether content-length is listed in the
// SignedHeaders component of a SigV4 Authorization header.
func signsContentLength(auth string) bool {
	_, rest, ok := strings.Cut(auth, "SignedHeaders=")
	if !ok {
		return false
	}
	signed, _, _ := strings.Cut(rest, ",")
	for _, h := range strings.Split(signed, ";") {
		if strings.EqualFold(strings.TrimSpace(h), "content-length") {
			return true
		}
	}
	return false
}

func (s *Server) reject(w http.ResponseWriter, message string) {
	s.Rejected.Inc()
	writeJSON(w, http.StatusForbidden, map[string]any{"message": message})
}

func (s *Server) handleCreateIndex(w http.ResponseWriter, r *http.Request) {
	s.CreateIndexCalls.Inc()
	index := chi.URLParam(r, "index")

	s.mutex.Lock()
	_, exists := s.indexes[index]
	if !exists {
		s.indexes[index] = nil
	}
	s.mutex.Unlock()

	if exists {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{
				"type":   "resource_already_exists_exception",
				"reason": fmt.Sprintf("index [%s] already exists", index),
			},
			"status": http.StatusBadRequest,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"acknowledged":        true,
		"shards_acknowledged": true,
		"index":               index,
	})
}

func (s *Server) handleIndexDocument(w http.ResponseWriter, r *http.Request) {
	s.IndexDocumentCalls.Inc()
	index := chi.URLParam(r, "index")

	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  map[string]any{"type": "mapper_parsing_exception", "reason": "failed to parse"},
			"status": http.StatusBadRequest,
		})
		return
	}

	s.mutex.Lock()
	s.indexes[index] = append(s.indexes[index], json.RawMessage(body))
	seq := len(s.indexes[index])
	s.mutex.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"_index":   index,
		"_id":      fmt.Sprintf("doc-%d", seq),
		"_version": 1,
		"result":   "created",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
