package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/docharvest/internal/db"
	"github.com/jonathan/docharvest/internal/export"
	"github.com/jonathan/docharvest/internal/types"
)

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// parseQueryTime parses an RFC 3339 query parameter, returning nil when absent
func parseQueryTime(r *http.Request, key string) (*time.Time, error) {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, valStr)
	if err != nil {
		return nil, &ErrValidation{Field: key, Message: "must be an RFC 3339 timestamp"}
	}
	return &t, nil
}

// parseDocType validates a doc_type value, where empty means no filter
func parseDocType(value string) (types.DocType, error) {
	switch types.DocType(value) {
	case "", types.DocTypeResume, types.DocTypeJobDescription, types.DocTypeUnknown:
		return types.DocType(value), nil
	default:
		return "", &ErrValidation{Field: "doc_type", Message: "unknown document type: " + value}
	}
}

// pathID parses the {id} path segment as a UUID
func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("id"))
}

// tokenRequest is the body of POST /auth/token
type tokenRequest struct {
	Key string `json:"key"`
}

// tokenResponse is the success body of POST /auth/token
type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleIssueToken exchanges a valid operator key for a bearer token
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Key == "" {
		s.errorResponse(w, http.StatusBadRequest, "Operator key is required")
		return
	}

	if !s.auth.VerifyOperatorKey(req.Key) {
		err := &ErrInvalidOperatorKey{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	token, expiresAt, err := s.jwtService.GenerateToken(operatorSubject)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	s.jsonResponse(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: expiresAt})
}

// handleListSources lists all registered sources
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.db.ListSources(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"sources": sources,
		"count":   len(sources),
	})
}

// handleGetSource retrieves a source by ID
func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	sourceID, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid source ID")
		return
	}

	source, err := s.db.GetSource(r.Context(), sourceID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if source == nil {
		s.errorResponse(w, http.StatusNotFound, "Source not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, source)
}

// handleEnableSource reactivates a source and resets its auth failure count
func (s *Server) handleEnableSource(w http.ResponseWriter, r *http.Request) {
	s.setSourceActive(w, r, true)
}

// handleDisableSource deactivates a source without deleting its history
func (s *Server) handleDisableSource(w http.ResponseWriter, r *http.Request) {
	s.setSourceActive(w, r, false)
}

func (s *Server) setSourceActive(w http.ResponseWriter, r *http.Request, active bool) {
	sourceID, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid source ID")
		return
	}

	if err := s.db.SetSourceActive(r.Context(), sourceID, active); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"id":     sourceID,
		"active": active,
	})
}

// handleSourceStats reports per-status raw unit counts for a source
func (s *Server) handleSourceStats(w http.ResponseWriter, r *http.Request) {
	sourceID, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid source ID")
		return
	}

	counts, err := s.db.CountUnitsByStatus(r.Context(), sourceID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"source_id": sourceID,
		"units":     counts,
	})
}

// handleListSourceCursors lists sync cursors for one source
func (s *Server) handleListSourceCursors(w http.ResponseWriter, r *http.Request) {
	sourceID, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid source ID")
		return
	}

	s.listCursors(w, r, &sourceID)
}

// handleListCursors lists sync cursors across all sources
func (s *Server) handleListCursors(w http.ResponseWriter, r *http.Request) {
	s.listCursors(w, r, nil)
}

func (s *Server) listCursors(w http.ResponseWriter, r *http.Request, sourceID *uuid.UUID) {
	status := types.CursorStatus(r.URL.Query().Get("status"))
	switch status {
	case "", types.CursorPending, types.CursorInProgress, types.CursorCompleted, types.CursorFailed, types.CursorStalled:
	default:
		s.errorResponse(w, http.StatusBadRequest, "Unknown cursor status: "+string(status))
		return
	}

	cursors, err := s.db.ListCursors(r.Context(), sourceID, status)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"cursors": cursors,
		"count":   len(cursors),
	})
}

// handleListSyncLogs lists recent sync invocations for a source
func (s *Server) handleListSyncLogs(w http.ResponseWriter, r *http.Request) {
	sourceID, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid source ID")
		return
	}

	limit := parseQueryInt(r, "limit", 20, 100)
	logs, err := s.db.ListSyncLogs(r.Context(), sourceID, limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"sync_logs": logs,
		"count":     len(logs),
	})
}

// handleListDocuments lists catalog documents with optional filters
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	filter, err := s.documentFilter(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	documents, err := s.db.ListDocuments(r.Context(), *filter)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"documents": documents,
		"count":     len(documents),
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})
}

func (s *Server) documentFilter(r *http.Request) (*db.DocumentFilter, error) {
	docType, err := parseDocType(r.URL.Query().Get("type"))
	if err != nil {
		return nil, err
	}
	since, err := parseQueryTime(r, "since")
	if err != nil {
		return nil, err
	}
	until, err := parseQueryTime(r, "until")
	if err != nil {
		return nil, err
	}

	return &db.DocumentFilter{
		DocType: docType,
		Since:   since,
		Until:   until,
		Limit:   parseQueryInt(r, "limit", 50, 500),
		Offset:  parseQueryInt(r, "offset", 0, 0),
	}, nil
}

// handleGetDocument retrieves a document by ID
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid document ID")
		return
	}

	doc, err := s.db.GetDocument(r.Context(), docID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if doc == nil {
		s.errorResponse(w, http.StatusNotFound, "Document not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, doc)
}

// handleGetDocumentByHash retrieves the canonical document for a content hash
func (s *Server) handleGetDocumentByHash(w http.ResponseWriter, r *http.Request) {
	hash := r.URL.Query().Get("hash")
	if hash == "" {
		s.errorResponse(w, http.StatusBadRequest, "Content hash is required")
		return
	}

	doc, err := s.db.GetDocumentByHash(r.Context(), hash)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if doc == nil {
		s.errorResponse(w, http.StatusNotFound, "Document not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, doc)
}

// handleListDocumentEntities lists extracted entities for a document
func (s *Server) handleListDocumentEntities(w http.ResponseWriter, r *http.Request) {
	docID, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid document ID")
		return
	}

	entityType := types.EntityType(r.URL.Query().Get("type"))
	entities, err := s.db.ListEntities(r.Context(), docID, entityType)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"entities": entities,
		"count":    len(entities),
	})
}

// handleListClassifications lists a document's classification history, oldest first
func (s *Server) handleListClassifications(w http.ResponseWriter, r *http.Request) {
	docID, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid document ID")
		return
	}

	classifications, err := s.db.ListClassifications(r.Context(), docID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"classifications": classifications,
		"count":           len(classifications),
	})
}

// handleListDocumentUnits lists the raw units that produced a document
func (s *Server) handleListDocumentUnits(w http.ResponseWriter, r *http.Request) {
	docID, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid document ID")
		return
	}

	units, err := s.db.ListUnitsForDocument(r.Context(), docID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"units": units,
		"count": len(units),
	})
}

// exportRequest is the body of POST /export
type exportRequest struct {
	DocType     string     `json:"doc_type,omitempty"`
	Since       *time.Time `json:"since,omitempty"`
	Until       *time.Time `json:"until,omitempty"`
	NotExported bool       `json:"not_exported,omitempty"`
	Limit       int        `json:"limit,omitempty"`
}

// handleExport creates an export batch and returns it. Selected documents are
// marked exported in the same transaction, so repeating the request with no
// new documents yields an empty batch.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	docType, err := parseDocType(req.DocType)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	batch, err := s.db.CreateExportBatch(r.Context(), types.ExportFilter{
		DocType:     docType,
		Since:       req.Since,
		Until:       req.Until,
		NotExported: req.NotExported,
		Limit:       req.Limit,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	// Serialize validates the batch against the export schema before it
	// reaches the consumer
	data, err := export.Serialize(batch)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Export failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("Error writing export response: %v", err)
	}
}

// handleListExportBatches lists past export batches, newest first
func (s *Server) handleListExportBatches(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 20, 100)

	batches, err := s.db.ListExportBatches(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"batches": batches,
		"count":   len(batches),
	})
}
