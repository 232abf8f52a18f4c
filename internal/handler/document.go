package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docvault/docvault/internal/auth"
	"github.com/docvault/docvault/internal/model"
	"github.com/docvault/docvault/internal/service"
)

// DocumentOperator is the ownership-scoped collection CRUD consumed by the
// HTTP layer.
type DocumentOperator interface {
	Create(ctx context.Context, collection string, identity model.Identity, fields map[string]any) (*service.InsertResult, error)
	List(ctx context.Context, collection string, identity model.Identity) ([]map[string]any, error)
	Get(ctx context.Context, collection, id string, identity model.Identity) (map[string]any, error)
	Update(ctx context.Context, collection, id string, identity model.Identity, fields map[string]any) (*service.UpdateResult, error)
	Delete(ctx context.Context, collection, id string, identity model.Identity) (*service.DeleteResult, error)
}

// DocumentHandler handles the generic collection routes. The collection name
// comes from the URL; the owner is always the identity the gate attached.
type DocumentHandler struct {
	svc    DocumentOperator
	logger *slog.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(svc DocumentOperator, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/{collection}.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	identity := auth.MustIdentityFromContext(r.Context())

	fields, err := decodeFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	result, err := h.svc.Create(r.Context(), collection, identity, fields)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("document_created",
		"collection", collection,
		"document_id", result.InsertedID,
		"account_id", identity.AccountID,
	)

	writeResult(w, result)
}

// List handles GET /api/v1/{collection}.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	identity := auth.MustIdentityFromContext(r.Context())

	views, err := h.svc.List(r.Context(), collection, identity)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeResult(w, views)
}

// Get handles GET /api/v1/{collection}/{id}.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")
	identity := auth.MustIdentityFromContext(r.Context())

	view, err := h.svc.Get(r.Context(), collection, id, identity)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeResult(w, view)
}

// Update handles PUT /api/v1/{collection}/{id}.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")
	identity := auth.MustIdentityFromContext(r.Context())

	fields, err := decodeFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	result, err := h.svc.Update(r.Context(), collection, id, identity, fields)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("document_updated",
		"collection", collection,
		"document_id", id,
		"account_id", identity.AccountID,
	)

	writeResult(w, result)
}

// Delete handles DELETE /api/v1/{collection}/{id}.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")
	identity := auth.MustIdentityFromContext(r.Context())

	result, err := h.svc.Delete(r.Context(), collection, id, identity)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("document_deleted",
		"collection", collection,
		"document_id", id,
		"account_id", identity.AccountID,
	)

	writeResult(w, result)
}

// handleServiceError maps document service errors to HTTP responses.
// Missing documents and ownership violations share the 500 status; only the
// body code distinguishes them.
func (h *DocumentHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		writeError(w, http.StatusInternalServerError, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusInternalServerError, "FORBIDDEN", "require authorization")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// decodeFields reads an arbitrary JSON object from the request body.
// An empty body is treated as an empty object.
func decodeFields(r *http.Request) (map[string]any, error) {
	fields := make(map[string]any)
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	return fields, nil
}
