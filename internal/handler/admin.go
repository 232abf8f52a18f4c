package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// CollectionResetter empties named collections.
type CollectionResetter interface {
	ResetCollections(ctx context.Context, names []string) error
}

// AdminHandler serves the dev-only maintenance routes.
type AdminHandler struct {
	store  CollectionResetter
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(store CollectionResetter, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		store:  store,
		logger: logger,
	}
}

// Reset handles POST /api/v1/dev/reset. The body is a JSON array of
// collection names; each named collection is emptied. Meant for test
// environments only and gated behind DEV_ROUTES_ENABLED.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var names []string
	if err := json.NewDecoder(r.Body).Decode(&names); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.store.ResetCollections(r.Context(), names); err != nil {
		h.logger.Error("reset failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("collections_reset", "collections", names)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
