package middleware

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
)

// MaxCollectionNameLength is the maximum length for a collection name.
const MaxCollectionNameLength = 64

// Validation errors.
var (
	ErrCollectionNameEmpty    = errors.New("collection name is empty")
	ErrCollectionNameTooLong  = errors.New("collection name exceeds maximum length")
	ErrCollectionNameInvalid  = errors.New("collection name contains invalid characters")
	ErrCollectionNameReserved = errors.New("collection name is reserved")
)

// ReservedCollections contains collection names that cannot be addressed
// through the generic routes. "accounts" is reachable only via register and
// login; the rest keep the generic routes from shadowing system paths.
var ReservedCollections = map[string]bool{
	"accounts": true,
	"register": true,
	"login":    true,
	"dev":      true,
	"healthz":  true,
	"readyz":   true,
}

// validCollectionPattern matches valid collection name characters.
// Allowed: a-z, A-Z, 0-9, hyphen, underscore
var validCollectionPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateCollectionName validates a collection name from the URL.
func ValidateCollectionName(name string) error {
	if name == "" {
		return ErrCollectionNameEmpty
	}
	if len(name) > MaxCollectionNameLength {
		return ErrCollectionNameTooLong
	}
	if !validCollectionPattern.MatchString(name) {
		return ErrCollectionNameInvalid
	}
	if ReservedCollections[name] {
		return ErrCollectionNameReserved
	}
	return nil
}

// ValidateCollection is a route middleware that rejects requests whose
// {collection} URL parameter fails validation.
func ValidateCollection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := ValidateCollectionName(chi.URLParam(r, "collection")); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":"INVALID_COLLECTION","message":"` + err.Error() + `"}}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
