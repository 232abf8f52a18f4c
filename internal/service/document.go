package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/docvault/docvault/internal/model"
	"github.com/docvault/docvault/internal/repository"
)

// Document operation errors.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrNotOwner         = errors.New("document belongs to a different account")
)

// DocumentStore is the generic collection store. The collection name is a
// runtime string key; no per-collection schema exists.
type DocumentStore interface {
	InsertDocument(ctx context.Context, doc *model.Document) error
	ListDocuments(ctx context.Context, collection, ownerID string) ([]*model.Document, error)
	GetDocument(ctx context.Context, collection, id string) (*model.Document, error)
	UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) (int64, error)
	DeleteDocument(ctx context.Context, collection, id string) (int64, error)
}

// DocumentService implements ownership-scoped CRUD over named collections.
// Every read, update, and delete verifies that the caller owns the document
// before touching it.
type DocumentService struct {
	store DocumentStore
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(store DocumentStore) *DocumentService {
	return &DocumentService{store: store}
}

// InsertResult is the outcome of a document creation.
type InsertResult struct {
	InsertedID string `json:"insertedId"`
}

// UpdateResult is the outcome of a document update.
type UpdateResult struct {
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult is the outcome of a document deletion.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// Create inserts a new document into the named collection, owned by the
// caller. Client-supplied id and ownerId fields are discarded; the owner is
// always the authenticated identity.
func (s *DocumentService) Create(ctx context.Context, collection string, identity model.Identity, fields map[string]any) (*InsertResult, error) {
	doc := &model.Document{
		ID:         ulid.Make().String(),
		Collection: collection,
		OwnerID:    identity.AccountID,
		Fields:     stripReserved(fields),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.InsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	return &InsertResult{InsertedID: doc.ID}, nil
}

// List returns every document in the collection owned by the caller, in the
// store's insertion order.
func (s *DocumentService) List(ctx context.Context, collection string, identity model.Identity) ([]map[string]any, error) {
	docs, err := s.store.ListDocuments(ctx, collection, identity.AccountID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	views := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		views = append(views, doc.View())
	}
	return views, nil
}

// Get fetches a single owned document by id.
func (s *DocumentService) Get(ctx context.Context, collection, id string, identity model.Identity) (map[string]any, error) {
	doc, err := s.fetchOwned(ctx, collection, id, identity)
	if err != nil {
		return nil, err
	}
	return doc.View(), nil
}

// Update merges the supplied fields into an owned document: supplied fields
// overwrite, others are retained, and ownerId is never touched.
func (s *DocumentService) Update(ctx context.Context, collection, id string, identity model.Identity, fields map[string]any) (*UpdateResult, error) {
	if _, err := s.fetchOwned(ctx, collection, id, identity); err != nil {
		return nil, err
	}

	modified, err := s.store.UpdateDocument(ctx, collection, id, stripReserved(fields))
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}

	return &UpdateResult{ModifiedCount: modified}, nil
}

// Delete removes an owned document by id.
func (s *DocumentService) Delete(ctx context.Context, collection, id string, identity model.Identity) (*DeleteResult, error) {
	if _, err := s.fetchOwned(ctx, collection, id, identity); err != nil {
		return nil, err
	}

	deleted, err := s.store.DeleteDocument(ctx, collection, id)
	if err != nil {
		return nil, fmt.Errorf("delete document: %w", err)
	}

	return &DeleteResult{DeletedCount: deleted}, nil
}

// fetchOwned loads a document and enforces the ownership invariant. A
// missing document is reported as not-found before its owner is ever read.
func (s *DocumentService) fetchOwned(ctx context.Context, collection, id string, identity model.Identity) (*model.Document, error) {
	doc, err := s.store.GetDocument(ctx, collection, id)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	if doc.OwnerID != identity.AccountID {
		return nil, ErrNotOwner
	}

	return doc, nil
}

// stripReserved drops the server-managed id and ownerId fields from a
// client payload.
func stripReserved(fields map[string]any) map[string]any {
	clean := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == model.FieldID || k == model.FieldOwnerID {
			continue
		}
		clean[k] = v
	}
	return clean
}
