package service

import (
	"context"
	"errors"
	"testing"

	"github.com/docvault/docvault/internal/model"
	"github.com/docvault/docvault/internal/repository"
)

// fakeDocumentStore is an in-memory DocumentStore preserving insertion order.
type fakeDocumentStore struct {
	docs  map[string]map[string]*model.Document // collection -> id -> doc
	order map[string][]string
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{
		docs:  make(map[string]map[string]*model.Document),
		order: make(map[string][]string),
	}
}

func (f *fakeDocumentStore) InsertDocument(_ context.Context, doc *model.Document) error {
	if f.docs[doc.Collection] == nil {
		f.docs[doc.Collection] = make(map[string]*model.Document)
	}
	copied := *doc
	f.docs[doc.Collection][doc.ID] = &copied
	f.order[doc.Collection] = append(f.order[doc.Collection], doc.ID)
	return nil
}

func (f *fakeDocumentStore) ListDocuments(_ context.Context, collection, ownerID string) ([]*model.Document, error) {
	var out []*model.Document
	for _, id := range f.order[collection] {
		doc := f.docs[collection][id]
		if doc != nil && doc.OwnerID == ownerID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeDocumentStore) GetDocument(_ context.Context, collection, id string) (*model.Document, error) {
	doc, ok := f.docs[collection][id]
	if !ok {
		return nil, repository.ErrDocumentNotFound
	}
	return doc, nil
}

func (f *fakeDocumentStore) UpdateDocument(_ context.Context, collection, id string, fields map[string]any) (int64, error) {
	doc, ok := f.docs[collection][id]
	if !ok {
		return 0, nil
	}
	if doc.Fields == nil {
		doc.Fields = make(map[string]any)
	}
	for k, v := range fields {
		doc.Fields[k] = v
	}
	return 1, nil
}

func (f *fakeDocumentStore) DeleteDocument(_ context.Context, collection, id string) (int64, error) {
	if _, ok := f.docs[collection][id]; !ok {
		return 0, nil
	}
	delete(f.docs[collection], id)
	for i, existing := range f.order[collection] {
		if existing == id {
			f.order[collection] = append(f.order[collection][:i], f.order[collection][i+1:]...)
			break
		}
	}
	return 1, nil
}

var (
	alice = model.Identity{AccountID: "acct-alice", Username: "alice"}
	bob   = model.Identity{AccountID: "acct-bob", Username: "bob"}
)

func TestCreate_AssignsOwnerAndStripsReservedFields(t *testing.T) {
	t.Parallel()

	store := newFakeDocumentStore()
	svc := NewDocumentService(store)

	result, err := svc.Create(context.Background(), "posts", alice, map[string]any{
		"title":   "t",
		"id":      "client-id",
		"ownerId": bob.AccountID,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if result.InsertedID == "client-id" {
		t.Error("client-supplied id must not be honored")
	}

	doc := store.docs["posts"][result.InsertedID]
	if doc == nil {
		t.Fatal("document not stored")
	}
	if doc.OwnerID != alice.AccountID {
		t.Errorf("owner mismatch: got %q want %q", doc.OwnerID, alice.AccountID)
	}
	if _, ok := doc.Fields["ownerId"]; ok {
		t.Error("client-supplied ownerId must be stripped from fields")
	}
	if _, ok := doc.Fields["id"]; ok {
		t.Error("client-supplied id must be stripped from fields")
	}
}

func TestCreateThenList_ContainsDocumentOnce(t *testing.T) {
	t.Parallel()

	svc := NewDocumentService(newFakeDocumentStore())
	ctx := context.Background()

	result, err := svc.Create(ctx, "posts", alice, map[string]any{"title": "t"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	views, err := svc.List(ctx, "posts", alice)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 document, got %d", len(views))
	}
	if views[0]["id"] != result.InsertedID {
		t.Errorf("listed id mismatch: got %v want %v", views[0]["id"], result.InsertedID)
	}
}

func TestList_OnlyOwnedDocuments(t *testing.T) {
	t.Parallel()

	svc := NewDocumentService(newFakeDocumentStore())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "posts", alice, map[string]any{"title": "a"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Create(ctx, "posts", bob, map[string]any{"title": "b"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	views, err := svc.List(ctx, "posts", alice)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected only alice's document, got %d", len(views))
	}
	if views[0]["title"] != "a" {
		t.Errorf("unexpected document listed: %v", views[0])
	}
}

func TestGet_OwnershipEnforced(t *testing.T) {
	t.Parallel()

	svc := NewDocumentService(newFakeDocumentStore())
	ctx := context.Background()

	result, err := svc.Create(ctx, "posts", alice, map[string]any{"title": "t"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.Get(ctx, "posts", result.InsertedID, alice); err != nil {
		t.Fatalf("owner Get error: %v", err)
	}

	if _, err := svc.Get(ctx, "posts", result.InsertedID, bob); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for foreign Get, got %v", err)
	}
}

func TestGet_MissingDocumentIsNotFound(t *testing.T) {
	t.Parallel()

	svc := NewDocumentService(newFakeDocumentStore())

	_, err := svc.Get(context.Background(), "posts", "no-such-id", alice)
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestUpdate_MergesFields(t *testing.T) {
	t.Parallel()

	svc := NewDocumentService(newFakeDocumentStore())
	ctx := context.Background()

	result, err := svc.Create(ctx, "posts", alice, map[string]any{"title": "x"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	updated, err := svc.Update(ctx, "posts", result.InsertedID, alice, map[string]any{"body": "y"})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.ModifiedCount != 1 {
		t.Errorf("expected modified count 1, got %d", updated.ModifiedCount)
	}

	view, err := svc.Get(ctx, "posts", result.InsertedID, alice)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if view["title"] != "x" {
		t.Errorf("update must retain existing fields, got title=%v", view["title"])
	}
	if view["body"] != "y" {
		t.Errorf("update must apply supplied fields, got body=%v", view["body"])
	}
}

func TestUpdate_NeverTouchesOwner(t *testing.T) {
	t.Parallel()

	store := newFakeDocumentStore()
	svc := NewDocumentService(store)
	ctx := context.Background()

	result, err := svc.Create(ctx, "posts", alice, map[string]any{"title": "t"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.Update(ctx, "posts", result.InsertedID, alice, map[string]any{"ownerId": bob.AccountID}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	doc := store.docs["posts"][result.InsertedID]
	if doc.OwnerID != alice.AccountID {
		t.Errorf("owner changed: got %q", doc.OwnerID)
	}
	if _, ok := doc.Fields["ownerId"]; ok {
		t.Error("ownerId must not land in document fields")
	}
}

func TestUpdateAndDelete_ForeignDocumentDenied(t *testing.T) {
	t.Parallel()

	svc := NewDocumentService(newFakeDocumentStore())
	ctx := context.Background()

	result, err := svc.Create(ctx, "posts", alice, map[string]any{"title": "t"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.Update(ctx, "posts", result.InsertedID, bob, map[string]any{"title": "hacked"}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for foreign Update, got %v", err)
	}
	if _, err := svc.Delete(ctx, "posts", result.InsertedID, bob); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for foreign Delete, got %v", err)
	}

	// The document must still be there for its owner.
	if _, err := svc.Get(ctx, "posts", result.InsertedID, alice); err != nil {
		t.Fatalf("owner Get after denied operations: %v", err)
	}
}

func TestDelete_Owned(t *testing.T) {
	t.Parallel()

	svc := NewDocumentService(newFakeDocumentStore())
	ctx := context.Background()

	result, err := svc.Create(ctx, "posts", alice, map[string]any{"title": "t"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	deleted, err := svc.Delete(ctx, "posts", result.InsertedID, alice)
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if deleted.DeletedCount != 1 {
		t.Errorf("expected deleted count 1, got %d", deleted.DeletedCount)
	}

	if _, err := svc.Get(ctx, "posts", result.InsertedID, alice); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound after delete, got %v", err)
	}
}

func TestCollectionsAreIsolated(t *testing.T) {
	t.Parallel()

	svc := NewDocumentService(newFakeDocumentStore())
	ctx := context.Background()

	result, err := svc.Create(ctx, "posts", alice, map[string]any{"title": "t"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// Same id, different collection name: not found.
	if _, err := svc.Get(ctx, "notes", result.InsertedID, alice); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound across collections, got %v", err)
	}
}
