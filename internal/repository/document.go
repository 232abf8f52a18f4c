package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/docvault/docvault/internal/model"
)

// ErrDocumentNotFound is returned when a document id does not exist in the
// named collection.
var ErrDocumentNotFound = errors.New("document not found")

// All documents live in one table keyed by (collection, id); the collection
// name is a runtime string, never a schema. Client fields are a single jsonb
// column, which is what makes arbitrary per-collection shapes possible.

// InsertDocument stores a new document in its named collection.
func (r *Repository) InsertDocument(ctx context.Context, doc *model.Document) error {
	data, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode document fields: %w", err)
	}

	query := `
		INSERT INTO documents (id, collection, owner_id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`

	_, err = r.pool.Exec(ctx, query,
		doc.ID,
		doc.Collection,
		doc.OwnerID,
		data,
		doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	return nil
}

// ListDocuments returns every document in the collection owned by ownerID,
// in insertion order.
func (r *Repository) ListDocuments(ctx context.Context, collection, ownerID string) ([]*model.Document, error) {
	query := `
		SELECT id, collection, owner_id, data, created_at, updated_at
		FROM documents
		WHERE collection = $1 AND owner_id = $2
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, collection, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*model.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return docs, nil
}

// GetDocument fetches a document by id from the named collection.
func (r *Repository) GetDocument(ctx context.Context, collection, id string) (*model.Document, error) {
	query := `
		SELECT id, collection, owner_id, data, created_at, updated_at
		FROM documents
		WHERE collection = $1 AND id = $2
	`

	row := r.pool.QueryRow(ctx, query, collection, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	return doc, nil
}

// UpdateDocument merges fields into the stored document: supplied fields
// overwrite, others are retained (jsonb || semantics). Returns the number of
// modified rows.
func (r *Repository) UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) (int64, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("failed to encode document fields: %w", err)
	}

	query := `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2
	`

	tag, err := r.pool.Exec(ctx, query, collection, id, data)
	if err != nil {
		return 0, fmt.Errorf("failed to update document: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteDocument removes a document by id from the named collection.
// Returns the number of deleted rows.
func (r *Repository) DeleteDocument(ctx context.Context, collection, id string) (int64, error) {
	query := `
		DELETE FROM documents
		WHERE collection = $1 AND id = $2
	`

	tag, err := r.pool.Exec(ctx, query, collection, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete document: %w", err)
	}

	return tag.RowsAffected(), nil
}

// scanDocument reads one documents row, decoding the jsonb payload.
func scanDocument(row pgx.Row) (*model.Document, error) {
	var doc model.Document
	var data []byte

	if err := row.Scan(
		&doc.ID,
		&doc.Collection,
		&doc.OwnerID,
		&data,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	if err := json.Unmarshal(data, &doc.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode document fields: %w", err)
	}

	return &doc, nil
}
