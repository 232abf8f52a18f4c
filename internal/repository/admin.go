package repository

import (
	"context"
	"fmt"
)

// accountsCollection is the reserved collection name that maps to the
// accounts table rather than rows in documents.
const accountsCollection = "accounts"

// ResetCollections empties each named collection. The special name
// "accounts" wipes the accounts table; any other name removes that
// collection's rows from the documents table. Intended for test
// environments only.
func (r *Repository) ResetCollections(ctx context.Context, names []string) error {
	var docCollections []string
	wipeAccounts := false

	for _, name := range names {
		if name == accountsCollection {
			wipeAccounts = true
			continue
		}
		docCollections = append(docCollections, name)
	}

	if wipeAccounts {
		if _, err := r.pool.Exec(ctx, `DELETE FROM accounts`); err != nil {
			return fmt.Errorf("failed to reset accounts: %w", err)
		}
	}

	if len(docCollections) > 0 {
		query := `DELETE FROM documents WHERE collection = ANY($1)`
		if _, err := r.pool.Exec(ctx, query, docCollections); err != nil {
			return fmt.Errorf("failed to reset collections: %w", err)
		}
	}

	return nil
}
