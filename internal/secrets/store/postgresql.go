package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/blueprint-secrets/internal/database"
	apperrors "github.com/allisson/blueprint-secrets/internal/errors"
	"github.com/allisson/blueprint-secrets/internal/secrets/domain"
)

// PostgreSQLStore keeps every document version as a row of secret_documents and
// points secret_heads at the current one.
type PostgreSQLStore struct {
	db        *sql.DB
	txManager database.TxManager
}

// NewPostgreSQLStore creates a new PostgreSQL store instance.
func NewPostgreSQLStore(db *sql.DB, txManager database.TxManager) *PostgreSQLStore {
	return &PostgreSQLStore{db: db, txManager: txManager}
}

// Get retrieves the current document version for id.
func (p *PostgreSQLStore) Get(ctx context.Context, id string) (*domain.StoredDocument, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT d.id, d.document, d.created_at
			  FROM secret_heads h
			  JOIN secret_documents d ON d.id = h.document_id
			  WHERE h.secret_id = $1`

	var versionID uuid.UUID
	var doc domain.StoredDocument
	err := querier.QueryRowContext(ctx, query, id).Scan(&versionID, &doc.Raw, &doc.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get secret document")
	}

	doc.VersionID = versionID.String()
	return &doc, nil
}

// Put inserts a new version and moves the head to it in one transaction.
func (p *PostgreSQLStore) Put(ctx context.Context, id, raw string) (*domain.StoredDocument, error) {
	versionID, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate version id")
	}
	createdAt := time.Now().UTC()

	err = p.txManager.WithTx(ctx, func(ctx context.Context) error {
		querier := database.GetTx(ctx, p.db)

		insert := `INSERT INTO secret_documents (id, secret_id, document, created_at)
				   VALUES ($1, $2, $3, $4)`
		if _, err := querier.ExecContext(ctx, insert, versionID, id, raw, createdAt); err != nil {
			return apperrors.Wrap(err, "failed to create secret document")
		}

		upsert := `INSERT INTO secret_heads (secret_id, document_id, updated_at)
				   VALUES ($1, $2, $3)
				   ON CONFLICT (secret_id) DO UPDATE
				   SET document_id = EXCLUDED.document_id, updated_at = EXCLUDED.updated_at`
		if _, err := querier.ExecContext(ctx, upsert, id, versionID, createdAt); err != nil {
			return apperrors.Wrap(err, "failed to update secret head")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &domain.StoredDocument{Raw: raw, VersionID: versionID.String(), CreatedAt: createdAt}, nil
}

// SetDescription upserts the description row for id.
func (p *PostgreSQLStore) SetDescription(ctx context.Context, id, description string) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO secret_descriptions (secret_id, description, updated_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (secret_id) DO UPDATE
			  SET description = EXCLUDED.description, updated_at = EXCLUDED.updated_at`

	if _, err := querier.ExecContext(ctx, query, id, description, time.Now().UTC()); err != nil {
		return apperrors.Wrap(err, "failed to set secret description")
	}
	return nil
}
