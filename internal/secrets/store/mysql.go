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

// MySQLStore is the MySQL counterpart of PostgreSQLStore. Version ids are stored as BINARY(16).
type MySQLStore struct {
	db        *sql.DB
	txManager database.TxManager
}

// NewMySQLStore creates a new MySQL store instance.
func NewMySQLStore(db *sql.DB, txManager database.TxManager) *MySQLStore {
	return &MySQLStore{db: db, txManager: txManager}
}

// Get retrieves the current document version for id.
func (m *MySQLStore) Get(ctx context.Context, id string) (*domain.StoredDocument, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT d.id, d.document, d.created_at
			  FROM secret_heads h
			  JOIN secret_documents d ON d.id = h.document_id
			  WHERE h.secret_id = ?`

	var versionBytes []byte
	var doc domain.StoredDocument
	err := querier.QueryRowContext(ctx, query, id).Scan(&versionBytes, &doc.Raw, &doc.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get secret document")
	}

	versionID, err := uuid.FromBytes(versionBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal version id")
	}

	doc.VersionID = versionID.String()
	return &doc, nil
}

// Put inserts a new version and moves the head to it in one transaction.
func (m *MySQLStore) Put(ctx context.Context, id, raw string) (*domain.StoredDocument, error) {
	versionID, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate version id")
	}
	versionBytes, err := versionID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal version id")
	}
	createdAt := time.Now().UTC()

	err = m.txManager.WithTx(ctx, func(ctx context.Context) error {
		querier := database.GetTx(ctx, m.db)

		insert := `INSERT INTO secret_documents (id, secret_id, document, created_at)
				   VALUES (?, ?, ?, ?)`
		if _, err := querier.ExecContext(ctx, insert, versionBytes, id, raw, createdAt); err != nil {
			return apperrors.Wrap(err, "failed to create secret document")
		}

		upsert := `INSERT INTO secret_heads (secret_id, document_id, updated_at)
				   VALUES (?, ?, ?)
				   ON DUPLICATE KEY UPDATE document_id = VALUES(document_id), updated_at = VALUES(updated_at)`
		if _, err := querier.ExecContext(ctx, upsert, id, versionBytes, createdAt); err != nil {
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
func (m *MySQLStore) SetDescription(ctx context.Context, id, description string) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO secret_descriptions (secret_id, description, updated_at)
			  VALUES (?, ?, ?)
			  ON DUPLICATE KEY UPDATE description = VALUES(description), updated_at = VALUES(updated_at)`

	if _, err := querier.ExecContext(ctx, query, id, description, time.Now().UTC()); err != nil {
		return apperrors.Wrap(err, "failed to set secret description")
	}
	return nil
}
