package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	apperrors "github.com/allisson/blueprint-secrets/internal/errors"
	"github.com/allisson/blueprint-secrets/internal/secrets/domain"

	// Register the bucket drivers selectable through BLOB_BUCKET_URL
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// blobEnvelope is the object written for every put. The version travels with the
// document so a reader never pairs a payload with another write's metadata.
type blobEnvelope struct {
	VersionID string    `json:"version_id"`
	CreatedAt time.Time `json:"created_at"`
	Document  string    `json:"document"`
}

// OpenBucket opens the bucket addressed by bucketURL.
// Supports: mem://, file://, s3://, gs://, azblob://
func OpenBucket(ctx context.Context, bucketURL string) (*blob.Bucket, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket: %w", err)
	}
	return bucket, nil
}

// BlobStore keeps the document as the object "<id>.json" in a bucket, and its
// description as the sidecar object "<id>.description".
type BlobStore struct {
	bucket *blob.Bucket
}

// NewBlobStore creates a store on top of bucket.
func NewBlobStore(bucket *blob.Bucket) *BlobStore {
	return &BlobStore{bucket: bucket}
}

// Get reads the current document object.
func (b *BlobStore) Get(ctx context.Context, id string) (*domain.StoredDocument, error) {
	data, err := b.bucket.ReadAll(ctx, documentKey(id))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}

	var envelope blobEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, apperrors.Wrap(domain.ErrMalformedDocument, err.Error())
	}

	return &domain.StoredDocument{
		Raw:       envelope.Document,
		VersionID: envelope.VersionID,
		CreatedAt: envelope.CreatedAt,
	}, nil
}

// Put overwrites the document object with a new version of raw.
func (b *BlobStore) Put(ctx context.Context, id, raw string) (*domain.StoredDocument, error) {
	version, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate version id")
	}

	envelope := blobEnvelope{
		VersionID: version.String(),
		CreatedAt: time.Now().UTC(),
		Document:  raw,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode document object")
	}

	if err := b.bucket.WriteAll(ctx, documentKey(id), data, &blob.WriterOptions{
		ContentType: documentContentType,
		Metadata:    map[string]string{"version": envelope.VersionID},
	}); err != nil {
		return nil, err
	}

	return &domain.StoredDocument{
		Raw:       raw,
		VersionID: envelope.VersionID,
		CreatedAt: envelope.CreatedAt,
	}, nil
}

// SetDescription writes the description sidecar object.
func (b *BlobStore) SetDescription(ctx context.Context, id, description string) error {
	return b.bucket.WriteAll(ctx, descriptionKey(id), []byte(description), &blob.WriterOptions{
		ContentType: "text/plain; charset=utf-8",
	})
}

// Close releases the bucket.
func (b *BlobStore) Close() error {
	return b.bucket.Close()
}

func documentKey(id string) string {
	return id + ".json"
}

func descriptionKey(id string) string {
	return id + ".description"
}
