// Package archive exports a user's vitals history to S3 so it can be shared with a
// clinician or kept outside the app.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/wolfman30/ems-vitals-platform/pkg/logging"
)

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("archive: export not configured")

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// HistoryExport is the document written for one export.
type HistoryExport struct {
	UserID     string    `json:"user_id"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Records    any       `json:"records"`
}

// ManifestEntry is one JSONL line in the monthly export manifest.
type ManifestEntry struct {
	UserHash   string `json:"user_hash"`
	S3Key      string `json:"s3_key"`
	Count      int    `json:"count"`
	ExportedAt string `json:"exported_at"`
}

// Store writes history exports to S3.
type Store struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
}

// NewStore creates an archive Store. If bucket is empty, exports return ErrDisabled
// without touching S3.
func NewStore(s3Client S3API, bucket string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{bucket: bucket, s3Client: s3Client, logger: logger}
}

// Enabled returns true if export is configured.
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// ExportKey is the object key for a user's export at the given time. The path carries
// the hashed user id so bucket listings never expose raw ids.
func ExportKey(userID string, at time.Time) string {
	return fmt.Sprintf("vitals/v1/users/%s/%s.json", HashUserID(userID), at.UTC().Format("20060102T150405Z"))
}

// ManifestKey is the monthly manifest an export stamped at the given time belongs to.
func ManifestKey(at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("vitals/v1/manifests/%d-%02d.jsonl", at.Year(), at.Month())
}

// ExportHistory writes the export as JSON and returns its object key.
func (s *Store) ExportHistory(ctx context.Context, export HistoryExport) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}
	if export.ExportedAt.IsZero() {
		export.ExportedAt = time.Now().UTC()
	}

	data, err := json.Marshal(export)
	if err != nil {
		return "", fmt.Errorf("archive: marshal export: %w", err)
	}

	key := ExportKey(export.UserID, export.ExportedAt)
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("archive: s3 put %s: %w", key, err)
	}

	s.logger.Info("exported vitals history to S3", "s3_key", key, "count", export.Count)

	entry := ManifestEntry{
		UserHash:   HashUserID(export.UserID),
		S3Key:      key,
		Count:      export.Count,
		ExportedAt: export.ExportedAt.UTC().Format(time.RFC3339),
	}
	if err := s.AppendManifest(ctx, entry); err != nil {
		// The export itself already succeeded.
		s.logger.Warn("failed to append manifest", "error", err, "s3_key", key)
	}

	return key, nil
}

// AppendManifest appends a JSONL line to the manifest for the entry's export month,
// falling back to the current month when ExportedAt is unset. S3 has no append, so
// this is a read-modify-write.
func (s *Store) AppendManifest(ctx context.Context, entry ManifestEntry) error {
	if !s.Enabled() {
		return nil
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("archive: marshal manifest entry: %w", err)
	}

	at := time.Now()
	if entry.ExportedAt != "" {
		parsed, err := time.Parse(time.RFC3339, entry.ExportedAt)
		if err != nil {
			return fmt.Errorf("archive: manifest entry exported_at: %w", err)
		}
		at = parsed
	}
	manifestKey := ManifestKey(at)

	var existing []byte
	getResp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(manifestKey),
	})
	switch {
	case err == nil:
		existing, err = io.ReadAll(getResp.Body)
		getResp.Body.Close()
		if err != nil {
			return fmt.Errorf("archive: read manifest: %w", err)
		}
	case isNotFound(err):
		s.logger.Debug("manifest not found, creating new", "key", manifestKey)
	default:
		return fmt.Errorf("archive: s3 get manifest: %w", err)
	}

	var buf bytes.Buffer
	if len(existing) > 0 {
		buf.Write(existing)
		if existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	buf.Write(line)
	buf.WriteByte('\n')

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(manifestKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put manifest: %w", err)
	}

	return nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *s3types.NotFound
	return errors.As(err, &nf)
}
