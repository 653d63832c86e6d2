package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/ems-vitals-platform/pkg/logging"
)

// mockS3Client records PutObject/GetObject calls for testing.
type mockS3Client struct {
	putCalls []putCall
	objects  map[string][]byte
	getErr   error
}

type putCall struct {
	bucket string
	key    string
	body   []byte
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(input.Body)
	m.putCalls = append(m.putCalls, putCall{
		bucket: *input.Bucket,
		key:    *input.Key,
		body:   body,
	})
	m.objects[*input.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data)),
	}, nil
}

func TestExportKey(t *testing.T) {
	at := time.Date(2026, 4, 2, 9, 30, 5, 0, time.UTC)
	key := ExportKey("user-1", at)
	assert.Equal(t, "vitals/v1/users/"+HashUserID("user-1")+"/20260402T093005Z.json", key)
	assert.NotContains(t, key, "user-1")
}

func TestManifestKeyUsesUTCMonth(t *testing.T) {
	// 23:30 on Jan 31 in New York is already February in UTC.
	ny := time.FixedZone("EST", -5*60*60)
	assert.Equal(t, "vitals/v1/manifests/2026-02.jsonl", ManifestKey(time.Date(2026, 1, 31, 23, 30, 0, 0, ny)))
}

func TestStore_ExportHistory(t *testing.T) {
	mock := newMockS3()
	store := NewStore(mock, "test-bucket", logging.Discard())
	at := time.Date(2026, 4, 2, 9, 30, 5, 0, time.UTC)

	key, err := store.ExportHistory(context.Background(), HistoryExport{
		UserID:     "user-1",
		ExportedAt: at,
		Count:      1,
		Records:    []map[string]int{{"systolic": 120, "diastolic": 78}},
	})
	require.NoError(t, err)
	assert.Equal(t, ExportKey("user-1", at), key)

	// export + manifest
	require.Len(t, mock.putCalls, 2)
	assert.Equal(t, "test-bucket", mock.putCalls[0].bucket)

	var doc HistoryExport
	require.NoError(t, json.Unmarshal(mock.putCalls[0].body, &doc))
	assert.Equal(t, "user-1", doc.UserID)
	assert.Equal(t, 1, doc.Count)

	manifest := mock.putCalls[1]
	assert.Equal(t, "vitals/v1/manifests/2026-04.jsonl", manifest.key)
	var entry ManifestEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(manifest.body), &entry))
	assert.Equal(t, key, entry.S3Key)
	assert.Equal(t, HashUserID("user-1"), entry.UserHash)
}

func TestStore_ManifestFollowsExportMonth(t *testing.T) {
	mock := newMockS3()
	store := NewStore(mock, "test-bucket", logging.Discard())

	_, err := store.ExportHistory(context.Background(), HistoryExport{
		UserID:     "user-1",
		ExportedAt: time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, mock.putCalls, 2)
	assert.Equal(t, "vitals/v1/manifests/2025-12.jsonl", mock.putCalls[1].key)
}

func TestStore_ManifestRejectsBadTimestamp(t *testing.T) {
	mock := newMockS3()
	store := NewStore(mock, "test-bucket", logging.Discard())

	err := store.AppendManifest(context.Background(), ManifestEntry{S3Key: "a", ExportedAt: "yesterday"})
	assert.Error(t, err)
	assert.Empty(t, mock.putCalls)
}

func TestStore_ManifestAppends(t *testing.T) {
	mock := newMockS3()
	store := NewStore(mock, "test-bucket", logging.Discard())
	at := "2026-04-02T09:30:05Z"

	require.NoError(t, store.AppendManifest(context.Background(), ManifestEntry{S3Key: "a", ExportedAt: at}))
	require.NoError(t, store.AppendManifest(context.Background(), ManifestEntry{S3Key: "b", ExportedAt: at}))

	last := mock.putCalls[len(mock.putCalls)-1]
	lines := strings.Split(strings.TrimSpace(string(last.body)), "\n")
	assert.Len(t, lines, 2)
}

func TestStore_ManifestReadFailure(t *testing.T) {
	mock := newMockS3()
	mock.getErr = errors.New("access denied")
	store := NewStore(mock, "test-bucket", logging.Discard())

	err := store.AppendManifest(context.Background(), ManifestEntry{S3Key: "a"})
	assert.Error(t, err)
	assert.Empty(t, mock.putCalls)
}

func TestStore_Disabled(t *testing.T) {
	mock := newMockS3()
	store := NewStore(mock, "", nil)

	assert.False(t, store.Enabled())
	_, err := store.ExportHistory(context.Background(), HistoryExport{UserID: "user-1"})
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Empty(t, mock.putCalls)

	var nilStore *Store
	assert.False(t, nilStore.Enabled())
}
