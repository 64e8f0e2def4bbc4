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

	"github.com/wolfman30/leadcapture/internal/leads"
)

type mockS3Client struct {
	objects map[string][]byte
	putErr  error
	getErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	body, _ := io.ReadAll(input.Body)
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
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func testLead(id string, created time.Time) *leads.Lead {
	return &leads.Lead{
		ID: id,
		CreateLeadRequest: leads.CreateLeadRequest{
			Name:        "Carlos Pereira",
			Email:       "Carlos@Example.com",
			Phone:       "21987654321",
			Position:    "CTO",
			BirthDate:   "1980-01-01",
			Message:     "Preciso de ajuda com dados",
			UTMSource:   "google",
			UTMCampaign: "verao",
		},
		CreatedAt: created,
	}
}

func TestArchiveWritesSnapshotAndManifest(t *testing.T) {
	mock := newMockS3()
	a := NewLeadArchiver(mock, "leads-bucket", nil)
	created := time.Date(2025, 3, 7, 23, 30, 0, 0, time.FixedZone("BRT", -3*60*60))

	require.NoError(t, a.Archive(context.Background(), testLead("lead-1", created)))
	require.NoError(t, a.Archive(context.Background(), testLead("lead-2", created)))

	snapshot, ok := mock.objects["leads/2025/03/08/lead-1.json"]
	require.True(t, ok, "keys: %v", mock.objects)
	var stored leads.Lead
	require.NoError(t, json.Unmarshal(snapshot, &stored))
	assert.Equal(t, "Carlos Pereira", stored.Name)

	manifest := string(mock.objects["leads/manifests/2025-03.jsonl"])
	lines := strings.Split(strings.TrimSpace(manifest), "\n")
	require.Len(t, lines, 2)
	var entry ManifestEntry
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "lead-2", entry.LeadID)
	assert.Equal(t, HashContact("carlos@example.com"), entry.EmailHash)
	assert.Equal(t, "verao", entry.UTMCampaign)
	assert.NotContains(t, manifest, "Carlos@Example.com")
}

func TestArchiveDisabled(t *testing.T) {
	mock := newMockS3()
	require.NoError(t, NewLeadArchiver(mock, "", nil).Archive(context.Background(), testLead("x", time.Now())))
	assert.Empty(t, mock.objects)
	assert.False(t, (*LeadArchiver)(nil).Enabled())
}

func TestArchivePutFailure(t *testing.T) {
	mock := newMockS3()
	mock.putErr = errors.New("access denied")
	err := NewLeadArchiver(mock, "b", nil).Archive(context.Background(), testLead("x", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archive: s3 put leads/")
}

func TestAppendManifestKeepsExistingOnReadError(t *testing.T) {
	mock := newMockS3()
	mock.objects["leads/manifests/2025-03.jsonl"] = []byte(`{"lead_id":"old"}`)
	mock.getErr = errors.New("throttled")

	a := NewLeadArchiver(mock, "b", nil)
	err := a.AppendManifest(context.Background(), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), ManifestEntry{LeadID: "new"})
	require.Error(t, err)
	assert.Equal(t, `{"lead_id":"old"}`, string(mock.objects["leads/manifests/2025-03.jsonl"]))
}

func TestHashContact(t *testing.T) {
	assert.Equal(t, HashContact(" Ana@Example.com "), HashContact("ana@example.com"))
	assert.Len(t, HashContact("ana@example.com"), 64)
	assert.Empty(t, HashContact("  "))
}
