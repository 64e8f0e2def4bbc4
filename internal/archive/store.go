// Package archive keeps a JSON snapshot of every accepted lead in S3.
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

	"github.com/wolfman30/leadcapture/internal/leads"
	"github.com/wolfman30/leadcapture/pkg/logging"
)

// S3API is the subset of the S3 client used by LeadArchiver.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ManifestEntry is one line of the monthly manifest. Contact data is hashed.
type ManifestEntry struct {
	LeadID      string `json:"lead_id"`
	S3Key       string `json:"s3_key"`
	EmailHash   string `json:"email_hash"`
	PhoneHash   string `json:"phone_hash,omitempty"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// LeadArchiver writes leads to leads/YYYY/MM/DD/<id>.json and lists them in
// leads/manifests/YYYY-MM.jsonl.
type LeadArchiver struct {
	bucket string
	client S3API
	logger *logging.Logger
	now    func() time.Time
}

// NewLeadArchiver creates an archiver. With an empty bucket every call is a
// no-op.
func NewLeadArchiver(client S3API, bucket string, logger *logging.Logger) *LeadArchiver {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadArchiver{bucket: bucket, client: client, logger: logger, now: time.Now}
}

// Enabled reports whether a bucket and client are configured.
func (a *LeadArchiver) Enabled() bool {
	return a != nil && a.bucket != "" && a.client != nil
}

// Key returns the object key for a lead created at t.
func Key(leadID string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("leads/%d/%02d/%02d/%s.json", t.Year(), t.Month(), t.Day(), leadID)
}

func manifestKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("leads/manifests/%d-%02d.jsonl", t.Year(), t.Month())
}

// Archive stores lead. A manifest failure is logged only; the snapshot is
// already written by then.
func (a *LeadArchiver) Archive(ctx context.Context, lead *leads.Lead) error {
	if !a.Enabled() || lead == nil {
		return nil
	}
	data, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("archive: marshal lead: %w", err)
	}

	created := lead.CreatedAt
	if created.IsZero() {
		created = a.now()
	}
	key := Key(lead.ID, created)
	if err := a.put(ctx, key, data, "application/json"); err != nil {
		return err
	}
	a.logger.Info("lead archived", "lead_id", lead.ID, "s3_key", key)

	entry := ManifestEntry{
		LeadID:      lead.ID,
		S3Key:       key,
		EmailHash:   HashContact(lead.Email),
		PhoneHash:   HashContact(lead.Phone),
		UTMSource:   lead.UTMSource,
		UTMCampaign: lead.UTMCampaign,
		CreatedAt:   created.UTC().Format(time.RFC3339),
	}
	if err := a.AppendManifest(ctx, created, entry); err != nil {
		a.logger.Warn("archive: manifest append failed", "lead_id", lead.ID, "error", err)
	}
	return nil
}

// AppendManifest adds entry to the manifest of the month of t. S3 has no
// append, so the object is read and rewritten.
func (a *LeadArchiver) AppendManifest(ctx context.Context, t time.Time, entry ManifestEntry) error {
	if !a.Enabled() {
		return nil
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("archive: marshal manifest entry: %w", err)
	}
	key := manifestKey(t)

	var buf bytes.Buffer
	resp, err := a.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(a.bucket), Key: aws.String(key)})
	switch {
	case err == nil:
		_, readErr := io.Copy(&buf, resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("archive: read manifest %s: %w", key, readErr)
		}
		if b := buf.Bytes(); len(b) > 0 && b[len(b)-1] != '\n' {
			buf.WriteByte('\n')
		}
	case isNoSuchKey(err):
	default:
		return fmt.Errorf("archive: get manifest %s: %w", key, err)
	}
	buf.Write(line)
	buf.WriteByte('\n')

	return a.put(ctx, key, buf.Bytes(), "application/x-ndjson")
}

func (a *LeadArchiver) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put %s: %w", key, err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	var nsk *s3types.NoSuchKey
	return errors.As(err, &nsk)
}

var _ leads.Archiver = (*LeadArchiver)(nil)
