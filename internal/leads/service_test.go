package leads

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/leadcapture/internal/observability/metrics"
	"github.com/wolfman30/leadcapture/pkg/logging"
)

type recordingHook struct {
	leads []*Lead
	err   error
}

func (h *recordingHook) NotifyNewLead(ctx context.Context, lead *Lead) error {
	h.leads = append(h.leads, lead)
	return h.err
}

func (h *recordingHook) Archive(ctx context.Context, lead *Lead) error {
	h.leads = append(h.leads, lead)
	return h.err
}

func validRequest() *CreateLeadRequest {
	return &CreateLeadRequest{
		Name: "Ana", Email: "ana@example.com", Phone: "11988887777", Position: "CTO",
		BirthDate: "1980-01-01", Message: "Mensagem longa",
	}
}

func TestServiceCreateRunsHooks(t *testing.T) {
	notifier := &recordingHook{}
	archiver := &recordingHook{}
	svc := NewService(NewInMemoryRepository(),
		WithNotifier(notifier),
		WithArchiver(archiver),
		WithMetrics(metrics.NewLeadMetrics(prometheus.NewRegistry()), "memory"),
	)

	lead, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, notifier.leads, 1)
	require.Len(t, archiver.leads, 1)
	assert.Equal(t, lead.ID, notifier.leads[0].ID)

	got, err := svc.Get(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, lead.ID, got.ID)
}

func TestServiceHookFailuresAreLogged(t *testing.T) {
	var buf bytes.Buffer
	hook := &recordingHook{err: errors.New("smtp down")}
	svc := NewService(NewInMemoryRepository(),
		WithNotifier(hook),
		WithArchiver(hook),
		WithLogger(logging.NewWithWriter("info", &buf)),
	)

	lead, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, lead.ID)
	assert.Contains(t, buf.String(), "smtp down")
}

func TestServiceCreateRejectsBlankFields(t *testing.T) {
	hook := &recordingHook{}
	svc := NewService(NewInMemoryRepository(), WithNotifier(hook))
	req := validRequest()
	req.Email = "  "

	_, err := svc.Create(context.Background(), req)
	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "email", fieldErr.Field)
	assert.Empty(t, hook.leads)
}

func TestServiceWrapsStorageErrors(t *testing.T) {
	_, err := NewService(failingRepo{}).Create(context.Background(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leads: create")
}

func TestNewServicePanicsWithoutRepository(t *testing.T) {
	assert.Panics(t, func() { NewService(nil) })
}

func TestServiceCreateLeadPreparesRequest(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	req := *validRequest()
	req.Name = " Ana\t"
	lead, err := svc.CreateLead(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Ana", lead.Name)

	req.BirthDate = "01/01/1980"
	_, err = svc.CreateLead(context.Background(), req)
	var prepErr *PrepareError
	require.True(t, errors.As(err, &prepErr))
	assert.Equal(t, "Data deve estar no formato YYYY-MM-DD", prepErr.Message)
}
