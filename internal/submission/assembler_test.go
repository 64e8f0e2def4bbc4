package submission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/leadcapture/internal/analytics"
	"github.com/wolfman30/leadcapture/internal/attribution"
	"github.com/wolfman30/leadcapture/internal/form"
	"github.com/wolfman30/leadcapture/internal/leadclient"
	"github.com/wolfman30/leadcapture/internal/leads"
)

var fixedNow = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

type recordingCreator struct {
	mu       sync.Mutex
	requests []leads.CreateLeadRequest
	err      error
	block    chan struct{}
}

func (c *recordingCreator) CreateLead(ctx context.Context, req leads.CreateLeadRequest) (*leads.Lead, error) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	return &leads.Lead{ID: "lead-1", CreateLeadRequest: req, CreatedAt: fixedNow}, nil
}

func (c *recordingCreator) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

func validInput() form.Input {
	return form.Input{
		Name:      "  Maria Souza ",
		Email:     " Maria.Souza@Example.COM ",
		Phone:     "(11) 98888-7777",
		Role:      "Gerente de Marketing",
		BirthDate: "1990-05-20",
		Message:   "Gostaria de uma proposta.",
	}
}

func newTestAssembler(creator LeadCreator, sink analytics.Sink) *Assembler {
	return NewAssembler(
		form.NewValidator(form.WithClock(func() time.Time { return fixedNow })),
		creator,
		WithEvents(analytics.NewDispatcher(sink, nil, nil)),
		WithEventIDs(func() string { return "evt-1" }),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestAssembleAttributionOverlay(t *testing.T) {
	current := attribution.Params{"utm_source": "google", "utm_medium": "cpc"}
	persisted := attribution.Params{"utm_source": "newsletter", "gclid": "abc", "utm_medium": ""}

	req := Assemble(validInput(), current, persisted)

	assert.Equal(t, "Maria Souza", req.Name)
	assert.Equal(t, "maria.souza@example.com", req.Email)
	assert.Equal(t, "11988887777", req.Phone)
	assert.Equal(t, "Gerente de Marketing", req.Position)
	assert.Equal(t, "newsletter", req.UTMSource)
	assert.Equal(t, "cpc", req.UTMMedium)
	assert.Equal(t, "abc", req.Gclid)
	assert.Empty(t, req.Fbclid)
}

func TestAssembleWithoutAttribution(t *testing.T) {
	req := Assemble(validInput(), nil, nil)
	assert.Empty(t, req.Attribution())
}

func TestSubmitSendsLeadAndFiresEvent(t *testing.T) {
	creator := &recordingCreator{}
	sink := analytics.NewMemorySink()
	a := newTestAssembler(creator, sink)

	res, err := a.Submit(context.Background(), Submission{
		Input:     validInput(),
		Current:   attribution.Params{"utm_campaign": "inverno"},
		Persisted: attribution.Params{"utm_source": "google"},
		PagePath:  "/contato",
	})
	require.NoError(t, err)
	assert.Equal(t, "lead-1", res.Lead.ID)
	assert.Equal(t, "evt-1", res.EventID)
	require.Equal(t, 1, creator.calls())

	events := sink.Events()
	require.Len(t, events, 1)
	evt := events[0]
	assert.Equal(t, analytics.EventGenerateLead, evt.Name)
	assert.Equal(t, "evt-1", evt.Fields["event_id"])
	assert.Equal(t, "maria.souza@example.com", evt.Fields["lead_email"])
	assert.Equal(t, int64(5511988887777), evt.Fields["lead_phone"])
	assert.Equal(t, "Maria", evt.Fields["lead_first_name"])
	assert.Equal(t, "/contato", evt.Fields["page_path"])
	assert.Equal(t, "inverno", evt.Fields["utm_campaign"])
	assert.Equal(t, "google", evt.Fields["utm_source"])
	assert.Equal(t, "BRL", evt.Fields["lead_currency"])
	assert.Equal(t, "form_home", evt.Fields["lead_source"])
	assert.Equal(t, "contact_home_main", evt.Fields["lead_form_name"])
	assert.NotContains(t, evt.Fields, "lead_message")
	assert.Equal(t, fixedNow, evt.OccurredAt)
}

func TestSubmitInvalidMakesNoRequest(t *testing.T) {
	creator := &recordingCreator{}
	sink := analytics.NewMemorySink()
	in := validInput()
	in.Phone = "(00) 98888-7777"
	in.Message = "curta"

	_, err := newTestAssembler(creator, sink).Submit(context.Background(), Submission{Input: in})

	var verr *form.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "DDD inválido", verr.Errors[form.FieldPhone])
	assert.Equal(t, "Mensagem deve ter pelo menos 10 caracteres", verr.Errors[form.FieldMessage])
	assert.Zero(t, creator.calls())
	assert.Empty(t, sink.Events())
}

func TestSubmitCreatorFailureFiresNothing(t *testing.T) {
	creator := &recordingCreator{err: &leadclient.APIError{Status: 400, Message: "Email inválido"}}
	sink := analytics.NewMemorySink()

	_, err := newTestAssembler(creator, sink).Submit(context.Background(), Submission{Input: validInput()})
	require.Error(t, err)
	assert.Equal(t, "Email inválido", leadclient.UserMessage(err))
	assert.Empty(t, sink.Events())
}

func TestNewAssemblerPanicsWithoutDeps(t *testing.T) {
	assert.Panics(t, func() { NewAssembler(nil, &recordingCreator{}) })
	assert.Panics(t, func() { NewAssembler(form.NewValidator(), nil) })
}
