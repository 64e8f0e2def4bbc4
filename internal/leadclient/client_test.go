package leadclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/leadcapture/internal/leads"
)

func sampleRequest() leads.CreateLeadRequest {
	return leads.CreateLeadRequest{
		Name:      "João Silva",
		Email:     "joao.silva@example.com",
		Phone:     "11988887777",
		Position:  "Analista",
		BirthDate: "1990-05-20",
		Message:   "Quero saber mais sobre a consultoria",
		UTMSource: "google",
	}
}

func TestCreateLeadPostsPreparedJSON(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/leads", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"lead-1","name":"João Silva","createdAt":"2025-06-15T12:00:00Z"}`)
	}))
	defer server.Close()

	req := sampleRequest()
	req.Name = "  João Silva\x00 "
	lead, err := NewClient(server.URL + "/").CreateLead(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "lead-1", lead.ID)
	assert.Equal(t, "João Silva", received["name"])
	assert.Equal(t, "google", received["utm_source"])
	_, hasMedium := received["utm_medium"]
	assert.False(t, hasMedium)
}

func TestCreateLeadAPIErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"error field", http.StatusBadRequest, `{"error":"Campo 'name' é obrigatório e deve ser uma string não vazia"}`, "Campo 'name' é obrigatório e deve ser uma string não vazia"},
		{"message field", http.StatusConflict, `{"message":"Lead já cadastrado"}`, "Lead já cadastrado"},
		{"no body", http.StatusBadGateway, ``, "Erro HTTP 502"},
		{"html body", http.StatusInternalServerError, `<html>oops</html>`, "Erro HTTP 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			_, err := NewClient(server.URL).CreateLead(context.Background(), sampleRequest())
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "got %v", err)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.want, UserMessage(err))
		})
	}
}

func TestCreateLeadTimeoutIsConnectionError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	_, err := NewClient(server.URL, WithTimeout(50*time.Millisecond)).CreateLead(context.Background(), sampleRequest())
	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr), "got %v", err)
	assert.Equal(t, "Erro de conexão com o servidor", UserMessage(err))
}

func TestWithTimeoutLeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	after := NewClient("http://leads.example", WithHTTPClient(shared), WithTimeout(2*time.Second))
	before := NewClient("http://leads.example", WithTimeout(2*time.Second), WithHTTPClient(shared))

	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Equal(t, 2*time.Second, after.httpClient.Timeout)
	assert.Equal(t, 2*time.Second, before.httpClient.Timeout)
	assert.NotSame(t, shared, after.httpClient)

	plain := NewClient("http://leads.example", WithHTTPClient(shared))
	assert.Same(t, shared, plain.httpClient)
}

func TestCreateLeadUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url).CreateLead(context.Background(), sampleRequest())
	assert.Equal(t, "Erro de conexão com o servidor", UserMessage(err))
}

func TestCreateLeadPrepareFailureSkipsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	req := sampleRequest()
	req.BirthDate = "20/05/1990"
	_, err := NewClient(server.URL).CreateLead(context.Background(), req)
	require.Error(t, err)
	assert.False(t, called)
	assert.Equal(t, "Data deve estar no formato YYYY-MM-DD", UserMessage(err))
}

func TestUserMessageFallback(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "Erro ao enviar", UserMessage(errors.New("leadclient: decode response: EOF")))
	assert.Equal(t, "Erro HTTP 500", UserMessage(fmt.Errorf("wrapped: %w", &APIError{Status: 500, Message: "Erro HTTP 500"})))
}
