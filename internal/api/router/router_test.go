package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/leadcapture/internal/attribution"
	"github.com/wolfman30/leadcapture/internal/form"
	"github.com/wolfman30/leadcapture/internal/health"
	"github.com/wolfman30/leadcapture/internal/landing"
	"github.com/wolfman30/leadcapture/internal/leads"
	"github.com/wolfman30/leadcapture/internal/observability/metrics"
	"github.com/wolfman30/leadcapture/internal/submission"
	"github.com/wolfman30/leadcapture/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.Default()
	reg := prometheus.NewRegistry()
	m := metrics.NewLeadMetrics(reg)
	svc := leads.NewService(leads.NewInMemoryRepository(), leads.WithMetrics(m, "memory"), leads.WithLogger(logger))
	validator := form.NewValidator()
	assembler := submission.NewAssembler(validator, svc, submission.WithMetrics(m))

	return New(&Config{
		Logger:             logger,
		Health:             health.NewHandler("1.0.0", nil, logger),
		LeadsHandler:       leads.NewHandler(svc, logger),
		LandingHandler:     landing.NewHandler(attribution.NewMemoryStore(), assembler, validator),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: []string{"https://landing.example.com"},
	})
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health", "/api/health"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rr.Code)
		}
		var resp map[string]string
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp["status"] != "healthy" {
			t.Errorf("%s: expected healthy, got %q", path, resp["status"])
		}
	}
}

func TestRouterLeadLifecycle(t *testing.T) {
	router := newTestRouter(t)

	body := `{"name":"Ana","email":"ana@example.com","phone":"11988887777","position":"CEO","birthDate":"1990-01-01","message":"Olá, tudo bem?","utm_source":"google"}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(body)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created leads.Lead
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/leads/"+created.ID, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `leadcapture_leads_created_total{store="memory"} 1`) {
		t.Errorf("metrics missing created counter:\n%s", rr.Body.String())
	}
}

func TestRouterContactThroughLanding(t *testing.T) {
	router := newTestRouter(t)

	body := `{"nome":"Ana Lima","email":"ana@example.com","telefone":"(11) 98888-7777","cargo":"CEO","dataNascimento":"1990-01-01","mensagem":"Quero uma proposta comercial","page_url":"https://landing.example.com/?utm_source=google"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Origin", "https://landing.example.com")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://landing.example.com" {
		t.Errorf("missing CORS header")
	}
	if len(rr.Result().Cookies()) == 0 {
		t.Errorf("expected visitor cookie")
	}
	var resp map[string]string
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if resp["lead_id"] == "" {
		t.Fatalf("expected lead id in %v", resp)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
