package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/leadcapture/cmd/mainconfig"
	appconfig "github.com/wolfman30/leadcapture/internal/config"
	"github.com/wolfman30/leadcapture/internal/health"
	"github.com/wolfman30/leadcapture/internal/leads"
	"github.com/wolfman30/leadcapture/internal/notify"
	"github.com/wolfman30/leadcapture/pkg/logging"
)

const leadsPath = "/api/leads"

// function holds what every invocation shares.
type function struct {
	svc     leadService
	logger  *logging.Logger
	version string
	now     func() time.Time
}

// leadService is the part of leads.Service the function needs.
type leadService interface {
	Create(ctx context.Context, req *leads.CreateLeadRequest) (*leads.Lead, error)
	ObserveRejected(reason string)
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		panic(err)
	}
	clients := mainconfig.NewClients(awsCfg, cfg)

	opts := []leads.ServiceOption{leads.WithLogger(logger)}
	if cfg.EmailProvider == "ses" && len(cfg.LeadNotifyRecipients) > 0 {
		sender := notify.NewSESSender(clients.SES, notify.SESConfig{FromEmail: cfg.EmailFrom, FromName: cfg.EmailFromName}, logger)
		opts = append(opts, leads.WithNotifier(notify.NewLeadNotifier(sender, cfg.LeadNotifyRecipients, cfg.Location(), logger)))
	}
	svc := leads.NewService(leads.NewDynamoRepository(clients.DynamoDB, cfg.LeadsTable), opts...)

	fn := function{svc: svc, logger: logger, version: cfg.AppVersion, now: time.Now}
	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, fn, evt)
	})
}

func handle(ctx context.Context, fn function, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	svc, logger := fn.svc, fn.logger
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}
	path = strings.TrimRight(path, "/")

	if path == "/health" || path == "/api/health" {
		return jsonResponse(http.StatusOK, health.Payload(fn.version, fn.now())), nil
	}
	if path != leadsPath {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNotFound}, nil
	}

	switch method {
	case http.MethodGet:
		return jsonResponse(http.StatusOK, map[string]string{"message": "API de leads está funcionando"}), nil
	case http.MethodPost:
	default:
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusMethodNotAllowed}, nil
	}

	body, err := decodeBody(evt)
	if err != nil {
		return errorResponse(http.StatusBadRequest, "JSON inválido"), nil
	}

	req, err := leads.DecodeCreateRequest(bytes.NewReader(body))
	if err != nil {
		var syntaxErr *leads.SyntaxError
		var fieldErr *leads.FieldError
		switch {
		case errors.As(err, &syntaxErr):
			svc.ObserveRejected("invalid_json")
			return jsonResponse(http.StatusBadRequest, map[string]string{
				"error":   "JSON inválido",
				"details": syntaxErr.Details(),
			}), nil
		case errors.As(err, &fieldErr):
			svc.ObserveRejected("missing_field")
			return errorResponse(http.StatusBadRequest, fieldErr.Message), nil
		default:
			logger.Error("failed to decode lead request", "error", err)
			return errorResponse(http.StatusInternalServerError, "Erro interno do servidor"), nil
		}
	}

	lead, err := svc.Create(ctx, req)
	if err != nil {
		var fieldErr *leads.FieldError
		if errors.As(err, &fieldErr) {
			return errorResponse(http.StatusBadRequest, fieldErr.Message), nil
		}
		logger.Error("failed to create lead", "error", err)
		return errorResponse(http.StatusInternalServerError, "Erro interno do servidor"), nil
	}
	logger.Info("lead created", "lead_id", lead.ID, "utm_source", lead.UTMSource)
	return jsonResponse(http.StatusCreated, lead), nil
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}

func jsonResponse(status int, payload any) events.APIGatewayV2HTTPResponse {
	data, err := json.Marshal(payload)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(data),
	}
}

func errorResponse(status int, msg string) events.APIGatewayV2HTTPResponse {
	return jsonResponse(status, map[string]string{"error": msg})
}
