package leads

import (
	"errors"
	"strings"
	"testing"
)

func preparedRequest() CreateLeadRequest {
	return CreateLeadRequest{
		Name:      " João Silva ",
		Email:     "joao@example.com",
		Phone:     "11988887777",
		Position:  "Analista",
		BirthDate: "1990-05-20",
		Message:   "Mensagem de teste",
		UTMSource: "google\x07",
	}
}

func TestPrepareForAPICleans(t *testing.T) {
	out, err := PrepareForAPI(preparedRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "João Silva" || out.UTMSource != "google" {
		t.Fatalf("unexpected output: %#v", out)
	}
}

func TestPrepareForAPIErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateLeadRequest)
		want   string
	}{
		{"missing", func(r *CreateLeadRequest) { r.Phone = " "; r.Message = "" }, "Campos obrigatórios: phone, message"},
		{"email", func(r *CreateLeadRequest) { r.Email = "joao@example" }, "Email inválido"},
		{"date", func(r *CreateLeadRequest) { r.BirthDate = "20/05/1990" }, "Data deve estar no formato YYYY-MM-DD"},
		{"phone length", func(r *CreateLeadRequest) { r.Phone = strings.Repeat("1", 21) }, "Campo phone muito longo (máximo 20 caracteres)"},
		{"message length", func(r *CreateLeadRequest) { r.Message = strings.Repeat("a", 2001) }, "Campo message muito longo (máximo 2000 caracteres)"},
		{"attribution length", func(r *CreateLeadRequest) { r.Fbclid = strings.Repeat("f", 201) }, "Campo fbclid muito longo (máximo 200 caracteres)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := preparedRequest()
			tt.mutate(&req)
			_, err := PrepareForAPI(req)
			var prepErr *PrepareError
			if !errors.As(err, &prepErr) {
				t.Fatalf("expected PrepareError, got %v", err)
			}
			if prepErr.Message != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, prepErr.Message)
			}
		})
	}
}
