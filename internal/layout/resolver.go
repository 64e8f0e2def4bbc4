package layout

import (
	"context"
	"errors"

	"github.com/wolfman30/leadcapture/pkg/logging"
)

// DefaultVariant is served whenever the configured variant cannot be used.
const DefaultVariant = 1

// ErrInvalidVariant reports a configuration that is unsuccessful or outside
// the known variants.
var ErrInvalidVariant = errors.New("Layout inválido recebido")

// Variants lists the page variants the landing page can render.
var Variants = []int{0, 1, 2}

// IsValidVariant reports whether v is one of Variants.
func IsValidVariant(v int) bool {
	for _, known := range Variants {
		if v == known {
			return true
		}
	}
	return false
}

// Fetcher is satisfied by *Client.
type Fetcher interface {
	Get(ctx context.Context) (*Response, error)
}

// Resolver turns the stored configuration into a renderable variant.
type Resolver struct {
	fetcher Fetcher
	logger  *logging.Logger
}

// NewResolver creates a Resolver. A nil fetcher always yields DefaultVariant.
func NewResolver(fetcher Fetcher, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{fetcher: fetcher, logger: logger}
}

// Variant returns the configured variant. On any failure it returns
// DefaultVariant together with the reason, so the result is always usable.
func (r *Resolver) Variant(ctx context.Context) (int, error) {
	if r == nil || r.fetcher == nil {
		return DefaultVariant, nil
	}
	resp, err := r.fetcher.Get(ctx)
	if err != nil {
		return DefaultVariant, err
	}
	if !resp.Success || !IsValidVariant(resp.Data.Value) {
		r.logger.Warn("layout variant rejected", "success", resp.Success, "value", resp.Data.Value)
		return DefaultVariant, ErrInvalidVariant
	}
	return resp.Data.Value, nil
}
