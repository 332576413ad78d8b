package analytics

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sneakshop-lab/sneakshop/internal/experiment"
)

// variantParam is stamped into every outbound payload so downstream reporting
// can segment by arm.
const variantParam = "exp_variant_string"

// Router fans a canonical envelope out over exactly one channel. Channel
// choice is a pure function of the envelope's variant: control traffic goes
// to the direct-tag sink, test traffic to the relay endpoint. Nothing may
// cross over.
type Router struct {
	Sink  TagSink
	Relay *RelayClient
}

// NewRouter wires the two channels.
func NewRouter(sink TagSink, relay *RelayClient) *Router {
	if sink == nil {
		panic("analytics: tag sink must not be nil")
	}
	if relay == nil {
		panic("analytics: relay client must not be nil")
	}
	return &Router{Sink: sink, Relay: relay}
}

// Dispatch sends one envelope over the channel its variant selects. The
// direct-tag hand-off is fire-and-forget; the relay call blocks its caller
// and surfaces transport failures, but is never retried. On the relay path
// the returned cookie, when non-nil, is the durable identifier the endpoint
// just provisioned; the caller must set it on its own response so the
// visitor holds the identifier from the first relayed event on.
func (rt *Router) Dispatch(ctx context.Context, env *Envelope, page Page) (*http.Cookie, error) {
	if env == nil || env.Variant == "" {
		return nil, ErrMissingVariant
	}

	params := make(map[string]any, len(env.Params)+1)
	for k, v := range env.Params {
		params[k] = v
	}
	params[variantParam] = string(env.Variant)

	switch env.Variant {
	case experiment.VariantControl:
		// The tagging runtime forwards on its own; no response is awaited.
		rt.Sink.Emit(env.Name, params)
		return nil, nil

	case experiment.VariantTest:
		tagged := *env
		tagged.Params = params
		issued, err := rt.Relay.Send(ctx, &tagged, page)
		if err != nil {
			slog.Warn("Relay dispatch failed", "event", env.Name, "error", err)
			return nil, err
		}
		return issued, nil

	default:
		// An unparseable variant is as much a programmer error as a missing one.
		return nil, ErrMissingVariant
	}
}
