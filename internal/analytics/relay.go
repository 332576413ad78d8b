package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/sneakshop-lab/sneakshop/internal/identity"
)

// Page carries the page context the relay ingestion endpoint expects
// alongside the event itself.
type Page struct {
	URL       string
	Title     string
	UserAgent string

	// FPID is the visitor's durable identifier, when the browser already
	// holds one. Relayed events are server-to-server, so the client must
	// carry the identifier explicitly or the endpoint would mint a fresh
	// one per event.
	FPID string
}

// relayRequest is the wire body for the relay ingestion endpoint.
type relayRequest struct {
	EventName  string         `json:"event_name"`
	Parameters map[string]any `json:"parameters"`
	PageURL    string         `json:"page_url"`
	PageTitle  string         `json:"page_title"`
	Timestamp  string         `json:"timestamp"`
	UserAgent  string         `json:"user_agent"`
}

// RelayClient posts envelopes to the relay ingestion endpoint. Delivery is
// at-most-once: transport failures surface as *DispatchError and are never
// retried. Events in rapid succession are independent fires with no ordering
// guarantee at the receiving end.
type RelayClient struct {
	Endpoint   string
	HTTPClient *http.Client
}

// NewRelayClient returns a client with a short timeout so a slow relay only
// ever delays its own caller.
func NewRelayClient(endpoint string) *RelayClient {
	return &RelayClient{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Send posts one envelope plus page context. The visitor's identifier rides
// along as a cookie so the endpoint attributes the event to the same FPID;
// when the endpoint provisions a fresh one, its Set-Cookie is returned for
// the caller to hand back to the browser.
func (r *RelayClient) Send(ctx context.Context, env *Envelope, page Page) (*http.Cookie, error) {
	body, err := json.Marshal(relayRequest{
		EventName:  env.Name,
		Parameters: env.Params,
		PageURL:    page.URL,
		PageTitle:  page.Title,
		Timestamp:  env.EmittedAt.Format(time.RFC3339),
		UserAgent:  page.UserAgent,
	})
	if err != nil {
		return nil, &DispatchError{Endpoint: r.Endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &DispatchError{Endpoint: r.Endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if page.FPID != "" {
		req.AddCookie(&http.Cookie{Name: identity.CookieName, Value: page.FPID})
	}

	resp, err := r.client().Do(req)
	if err != nil {
		return nil, &DispatchError{Endpoint: r.Endpoint, Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &DispatchError{Endpoint: r.Endpoint, Status: resp.StatusCode}
	}

	for _, ck := range resp.Cookies() {
		if ck.Name == identity.CookieName {
			return ck, nil
		}
	}
	return nil, nil
}

func (r *RelayClient) client() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return http.DefaultClient
}
