//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sneakshop-lab/sneakshop/internal/analytics"
	"github.com/sneakshop-lab/sneakshop/internal/cart"
	"github.com/sneakshop-lab/sneakshop/internal/experiment"
	"github.com/sneakshop-lab/sneakshop/internal/identity"
	"github.com/sneakshop-lab/sneakshop/internal/server"
	"github.com/sneakshop-lab/sneakshop/internal/storefront"
	"github.com/sneakshop-lab/sneakshop/internal/track"
)

var fpidPattern = regexp.MustCompile(`^\d+\.\d+$`)

type recordingSink struct {
	events []string
}

func (s *recordingSink) Emit(name string, params map[string]any) {
	s.events = append(s.events, name)
}

type recordingForwarder struct {
	events []*track.Event
}

func (f *recordingForwarder) Forward(ctx context.Context, evt *track.Event) error {
	f.events = append(f.events, evt)
	return nil
}

// funnelHarness runs the whole storefront behind a real HTTP listener with a
// cookie-carrying client, the way a browser session would see it. The relay
// channel posts back into the same server's ingestion endpoint.
type funnelHarness struct {
	baseURL   string
	client    *http.Client
	sink      *recordingSink
	forwarder *recordingForwarder
}

func newFunnelHarness(t *testing.T, draw float64) *funnelHarness {
	t.Helper()

	sink := &recordingSink{}
	forwarder := &recordingForwarder{}

	trackSvc := track.NewService(identity.NewStore(), forwarder, 1)
	relay := analytics.NewRelayClient("")
	router := analytics.NewRouter(sink, relay)
	shopSvc := storefront.NewService(cart.NewCookieStore(), router, cart.DefaultPricing(), "BRL")

	srv := server.New(":0", "release")
	gate := &experiment.Gate{Draw: func() float64 { return draw }}
	srv.Engine.Use(experiment.Middleware(gate))
	trackSvc.RegisterRoutes(srv.Engine)
	shopSvc.RegisterRoutes(srv.Engine)

	ts := httptest.NewServer(srv.Engine)
	t.Cleanup(ts.Close)
	relay.Endpoint = ts.URL + "/api/track"

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &funnelHarness{
		baseURL:   ts.URL,
		client:    &http.Client{Jar: jar},
		sink:      sink,
		forwarder: forwarder,
	}
}

func (h *funnelHarness) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, h.baseURL+path, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (h *funnelHarness) cookie(t *testing.T, name string) (*http.Cookie, bool) {
	t.Helper()
	u, err := http.NewRequest(http.MethodGet, h.baseURL, nil)
	require.NoError(t, err)
	for _, ck := range h.client.Jar.Cookies(u.URL) {
		if ck.Name == name {
			return ck, true
		}
	}
	return nil, false
}

func (h *funnelHarness) forwardedNames() []string {
	names := make([]string, 0, len(h.forwarder.events))
	for _, evt := range h.forwarder.events {
		names = append(names, evt.EventName)
	}
	return names
}

func TestFunnel_TestArm(t *testing.T) {
	h := newFunnelHarness(t, 0.9)

	// Landing on the store assigns the test arm and relays the first events
	// through the server's own ingestion endpoint.
	code, _ := h.do(t, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, code)

	arm, ok := h.cookie(t, experiment.CookieName)
	require.True(t, ok, "first navigation assigns an arm")
	require.Equal(t, "teste", arm.Value)

	require.Empty(t, h.sink.events, "test-arm traffic stays off the direct tag")
	require.Equal(t, []string{"page_view", "view_item_list"}, h.forwardedNames())

	// The first relayed event provisioned the durable identifier, and the
	// storefront response handed it to the browser.
	firstFPID, ok := h.cookie(t, identity.CookieName)
	require.True(t, ok, "first relayed navigation must leave the identifier in the browser")
	require.Regexp(t, fpidPattern, firstFPID.Value)

	// An in-page fire hits the ingestion endpoint directly and reuses the
	// identifier the relay provisioned.
	code, raw := h.do(t, http.MethodPost, "/api/track",
		`{"event_name":"view_item","parameters":{"currency":"BRL","value":299.99}}`)
	require.Equal(t, http.StatusOK, code)

	var trackResp struct {
		Status string `json:"status"`
		FPID   string `json:"fpid"`
	}
	require.NoError(t, json.Unmarshal(raw, &trackResp))
	require.Equal(t, "success", trackResp.Status)

	require.Equal(t, firstFPID.Value, trackResp.FPID, "a known visitor keeps the same identifier")

	// Cart state rides the cookie jar between requests.
	code, _ = h.do(t, http.MethodPost, "/cart/items", `{"product_id":"1","size":"42","quantity":2}`)
	require.Equal(t, http.StatusOK, code)

	code, raw = h.do(t, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, code)
	var cartResp struct {
		ItemCount  int    `json:"item_count"`
		FinalTotal string `json:"final_total"`
	}
	require.NoError(t, json.Unmarshal(raw, &cartResp))
	require.Equal(t, 2, cartResp.ItemCount)
	require.Equal(t, "599.98", cartResp.FinalTotal, "two pairs cross the free-shipping threshold")

	code, _ = h.do(t, http.MethodPost, "/checkout", "")
	require.Equal(t, http.StatusOK, code)

	code, raw = h.do(t, http.MethodPost, "/checkout/purchase", `{"email":"ana@example.com","name":"Ana"}`)
	require.Equal(t, http.StatusOK, code)
	var purchaseResp struct {
		Status        string `json:"status"`
		TransactionID string `json:"transaction_id"`
	}
	require.NoError(t, json.Unmarshal(raw, &purchaseResp))
	require.Equal(t, "success", purchaseResp.Status)
	require.Regexp(t, `^\d{4}-\d{8}$`, purchaseResp.TransactionID)

	// The whole funnel went over the relay channel, with a page_view per
	// navigation, and every event attributed to the one identifier.
	require.Empty(t, h.sink.events)
	require.Equal(t,
		[]string{
			"page_view", "view_item_list",
			"view_item",
			"add_to_cart",
			"page_view", "view_cart",
			"page_view", "begin_checkout",
			"purchase", "page_view",
		},
		h.forwardedNames())
	for _, evt := range h.forwarder.events {
		require.Equal(t, firstFPID.Value, evt.FPID,
			"every relayed event in the session shares one FPID")
	}

	// Purchase clears the persisted cart.
	code, raw = h.do(t, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, code)
	var after struct {
		ItemCount int `json:"item_count"`
	}
	require.NoError(t, json.Unmarshal(raw, &after))
	require.Zero(t, after.ItemCount)

	// The assigned arm is sticky for the whole session.
	arm, ok = h.cookie(t, experiment.CookieName)
	require.True(t, ok)
	require.Equal(t, "teste", arm.Value)
}

func TestFunnel_ControlArm(t *testing.T) {
	h := newFunnelHarness(t, 0.1)

	code, _ := h.do(t, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, code)

	arm, ok := h.cookie(t, experiment.CookieName)
	require.True(t, ok)
	require.Equal(t, "controle", arm.Value)

	code, _ = h.do(t, http.MethodPost, "/cart/items", `{"product_id":"2","quantity":1}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = h.do(t, http.MethodPost, "/checkout", "")
	require.Equal(t, http.StatusOK, code)
	code, _ = h.do(t, http.MethodPost, "/checkout/purchase", `{"email":"ana@example.com","name":"Ana"}`)
	require.Equal(t, http.StatusOK, code)

	// Everything went to the direct tag; the relay ingestion endpoint saw
	// nothing at all, and no durable identifier was ever issued.
	require.Equal(t,
		[]string{
			"page_view", "view_item_list",
			"add_to_cart",
			"page_view", "begin_checkout",
			"purchase", "page_view",
		},
		h.sink.events)
	require.Empty(t, h.forwarder.events)

	_, hasFPID := h.cookie(t, identity.CookieName)
	require.False(t, hasFPID, "the control arm never touches the identifier")
}

func TestHealth(t *testing.T) {
	h := newFunnelHarness(t, 0.1)

	code, raw := h.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"status":"healthy"}`, string(raw))

	_, assigned := h.cookie(t, experiment.CookieName)
	require.False(t, assigned, "health probes never get an arm")
}
