package experiment

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVariant(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Variant
		ok    bool
	}{
		{name: "control token", input: "controle", want: VariantControl, ok: true},
		{name: "test token", input: "teste", want: VariantTest, ok: true},
		{name: "empty", input: "", ok: false},
		{name: "unknown token", input: "variant-c", ok: false},
		{name: "wrong case", input: "Controle", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseVariant(tc.input)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestGateAssign_FreshVisitor(t *testing.T) {
	gate := &Gate{Draw: func() float64 { return 0.2 }, Default: VariantControl}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	v, ck := gate.Assign(req)

	require.Equal(t, VariantControl, v)
	require.NotNil(t, ck)
	require.Equal(t, CookieName, ck.Name)
	require.Equal(t, string(VariantControl), ck.Value)
	require.Equal(t, 30*24*60*60, ck.MaxAge)
	require.Equal(t, "/", ck.Path)
	require.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	require.False(t, ck.HttpOnly, "assignment cookie must stay client-readable")
}

func TestGateAssign_DrawMapsToArms(t *testing.T) {
	gate := &Gate{Draw: func() float64 { return 0.9 }}
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	v, ck := gate.Assign(req)
	require.Equal(t, VariantTest, v)
	require.NotNil(t, ck)
}

func TestGateAssign_ExistingCookieIsIdempotent(t *testing.T) {
	drawn := 0
	gate := &Gate{Draw: func() float64 { drawn++; return 0.9 }}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: string(VariantControl)})

	for i := 0; i < 3; i++ {
		v, ck := gate.Assign(req)
		require.Equal(t, VariantControl, v)
		require.Nil(t, ck, "existing assignment must not be rewritten")
	}
	require.Zero(t, drawn)
}

func TestGateAssign_InvalidCookieReassigns(t *testing.T) {
	gate := &Gate{Draw: func() float64 { return 0.9 }}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})

	v, ck := gate.Assign(req)
	require.Equal(t, VariantTest, v)
	require.NotNil(t, ck)
}

func TestGateAssign_FailsOpenWithoutRandomSource(t *testing.T) {
	gate := &Gate{Draw: nil, Default: VariantTest}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	v, ck := gate.Assign(req)

	require.Equal(t, VariantTest, v)
	require.NotNil(t, ck, "fail-open assignment still persists the arm")
}

func TestGateAssign_FailOpenDefaultsToControl(t *testing.T) {
	gate := &Gate{}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	v, _ := gate.Assign(req)

	require.Equal(t, VariantControl, v)
}
