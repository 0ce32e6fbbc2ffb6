package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkeunid/linkeun-dash/internal/siteconfig"
)

func TestHomePageCarriesSiteMetadataAndBreadcrumbs(t *testing.T) {
	h := newTestHandlers(&testDeps{gw: &stubGateway{}, cookies: &stubCookies{}})

	recorder := httptest.NewRecorder()
	request := withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), "token")

	h.HomePage(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	site := body["site"].(map[string]any)
	assert.Equal(t, siteconfig.Default.Name, site["name"])
	assert.Equal(t, siteconfig.Default.URL, site["url"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "hanivan", user["username"])
}

func TestHomePageAnonymousHasNoUser(t *testing.T) {
	h := newTestHandlers(&testDeps{gw: &stubGateway{}, cookies: &stubCookies{}})

	recorder := httptest.NewRecorder()
	request := withAnonymous(httptest.NewRequest(http.MethodGet, "/", nil))

	h.HomePage(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Nil(t, body["user"])
}

func TestBreachCheckReportsCount(t *testing.T) {
	deps := &testDeps{gw: &stubGateway{}, cookies: &stubCookies{}, breach: &stubBreach{count: 3303003}}
	h := newTestHandlers(deps)

	recorder := httptest.NewRecorder()
	request := formRequest("/tools/breach-check", url.Values{"password": {"password"}})

	h.BreachCheck(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "password", deps.breach.password)

	body := decodeBody(t, recorder)
	assert.Equal(t, float64(3303003), body["count"])
}

func TestBreachCheckUpstreamFailure(t *testing.T) {
	deps := &testDeps{gw: &stubGateway{}, cookies: &stubCookies{}, breach: &stubBreach{err: errors.New("range api down")}}
	h := newTestHandlers(deps)

	recorder := httptest.NewRecorder()
	request := formRequest("/tools/breach-check", url.Values{"password": {"password"}})

	h.BreachCheck(recorder, request)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, "Breach check is temporarily unavailable", body["error"])
}

func TestHealthz(t *testing.T) {
	h := newTestHandlers(&testDeps{gw: &stubGateway{}, cookies: &stubCookies{}})

	recorder := httptest.NewRecorder()
	h.Healthz(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", decodeBody(t, recorder)["status"])
}
