package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/linkeunid/linkeun-dash/internal/apiclient"
	"github.com/linkeunid/linkeun-dash/internal/linkquery"
	"github.com/linkeunid/linkeun-dash/internal/models"
	"github.com/linkeunid/linkeun-dash/internal/session"
)

// stubGateway records the last call and replays a canned reply.
type stubGateway struct {
	calls    int
	method   string
	path     string
	body     any
	response *apiclient.Response
	err      error
}

func (s *stubGateway) record(method, path string, body any) (*apiclient.Response, error) {
	s.calls++
	s.method = method
	s.path = path
	s.body = body
	return s.response, s.err
}

func (s *stubGateway) Get(_ context.Context, path string) (*apiclient.Response, error) {
	return s.record(http.MethodGet, path, nil)
}

func (s *stubGateway) Post(_ context.Context, path string, body any) (*apiclient.Response, error) {
	return s.record(http.MethodPost, path, body)
}

func (s *stubGateway) Put(_ context.Context, path string, body any) (*apiclient.Response, error) {
	return s.record(http.MethodPut, path, body)
}

func (s *stubGateway) Patch(_ context.Context, path string, body any) (*apiclient.Response, error) {
	return s.record(http.MethodPatch, path, body)
}

// stubCookies records cookie operations and mirrors them onto the writer.
type stubCookies struct {
	setToken  string
	setMaxAge int
	sets      int
	expires   int
}

func (s *stubCookies) SetCookie(w http.ResponseWriter, token string, maxAge int) {
	s.sets++
	s.setToken = token
	s.setMaxAge = maxAge
	http.SetCookie(w, &http.Cookie{Name: "auth-session", Value: token, MaxAge: maxAge})
}

func (s *stubCookies) ExpireCookie(w http.ResponseWriter) {
	s.expires++
	http.SetCookie(w, &http.Cookie{Name: "auth-session", Value: "", MaxAge: -1})
}

type stubLister struct {
	calls  int
	params linkquery.Params
	result linkquery.Result
	err    error
}

func (s *stubLister) Fetch(_ context.Context, params linkquery.Params, _ string) (linkquery.Result, error) {
	s.calls++
	s.params = params
	return s.result, s.err
}

type stubBreach struct {
	calls    int
	password string
	count    int
	err      error
}

func (s *stubBreach) Count(_ context.Context, password string) (int, error) {
	s.calls++
	s.password = password
	return s.count, s.err
}

type testDeps struct {
	gw      *stubGateway
	cookies *stubCookies
	lister  *stubLister
	breach  *stubBreach
}

func newTestHandlers(deps *testDeps) *Handlers {
	return &Handlers{
		newClient: func(string) gateway { return deps.gw },
		cookies:   deps.cookies,
		links:     deps.lister,
		breach:    deps.breach,
		validate:  validator.New(),
	}
}

func okResponse(t *testing.T, data string) *apiclient.Response {
	t.Helper()
	return envelopeResponse(t, http.StatusOK, `{"code":200,"data":`+data+`,"error":null,"message":"success"}`)
}

func envelopeResponse(t *testing.T, statusCode int, raw string) *apiclient.Response {
	t.Helper()
	var envelope models.Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &envelope))
	return &apiclient.Response{StatusCode: statusCode, Envelope: envelope}
}

func backendError(t *testing.T, statusCode int, raw string) error {
	t.Helper()
	response := envelopeResponse(t, statusCode, raw)
	return &apiclient.Error{StatusCode: statusCode, Envelope: &response.Envelope}
}

func transportError() error {
	return &apiclient.Error{Transport: true, Err: context.DeadlineExceeded}
}

func formRequest(target string, form url.Values) *http.Request {
	request := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return request
}

func withIdentity(r *http.Request, token string) *http.Request {
	identity := models.Identity{
		User: &models.User{
			ID:       42,
			Name:     "Hanivan",
			Username: "hanivan",
			Email:    "hanivan@example.com",
		},
		Session: &models.Session{ID: "jwt", UserID: 42, ExpiresAt: time.Now().Add(time.Hour)},
		Token:   token,
	}
	return r.WithContext(session.WithIdentity(r.Context(), identity))
}

func withAnonymous(r *http.Request) *http.Request {
	return r.WithContext(session.WithIdentity(r.Context(), models.Identity{}))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	routeContext := chi.NewRouteContext()
	routeContext.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeContext))
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	return body
}
