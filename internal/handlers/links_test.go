package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkeunid/linkeun-dash/internal/linkquery"
	"github.com/linkeunid/linkeun-dash/internal/models"
)

func TestLinksPageAnonymousSkipsQuery(t *testing.T) {
	deps := &testDeps{gw: &stubGateway{}, cookies: &stubCookies{}, lister: &stubLister{}}
	h := newTestHandlers(deps)

	recorder := httptest.NewRecorder()
	request := withAnonymous(httptest.NewRequest(http.MethodGet, "/links", nil))

	h.LinksPage(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Zero(t, deps.lister.calls)

	body := decodeBody(t, recorder)
	assert.Equal(t, true, body["notLoggedIn"])
}

func TestLinksPageForwardsQueryParams(t *testing.T) {
	alias := "docs"
	deps := &testDeps{
		gw:      &stubGateway{},
		cookies: &stubCookies{},
		lister: &stubLister{
			result: linkquery.Result{
				Links: []models.Link{{ID: 1, OriginalURL: "https://example.com", ShortCode: "abc123", CustomAlias: &alias}},
				Meta:  &models.Meta{Page: 2, PerPage: 5, Total: 11, HasNext: true, HasPrev: true, LastPage: 3},
			},
		},
	}
	h := newTestHandlers(deps)

	recorder := httptest.NewRecorder()
	request := withIdentity(
		httptest.NewRequest(http.MethodGet, "/links?search=doc&sortBy=clicks_count&sort=asc&page=2&per_page=5", nil),
		"token",
	)

	h.LinksPage(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 1, deps.lister.calls)
	assert.Equal(t, linkquery.Params{
		Search:  "doc",
		SortBy:  "clicks_count",
		Sort:    "asc",
		Page:    2,
		PerPage: 5,
	}, deps.lister.params)

	body := decodeBody(t, recorder)
	assert.Equal(t, false, body["notLoggedIn"])
	assert.Len(t, body["links"], 1)
	meta := body["meta"].(map[string]any)
	assert.Equal(t, float64(11), meta["total"])
}

func TestLinksPageQueryFailure(t *testing.T) {
	deps := &testDeps{
		gw:      &stubGateway{},
		cookies: &stubCookies{},
		lister:  &stubLister{err: errors.New("upstream down")},
	}
	h := newTestHandlers(deps)

	recorder := httptest.NewRecorder()
	request := withIdentity(httptest.NewRequest(http.MethodGet, "/links", nil), "token")

	h.LinksPage(recorder, request)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, "Network error: Failed to load links", body["error"])
}

func TestCreateLinkValidatesBeforeAuthAndNetwork(t *testing.T) {
	deps := &testDeps{gw: &stubGateway{}, cookies: &stubCookies{}}
	h := newTestHandlers(deps)

	recorder := httptest.NewRecorder()
	request := withAnonymous(formRequest("/links/create", url.Values{
		"original_url": {"not a url"},
	}))

	h.CreateLink(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Zero(t, deps.gw.calls)

	body := decodeBody(t, recorder)
	assert.Equal(t, "Please enter a valid URL", body["error"])
	values := body["values"].(map[string]any)
	assert.Equal(t, "not a url", values["original_url"])
}

func TestCreateLinkRequiresAuthentication(t *testing.T) {
	deps := &testDeps{gw: &stubGateway{}, cookies: &stubCookies{}}
	h := newTestHandlers(deps)

	recorder := httptest.NewRecorder()
	request := withAnonymous(formRequest("/links/create", url.Values{
		"original_url": {"https://example.com/page"},
	}))

	h.CreateLink(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Zero(t, deps.gw.calls)
}

func TestCreateLinkOmitsBlankOptionalFields(t *testing.T) {
	deps := &testDeps{
		cookies: &stubCookies{},
		gw: &stubGateway{
			response: okResponse(t, `{"id": 10, "original_url": "https://example.com/page", "short_code": "x1y2z3"}`),
		},
	}
	h := newTestHandlers(deps)

	recorder := httptest.NewRecorder()
	request := withIdentity(formRequest("/links/create", url.Values{
		"original_url": {"https://example.com/page"},
		"custom_alias": {""},
		"password":     {"  "},
		"description":  {""},
	}), "token")

	h.CreateLink(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, linksBasePath, deps.gw.path)

	payload := deps.gw.body.(map[string]any)
	assert.Equal(t, "https://example.com/page", payload["original_url"])
	assert.NotContains(t, payload, "custom_alias")
	assert.NotContains(t, payload, "password")
	assert.NotContains(t, payload, "description")

	body := decodeBody(t, recorder)
	assert.Equal(t, true, body["success"])
}

func TestCreateLinkSendsFilledOptionalFields(t *testing.T) {
	deps := &testDeps{
		cookies: &stubCookies{},
		gw: &stubGateway{
			response: okResponse(t, `{"id": 10, "original_url": "https://example.com/page", "short_code": "docs"}`),
		},
	}
	h := newTestHandlers(deps)

	recorder := httptest.NewRecorder()
	request := withIdentity(formRequest("/links/create", url.Values{
		"original_url": {"https://example.com/page"},
		"custom_alias": {"docs"},
		"password":     {"s3cret"},
		"description":  {"Team docs"},
	}), "token")

	h.CreateLink(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	payload := deps.gw.body.(map[string]any)
	assert.Equal(t, "docs", payload["custom_alias"])
	assert.Equal(t, "s3cret", payload["password"])
	assert.Equal(t, "Team docs", payload["description"])
}

func TestUpdateLinkDistinguishesClearedFromUntouched(t *testing.T) {
	tests := []struct {
		name        string
		form        url.Values
		wantPayload map[string]any
	}{
		{
			name: "explicit empty password clears it",
			form: url.Values{
				"original_url": {"https://example.com/page"},
				"password":     {""},
			},
			wantPayload: map[string]any{
				"original_url": "https://example.com/page",
				"password":     nil,
			},
		},
		{
			name: "absent password is left untouched",
			form: url.Values{
				"original_url": {"https://example.com/page"},
			},
			wantPayload: map[string]any{
				"original_url": "https://example.com/page",
			},
		},
		{
			name: "explicit empty description clears it",
			form: url.Values{
				"description": {""},
			},
			wantPayload: map[string]any{
				"description": nil,
			},
		},
		{
			name: "new values pass through",
			form: url.Values{
				"original_url": {"https://example.com/updated"},
				"custom_alias": {"fresh"},
				"password":     {"newpass"},
				"description":  {"Updated"},
			},
			wantPayload: map[string]any{
				"original_url": "https://example.com/updated",
				"custom_alias": "fresh",
				"password":     "newpass",
				"description":  "Updated",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := &testDeps{
				cookies: &stubCookies{},
				gw: &stubGateway{
					response: okResponse(t, `{"id": 10, "original_url": "https://example.com/page", "short_code": "x1y2z3"}`),
				},
			}
			h := newTestHandlers(deps)

			recorder := httptest.NewRecorder()
			request := withURLParam(
				withIdentity(formRequest("/links/10/update", tt.form), "token"),
				"id", "10",
			)

			h.UpdateLink(recorder, request)

			require.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, http.MethodPatch, deps.gw.method)
			assert.Equal(t, linksBasePath+"10", deps.gw.path)
			assert.Equal(t, tt.wantPayload, deps.gw.body)
		})
	}
}

func TestUpdateLinkRejectsInvalidReplacementURL(t *testing.T) {
	deps := &testDeps{gw: &stubGateway{}, cookies: &stubCookies{}}
	h := newTestHandlers(deps)

	recorder := httptest.NewRecorder()
	request := withURLParam(
		withIdentity(formRequest("/links/10/update", url.Values{"original_url": {"nope"}}), "token"),
		"id", "10",
	)

	h.UpdateLink(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Zero(t, deps.gw.calls)
}

func TestUpdateLinkPageMissingLinkRedirectsToListing(t *testing.T) {
	deps := &testDeps{
		cookies: &stubCookies{},
		gw: &stubGateway{
			err: backendError(t, http.StatusNotFound,
				`{"code":404,"data":null,"error":{"link":"not found"},"message":"Link not found"}`),
		},
	}
	h := newTestHandlers(deps)

	recorder := httptest.NewRecorder()
	request := withURLParam(
		withIdentity(httptest.NewRequest(http.MethodGet, "/links/99/update", nil), "token"),
		"id", "99",
	)

	h.UpdateLinkPage(recorder, request)

	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/links", recorder.Header().Get("Location"))
}

func TestUpdateLinkPageLoadsExistingLink(t *testing.T) {
	deps := &testDeps{
		cookies: &stubCookies{},
		gw: &stubGateway{
			response: okResponse(t, `{"id": 10, "original_url": "https://example.com/page", "short_code": "x1y2z3"}`),
		},
	}
	h := newTestHandlers(deps)

	recorder := httptest.NewRecorder()
	request := withURLParam(
		withIdentity(httptest.NewRequest(http.MethodGet, "/links/10/update", nil), "token"),
		"id", "10",
	)

	h.UpdateLinkPage(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, http.MethodGet, deps.gw.method)
	assert.Equal(t, linksBasePath+"10/detail", deps.gw.path)

	body := decodeBody(t, recorder)
	link := body["link"].(map[string]any)
	assert.Equal(t, "x1y2z3", link["short_code"])
}
