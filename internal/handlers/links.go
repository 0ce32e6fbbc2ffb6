package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/linkeunid/linkeun-dash/internal/action"
	"github.com/linkeunid/linkeun-dash/internal/apiclient"
	"github.com/linkeunid/linkeun-dash/internal/linkquery"
	"github.com/linkeunid/linkeun-dash/internal/models"
	"github.com/linkeunid/linkeun-dash/internal/session"
)

const linksBasePath = "/api/s/"

// LinksPage renders the link listing through the cached read-query
// adapter. Anonymous visitors get a notLoggedIn page instead of data.
func (h *Handlers) LinksPage(w http.ResponseWriter, r *http.Request) {
	identity := session.FromContext(r.Context())
	if !identity.IsAuthenticated() || identity.Token == "" {
		action.Write(w, r, action.OK(map[string]any{"notLoggedIn": true}))
		return
	}

	query := r.URL.Query()
	params := linkquery.Params{
		Search: query.Get("search"),
		SortBy: query.Get("sortBy"),
		Sort:   query.Get("sort"),
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil {
		params.Page = page
	}
	if perPage, err := strconv.Atoi(query.Get("per_page")); err == nil {
		params.PerPage = perPage
	}

	result, err := h.links.Fetch(r.Context(), params, identity.Token)
	if err != nil {
		action.Write(w, r, failFromGatewayError(err, "Failed to load links", "Network error: Failed to load links", nil))
		return
	}

	action.Write(w, r, action.OK(map[string]any{
		"notLoggedIn": false,
		"links":       result.Links,
		"meta":        result.Meta,
	}))
}

// CreateLinkPage renders the link creation page state.
func (h *Handlers) CreateLinkPage(w http.ResponseWriter, r *http.Request) {
	identity := session.FromContext(r.Context())
	action.Write(w, r, action.OK(map[string]any{
		"notLoggedIn": !identity.IsAuthenticated(),
	}))
}

// CreateLink handles the link creation form. Validation runs before any
// network call; blank optional fields are omitted from the payload.
func (h *Handlers) CreateLink(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		action.Write(w, r, action.FailWithValues(http.StatusBadRequest, "Malformed form submission", nil))
		return
	}

	form := models.CreateLinkForm{
		OriginalURL: r.PostFormValue("original_url"),
		CustomAlias: r.PostFormValue("custom_alias"),
		Password:    r.PostFormValue("password"),
		Description: r.PostFormValue("description"),
	}
	values := map[string]any{
		"original_url": form.OriginalURL,
		"custom_alias": form.CustomAlias,
		"description":  form.Description,
	}

	if err := h.validate.Struct(form); err != nil {
		action.Write(w, r, action.FailWithValues(http.StatusBadRequest, "Please enter a valid URL", values))
		return
	}

	identity := session.FromContext(r.Context())
	if !identity.IsAuthenticated() || identity.Token == "" {
		action.Write(w, r, action.FailWithValues(http.StatusUnauthorized, "You must be logged in to create links", values))
		return
	}

	payload := map[string]any{"original_url": form.OriginalURL}
	if strings.TrimSpace(form.CustomAlias) != "" {
		payload["custom_alias"] = form.CustomAlias
	}
	if strings.TrimSpace(form.Password) != "" {
		payload["password"] = form.Password
	}
	if strings.TrimSpace(form.Description) != "" {
		payload["description"] = form.Description
	}

	response, err := h.newClient(identity.Token).Post(r.Context(), linksBasePath, payload)
	if err != nil {
		action.Write(w, r, failFromGatewayError(err, "Failed to create link", "Network error: Failed to create link", values))
		return
	}

	if response.Envelope.HasError() {
		action.Write(w, r, failFromEnvelope(response, "Failed to create link", values))
		return
	}

	var link models.Link
	if failure, ok := decodeOrFail(response, &link, "Failed to create link", values); !ok {
		action.Write(w, r, failure)
		return
	}

	action.Write(w, r, action.OK(map[string]any{
		"success": true,
		"link":    link,
	}))
}

// UpdateLinkPage loads the existing link for the update form. A backend
// 404 redirects back to the listing.
func (h *Handlers) UpdateLinkPage(w http.ResponseWriter, r *http.Request) {
	identity := session.FromContext(r.Context())
	if !identity.IsAuthenticated() || identity.Token == "" {
		action.Write(w, r, action.OK(map[string]any{"notLoggedIn": true}))
		return
	}

	id := chi.URLParam(r, "id")
	response, err := h.newClient(identity.Token).Get(r.Context(), linksBasePath+id+"/detail")
	if err != nil {
		if apiErr, ok := apiclient.AsError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			action.Write(w, r, action.Redirect(http.StatusFound, "/links"))
			return
		}
		action.Write(w, r, action.OK(map[string]any{
			"notLoggedIn": false,
			"error":       "Failed to load link data",
		}))
		return
	}

	var link models.Link
	decoded, decodeErr := response.Envelope.DecodeData(&link)
	if decodeErr != nil || !decoded {
		action.Write(w, r, action.OK(map[string]any{
			"notLoggedIn": false,
			"error":       "Failed to load link data",
		}))
		return
	}

	action.Write(w, r, action.OK(map[string]any{
		"notLoggedIn": false,
		"link":        link,
	}))
}

// UpdateLink handles the partial-update form. An explicit empty string
// for password or description clears the field (sent as null); a field
// absent from the submission is left untouched (omitted entirely). The
// two cases produce different payloads.
func (h *Handlers) UpdateLink(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		action.Write(w, r, action.FailWithValues(http.StatusBadRequest, "Malformed form submission", nil))
		return
	}

	_, hasPassword := r.PostForm["password"]
	_, hasDescription := r.PostForm["description"]
	form := models.UpdateLinkForm{
		OriginalURL:    r.PostFormValue("original_url"),
		CustomAlias:    r.PostFormValue("custom_alias"),
		Password:       r.PostFormValue("password"),
		HasPassword:    hasPassword,
		Description:    r.PostFormValue("description"),
		HasDescription: hasDescription,
	}
	values := map[string]any{
		"original_url": form.OriginalURL,
		"custom_alias": form.CustomAlias,
		"description":  form.Description,
	}

	if err := h.validate.Struct(form); err != nil {
		action.Write(w, r, action.FailWithValues(http.StatusBadRequest, "Please enter a valid URL", values))
		return
	}

	identity := session.FromContext(r.Context())
	if !identity.IsAuthenticated() || identity.Token == "" {
		action.Write(w, r, action.FailWithValues(http.StatusUnauthorized, "You must be logged in to update links", values))
		return
	}

	payload := map[string]any{}
	if form.OriginalURL != "" {
		payload["original_url"] = form.OriginalURL
	}
	if strings.TrimSpace(form.CustomAlias) != "" {
		payload["custom_alias"] = form.CustomAlias
	}
	if form.HasPassword {
		if strings.TrimSpace(form.Password) == "" {
			payload["password"] = nil
		} else {
			payload["password"] = form.Password
		}
	}
	if form.HasDescription {
		if strings.TrimSpace(form.Description) == "" {
			payload["description"] = nil
		} else {
			payload["description"] = form.Description
		}
	}

	id := chi.URLParam(r, "id")
	response, err := h.newClient(identity.Token).Patch(r.Context(), linksBasePath+id, payload)
	if err != nil {
		action.Write(w, r, failFromGatewayError(err, "Failed to update link", "Network error: Failed to update link", values))
		return
	}

	if response.Envelope.HasError() {
		action.Write(w, r, failFromEnvelope(response, "Failed to update link", values))
		return
	}

	var link models.Link
	if failure, ok := decodeOrFail(response, &link, "Failed to update link", values); !ok {
		action.Write(w, r, failure)
		return
	}

	action.Write(w, r, action.OK(map[string]any{
		"success": true,
		"link":    link,
	}))
}
