package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/linkeunid/linkeun-dash/internal/action"
	"github.com/linkeunid/linkeun-dash/internal/breadcrumbs"
	"github.com/linkeunid/linkeun-dash/internal/logger"
	"github.com/linkeunid/linkeun-dash/internal/session"
	"github.com/linkeunid/linkeun-dash/internal/siteconfig"
)

// HomePage renders the dashboard home state for the current identity.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	identity := session.FromContext(r.Context())
	action.Write(w, r, action.OK(map[string]any{
		"user": identity.User,
		"site": map[string]any{
			"name":        siteconfig.Default.Name,
			"description": siteconfig.Default.Description,
			"url":         siteconfig.Default.URL,
		},
		"breadcrumbs": breadcrumbs.Trail(r.URL.Path),
	}))
}

// BreachCheck serves the password-generator page's breach lookup. The
// plaintext password stays in the form body; only a 5-character digest
// prefix reaches the upstream range API.
func (h *Handlers) BreachCheck(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		action.Write(w, r, action.FailWithValues(http.StatusBadRequest, "Malformed form submission", nil))
		return
	}

	count, err := h.breach.Count(r.Context(), r.PostFormValue("password"))
	if err != nil {
		logger.Log.Errorln("breach check failed: ", zap.Error(err))
		action.Write(w, r, action.FailWithValues(http.StatusInternalServerError, "Breach check is temporarily unavailable", nil))
		return
	}

	action.Write(w, r, action.OK(map[string]any{"count": count}))
}

// Healthz is the liveness probe.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	action.Write(w, r, action.OK(map[string]any{"status": "ok"}))
}
