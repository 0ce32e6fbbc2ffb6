package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/linkeunid/linkeun-dash/internal/action"
	"github.com/linkeunid/linkeun-dash/internal/apiclient"
	"github.com/linkeunid/linkeun-dash/internal/logger"
	"github.com/linkeunid/linkeun-dash/internal/models"
	"github.com/linkeunid/linkeun-dash/internal/session"
)

const (
	profilePath        = "/api/users/profile"
	changePasswordPath = "/api/users/change-password"
)

// SettingsPage mandates authentication: anonymous visitors are redirected
// to the login page instead of seeing an error.
func (h *Handlers) SettingsPage(w http.ResponseWriter, r *http.Request) {
	identity := session.FromContext(r.Context())
	if !identity.IsAuthenticated() {
		action.Write(w, r, action.Redirect(http.StatusFound, "/auth/login"))
		return
	}

	action.Write(w, r, action.OK(map[string]any{"user": identity.User}))
}

// UpdateProfile handles the profile form. On success the response carries
// a fresh identity copy with the new name and username, so the same
// response never renders stale data.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity := session.FromContext(r.Context())
	if failure, ok := authedOnly(identity, "profileError"); !ok {
		action.Write(w, r, failure)
		return
	}

	if err := r.ParseForm(); err != nil {
		action.Write(w, r, action.Fail(http.StatusBadRequest, map[string]any{"profileError": "Malformed form submission"}))
		return
	}

	form := models.ProfileForm{
		Name:     r.PostFormValue("name"),
		Username: r.PostFormValue("username"),
	}
	profileValues := map[string]any{"name": form.Name, "username": form.Username}

	if err := h.validate.Struct(form); err != nil {
		action.Write(w, r, action.Fail(http.StatusBadRequest, map[string]any{
			"profileError":  "Name and username are required",
			"profileValues": profileValues,
		}))
		return
	}

	response, err := h.newClient(identity.Token).Put(r.Context(), profilePath, map[string]string{
		"name":     form.Name,
		"username": form.Username,
	})
	if err != nil || response.Envelope.HasError() {
		action.Write(w, r, profileFailure(response, err, profileValues))
		return
	}

	updated := *identity.User
	updated.Name = form.Name
	updated.Username = form.Username
	fresh := identity.WithUser(&updated)

	action.Write(w, r, action.OK(map[string]any{
		"profileSuccess": "Profile updated successfully!",
		"user":           fresh.User,
	}))
}

// UpdatePassword handles the password form. The confirmation match and
// minimum length are checked locally before any backend call.
func (h *Handlers) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	identity := session.FromContext(r.Context())
	if failure, ok := authedOnly(identity, "passwordError"); !ok {
		action.Write(w, r, failure)
		return
	}

	if err := r.ParseForm(); err != nil {
		action.Write(w, r, action.Fail(http.StatusBadRequest, map[string]any{"passwordError": "Malformed form submission"}))
		return
	}

	form := models.PasswordForm{
		CurrentPassword: r.PostFormValue("currentPassword"),
		NewPassword:     r.PostFormValue("newPassword"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}

	if err := h.validate.Struct(form); err != nil {
		action.Write(w, r, action.Fail(http.StatusBadRequest, map[string]any{
			"passwordError": passwordValidationMessage(h.fieldErrors(err)),
		}))
		return
	}

	response, err := h.newClient(identity.Token).Put(r.Context(), changePasswordPath, map[string]string{
		"currentPassword": form.CurrentPassword,
		"newPassword":     form.NewPassword,
	})
	if err != nil || response.Envelope.HasError() {
		action.Write(w, r, passwordFailure(response, err))
		return
	}

	action.Write(w, r, action.OK(map[string]any{
		"passwordSuccess": "Password updated successfully!",
	}))
}

func passwordValidationMessage(fields map[string]string) string {
	switch {
	case fields["ConfirmPassword"] == "eqfield":
		return "New password and confirmation do not match"
	case fields["NewPassword"] == "min":
		return "New password must be at least 6 characters long"
	default:
		return "All password fields are required"
	}
}

func profileFailure(response *apiclient.Response, err error, profileValues map[string]any) action.Result {
	status, message := settingsFailure(response, err,
		"Failed to update profile",
		"An unexpected error occurred while updating profile",
	)

	return action.Fail(status, map[string]any{
		"profileError":  message,
		"profileValues": profileValues,
	})
}

func passwordFailure(response *apiclient.Response, err error) action.Result {
	status, message := settingsFailure(response, err,
		"Failed to update password",
		"An unexpected error occurred while updating password",
	)

	return action.Fail(status, map[string]any{"passwordError": message})
}

func settingsFailure(response *apiclient.Response, err error, fallback, transportMessage string) (int, string) {
	status := http.StatusBadRequest
	message := fallback

	switch {
	case err != nil:
		apiErr, ok := apiclient.AsError(err)
		if ok && !apiErr.Transport {
			status = apiErr.Status(http.StatusBadRequest)
			message = apiErr.Message(fallback)
			break
		}
		logger.Log.Errorln("settings update failed: ", zap.Error(err))
		status = http.StatusInternalServerError
		message = transportMessage

	case response != nil && response.Envelope.HasError():
		if response.StatusCode >= http.StatusBadRequest {
			status = response.StatusCode
		}
		if response.Envelope.Message != "" {
			message = response.Envelope.Message
		}
	}

	return status, message
}
