package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/linkeunid/linkeun-dash/internal/action"
	"github.com/linkeunid/linkeun-dash/internal/apiclient"
	"github.com/linkeunid/linkeun-dash/internal/logger"
	"github.com/linkeunid/linkeun-dash/internal/models"
	"github.com/linkeunid/linkeun-dash/internal/session"
)

const (
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"
	verifyPath   = "/api/auth/verify/"
	logoutPath   = "/api/auth/logout"
)

// LoginPage guards the login page: an authenticated user is sent home.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()).IsAuthenticated() {
		action.Write(w, r, action.Redirect(http.StatusFound, "/"))
		return
	}

	action.Write(w, r, action.OK(map[string]any{}))
}

// Login handles the login form submission. On success it establishes the
// session cookie with MaxAge equal to the backend expires_in and
// redirects home with a 303.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		action.Write(w, r, action.FailWithValues(http.StatusBadRequest, "Malformed form submission", nil))
		return
	}

	form := models.LoginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	values := map[string]any{"username": form.Username}

	if err := h.validate.Struct(form); err != nil {
		action.Write(w, r, action.FailWithValues(http.StatusBadRequest, "Missing username or password", values))
		return
	}

	response, err := h.newClient("").Post(r.Context(), loginPath, map[string]string{
		"username": form.Username,
		"password": form.Password,
	})
	if err != nil {
		action.Write(w, r, failFromGatewayError(err, "Login failed", "An unexpected error occurred during login", values))
		return
	}

	if response.Envelope.HasError() {
		action.Write(w, r, failFromEnvelope(response, "Login failed", values))
		return
	}

	var auth models.AuthData
	if failure, ok := decodeOrFail(response, &auth, "An unexpected error occurred during login", values); !ok {
		action.Write(w, r, failure)
		return
	}

	h.cookies.SetCookie(w, auth.Token, auth.ExpiresIn)

	action.Write(w, r, action.Redirect(http.StatusSeeOther, "/"))
}

// RegisterPage guards the registration page like LoginPage.
func (h *Handlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()).IsAuthenticated() {
		action.Write(w, r, action.Redirect(http.StatusFound, "/"))
		return
	}

	action.Write(w, r, action.OK(map[string]any{}))
}

// Register handles the registration form. A successful registration does
// not establish a session: email verification gates the first login.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		action.Write(w, r, action.FailWithValues(http.StatusBadRequest, "Malformed form submission", nil))
		return
	}

	form := models.RegisterForm{
		Email:    r.PostFormValue("email"),
		Username: r.PostFormValue("username"),
		Name:     r.PostFormValue("name"),
		Password: r.PostFormValue("password"),
	}
	values := map[string]any{
		"email":    form.Email,
		"username": form.Username,
		"name":     form.Name,
	}

	if err := h.validate.Struct(form); err != nil {
		action.Write(w, r, action.FailWithValues(http.StatusBadRequest, "Missing required fields", values))
		return
	}

	response, err := h.newClient("").Post(r.Context(), registerPath, map[string]string{
		"email":    form.Email,
		"username": form.Username,
		"name":     form.Name,
		"password": form.Password,
	})
	if err != nil {
		action.Write(w, r, failFromGatewayError(err, "Registration failed", "An unexpected error occurred during registration", values))
		return
	}

	if response.Envelope.HasError() {
		action.Write(w, r, failFromEnvelope(response, "Registration failed", values))
		return
	}

	message := response.Envelope.Message
	if message == "" {
		message = "Registration successful! Please check your email to verify your account."
	}

	var created models.User
	_, _ = response.Envelope.DecodeData(&created)

	action.Write(w, r, action.OK(map[string]any{
		"success": true,
		"message": message,
		"user":    created,
	}))
}

// Verify handles the email-verification link. Backend success establishes
// a session identical to login and redirects home; failure renders the
// failure details instead of an error page.
func (h *Handlers) Verify(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()).IsAuthenticated() {
		action.Write(w, r, action.Redirect(http.StatusFound, "/"))
		return
	}

	token := chi.URLParam(r, "token")
	if token == "" {
		action.Write(w, r, action.FailWithValues(http.StatusBadRequest, "Token is required", nil))
		return
	}

	response, err := h.newClient("").Get(r.Context(), verifyPath+token)
	if err != nil || response.Envelope.HasError() || response.Envelope.Code != http.StatusOK {
		action.Write(w, r, verifyFailure(response, err))
		return
	}

	var auth models.AuthData
	decoded, decodeErr := response.Envelope.DecodeData(&auth)
	if decodeErr != nil || !decoded {
		action.Write(w, r, verifyFailure(response, decodeErr))
		return
	}

	h.cookies.SetCookie(w, auth.Token, auth.ExpiresIn)

	action.Write(w, r, action.Redirect(http.StatusSeeOther, "/"))
}

// Logout clears the session cookie unconditionally, makes a best-effort
// backend logout call and redirects to the login page. A failing backend
// call never blocks the local logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	identity := session.FromContext(r.Context())

	h.cookies.ExpireCookie(w)

	if identity.Token != "" {
		if _, err := h.newClient(identity.Token).Post(r.Context(), logoutPath, nil); err != nil {
			logger.Log.Warnln("backend logout failed: ", zap.Error(err))
		}
	}

	action.Write(w, r, action.Redirect(http.StatusFound, "/auth/login"))
}

// verifyFailure shapes failure details for the verification page. It is
// always rendered as page data, never as an error page.
func verifyFailure(response *apiclient.Response, err error) action.Result {
	message := "Failed to verify token. Please try again."
	statusCode := http.StatusInternalServerError

	if response != nil {
		if response.Envelope.Message != "" {
			message = response.Envelope.Message
		}
		if response.Envelope.Code != 0 {
			statusCode = response.Envelope.Code
		}
	}

	if err != nil {
		logger.Log.Errorln("token verification failed: ", zap.Error(err))
	}

	return action.OK(map[string]any{
		"success":    false,
		"message":    message,
		"statusCode": statusCode,
	})
}
