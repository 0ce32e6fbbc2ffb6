// Package handlers contains the form-action adapters: one handler per
// user-facing operation, each parsing a form-encoded submission,
// validating its shape, forwarding it to the backend through the typed
// gateway and mapping the reply into an action result or redirect.
package handlers

import (
	"context"
	"net/http"

	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/linkeunid/linkeun-dash/internal/action"
	"github.com/linkeunid/linkeun-dash/internal/apiclient"
	"github.com/linkeunid/linkeun-dash/internal/linkquery"
	"github.com/linkeunid/linkeun-dash/internal/logger"
	"github.com/linkeunid/linkeun-dash/internal/models"
)

type gateway interface {
	Get(ctx context.Context, path string) (*apiclient.Response, error)
	Post(ctx context.Context, path string, body any) (*apiclient.Response, error)
	Put(ctx context.Context, path string, body any) (*apiclient.Response, error)
	Patch(ctx context.Context, path string, body any) (*apiclient.Response, error)
}

type cookieManager interface {
	SetCookie(w http.ResponseWriter, token string, maxAge int)
	ExpireCookie(w http.ResponseWriter)
}

type linkLister interface {
	Fetch(ctx context.Context, params linkquery.Params, token string) (linkquery.Result, error)
}

type breachCounter interface {
	Count(ctx context.Context, password string) (int, error)
}

// Handlers bundles the dependencies shared by all form-action adapters.
// newClient builds a gateway client; an empty token means unauthenticated.
type Handlers struct {
	newClient func(token string) gateway
	cookies   cookieManager
	links     linkLister
	breach    breachCounter
	validate  *validator.Validate
}

// New creates the adapter set.
func New(
	newClient func(token string) *apiclient.Client,
	cookies cookieManager,
	links linkLister,
	breach breachCounter,
) *Handlers {
	return &Handlers{
		newClient: func(token string) gateway { return newClient(token) },
		cookies:   cookies,
		links:     links,
		breach:    breach,
		validate:  validator.New(),
	}
}

// failFromGatewayError maps a gateway failure into an action failure.
// Backend-reported failures propagate the upstream message and status;
// transport failures get a generic message and a 500, with the original
// error logged server-side only.
func failFromGatewayError(
	err error,
	fallbackMessage string,
	transportMessage string,
	values map[string]any,
) action.Result {
	if apiErr, ok := apiclient.AsError(err); ok && !apiErr.Transport {
		return action.FailWithValues(
			apiErr.Status(http.StatusBadRequest),
			apiErr.Message(fallbackMessage),
			values,
		)
	}

	logger.Log.Errorln("gateway transport failure: ", zap.Error(err))

	return action.FailWithValues(http.StatusInternalServerError, transportMessage, values)
}

// failFromEnvelope maps a backend error embedded in a 2xx reply into an
// action failure. The backend may return 200 with a non-null error field.
func failFromEnvelope(
	response *apiclient.Response,
	fallbackMessage string,
	values map[string]any,
) action.Result {
	status := response.StatusCode
	if status < http.StatusBadRequest {
		status = http.StatusBadRequest
	}

	message := response.Envelope.Message
	if message == "" {
		message = fallbackMessage
	}

	return action.FailWithValues(status, message, values)
}

// decodeOrFail decodes the envelope payload into out and builds a generic
// failure when the payload is absent or malformed.
func decodeOrFail(
	response *apiclient.Response,
	out any,
	message string,
	values map[string]any,
) (action.Result, bool) {
	decoded, err := response.Envelope.DecodeData(out)
	if err != nil || !decoded {
		if err != nil {
			logger.Log.Errorln("decoding backend payload: ", zap.Error(err))
		}
		return action.FailWithValues(http.StatusInternalServerError, message, values), false
	}

	return action.Result{}, true
}

// fieldErrors turns validator output into a per-tag lookup keyed by the
// struct field name, so adapters can pick operation-specific messages.
func (h *Handlers) fieldErrors(err error) map[string]string {
	out := map[string]string{}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return out
	}
	for _, fieldError := range validationErrors {
		out[fieldError.Field()] = fieldError.Tag()
	}
	return out
}

func authedOnly(identity models.Identity, errorKey string) (action.Result, bool) {
	if identity.IsAuthenticated() && identity.Token != "" {
		return action.Result{}, true
	}

	return action.Fail(http.StatusUnauthorized, map[string]any{errorKey: "Authentication required"}), false
}
