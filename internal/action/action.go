// Package action defines the outcome of a form-action adapter as an
// explicit variant value: a redirect, a success payload, or a failure
// carrying a message plus the non-secret submitted values for form
// repopulation. Outcomes are returned and pattern-matched by the HTTP
// layer, never signalled through panics or sentinel errors.
package action

import (
	"encoding/json"
	"net/http"
)

// Kind discriminates the Result variants.
type Kind int

const (
	// KindOK carries page data for a successful, non-redirecting outcome.
	KindOK Kind = iota
	// KindRedirect sends the browser elsewhere: 303 after POST-derived
	// mutations, 302 for navigation guards.
	KindRedirect
	// KindFail carries a failure status and a body with an error message
	// and the resubmittable field values.
	KindFail
)

// Result is the outcome of one form action or page load.
type Result struct {
	Kind     Kind
	Status   int
	Location string
	Body     map[string]any
}

// OK builds a success result with the given page data.
func OK(data map[string]any) Result {
	return Result{Kind: KindOK, Status: http.StatusOK, Body: data}
}

// Redirect builds a redirect result.
func Redirect(status int, location string) Result {
	return Result{Kind: KindRedirect, Status: status, Location: location}
}

// Fail builds a failure result with an arbitrary body.
func Fail(status int, body map[string]any) Result {
	return Result{Kind: KindFail, Status: status, Body: body}
}

// FailWithValues builds the common failure shape: an error message plus
// the submitted non-secret values. Secret fields must never be included
// in values.
func FailWithValues(status int, message string, values map[string]any) Result {
	body := map[string]any{"error": message}
	if values != nil {
		body["values"] = values
	}
	return Fail(status, body)
}

// Write renders a result onto the response writer.
func Write(w http.ResponseWriter, r *http.Request, result Result) {
	if result.Kind == KindRedirect {
		http.Redirect(w, r, result.Location, result.Status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.Status)
	if result.Body != nil {
		_ = json.NewEncoder(w).Encode(result.Body)
	}
}
