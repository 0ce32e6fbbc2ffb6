// Package models defines the pass-through DTOs mirroring the backend API
// together with the form payloads submitted by the dashboard pages.
// Nothing here is persisted locally; every entity is owned by the backend.
package models

import (
	"encoding/json"
	"time"
)

// User is the backend user record, cached only in per-request identity context.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Link is a shortened link as the backend reports it. This layer only transports it.
type Link struct {
	ID          int        `json:"id"`
	UserID      int        `json:"user_id"`
	OriginalURL string     `json:"original_url"`
	ShortCode   string     `json:"short_code"`
	CustomAlias *string    `json:"custom_alias"`
	Description *string    `json:"description"`
	IsActive    bool       `json:"is_active"`
	IsPrivate   bool       `json:"is_private"`
	ClicksCount int        `json:"clicks_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at"`
}

// Meta is the pagination block of the backend response envelope.
type Meta struct {
	Page     int  `json:"page"`
	PerPage  int  `json:"per_page"`
	Total    int  `json:"total"`
	HasNext  bool `json:"has_next"`
	HasPrev  bool `json:"has_prev"`
	LastPage int  `json:"last_page"`
}

// Envelope is the uniform response shape every backend endpoint returns.
// Data stays raw so each adapter can decode the payload it expects.
// The backend may report an error inside a 200, so callers must branch
// on Error, not only on the HTTP status.
type Envelope struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Error   map[string]any  `json:"error"`
	Message string          `json:"message"`
	Meta    *Meta           `json:"meta"`
}

// HasError reports whether the backend embedded an error in the envelope.
func (e *Envelope) HasError() bool {
	return e != nil && e.Error != nil
}

// DecodeData unmarshals the envelope payload into out. A null or absent
// payload leaves out untouched and returns false.
func (e *Envelope) DecodeData(out any) (bool, error) {
	if e == nil || len(e.Data) == 0 || string(e.Data) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return false, err
	}
	return true, nil
}

// AuthData is the login and verify-token success payload.
type AuthData struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
	User      User   `json:"user"`
}

// Session is the synthetic per-request session descriptor. It is never
// persisted and is rebuilt from the bearer token on every request.
type Session struct {
	ID        string
	UserID    int
	ExpiresAt time.Time
}

// Identity is the resolved authentication state of a single request.
// A zero Identity means anonymous. It is an immutable context value;
// handlers that change the user build a fresh copy instead of mutating it.
type Identity struct {
	User    *User
	Session *Session
	Token   string
}

// IsAuthenticated reports whether the request carries a valid session.
func (i Identity) IsAuthenticated() bool {
	return i.User != nil
}

// WithUser returns a copy of the identity carrying the given user record.
func (i Identity) WithUser(u *User) Identity {
	i.User = u
	return i
}

// LoginForm is the login page submission.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// RegisterForm is the registration page submission.
type RegisterForm struct {
	Email    string `form:"email" validate:"required,email"`
	Username string `form:"username" validate:"required"`
	Name     string `form:"name" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// CreateLinkForm is the link creation submission. Optional fields left
// blank are omitted from the backend payload entirely.
type CreateLinkForm struct {
	OriginalURL string `form:"original_url" validate:"required,url"`
	CustomAlias string `form:"custom_alias"`
	Password    string `form:"password"`
	Description string `form:"description"`
}

// UpdateLinkForm is the partial-update submission. For password and
// description an explicit empty string means "clear the field" while an
// absent field means "don't touch", so presence is tracked separately.
type UpdateLinkForm struct {
	OriginalURL    string `validate:"omitempty,url"`
	CustomAlias    string
	Password       string
	HasPassword    bool
	Description    string
	HasDescription bool
}

// ProfileForm is the settings profile submission.
type ProfileForm struct {
	Name     string `form:"name" validate:"required"`
	Username string `form:"username" validate:"required"`
}

// PasswordForm is the settings password submission. The mismatch and
// minimum-length checks run before any backend call.
type PasswordForm struct {
	CurrentPassword string `form:"currentPassword" validate:"required"`
	NewPassword     string `form:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=NewPassword"`
}
