package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeHasError(t *testing.T) {
	var withError Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"code":200,"data":null,"error":{"token":"expired"},"message":"Token expired"}`), &withError))
	assert.True(t, withError.HasError())

	var clean Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"code":200,"data":null,"error":null,"message":"success"}`), &clean))
	assert.False(t, clean.HasError())
}

func TestEnvelopeDecodeData(t *testing.T) {
	var envelope Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"code":200,"data":{"id":42,"username":"hanivan"},"error":null,"message":"success"}`), &envelope))

	var usr User
	decoded, err := envelope.DecodeData(&usr)
	require.NoError(t, err)
	assert.True(t, decoded)
	assert.Equal(t, 42, usr.ID)
}

func TestEnvelopeDecodeNullDataLeavesTargetUntouched(t *testing.T) {
	var envelope Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"code":200,"data":null,"error":null,"message":"success"}`), &envelope))

	usr := User{ID: 7}
	decoded, err := envelope.DecodeData(&usr)
	require.NoError(t, err)
	assert.False(t, decoded)
	assert.Equal(t, 7, usr.ID)
}

func TestIdentityWithUserKeepsOriginalUnchanged(t *testing.T) {
	original := Identity{User: &User{Name: "Old"}, Token: "token"}
	fresh := original.WithUser(&User{Name: "New"})

	assert.Equal(t, "Old", original.User.Name)
	assert.Equal(t, "New", fresh.User.Name)
	assert.Equal(t, "token", fresh.Token)
}

func TestIdentityIsAuthenticated(t *testing.T) {
	assert.False(t, Identity{}.IsAuthenticated())
	assert.True(t, Identity{User: &User{ID: 1}}.IsAuthenticated())
}
