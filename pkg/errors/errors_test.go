// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	lenserr "github.com/pagelens/pagelens/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	err := lenserr.New(lenserr.CodeProviderNotFound, "provider not found")
	assert.Equal(t, lenserr.CodeProviderNotFound, lenserr.CodeOf(err))

	assert.Equal(t, lenserr.Code(""), lenserr.CodeOf(nil))
	assert.Equal(t, lenserr.Code(""), lenserr.CodeOf(stderrors.New("plain")))
}

func TestWrapPreservesChain(t *testing.T) {
	inner := lenserr.New(lenserr.CodeProviderUpstreamFailure, "anthropic is down", lenserr.FieldProvider("anthropic"))
	outer := lenserr.Wrap(inner, lenserr.CodeProviderUpstreamFailure, "fallback failed", lenserr.Field("primary_provider", "anthropic"))

	require.Error(t, outer)
	assert.ErrorIs(t, outer, inner)
	assert.Contains(t, outer.Error(), "fallback failed")

	fields := lenserr.FieldsOf(outer)
	assert.Equal(t, "anthropic", fields["provider"])
	assert.Equal(t, "anthropic", fields["primary_provider"])
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, lenserr.Wrap(nil, lenserr.CodeServerInternalFailure, "ignored"))
	assert.NoError(t, lenserr.Wrapf(nil, lenserr.CodeServerInternalFailure, "ignored"))
	assert.NoError(t, lenserr.With(nil, lenserr.Field("k", "v")))
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
	}{
		{"not found", lenserr.New(lenserr.CodeProviderNotFound, "x"), lenserr.IsNotFound},
		{"invalid input", lenserr.New(lenserr.CodeTaskInvalidInput, "x"), lenserr.IsInvalidInput},
		{"invalid value", lenserr.New(lenserr.CodeConfigValidateInvalidValue, "x"), lenserr.IsInvalidInput},
		{"none available", lenserr.New(lenserr.CodeProviderNoneAvailable, "x"), lenserr.IsNoneAvailable},
		{"unsupported", lenserr.New(lenserr.CodeTaskKindUnsupported, "x"), lenserr.IsUnsupported},
		{"upstream failure", lenserr.New(lenserr.CodeProviderUpstreamFailure, "x"), lenserr.IsUpstreamFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.pred(tt.err))
			assert.False(t, tt.pred(stderrors.New("plain")))
			assert.False(t, tt.pred(nil))
		})
	}
}

func TestHasCode(t *testing.T) {
	err := lenserr.New(lenserr.CodeSecretNotFound, "missing")
	assert.True(t, lenserr.HasCode(err, lenserr.CodeSecretNotFound))
	assert.False(t, lenserr.HasCode(err, lenserr.CodeSecretStoreFailure))
	assert.False(t, lenserr.HasCode(nil, lenserr.CodeSecretNotFound))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code lenserr.Code
		want int
	}{
		{lenserr.CodeProviderNotFound, http.StatusNotFound},
		{lenserr.CodeTaskInvalidInput, http.StatusBadRequest},
		{lenserr.CodeTaskKindUnsupported, http.StatusBadRequest},
		{lenserr.CodeProviderNoneAvailable, http.StatusServiceUnavailable},
		{lenserr.CodeProviderUpstreamFailure, http.StatusBadGateway},
		{lenserr.CodeServerInternalFailure, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, lenserr.HTTPStatus(lenserr.New(tt.code, "x")))
		})
	}
}
