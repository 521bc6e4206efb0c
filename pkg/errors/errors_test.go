package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown document", fmt.Errorf("matching: %w", ErrUnknownDocument), http.StatusNotFound},
		{"duplicate id", ErrInvalidID, http.StatusConflict},
		{"negative id", New(ErrInvalidID, http.StatusBadRequest, "id -1 is negative"), http.StatusBadRequest},
		{"invalid word", ErrInvalidWord, http.StatusBadRequest},
		{"malformed query", fmt.Errorf("parse: %w", ErrMalformedQuery), http.StatusBadRequest},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, HTTPStatusCode(tt.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrMalformedQuery, http.StatusBadRequest, "token %q", "--cat")
	require.True(t, Is(err, ErrMalformedQuery))
	require.Equal(t, `malformed query: token "--cat"`, err.Error())
}
