package crawler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchResponseOK(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   bool
	}{
		{status: http.StatusOK, want: true},
		{status: http.StatusNoContent, want: true},
		{status: http.StatusMovedPermanently, want: false},
		{status: http.StatusNotFound, want: false},
		{status: 0, want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FetchResponse{StatusCode: tt.status}.OK(), "status %d", tt.status)
	}
}

func TestFetchErrorMessages(t *testing.T) {
	t.Parallel()

	statusErr := StatusError(FetchResponse{URL: "https://x/pie", StatusCode: http.StatusNotFound})
	assert.Equal(t, "fetch https://x/pie: status 404", statusErr.Error())
	assert.EqualError(t, statusErr.Unwrap(), "Not Found")

	cause := errors.New("connection refused")
	var err error = &FetchError{URL: "https://x/pie", Err: cause}
	assert.Equal(t, "fetch https://x/pie: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	var fe *FetchError
	assert.True(t, errors.As(err, &fe))
}
