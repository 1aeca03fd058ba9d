package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorWithInternal(t *testing.T) {
	internal := errors.New("db down")
	err := ErrInternalServer.WithInternal(internal)

	require.ErrorIs(t, err, internal)
	require.Contains(t, err.Error(), "db down")
	require.Equal(t, ErrInternalServer.Code, err.Code)

	// the shared sentinel must stay untouched
	require.Nil(t, ErrInternalServer.Internal)
}

func TestFromError(t *testing.T) {
	require.Nil(t, FromError(nil))

	appErr := FromError(ErrNotFound)
	require.Equal(t, http.StatusNotFound, appErr.StatusCode)

	wrapped := FromError(errors.New("boom"))
	require.Equal(t, ErrInternalServer.Code, wrapped.Code)
	require.EqualError(t, wrapped.Internal, "boom")
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("amount must be positive")
	require.Equal(t, http.StatusBadRequest, err.StatusCode)
	require.Equal(t, "amount must be positive", err.Message)
}
