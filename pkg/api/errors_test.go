package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
)

func TestMapErr_TranslatesEachKind(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apierrors.NotFound("missing"), http.StatusNotFound},
		{apierrors.Conflict("taken"), http.StatusConflict},
		{apierrors.StateViolation("wrong state"), http.StatusConflict},
		{apierrors.Validation("bad input"), http.StatusBadRequest},
		{apierrors.External("upstream", errors.New("boom")), http.StatusBadGateway},
		{apierrors.Interrupted("cancelled"), http.StatusServiceUnavailable},
		{apierrors.Corrupt("bad data", errors.New("eof")), http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		he := mapErr(tc.err)
		require.NotNil(t, he)
		assert.Equal(t, tc.want, he.Code)
	}
}

func TestMapErr_UnclassifiedErrorIsInternal(t *testing.T) {
	he := mapErr(errors.New("something unexpected"))
	require.NotNil(t, he)
	assert.Equal(t, http.StatusInternalServerError, he.Code)
}
