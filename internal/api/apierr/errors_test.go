package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/mankind/internal/model"
)

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"player not found", model.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound},
		{"wrapped player not found", fmt.Errorf("lookup: %w", model.ErrPlayerNotFound), http.StatusNotFound, CodePlayerNotFound},
		{"duel not found", model.ErrDuelNotFound, http.StatusNotFound, CodeDuelNotFound},
		{"invalid player id", model.ErrInvalidPlayerID, http.StatusBadRequest, CodeInvalidPlayerID},
		{"invalid request", NewInvalidRequestError("limit must be a number"), http.StatusBadRequest, CodeInvalidRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
			assert.Equal(t, tt.status, StatusOf(tt.err))
		})
	}
}
