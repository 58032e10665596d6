package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "taxcalc/pkg/domain-errors"
)

type incomeRequest struct {
	Income json.Number `json:"income"`
	State  string      `json:"state"`
}

func (r *incomeRequest) Normalize() {
	r.State = strings.TrimSpace(r.State)
}

func (r *incomeRequest) Validate() error {
	if r.Income == "" {
		return errors.New("income is required")
	}
	return nil
}

type yearRequest struct {
	Year int `json:"year"`
}

func (r *yearRequest) Validate() error {
	if r.Year == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "year is required")
	}
	return nil
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestDecodeJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("keeps numbers exact", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"income":1500000.50}`))
		w := httptest.NewRecorder()

		got, ok := DecodeJSON[incomeRequest](w, req, logger, ctx, "req-1")

		require.True(t, ok)
		assert.Equal(t, json.Number("1500000.50"), got.Income)
	})

	for name, body := range map[string]string{
		"malformed": `{income}`,
		"empty":     ``,
	} {
		t.Run(name+" body is a bad request", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			w := httptest.NewRecorder()

			got, ok := DecodeJSON[incomeRequest](w, req, logger, ctx, "req-1")

			assert.False(t, ok)
			assert.Nil(t, got)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "bad_request", decodeError(t, w).Error)
		})
	}
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("normalizes before validating", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"income":1,"state":"  Lagos "}`))
		w := httptest.NewRecorder()

		got, ok := DecodeAndPrepare[incomeRequest](w, req, logger, ctx, "req-1")

		require.True(t, ok)
		assert.Equal(t, "Lagos", got.State)
	})

	t.Run("plain validation error becomes validation_error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		got, ok := DecodeAndPrepare[incomeRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Nil(t, got)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "validation_error", resp.Error)
		assert.Equal(t, "income is required", resp.ErrorDescription)
	})

	t.Run("domain error keeps its code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[yearRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, "bad_request", decodeError(t, w).Error)
	})
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{dErrors.New(dErrors.CodeValidation, "gross income cannot be negative"), http.StatusBadRequest, "validation_error"},
		{dErrors.New(dErrors.CodeNotFound, "no rate table for 1999"), http.StatusNotFound, "not_found"},
		{dErrors.New(dErrors.CodeUnavailable, "down"), http.StatusServiceUnavailable, "service_unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.code, decodeError(t, w).Error)
		})
	}

	t.Run("internal errors do not leak messages", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("dial tcp 10.0.0.1: refused"))
		assert.Empty(t, decodeError(t, w).ErrorDescription)
	})
}
