package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ignite/massmail/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Result {
	t.Helper()
	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestFromErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: password too short", domain.ErrInvalid), http.StatusBadRequest},
		{fmt.Errorf("user: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: contact", domain.ErrConflict), http.StatusConflict},
		{fmt.Errorf("%w: sender", domain.ErrDisabled), http.StatusForbidden},
		{fmt.Errorf("%w: quota", domain.ErrMailAPI), http.StatusBadGateway},
		{fmt.Errorf("ping: %w", domain.ErrUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		FromError(rec, tc.err)
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
		assert.Equal(t, "error", decode(t, rec).Status)
	}
}

func TestInternalErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	InternalError(rec, fmt.Errorf("pq: relation users does not exist"))
	assert.Equal(t, "internal server error", decode(t, rec).Message)
}

func TestFromErrorWithDataKeepsPartialResult(t *testing.T) {
	rec := httptest.NewRecorder()
	FromErrorWithData(rec, fmt.Errorf("import: %w", domain.ErrUnavailable), map[string]int{"added": 2})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	res := decode(t, rec)
	assert.Equal(t, "store unavailable", res.Message)
	assert.Equal(t, map[string]any{"added": float64(2)}, res.Data)
}

func TestDegradedCarriesZeroValue(t *testing.T) {
	rec := httptest.NewRecorder()
	Degraded(rec, []string{}, fmt.Errorf("connection refused"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestDecode(t *testing.T) {
	var dst struct{ Name string }
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`))
	assert.True(t, Decode(rec, req, &dst))
	assert.Equal(t, "a", dst.Name)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.False(t, Decode(rec, req, &dst))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
