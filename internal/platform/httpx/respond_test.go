package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKEnvelope(t *testing.T) {
	res := httptest.NewRecorder()
	OK(res, http.StatusCreated, "created", map[string]string{"k": "v"})

	assert.Equal(t, http.StatusCreated, res.Code)
	assert.Equal(t, "application/json", res.Header().Get("Content-Type"))

	var env Envelope
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "created", env.Message)
	assert.Nil(t, env.Count)
}

func TestOKCountEnvelope(t *testing.T) {
	res := httptest.NewRecorder()
	OKCount(res, http.StatusOK, "listed", []int{1, 2, 3}, 3)

	var env Envelope
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &env))
	require.NotNil(t, env.Count)
	assert.Equal(t, 3, *env.Count)
}

func TestFailEnvelope(t *testing.T) {
	res := httptest.NewRecorder()
	Fail(res, http.StatusNotFound, "missing")

	var env Envelope
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "missing", env.Message)
	assert.NotContains(t, res.Body.String(), `"data"`)
}

func TestFailFieldsEnvelope(t *testing.T) {
	res := httptest.NewRecorder()
	FailFields(res, http.StatusBadRequest, "validation failed", map[string][]string{
		"email": {"is required"},
	})

	var env Envelope
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &env))
	assert.Equal(t, []string{"is required"}, env.Errors["email"])
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var target struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
	res := httptest.NewRecorder()

	err := DecodeJSON(res, req, &target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDecodeJSONOversizedBody(t *testing.T) {
	var target struct{}
	big := `{"pad":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	res := httptest.NewRecorder()

	assert.Error(t, DecodeJSON(res, req, &target))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(ErrNotFound))
	assert.Equal(t, http.StatusConflict, StatusFor(ErrDuplicate))
	assert.Equal(t, http.StatusBadRequest, StatusFor(ErrValidation))
	assert.Equal(t, http.StatusForbidden, StatusFor(ErrForbidden))
	assert.Equal(t, http.StatusUnauthorized, StatusFor(ErrUnauthorized))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(assert.AnError))
}

func TestRespondErrorMasksInternal(t *testing.T) {
	res := httptest.NewRecorder()
	RespondError(res, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.NotContains(t, res.Body.String(), assert.AnError.Error())
}
