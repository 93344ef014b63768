package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/survey/backend/internal/pkg/apperr"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteError_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, apperr.NotFoundWithID("Trainee", 9))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Trainee with id 9 not found", decodeError(t, rec).Error)
}

func TestWriteError_BadRequestWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, apperr.NewBadRequest("validation failed").WithDetails(map[string]string{"lastname": "required"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, map[string]any{"lastname": "required"}, body.Details)
}

func TestWriteError_UnknownIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("pq: relation \"trainees\" does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "a database error occurred", decodeError(t, rec).Error)
}

func TestHandle_PassesThroughOnSuccess(t *testing.T) {
	h := Handle(func(w http.ResponseWriter, r *http.Request) error {
		Created(w, map[string]int{"id": 1})
		return nil
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestDecode_RejectsUnknownFieldsAndBadJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, Decode(req, &dst))
	assert.Equal(t, "x", dst.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nope":1}`))
	var br *apperr.BadRequestError
	assert.True(t, errors.As(Decode(req, &dst), &br))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.True(t, errors.As(Decode(req, &dst), &br))
}
