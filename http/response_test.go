package http_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagarc03/galleria"
	galleriahttp "github.com/sagarc03/galleria/http"
)

func TestStatusForStage(t *testing.T) {
	tests := []struct {
		stage galleria.Stage
		want  int
	}{
		{galleria.StageValidation, http.StatusBadRequest},
		{galleria.StageNotFound, http.StatusNotFound},
		{galleria.StageConfig, http.StatusInternalServerError},
		{galleria.StageImport, http.StatusInternalServerError},
		{galleria.StageClientInit, http.StatusInternalServerError},
		{galleria.StageCredentialParse, http.StatusInternalServerError},
		{galleria.StageStoreOperation, http.StatusInternalServerError},
		{galleria.StageUnexpected, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			assert.Equal(t, tt.want, galleriahttp.StatusForStage(tt.stage))
		})
	}
}

func TestHandleError_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()

	galleriahttp.HandleError(rec, galleria.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
}

func TestHandleError_InvalidInput(t *testing.T) {
	rec := httptest.NewRecorder()

	galleriahttp.HandleError(rec, galleria.ErrInvalidInput)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid path")
}

func TestHandleError_Unauthorized(t *testing.T) {
	rec := httptest.NewRecorder()

	galleriahttp.HandleError(rec, fmt.Errorf("signature expired: %w", galleria.ErrUnauthorized))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "signature expired")
}

func TestHandleError_InternalError(t *testing.T) {
	rec := httptest.NewRecorder()

	galleriahttp.HandleError(rec, errors.New("some unexpected error"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestHandleError_WrappedIssueError(t *testing.T) {
	rec := httptest.NewRecorder()

	ie := &galleria.IssueError{Stage: galleria.StageNotFound, Message: "image not found: d/optimized/f.jpg", Key: "d/optimized/f.jpg"}
	galleriahttp.HandleError(rec, fmt.Errorf("handler: %w", ie))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"image not found: d/optimized/f.jpg"}`, rec.Body.String())
}

func TestWriteError_Success(t *testing.T) {
	rec := httptest.NewRecorder()

	galleriahttp.WriteError(rec, http.StatusInternalServerError, "failed to check image existence", "head object: timeout")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"failed to check image existence","details":"head object: timeout"}`, rec.Body.String())
}

func TestWriteJSON_Success(t *testing.T) {
	rec := httptest.NewRecorder()

	data := map[string]string{"key": "value"}
	err := galleriahttp.WriteJSON(rec, http.StatusOK, data)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"key":"value"`)
}

func TestWriteJSON_EncodingError(t *testing.T) {
	rec := httptest.NewRecorder()

	// Channels cannot be JSON encoded
	data := make(chan int)
	err := galleriahttp.WriteJSON(rec, http.StatusOK, data)

	assert.Error(t, err)
}
