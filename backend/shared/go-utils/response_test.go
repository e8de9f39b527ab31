package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func init() {
	Logger.SetOutput(io.Discard)
}

func TestHandleAppError_UsesAppErrorFields(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("wrapped: %w", &AppError{
		StatusCode: http.StatusConflict,
		Code:       ErrCodeRowVersionConflict,
		Message:    "The record has changed, please refresh",
		Details:    map[string]int{"row_version": 4},
		Err:        ErrRowVersionConflict,
	})

	HandleAppError(rec, err)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]int `json:"details"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, ErrCodeRowVersionConflict, body.Code)
	require.Equal(t, 4, body.Details["row_version"])
}

func TestHandleAppError_FallsBackToInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleAppError(rec, errors.New("db down"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, ErrCodeInternal, body.Code)
	require.Nil(t, body.Details)
}

func TestAppError_Unwrap(t *testing.T) {
	err := &AppError{Message: "conflict", Err: ErrRowVersionConflict}
	require.ErrorIs(t, err, ErrRowVersionConflict)
	require.Equal(t, "row_version_conflict", err.Error())
	require.Equal(t, "no cause", (&AppError{Message: "no cause"}).Error())
}

func TestInitLogger_PrefixesAppName(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	InitLogger("catalog-service")
	defer Logger.SetOutput(io.Discard)

	var buf bytes.Buffer
	Logger.SetOutput(&buf)
	Logger.Debug("hello")

	require.Equal(t, logrus.DebugLevel, Logger.GetLevel())
	require.Contains(t, buf.String(), "[catalog-service] hello")
}
