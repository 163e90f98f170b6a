package utils

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptogift/ledger/internal/shared/errors"
)

type sessionInput struct {
	Address   string `json:"address" binding:"required,eth_addr" validate:"required,eth_addr"`
	SessionID string `json:"session_id" binding:"required,max=8" validate:"required,max=8"`
}

func TestValidateStruct(t *testing.T) {
	err := ValidateStruct(sessionInput{Address: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", SessionID: "s1"})
	assert.NoError(t, err)

	err = ValidateStruct(sessionInput{Address: "alice", SessionID: "way-too-long"})
	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
	assert.Contains(t, appErr.Details, "address must be a 0x-prefixed 40 hex character wallet address")
	assert.Contains(t, appErr.Details, "session_id must be at most 8 characters long")
}

func TestBindingError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bind := func(body string) error {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var in sessionInput
		return c.ShouldBindJSON(&in)
	}

	err := BindingError(bind(`{"address":"0x1"}`))
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
	assert.Contains(t, appErr.Details, "address must be")
	assert.Contains(t, appErr.Details, "session_id is required")

	err = BindingError(bind(`{not json`))
	appErr = errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeBadRequest, appErr.Type)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "u***@example.com", MaskEmail("user@example.com"))
	assert.Equal(t, "***", MaskEmail("nobody"))
	assert.Equal(t, "0xaaaa...aaaa", MaskAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	assert.Equal(t, "a***@b.io", MaskIdentity("alice@b.io"))
	assert.Equal(t, "0xbbbb...bbbb", MaskIdentity("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"))
	assert.Equal(t, "user_abc123", MaskIdentity("user_abc123"))
}
