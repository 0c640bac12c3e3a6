package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseWithPaymentRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ResponseWithPaymentRequired(c, "Insufficient wallet balance", 0, 600)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "insufficient_funds", body["code"])
	assert.Equal(t, float64(0), body["walletBalance"])
	assert.Equal(t, float64(6), body["requiredAmount"])
	assert.Equal(t, float64(6), body["shortfall"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(600), data["requiredAmountCents"])
	assert.Equal(t, float64(6), data["requiredAmount"])
}

func TestEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	ResponseWithSuccess(c, http.StatusCreated, "ok", gin.H{"id": 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"ok","data":{"id":1}}`, w.Body.String())
}
