package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// PaymentRequiredResponse is the 402 body. Amounts are repeated at top level
// so a client can read them without unwrapping data.
type PaymentRequiredResponse struct {
	JSONResponse
	Code           string  `json:"code"`
	WalletBalance  float64 `json:"walletBalance"`
	RequiredAmount float64 `json:"requiredAmount"`
	Shortfall      float64 `json:"shortfall"`
}

type PaymentRequiredData struct {
	WalletBalance       float64 `json:"walletBalance"`
	RequiredAmount      float64 `json:"requiredAmount"`
	Shortfall           float64 `json:"shortfall"`
	WalletBalanceCents  int64   `json:"walletBalanceCents"`
	RequiredAmountCents int64   `json:"requiredAmountCents"`
	ShortfallCents      int64   `json:"shortfallCents"`
}

func ResponseWithSuccess(
	c *gin.Context,
	statusCode int,
	message string,
	data interface{},
) {
	c.JSON(statusCode, JSONResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func ResponseWithError(
	c *gin.Context,
	statusCode int,
	message string,
	errorDetails interface{},
) {
	c.JSON(statusCode, JSONResponse{
		Success: false,
		Message: message,
		Error:   errorDetails,
	})
}

// ResponseWithPaymentRequired answers 402 with the wallet figures in dollars
// and cents.
func ResponseWithPaymentRequired(c *gin.Context, message string, balanceCents, requiredCents int64) {
	if balanceCents < 0 {
		balanceCents = 0
	}
	shortfall := requiredCents - balanceCents
	data := PaymentRequiredData{
		WalletBalance:       float64(balanceCents) / 100,
		RequiredAmount:      float64(requiredCents) / 100,
		Shortfall:           float64(shortfall) / 100,
		WalletBalanceCents:  balanceCents,
		RequiredAmountCents: requiredCents,
		ShortfallCents:      shortfall,
	}
	c.JSON(http.StatusPaymentRequired, PaymentRequiredResponse{
		JSONResponse: JSONResponse{
			Success: false,
			Message: message,
			Data:    data,
			Error:   "insufficient_funds",
		},
		Code:           "insufficient_funds",
		WalletBalance:  data.WalletBalance,
		RequiredAmount: data.RequiredAmount,
		Shortfall:      data.Shortfall,
	})
}
