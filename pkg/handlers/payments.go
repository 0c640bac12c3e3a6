package handlers

import (
	"net/http"
	"strings"

	"github.com/ASHISH26940/asmr-studio-api/pkg/payments"
	"github.com/ASHISH26940/asmr-studio-api/pkg/utils"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type CheckoutRequest struct {
	PriceID string `json:"priceId"`
}

type VerifyRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

type IntentRequest struct {
	EnhancedPrompt string `json:"enhancedPrompt" binding:"required"`
}

type ConfirmRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
}

func (h *Handlers) ListTiers(c *gin.Context) {
	utils.ResponseWithSuccess(c, http.StatusOK, "Pricing tiers", gin.H{
		"tiers":           payments.Tiers(),
		"defaultTier":     payments.DefaultTierID,
		"videoPriceCents": h.Wallet.PriceCents(),
	})
}

func (h *Handlers) ListPayments(c *gin.Context) {
	userID, ok := requireUserID(c, "ListPayments")
	if !ok {
		return
	}
	list, err := h.Payments.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "ListPayments", err)
		return
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Payments retrieved", gin.H{"payments": list, "count": len(list)})
}

// CreateCheckoutSession opens a hosted checkout for a wallet pack. The buyer
// comes back to the request's Origin when it is an allowed origin.
func (h *Handlers) CreateCheckoutSession(c *gin.Context) {
	var req CheckoutRequest
	// An empty body selects the default pack.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ResponseWithError(c, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
	}
	userID, ok := requireUserID(c, "CreateCheckoutSession")
	if !ok {
		return
	}

	// Unknown origins fall back to the configured public URL.
	origin := strings.TrimSpace(c.GetHeader("Origin"))
	if origin != "" && !h.originAllowed(origin) {
		log.Warnf("CreateCheckoutSession: ignoring origin %q not in the allowed list", origin)
		origin = ""
	}
	res, err := h.Payments.CreateCheckout(c.Request.Context(), userID, req.PriceID, origin)
	if err != nil {
		respondError(c, "CreateCheckoutSession", err)
		return
	}
	log.Infof("CreateCheckoutSession: session %s opened for user %s (%s)", res.SessionID, userID, res.Tier.ID)
	utils.ResponseWithSuccess(c, http.StatusOK, "Checkout session created", res)
}

func (h *Handlers) VerifyCheckoutSession(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "Session ID is required", err.Error())
		return
	}
	userID, ok := requireUserID(c, "VerifyCheckoutSession")
	if !ok {
		return
	}

	res, err := h.Payments.VerifyCheckout(c.Request.Context(), userID, req.SessionID)
	if err != nil {
		respondError(c, "VerifyCheckoutSession", err)
		return
	}
	msg := "Payment verified and wallet funded"
	if res.AlreadyRecorded {
		msg = "Payment already recorded"
	}
	utils.ResponseWithSuccess(c, http.StatusOK, msg, res)
}

func (h *Handlers) CreatePaymentIntent(c *gin.Context) {
	var req IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "Enhanced prompt is required", err.Error())
		return
	}
	userID, ok := requireUserID(c, "CreatePaymentIntent")
	if !ok {
		return
	}

	res, err := h.Payments.CreateIntent(c.Request.Context(), userID, req.EnhancedPrompt)
	if err != nil {
		respondError(c, "CreatePaymentIntent", err)
		return
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Payment intent created", res)
}

func (h *Handlers) ConfirmPaymentIntent(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "Payment intent ID is required", err.Error())
		return
	}
	userID, ok := requireUserID(c, "ConfirmPaymentIntent")
	if !ok {
		return
	}

	res, err := h.Payments.ConfirmIntent(c.Request.Context(), userID, req.PaymentIntentID)
	if err != nil {
		respondError(c, "ConfirmPaymentIntent", err)
		return
	}
	msg := "Payment confirmed"
	if res.AlreadyRecorded {
		msg = "Payment already recorded"
	}
	utils.ResponseWithSuccess(c, http.StatusOK, msg, res)
}
