package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ASHISH26940/asmr-studio-api/pkg/config"
	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/ASHISH26940/asmr-studio-api/pkg/llm"
	"github.com/ASHISH26940/asmr-studio-api/pkg/middleware"
	"github.com/ASHISH26940/asmr-studio-api/pkg/payments"
	"github.com/ASHISH26940/asmr-studio-api/pkg/replicate"
	"github.com/ASHISH26940/asmr-studio-api/pkg/services"
	"github.com/ASHISH26940/asmr-studio-api/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Services groups the business services the handlers delegate to.
type Services struct {
	JWT      *services.JWTService
	Prompts  *services.PromptService
	Wallet   *services.WalletService
	Videos   *services.VideoService
	Payments *services.PaymentService
	Projects *services.ProjectService
	Images   *services.ImageService
}

// Handlers struct to hold dependencies
type Handlers struct {
	Config *config.Config
	Store  db.Store
	Services
}

// NewHandlers creates a new instance of Handlers
func NewHandlers(cfg *config.Config, store db.Store, svc Services) *Handlers {
	return &Handlers{
		Config:   cfg,
		Store:    store,
		Services: svc,
	}
}

// originAllowed reports whether origin is one of the configured browser
// origins. A "*" entry allows any origin.
func (h *Handlers) originAllowed(origin string) bool {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" || h.Config == nil {
		return false
	}
	for _, allowed := range h.Config.AllowedOrigins {
		if allowed == "*" || strings.TrimRight(allowed, "/") == origin {
			return true
		}
	}
	return false
}

// requireUserID reads the caller from the auth middleware's claims. It writes
// the error response itself when they are missing.
func requireUserID(c *gin.Context, op string) (uuid.UUID, bool) {
	claims, exists := middleware.GetUserClaimsFromContext(c)
	if !exists {
		log.Errorf("%s: User claims not found in context.", op)
		utils.ResponseWithError(c, http.StatusUnauthorized, "Authentication required", nil)
		return uuid.Nil, false
	}
	return claims.UserID, true
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid "+name, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service and upstream errors onto the HTTP error classes.
func respondError(c *gin.Context, op string, err error) {
	var (
		verr    *services.ValidationError
		funds   *services.InsufficientFundsError
		submit  *services.SubmitError
		llmErr  *llm.UpstreamError
		mediaEr *replicate.APIError
		payErr  *payments.ProviderError
	)

	switch {
	case errors.As(err, &verr):
		log.Debugf("%s: invalid request: %v", op, err)
		utils.ResponseWithError(c, http.StatusBadRequest, verr.Message, gin.H{"field": verr.Field})
	case errors.As(err, &funds):
		log.Infof("%s: %v", op, err)
		utils.ResponseWithPaymentRequired(c, "Insufficient wallet balance", funds.BalanceCents, funds.RequiredCents)
	case errors.Is(err, services.ErrNotFound):
		utils.ResponseWithError(c, http.StatusNotFound, "Not found", nil)
	case errors.Is(err, services.ErrPaymentNotCompleted):
		utils.ResponseWithError(c, http.StatusBadRequest, "Payment not completed", nil)
	case errors.Is(err, services.ErrWalletBusy):
		utils.ResponseWithError(c, http.StatusConflict, "Another video submission is in progress", nil)
	case errors.As(err, &submit):
		detail := submit.Err.Error()
		if errors.As(err, &mediaEr) {
			detail = mediaEr.Body
		}
		log.Errorf("%s: %v", op, err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Video generation request failed", gin.H{
			"detail":  detail,
			"videoId": submit.VideoID,
		})
	case errors.As(err, &llmErr):
		log.Errorf("%s: %v", op, err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Language model request failed", llmErr.Detail)
	case errors.Is(err, llm.ErrEmptyCompletion):
		utils.ResponseWithError(c, http.StatusInternalServerError, "Language model returned no content", nil)
	case errors.As(err, &mediaEr):
		log.Errorf("%s: %v", op, err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Media provider request failed", mediaEr.Body)
	case errors.As(err, &payErr):
		log.Errorf("%s: %v", op, err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Payment provider request failed", payErr.Message)
	case errors.Is(err, services.ErrImageFailed):
		log.Errorf("%s: %v", op, err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Image generation failed", err.Error())
	case errors.Is(err, context.Canceled):
		log.Debugf("%s: client went away", op)
	default:
		log.Errorf("%s: %v", op, err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Internal server error", err.Error())
	}
}
