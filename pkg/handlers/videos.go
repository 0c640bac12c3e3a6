package handlers

import (
	"net/http"

	"github.com/ASHISH26940/asmr-studio-api/pkg/services"
	"github.com/ASHISH26940/asmr-studio-api/pkg/utils"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type CreateVideoRequest struct {
	EnhancedPrompt string `json:"enhancedPrompt" binding:"required"`
	OriginalPrompt string `json:"originalPrompt"`
}

// CreateVideo spends one video's worth of wallet credit and starts rendering.
func (h *Handlers) CreateVideo(c *gin.Context) {
	var req CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debugf("CreateVideo: Invalid request body: %v", err)
		utils.ResponseWithError(c, http.StatusBadRequest, "No enhanced prompt provided.", err.Error())
		return
	}
	userID, ok := requireUserID(c, "CreateVideo")
	if !ok {
		return
	}

	res, err := h.Videos.Submit(c.Request.Context(), services.SubmitRequest{
		UserID:         userID,
		EnhancedPrompt: req.EnhancedPrompt,
		OriginalPrompt: req.OriginalPrompt,
	})
	if err != nil {
		respondError(c, "CreateVideo", err)
		return
	}

	log.Infof("CreateVideo: video %s submitted as prediction %s", res.Video.ID, res.PredictionID)
	utils.ResponseWithSuccess(c, http.StatusCreated, "Video generation started", gin.H{
		"videoId":       res.Video.ID,
		"predictionId":  res.PredictionID,
		"status":        res.Status,
		"walletBalance": res.Wallet.Balance,
		"wallet":        res.Wallet,
		"video":         res.Video,
	})
}

func (h *Handlers) ListVideos(c *gin.Context) {
	userID, ok := requireUserID(c, "ListVideos")
	if !ok {
		return
	}
	videos, err := h.Videos.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "ListVideos", err)
		return
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Videos retrieved", gin.H{"videos": videos, "count": len(videos)})
}

func (h *Handlers) GetWallet(c *gin.Context) {
	userID, ok := requireUserID(c, "GetWallet")
	if !ok {
		return
	}
	wallet, err := h.Wallet.Balance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "GetWallet", err)
		return
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Wallet retrieved", wallet)
}
