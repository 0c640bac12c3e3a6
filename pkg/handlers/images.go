package handlers

import (
	"net/http"

	"github.com/ASHISH26940/asmr-studio-api/pkg/utils"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type GenerateImageRequest struct {
	Prompt   string `json:"prompt" binding:"required"`
	PromptID string `json:"promptId"`
}

// GenerateImage renders a first frame for a prompt and blocks until it is ready.
func (h *Handlers) GenerateImage(c *gin.Context) {
	var req GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "No prompt provided.", err.Error())
		return
	}
	userID, ok := requireUserID(c, "GenerateImage")
	if !ok {
		return
	}

	res, err := h.Images.Generate(c.Request.Context(), req.Prompt, req.PromptID)
	if err != nil {
		respondError(c, "GenerateImage", err)
		return
	}
	log.Infof("GenerateImage: image %s ready for user %s (mirrored=%t)", res.PredictionID, userID, res.Mirrored)
	utils.ResponseWithSuccess(c, http.StatusOK, "Image generated", res)
}
