package handlers

import (
	"net/http"

	"github.com/ASHISH26940/asmr-studio-api/pkg/middleware"
	"github.com/ASHISH26940/asmr-studio-api/pkg/promptgen"
	"github.com/ASHISH26940/asmr-studio-api/pkg/services"
	"github.com/ASHISH26940/asmr-studio-api/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type EnhanceRequest struct {
	Prompt          string                     `json:"prompt" binding:"required"`
	ProjectID       *string                    `json:"projectId"`
	ProjectMetadata *promptgen.ProjectMetadata `json:"projectMetadata"`
}

type PromptOnlyRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

func (r *EnhanceRequest) toService(c *gin.Context) (services.EnhanceRequest, bool) {
	out := services.EnhanceRequest{
		Idea:     r.Prompt,
		UserID:   middleware.OptionalUserID(c),
		Metadata: r.ProjectMetadata,
	}
	if r.ProjectID != nil && *r.ProjectID != "" {
		id, err := uuid.Parse(*r.ProjectID)
		if err != nil {
			utils.ResponseWithError(c, http.StatusBadRequest, "Invalid projectId", err.Error())
			return out, false
		}
		out.ProjectID = &id
	}
	return out, true
}

// EnhancePrompt returns nine cinematic variations of the idea and, for signed
// in callers, files them as a new session.
func (h *Handlers) EnhancePrompt(c *gin.Context) {
	var req EnhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debugf("EnhancePrompt: Invalid request body: %v", err)
		utils.ResponseWithError(c, http.StatusBadRequest, "No prompt provided.", err.Error())
		return
	}
	svcReq, ok := req.toService(c)
	if !ok {
		return
	}

	res, err := h.Prompts.Enhance(c.Request.Context(), svcReq)
	if err != nil {
		respondError(c, "EnhancePrompt", err)
		return
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Prompts generated", res)
}

func (h *Handlers) EnhanceProjectPrompts(c *gin.Context) {
	var req EnhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "No prompt provided.", err.Error())
		return
	}
	svcReq, ok := req.toService(c)
	if !ok {
		return
	}

	res, err := h.Prompts.EnhanceProjectPrompts(c.Request.Context(), svcReq)
	if err != nil {
		respondError(c, "EnhanceProjectPrompts", err)
		return
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Project prompts generated", res)
}

func (h *Handlers) EnhanceProjectMetadata(c *gin.Context) {
	var req PromptOnlyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "No prompt provided.", err.Error())
		return
	}

	meta, fromModel, err := h.Prompts.GenerateMetadata(c.Request.Context(), req.Prompt)
	if err != nil {
		respondError(c, "EnhanceProjectMetadata", err)
		return
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Project metadata generated", gin.H{
		"projectMetadata": meta,
		"fallbackUsed":    !fromModel,
	})
}

func (h *Handlers) EnhanceSingle(c *gin.Context) {
	var req PromptOnlyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "No prompt provided.", err.Error())
		return
	}

	out, err := h.Prompts.EnhanceSingle(c.Request.Context(), req.Prompt)
	if err != nil {
		respondError(c, "EnhanceSingle", err)
		return
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Prompt enhanced", gin.H{"enhancedPrompt": out})
}
