package handlers

import (
	"net/http"
	"strconv"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/ASHISH26940/asmr-studio-api/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListPrompts returns the caller's saved prompts, newest first, optionally
// narrowed by sessionId, projectId or favorited=true.
func (h *Handlers) ListPrompts(c *gin.Context) {
	userID, ok := requireUserID(c, "ListPrompts")
	if !ok {
		return
	}

	var filter db.PromptFilter
	if v := c.Query("sessionId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			utils.ResponseWithError(c, http.StatusBadRequest, "Invalid sessionId", err.Error())
			return
		}
		filter.SessionID = &id
	}
	if v := c.Query("projectId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			utils.ResponseWithError(c, http.StatusBadRequest, "Invalid projectId", err.Error())
			return
		}
		filter.ProjectID = &id
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			utils.ResponseWithError(c, http.StatusBadRequest, "limit must be a positive integer", nil)
			return
		}
		filter.Limit = n
	}
	filter.FavoritedOnly = c.Query("favorited") == "true"

	listing, err := h.Projects.ListPrompts(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, "ListPrompts", err)
		return
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Prompts retrieved", listing)
}

func (h *Handlers) UpdatePrompt(c *gin.Context) {
	userID, ok := requireUserID(c, "UpdatePrompt")
	if !ok {
		return
	}
	promptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var flags db.PromptFlags
	if err := c.ShouldBindJSON(&flags); err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	prompt, err := h.Projects.UpdatePromptFlags(c.Request.Context(), userID, promptID, flags)
	if err != nil {
		respondError(c, "UpdatePrompt", err)
		return
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Prompt updated", gin.H{"prompt": prompt})
}
