package handlers

import (
	"net/http"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/ASHISH26940/asmr-studio-api/pkg/utils"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *Handlers) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debugf("CreateProject: Invalid request body: %v", err)
		utils.ResponseWithError(c, http.StatusBadRequest, "Project name is required", err.Error())
		return
	}
	userID, ok := requireUserID(c, "CreateProject")
	if !ok {
		return
	}

	project, err := h.Projects.Create(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		respondError(c, "CreateProject", err)
		return
	}
	log.Infof("CreateProject: project %s created for user %s", project.ID, userID)
	utils.ResponseWithSuccess(c, http.StatusCreated, "Project created", gin.H{"project": project})
}

func (h *Handlers) ListProjects(c *gin.Context) {
	userID, ok := requireUserID(c, "ListProjects")
	if !ok {
		return
	}
	projects, err := h.Projects.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "ListProjects", err)
		return
	}
	if projects == nil {
		projects = []db.ProjectSummary{}
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Projects retrieved", gin.H{"projects": projects})
}

// GetProject returns the project with its prompts grouped into sessions.
func (h *Handlers) GetProject(c *gin.Context) {
	userID, ok := requireUserID(c, "GetProject")
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.Projects.Get(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, "GetProject", err)
		return
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Project retrieved", detail)
}

func (h *Handlers) UpdateProject(c *gin.Context) {
	userID, ok := requireUserID(c, "UpdateProject")
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	project, err := h.Projects.Update(c.Request.Context(), userID, projectID, db.ProjectUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, "UpdateProject", err)
		return
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Project updated", gin.H{"project": project})
}

// DeleteProject removes the project row. Prompts filed under it are kept.
func (h *Handlers) DeleteProject(c *gin.Context) {
	userID, ok := requireUserID(c, "DeleteProject")
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.Projects.Delete(c.Request.Context(), userID, projectID); err != nil {
		respondError(c, "DeleteProject", err)
		return
	}
	log.Infof("DeleteProject: project %s deleted by user %s", projectID, userID)
	utils.ResponseWithSuccess(c, http.StatusOK, "Project deleted", nil)
}
