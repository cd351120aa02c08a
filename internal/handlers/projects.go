package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harry7799/heng-studio/internal/models"
	"github.com/harry7799/heng-studio/internal/services"
)

type ProjectsHandler struct {
	projects *services.ProjectService
}

func NewProjectsHandler(projects *services.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{projects: projects}
}

// ListProjects godoc
// @Summary     List projects
// @Description Returns every portfolio project, newest first
// @Tags        projects
// @Produce     json
// @Success     200 {array}  models.Project
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/projects [get]
func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		respondError(c, "list_projects", err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// GetProject godoc
// @Summary     Get project
// @Tags        projects
// @Produce     json
// @Param       id  path     string true "Project ID"
// @Success     200 {object} models.Project
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/projects/{id} [get]
func (h *ProjectsHandler) GetProject(c *gin.Context) {
	project, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "get_project", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// CreateProject godoc
// @Summary     Create project
// @Description Validates the payload, assigns an id and prepends the project
// @Tags        projects
// @Accept      json
// @Produce     json
// @Param       request body     models.ProjectInput true "Project"
// @Success     201     {object} models.Project
// @Failure     400     {object} models.ErrorResponse
// @Failure     401     {object} models.ErrorResponse
// @Failure     503     {object} models.ErrorResponse
// @Security    AdminToken
// @Router      /api/projects [post]
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		respondError(c, "create_project", err)
		return
	}
	project, err := h.projects.Create(c.Request.Context(), body)
	if err != nil {
		respondError(c, "create_project", err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// ReplaceProject godoc
// @Summary     Replace project
// @Description Replaces every field except the id
// @Tags        projects
// @Accept      json
// @Produce     json
// @Param       id      path     string              true "Project ID"
// @Param       request body     models.ProjectInput true "Project"
// @Success     200     {object} models.Project
// @Failure     400     {object} models.ErrorResponse
// @Failure     401     {object} models.ErrorResponse
// @Failure     404     {object} models.ErrorResponse
// @Security    AdminToken
// @Router      /api/projects/{id} [put]
func (h *ProjectsHandler) ReplaceProject(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		respondError(c, "replace_project", err)
		return
	}
	project, err := h.projects.Replace(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		respondError(c, "replace_project", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// PatchProject godoc
// @Summary     Update project fields
// @Description Merges the provided fields; metadata is replaced as a whole when present
// @Tags        projects
// @Accept      json
// @Produce     json
// @Param       id      path     string              true "Project ID"
// @Param       request body     models.ProjectInput true "Fields to change"
// @Success     200     {object} models.Project
// @Failure     400     {object} models.ErrorResponse
// @Failure     401     {object} models.ErrorResponse
// @Failure     404     {object} models.ErrorResponse
// @Security    AdminToken
// @Router      /api/projects/{id} [patch]
func (h *ProjectsHandler) PatchProject(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		respondError(c, "patch_project", err)
		return
	}
	project, err := h.projects.Patch(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		respondError(c, "patch_project", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// DeleteProject godoc
// @Summary     Delete project
// @Tags        projects
// @Produce     json
// @Param       id  path     string true "Project ID"
// @Success     200 {object} models.DeleteResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Security    AdminToken
// @Router      /api/projects/{id} [delete]
func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	deleted, err := h.projects.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "delete_project", err)
		return
	}
	c.JSON(http.StatusOK, models.DeleteResponse{OK: true, Deleted: deleted})
}
