package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fanfcorp/acp-market/internal/config"
	"github.com/fanfcorp/acp-market/internal/services"
)

// RestServerHandler handles REST requests for the server directory.
type RestServerHandler struct {
	cfg             *config.Config
	serverService   services.IServerService
	categoryService services.ICategoryService
}

// NewRestServerHandler creates a new RestServerHandler.
func NewRestServerHandler(cfg *config.Config, serverService services.IServerService, categoryService services.ICategoryService) *RestServerHandler {
	return &RestServerHandler{
		cfg:             cfg,
		serverService:   serverService,
		categoryService: categoryService,
	}
}

// SearchServers handles GET /v1/servers
func (h *RestServerHandler) SearchServers(c *gin.Context) {
	limit, offset := parsePagination(c, h.cfg)
	criteria := services.ServerSearchCriteria{
		Query:        c.Query("q"),
		CategorySlug: c.Query("category"),
		Limit:        limit,
		Offset:       offset,
	}

	page, err := h.serverService.Search(c.Request.Context(), criteria)
	if err != nil {
		respondServiceError(c, err, "Failed to search servers")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetLeaderboard handles GET /v1/servers/leaderboard
func (h *RestServerHandler) GetLeaderboard(c *gin.Context) {
	servers, err := h.serverService.Leaderboard(c.Request.Context(), h.cfg.LeaderboardSize)
	if err != nil {
		respondServiceError(c, err, "Failed to load leaderboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{"servers": servers})
}

// GetServerBySlug handles GET /v1/servers/:slug
func (h *RestServerHandler) GetServerBySlug(c *gin.Context) {
	server, err := h.serverService.FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve server")
		return
	}
	c.JSON(http.StatusOK, server)
}

// ListCategories handles GET /v1/categories
func (h *RestServerHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
