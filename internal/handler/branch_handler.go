package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type BranchHandler struct {
	branchRepo repository.BranchRepository
}

func NewBranchHandler(branchRepo repository.BranchRepository) *BranchHandler {
	return &BranchHandler{branchRepo: branchRepo}
}

func (h *BranchHandler) RegisterRoutes(router *gin.RouterGroup) {
	branches := router.Group("/api/branches")
	{
		branches.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListBranches)
	}
}

// @Summary      List active branches
// @Description  Active branches for the caller's tenant, ordered by code
// @Tags         Branches
// @Produce      json
// @Success      200 {object} response.Response
// @Security     BearerAuth
// @Router       /api/branches [get]
func (h *BranchHandler) ListBranches(c *gin.Context) {
	branches, err := h.branchRepo.ListActive(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, branches))
}
