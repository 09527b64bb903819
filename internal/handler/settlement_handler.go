package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/apperror"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SettlementHandler struct {
	settlementService service.SettlementService
}

func NewSettlementHandler(settlementService service.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

func (h *SettlementHandler) RegisterRoutes(router *gin.RouterGroup) {
	settlements := router.Group("/api/settlements")
	{
		settlements.POST("", middleware.RequireRole("admin", "manager"), h.CreateSettlement)
		settlements.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListSettlements)
		settlements.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetSettlement)
		settlements.PUT("/:id/status", middleware.RequireRole("admin", "manager"), h.TransitionSettlement)
	}
}

// @Summary      Create inter-branch settlement
// @Description  Opens a pending settlement obligation between two branches
// @Tags         Settlements
// @Accept       json
// @Produce      json
// @Param        request body service.CreateSettlementRequest true "Settlement details"
// @Success      201 {object} response.Response
// @Failure      400 {object} response.Response "Invalid parameter"
// @Failure      404 {object} response.Response "Branch not found"
// @Security     BearerAuth
// @Router       /api/settlements [post]
func (h *SettlementHandler) CreateSettlement(c *gin.Context) {
	var req service.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.KindInvalidParameter, "invalid request body: "+err.Error()))
		return
	}

	settlement, err := h.settlementService.Create(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, settlement))
}

// @Summary      List settlements
// @Description  Paginated settlement list, optionally filtered by status or branch
// @Tags         Settlements
// @Produce      json
// @Param        status    query string false "pending, approved, paid, cancelled, overdue"
// @Param        branch_id query string false "Branch involved on either side"
// @Param        page      query int    false "Page number"
// @Param        limit     query int    false "Page size (max 100)"
// @Success      200 {object} response.Response
// @Security     BearerAuth
// @Router       /api/settlements [get]
func (h *SettlementHandler) ListSettlements(c *gin.Context) {
	params := pagination.Parse(c)

	settlements, total, err := h.settlementService.List(c.Request.Context(), middleware.TenantID(c), service.SettlementListQuery{
		Status:   c.Query("status"),
		BranchID: c.Query("branch_id"),
		Page:     params.Page,
		Limit:    params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"settlements": settlements,
		"total":       total,
		"page":        params.Page,
		"limit":       params.Limit,
	}))
}

// @Summary      Get settlement
// @Description  Settlement detail including its full transition history
// @Tags         Settlements
// @Produce      json
// @Param        id path string true "Settlement ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "Not found"
// @Security     BearerAuth
// @Router       /api/settlements/{id} [get]
func (h *SettlementHandler) GetSettlement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperror.New(apperror.KindInvalidParameter, "invalid settlement id"))
		return
	}

	settlement, err := h.settlementService.Get(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, settlement))
}

// @Summary      Transition settlement status
// @Description  Applies approve, pay, cancel, or mark_overdue. Paying posts the paired ledger entries atomically with the status change.
// @Tags         Settlements
// @Accept       json
// @Produce      json
// @Param        id      path string                              true "Settlement ID"
// @Param        request body service.SettlementTransitionRequest true "Action to apply"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "Invalid action or state transition"
// @Failure      404 {object} response.Response "Not found"
// @Security     BearerAuth
// @Router       /api/settlements/{id}/status [put]
func (h *SettlementHandler) TransitionSettlement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperror.New(apperror.KindInvalidParameter, "invalid settlement id"))
		return
	}

	var req service.SettlementTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.KindInvalidParameter, "invalid request body: "+err.Error()))
		return
	}

	settlement, err := h.settlementService.Transition(c.Request.Context(), middleware.TenantID(c), id, middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, settlement))
}
