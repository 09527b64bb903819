package handler

import (
	"net/http"
	"strconv"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	leaderboardService    service.LeaderboardService
	reconciliationService service.ReconciliationService
	wastageService        service.WastageService
}

func NewReportHandler(
	leaderboardService service.LeaderboardService,
	reconciliationService service.ReconciliationService,
	wastageService service.WastageService,
) *ReportHandler {
	return &ReportHandler{
		leaderboardService:    leaderboardService,
		reconciliationService: reconciliationService,
		wastageService:        wastageService,
	}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports")
	{
		reports.GET("/branch-performance", middleware.RequireRole("admin", "manager"), h.GetBranchPerformance)
		reports.POST("/reconciliation", middleware.RequireRole("admin", "manager"), h.RunReconciliation)
		reports.GET("/reconciliation/history", middleware.RequireRole("admin", "manager"), h.GetReconciliationHistory)
		reports.GET("/wastage-anomalies", middleware.RequireRole("admin", "manager"), h.GetWastageAnomalies)
	}
}

// @Summary      Branch performance report
// @Description  Ranked leaderboard, side-by-side comparison, or daily trends for the selected metric and period
// @Tags         Reports
// @Accept       json
// @Produce      json
// @Param        period     query string false "today, yesterday, week, month, quarter, year"
// @Param        start_date query string false "Start date (RFC3339 or YYYY-MM-DD), overrides period"
// @Param        end_date   query string false "End date (RFC3339 or YYYY-MM-DD), overrides period"
// @Param        metric     query string false "sales, transactions, customers, avg_transaction"
// @Param        view       query string false "leaderboard, comparison, trends"
// @Param        branches   query string false "all or comma-separated branch ids"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "Invalid parameter"
// @Failure      401 {object} response.Response "Unauthorized"
// @Failure      504 {object} response.Response "Query timed out"
// @Security     BearerAuth
// @Router       /api/reports/branch-performance [get]
func (h *ReportHandler) GetBranchPerformance(c *gin.Context) {
	filter := service.LeaderboardFilter{
		Period:    c.Query("period"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Metric:    c.Query("metric"),
		View:      c.Query("view"),
		Branches:  c.Query("branches"),
	}

	result, err := h.leaderboardService.GetBranchPerformance(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// @Summary      Run financial reconciliation
// @Description  Cross-checks POS totals, ledger entries, shift cash counts and inter-branch settlements for the period, persists a snapshot, and fans out notifications
// @Tags         Reports
// @Accept       json
// @Produce      json
// @Param        request body service.ReconciliationRequest true "Reconciliation scope"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "Invalid parameter"
// @Failure      404 {object} response.Response "Branch not found"
// @Failure      504 {object} response.Response "Query timed out"
// @Security     BearerAuth
// @Router       /api/reports/reconciliation [post]
func (h *ReportHandler) RunReconciliation(c *gin.Context) {
	var req service.ReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.KindInvalidParameter, "invalid request body: "+err.Error()))
		return
	}

	result, err := h.reconciliationService.Run(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// @Summary      Reconciliation run history
// @Description  Most recent reconciliation snapshots, newest first
// @Tags         Reports
// @Produce      json
// @Param        limit query int false "Max records (default 20, max 100)"
// @Success      200 {object} response.Response
// @Security     BearerAuth
// @Router       /api/reports/reconciliation/history [get]
func (h *ReportHandler) GetReconciliationHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	records, err := h.reconciliationService.History(c.Request.Context(), middleware.TenantID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, records))
}

// @Summary      Wastage anomaly report
// @Description  Flags branches whose wastage percentage exceeds the cohort average by more than the threshold
// @Tags         Reports
// @Accept       json
// @Produce      json
// @Param        period      query string false "today, yesterday, week, month, quarter, year"
// @Param        start_date  query string false "Start date (RFC3339 or YYYY-MM-DD), overrides period"
// @Param        end_date    query string false "End date (RFC3339 or YYYY-MM-DD), overrides period"
// @Param        branch_ids  query string false "all or comma-separated branch ids"
// @Param        category_id query string false "Filter by product category"
// @Param        product_id  query string false "Filter by product"
// @Param        waste_type  query string false "spoilage, error, theft, expired"
// @Param        threshold   query string false "Percent over cohort average before flagging"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "Invalid parameter"
// @Failure      504 {object} response.Response "Query timed out"
// @Security     BearerAuth
// @Router       /api/reports/wastage-anomalies [get]
func (h *ReportHandler) GetWastageAnomalies(c *gin.Context) {
	filter := service.WastageAnomalyFilter{
		Period:     c.Query("period"),
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
		Branches:   c.Query("branch_ids"),
		CategoryID: c.Query("category_id"),
		ProductID:  c.Query("product_id"),
		WasteType:  c.Query("waste_type"),
		Threshold:  c.Query("threshold"),
	}

	result, err := h.wastageService.GetWastageAnomalies(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
