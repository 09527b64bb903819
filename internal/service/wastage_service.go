package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/report"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// --- DTOs ---

type WastageAnomalyFilter struct {
	Period     string
	StartDate  string
	EndDate    string
	Branches   string
	CategoryID string
	ProductID  string
	WasteType  string
	Threshold  string // percent over cohort average; empty uses configured default
}

type WastageSummaryDTO struct {
	TotalWasteValue  string `json:"total_waste_value"`
	TotalQuantity    string `json:"total_quantity"`
	SalesTotal       string `json:"sales_total"`
	PercentOfSales   string `json:"percent_of_sales"`
	BranchCount      int    `json:"branch_count"`
	AnomalyCount     int    `json:"anomaly_count"`
	CohortAverage    string `json:"cohort_average"`
	AnomalyThreshold string `json:"anomaly_threshold"`
}

type WastageBranchDTO struct {
	BranchID       string `json:"branch_id"`
	BranchName     string `json:"branch_name"`
	BranchCode     string `json:"branch_code"`
	WasteValue     string `json:"waste_value"`
	WasteQuantity  string `json:"waste_quantity"`
	SalesValue     string `json:"sales_value"`
	PercentOfSales string `json:"percent_of_sales"`
	Flagged        bool   `json:"flagged"`
}

type WastageProductDTO struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
	Quantity    string `json:"quantity"`
	WasteValue  string `json:"waste_value"`
}

type WastageCategoryDTO struct {
	Category   string `json:"category"`
	Quantity   string `json:"quantity"`
	WasteValue string `json:"waste_value"`
	Percent    string `json:"percent"`
}

type WastageReport struct {
	Period            PeriodDTO               `json:"period"`
	Summary           WastageSummaryDTO       `json:"summary"`
	BranchComparison  []WastageBranchDTO      `json:"branchComparison"`
	Anomalies         []report.WastageAnomaly `json:"anomalies"`
	TopProducts       []WastageProductDTO     `json:"topProducts"`
	CategoryBreakdown []WastageCategoryDTO    `json:"categoryBreakdown"`
	Trends            []TrendPointDTO         `json:"trends"`
	Insights          []string                `json:"insights"`
}

// --- Interface ---

type WastageService interface {
	GetWastageAnomalies(ctx context.Context, tenantID uuid.UUID, filter WastageAnomalyFilter) (*WastageReport, error)
}

type wastageService struct {
	reportRepo   repository.ReportRepository
	branchRepo   repository.BranchRepository
	thresholds   report.Thresholds
	queryTimeout time.Duration
}

func NewWastageService(reportRepo repository.ReportRepository, branchRepo repository.BranchRepository, thresholds report.Thresholds, queryTimeout time.Duration) WastageService {
	return &wastageService{reportRepo: reportRepo, branchRepo: branchRepo, thresholds: thresholds, queryTimeout: queryTimeout}
}

// --- Implementation ---

func (s *wastageService) GetWastageAnomalies(ctx context.Context, tenantID uuid.UUID, filter WastageAnomalyFilter) (*WastageReport, error) {
	start, end, err := report.ResolvePeriod(filter.Period, filter.StartDate, filter.EndDate, time.Now())
	if err != nil {
		return nil, err
	}
	branchIDs, err := report.ResolveBranchIDs(filter.Branches)
	if err != nil {
		return nil, err
	}

	threshold := s.thresholds.WastagePercent
	if filter.Threshold != "" {
		parsed, err := decimal.NewFromString(filter.Threshold)
		if err != nil || parsed.IsNegative() {
			return nil, apperror.New(apperror.KindInvalidParameter, "invalid threshold: expected a non-negative percentage")
		}
		threshold = parsed
	}

	wastageFilter := repository.WastageFilter{Start: start, End: end, BranchIDs: branchIDs}
	if filter.CategoryID != "" {
		id, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return nil, apperror.New(apperror.KindInvalidParameter, "invalid category id")
		}
		wastageFilter.CategoryID = &id
	}
	if filter.ProductID != "" {
		id, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, apperror.New(apperror.KindInvalidParameter, "invalid product id")
		}
		wastageFilter.ProductID = &id
	}
	if filter.WasteType != "" {
		switch filter.WasteType {
		case model.WasteSpoilage, model.WasteError, model.WasteTheft, model.WasteExpired:
		default:
			return nil, apperror.New(apperror.KindInvalidParameter, "invalid waste type")
		}
		wastageFilter.WasteType = filter.WasteType
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var (
		wasteRows    []repository.WastageBranchRow
		salesRows    []repository.BranchSalesRow
		topProducts  []repository.WastageProductRow
		categoryRows []repository.WastageCategoryRow
		trendRows    []repository.DailyTrendRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		wasteRows, err = s.reportRepo.WastageByBranch(gctx, tenantID, wastageFilter)
		return err
	})
	g.Go(func() error {
		var err error
		salesRows, err = s.reportRepo.SalesByBranch(gctx, tenantID, start, end, branchIDs)
		return err
	})
	g.Go(func() error {
		var err error
		topProducts, err = s.reportRepo.WastageByProduct(gctx, tenantID, wastageFilter, 10)
		return err
	})
	g.Go(func() error {
		var err error
		categoryRows, err = s.reportRepo.WastageByCategory(gctx, tenantID, wastageFilter)
		return err
	})
	g.Go(func() error {
		var err error
		trendRows, err = s.reportRepo.WastageDailyTrend(gctx, tenantID, wastageFilter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := buildWastageStats(wasteRows, salesRows)
	anomalies, average, cutoff := report.DetectWastageAnomalies(stats, threshold)

	flagged := make(map[uuid.UUID]bool, len(anomalies))
	for _, a := range anomalies {
		flagged[a.BranchID] = true
	}

	totalWaste, totalQty, totalSales := decimal.Zero, decimal.Zero, decimal.Zero
	comparison := make([]WastageBranchDTO, 0, len(stats))
	wasteQtyByBranch := make(map[uuid.UUID]decimal.Decimal, len(wasteRows))
	for _, row := range wasteRows {
		wasteQtyByBranch[row.BranchID] = row.TotalQuantity
	}
	for _, st := range stats {
		totalWaste = totalWaste.Add(st.WasteValue)
		totalQty = totalQty.Add(wasteQtyByBranch[st.BranchID])
		totalSales = totalSales.Add(st.SalesValue)
		comparison = append(comparison, WastageBranchDTO{
			BranchID:       st.BranchID.String(),
			BranchName:     st.BranchName,
			BranchCode:     st.BranchCode,
			WasteValue:     st.WasteValue.StringFixed(2),
			WasteQuantity:  wasteQtyByBranch[st.BranchID].StringFixed(2),
			SalesValue:     st.SalesValue.StringFixed(2),
			PercentOfSales: st.Percent.StringFixed(2),
			Flagged:        flagged[st.BranchID],
		})
	}

	categories := make([]WastageCategoryDTO, 0, len(categoryRows))
	for _, row := range categoryRows {
		categories = append(categories, WastageCategoryDTO{
			Category:   row.Category,
			Quantity:   row.TotalQuantity.StringFixed(2),
			WasteValue: row.WasteValue.StringFixed(2),
			Percent:    report.PercentOfTotal(row.WasteValue, totalWaste).StringFixed(2),
		})
	}

	products := make([]WastageProductDTO, 0, len(topProducts))
	for _, row := range topProducts {
		products = append(products, WastageProductDTO{
			ProductID:   row.ProductID.String(),
			ProductName: row.ProductName,
			Category:    row.Category,
			Quantity:    row.TotalQuantity.StringFixed(2),
			WasteValue:  row.WasteValue.StringFixed(2),
		})
	}

	trends := make([]TrendPointDTO, 0, len(trendRows))
	for _, row := range trendRows {
		trends = append(trends, TrendPointDTO{
			Date:             row.Day,
			Value:            row.Value.StringFixed(2),
			TransactionCount: row.RowCount,
		})
	}

	return &WastageReport{
		Period: PeriodDTO{Start: start.Format(time.RFC3339), End: end.Format(time.RFC3339)},
		Summary: WastageSummaryDTO{
			TotalWasteValue:  totalWaste.StringFixed(2),
			TotalQuantity:    totalQty.StringFixed(2),
			SalesTotal:       totalSales.StringFixed(2),
			PercentOfSales:   report.PercentOfTotal(totalWaste, totalSales).StringFixed(2),
			BranchCount:      len(stats),
			AnomalyCount:     len(anomalies),
			CohortAverage:    average.StringFixed(2),
			AnomalyThreshold: cutoff.StringFixed(2),
		},
		BranchComparison:  comparison,
		Anomalies:         anomalies,
		TopProducts:       products,
		CategoryBreakdown: categories,
		Trends:            trends,
		Insights:          buildInsights(stats, anomalies, categories, average),
	}, nil
}

// buildWastageStats joins per-branch waste value with per-branch sales. A
// branch appears when it has either waste or sales in the window; percent is
// zero when the branch had no sales.
func buildWastageStats(wasteRows []repository.WastageBranchRow, salesRows []repository.BranchSalesRow) []report.WastageBranchStat {
	type branchAgg struct {
		name  string
		code  string
		waste decimal.Decimal
		sales decimal.Decimal
	}
	byBranch := make(map[uuid.UUID]*branchAgg)
	order := make([]uuid.UUID, 0, len(wasteRows)+len(salesRows))

	for _, row := range salesRows {
		byBranch[row.BranchID] = &branchAgg{name: row.BranchName, code: row.BranchCode, waste: decimal.Zero, sales: row.SalesTotal}
		order = append(order, row.BranchID)
	}
	for _, row := range wasteRows {
		agg, ok := byBranch[row.BranchID]
		if !ok {
			agg = &branchAgg{name: row.BranchName, code: row.BranchCode, waste: decimal.Zero, sales: decimal.Zero}
			byBranch[row.BranchID] = agg
			order = append(order, row.BranchID)
		}
		agg.waste = row.WasteValue
	}

	stats := make([]report.WastageBranchStat, 0, len(order))
	for _, id := range order {
		agg := byBranch[id]
		stats = append(stats, report.WastageBranchStat{
			BranchID:   id,
			BranchName: agg.name,
			BranchCode: agg.code,
			WasteValue: agg.waste,
			SalesValue: agg.sales,
			Percent:    report.PercentOfTotal(agg.waste, agg.sales),
		})
	}
	return stats
}

func buildInsights(stats []report.WastageBranchStat, anomalies []report.WastageAnomaly, categories []WastageCategoryDTO, average decimal.Decimal) []string {
	insights := make([]string, 0, 4)

	if len(stats) > 0 {
		insights = append(insights, fmt.Sprintf("Cohort average wastage is %s%% of sales across %d branches.", average.StringFixed(2), len(stats)))

		worst := stats[0]
		for _, st := range stats[1:] {
			if st.WasteValue.Cmp(worst.WasteValue) > 0 {
				worst = st
			}
		}
		if worst.WasteValue.IsPositive() {
			insights = append(insights, fmt.Sprintf("%s recorded the highest waste value (%s).", worst.BranchName, worst.WasteValue.StringFixed(2)))
		}
	}

	switch len(anomalies) {
	case 0:
		insights = append(insights, "No branch exceeds the anomaly threshold for this period.")
	case 1:
		insights = append(insights, fmt.Sprintf("1 branch (%s) exceeds the anomaly threshold.", anomalies[0].BranchName))
	default:
		insights = append(insights, fmt.Sprintf("%d branches exceed the anomaly threshold.", len(anomalies)))
	}

	if len(categories) > 0 {
		insights = append(insights, fmt.Sprintf("Category '%s' accounts for the largest share of waste (%s%%).", categories[0].Category, categories[0].Percent))
	}

	return insights
}
