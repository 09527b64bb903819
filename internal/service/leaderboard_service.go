package service

import (
	"context"
	"time"

	"backend/internal/report"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// View constants for branch performance reports
const (
	ViewLeaderboard = "leaderboard"
	ViewComparison  = "comparison"
	ViewTrends      = "trends"
)

// --- DTOs ---

type LeaderboardFilter struct {
	Period    string
	StartDate string
	EndDate   string
	Metric    string
	View      string
	Branches  string // "all", empty, or comma-separated branch ids
}

type PeriodDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type RankedEntryDTO struct {
	BranchID       string `json:"branch_id"`
	BranchName     string `json:"branch_name"`
	BranchCode     string `json:"branch_code"`
	Rank           int    `json:"rank"`
	Value          string `json:"value"`
	GapToPrevious  string `json:"gap_to_previous"`
	PercentOfTotal string `json:"percent_of_total"`
}

type LeaderboardResponse struct {
	Period       PeriodDTO        `json:"period"`
	Metric       string           `json:"metric"`
	Leaderboard  []RankedEntryDTO `json:"leaderboard"`
	TopPerformer *RankedEntryDTO  `json:"topPerformer"`
}

type ComparisonRowDTO struct {
	BranchID         string `json:"branch_id"`
	BranchName       string `json:"branch_name"`
	BranchCode       string `json:"branch_code"`
	SalesTotal       string `json:"sales_total"`
	TransactionCount int64  `json:"transaction_count"`
	UniqueCustomers  int64  `json:"unique_customers"`
	AvgTransaction   string `json:"avg_transaction"`
	PercentOfSales   string `json:"percent_of_sales"`
}

type ComparisonResponse struct {
	Period     PeriodDTO          `json:"period"`
	Branches   []ComparisonRowDTO `json:"branches"`
	SalesTotal string             `json:"sales_total"`
}

type TrendPointDTO struct {
	Date             string `json:"date"`
	Value            string `json:"value"`
	TransactionCount int64  `json:"transaction_count"`
}

type TrendsResponse struct {
	Period PeriodDTO       `json:"period"`
	Metric string          `json:"metric"`
	Trends []TrendPointDTO `json:"trends"`
}

// --- Interface ---

type LeaderboardService interface {
	GetBranchPerformance(ctx context.Context, tenantID uuid.UUID, filter LeaderboardFilter) (interface{}, error)
}

type leaderboardService struct {
	reportRepo   repository.ReportRepository
	queryTimeout time.Duration
}

func NewLeaderboardService(reportRepo repository.ReportRepository, queryTimeout time.Duration) LeaderboardService {
	return &leaderboardService{reportRepo: reportRepo, queryTimeout: queryTimeout}
}

// --- Implementation ---

func (s *leaderboardService) GetBranchPerformance(ctx context.Context, tenantID uuid.UUID, filter LeaderboardFilter) (interface{}, error) {
	// Validate everything before touching the datastore
	metric := filter.Metric
	if metric == "" {
		metric = report.MetricSales
	}
	switch metric {
	case report.MetricSales, report.MetricTransactions, report.MetricCustomers, report.MetricAvgTransaction:
	default:
		return nil, apperror.New(apperror.KindInvalidParameter,
			"invalid metric: must be one of sales, transactions, customers, avg_transaction")
	}

	view := filter.View
	if view == "" {
		view = ViewLeaderboard
	}
	switch view {
	case ViewLeaderboard, ViewComparison, ViewTrends:
	default:
		return nil, apperror.New(apperror.KindInvalidParameter,
			"invalid view: must be one of leaderboard, comparison, trends")
	}

	start, end, err := report.ResolvePeriod(filter.Period, filter.StartDate, filter.EndDate, time.Now())
	if err != nil {
		return nil, err
	}
	branchIDs, err := report.ResolveBranchIDs(filter.Branches)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	period := PeriodDTO{Start: start.Format(time.RFC3339), End: end.Format(time.RFC3339)}

	if view == ViewTrends {
		trend, err := s.reportRepo.DailySalesTrend(ctx, tenantID, start, end, branchIDs)
		if err != nil {
			return nil, err
		}
		points := make([]TrendPointDTO, 0, len(trend))
		for _, p := range trend {
			points = append(points, TrendPointDTO{
				Date:             p.Day,
				Value:            p.Value.StringFixed(2),
				TransactionCount: p.RowCount,
			})
		}
		return &TrendsResponse{Period: period, Metric: metric, Trends: points}, nil
	}

	// Leaderboard and comparison both rank over the same per-branch rows.
	// The join to transactions keeps inactive-in-period branches out, which
	// is the wanted "active participants only" semantics here.
	rows, err := s.reportRepo.SalesByBranch(ctx, tenantID, start, end, branchIDs)
	if err != nil {
		return nil, err
	}

	if view == ViewComparison {
		return buildComparison(period, rows), nil
	}

	metricRows := make([]report.MetricRow, 0, len(rows))
	for _, row := range rows {
		metricRows = append(metricRows, report.MetricRow{
			BranchID:   row.BranchID,
			BranchName: row.BranchName,
			BranchCode: row.BranchCode,
			Value:      metricValue(row, metric),
		})
	}

	ranked := report.Rank(metricRows)
	entries := make([]RankedEntryDTO, 0, len(ranked))
	for _, e := range ranked {
		entries = append(entries, RankedEntryDTO{
			BranchID:       e.BranchID.String(),
			BranchName:     e.BranchName,
			BranchCode:     e.BranchCode,
			Rank:           e.Rank,
			Value:          formatMetric(e.Value, metric),
			GapToPrevious:  formatMetric(e.GapToPrevious, metric),
			PercentOfTotal: e.PercentOfTotal.StringFixed(2),
		})
	}

	resp := &LeaderboardResponse{Period: period, Metric: metric, Leaderboard: entries}
	if len(entries) > 0 {
		top := entries[0]
		resp.TopPerformer = &top
	}
	return resp, nil
}

func metricValue(row repository.BranchSalesRow, metric string) decimal.Decimal {
	switch metric {
	case report.MetricTransactions:
		return decimal.NewFromInt(row.TransactionCount)
	case report.MetricCustomers:
		return decimal.NewFromInt(row.UniqueCustomers)
	case report.MetricAvgTransaction:
		return row.AvgTransaction
	default:
		return row.SalesTotal
	}
}

func formatMetric(v decimal.Decimal, metric string) string {
	switch metric {
	case report.MetricTransactions, report.MetricCustomers:
		return v.StringFixed(0)
	default:
		return v.StringFixed(2)
	}
}

func buildComparison(period PeriodDTO, rows []repository.BranchSalesRow) *ComparisonResponse {
	salesTotal := decimal.Zero
	for _, row := range rows {
		salesTotal = salesTotal.Add(row.SalesTotal)
	}

	branches := make([]ComparisonRowDTO, 0, len(rows))
	for _, row := range rows {
		branches = append(branches, ComparisonRowDTO{
			BranchID:         row.BranchID.String(),
			BranchName:       row.BranchName,
			BranchCode:       row.BranchCode,
			SalesTotal:       row.SalesTotal.StringFixed(2),
			TransactionCount: row.TransactionCount,
			UniqueCustomers:  row.UniqueCustomers,
			AvgTransaction:   row.AvgTransaction.StringFixed(2),
			PercentOfSales:   report.PercentOfTotal(row.SalesTotal, salesTotal).StringFixed(2),
		})
	}

	return &ComparisonResponse{
		Period:     period,
		Branches:   branches,
		SalesTotal: salesTotal.StringFixed(2),
	}
}
