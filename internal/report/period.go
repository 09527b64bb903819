package report

import (
	"strings"
	"time"

	"backend/pkg/apperror"

	"github.com/google/uuid"
)

// Period keyword constants
const (
	PeriodToday     = "today"
	PeriodYesterday = "yesterday"
	PeriodWeek      = "week"
	PeriodMonth     = "month"
	PeriodQuarter   = "quarter"
	PeriodYear      = "year"
)

// ResolvePeriod converts a period keyword or explicit RFC3339 date pair into a
// closed interval [start, end]. Explicit dates take precedence over the
// keyword. Pure over its inputs and the supplied clock value.
func ResolvePeriod(period, startStr, endStr string, now time.Time) (time.Time, time.Time, error) {
	if startStr != "" || endStr != "" {
		return resolveExplicit(startStr, endStr, now)
	}

	if period == "" {
		period = PeriodToday
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case PeriodToday:
		return dayStart, now, nil
	case PeriodYesterday:
		start := dayStart.AddDate(0, 0, -1)
		return start, dayStart.Add(-time.Nanosecond), nil
	case PeriodWeek:
		// Week starts Monday
		offset := (int(now.Weekday()) + 6) % 7
		return dayStart.AddDate(0, 0, -offset), now, nil
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), now, nil
	case PeriodQuarter:
		quarterMonth := time.Month((int(now.Month())-1)/3*3 + 1)
		return time.Date(now.Year(), quarterMonth, 1, 0, 0, 0, 0, now.Location()), now, nil
	case PeriodYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), now, nil
	default:
		return time.Time{}, time.Time{}, apperror.New(apperror.KindInvalidParameter,
			"invalid period: must be one of today, yesterday, week, month, quarter, year")
	}
}

func resolveExplicit(startStr, endStr string, now time.Time) (time.Time, time.Time, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := now

	if startStr != "" {
		parsed, err := parseDate(startStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, apperror.New(apperror.KindInvalidParameter,
				"invalid start date: expected RFC3339 or YYYY-MM-DD")
		}
		start = parsed
	}
	if endStr != "" {
		parsed, err := parseDate(endStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, apperror.New(apperror.KindInvalidParameter,
				"invalid end date: expected RFC3339 or YYYY-MM-DD")
		}
		// A bare date means "through end of that day"
		if len(endStr) == len("2006-01-02") {
			parsed = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		end = parsed
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, apperror.New(apperror.KindInvalidParameter,
			"end date must not precede start date")
	}
	return start, end, nil
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, loc)
}

// ResolveBranchIDs parses a branch selection parameter: empty or "all" selects
// every active branch (returned as nil), otherwise a comma-separated UUID list.
func ResolveBranchIDs(param string) ([]uuid.UUID, error) {
	param = strings.TrimSpace(param)
	if param == "" || strings.EqualFold(param, "all") {
		return nil, nil
	}
	parts := strings.Split(param, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, apperror.New(apperror.KindInvalidParameter, "invalid branch id: "+p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
