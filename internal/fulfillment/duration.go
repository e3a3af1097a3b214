package fulfillment

import (
	"strings"

	"github.com/aifahao/streamticket/internal/models"
)

// Validity windows in days.
const (
	MonthlyDays   = 30
	QuarterlyDays = 90
	YearlyDays    = 365
)

var (
	yearMarkers    = []string{"年", "year", "annual"}
	quarterMarkers = []string{"季", "quarter"}
)

// DurationDays returns the validity window of p in days.
// An explicit duration plan wins; otherwise the free-text duration descriptor is classified,
// with year markers taking precedence over quarter markers.
func DurationDays(p *models.Product) int {
	switch p.DurationPlan {
	case models.DurationPlanMonthly:
		return MonthlyDays
	case models.DurationPlanQuarterly:
		return QuarterlyDays
	case models.DurationPlanYearly:
		return YearlyDays
	}
	return classifyDuration(p.Specifications.Data().Duration)
}

func classifyDuration(text string) int {
	lower := strings.ToLower(text)
	if containsAny(lower, yearMarkers) {
		return YearlyDays
	}
	if containsAny(lower, quarterMarkers) {
		return QuarterlyDays
	}
	return MonthlyDays
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// ValidDurationPlan reports whether plan is empty or a known plan.
func ValidDurationPlan(plan string) bool {
	switch plan {
	case "", models.DurationPlanMonthly, models.DurationPlanQuarterly, models.DurationPlanYearly:
		return true
	}
	return false
}
