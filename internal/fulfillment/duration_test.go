package fulfillment

import (
	"testing"

	"github.com/aifahao/streamticket/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func productWith(plan, duration string) *models.Product {
	return &models.Product{
		DurationPlan:   plan,
		Specifications: datatypes.NewJSONType(models.ProductSpecifications{Duration: duration}),
	}
}

func TestDurationDaysLadder(t *testing.T) {
	cases := []struct {
		name     string
		plan     string
		duration string
		want     int
	}{
		{"plan monthly", models.DurationPlanMonthly, "1年", MonthlyDays},
		{"plan quarterly", models.DurationPlanQuarterly, "", QuarterlyDays},
		{"plan yearly", models.DurationPlanYearly, "30天", YearlyDays},
		{"days text", "", "30天", MonthlyDays},
		{"quarter cjk", "", "一季度", QuarterlyDays},
		{"quarter en", "", "1 Quarter", QuarterlyDays},
		{"year cjk", "", "365天/年", YearlyDays},
		{"annual en", "", "Annual plan", YearlyDays},
		{"year wins", "", "季付或年付", YearlyDays},
		{"empty", "", "", MonthlyDays},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DurationDays(productWith(tc.plan, tc.duration)))
		})
	}
}

func TestValidDurationPlan(t *testing.T) {
	require.True(t, ValidDurationPlan(""))
	require.True(t, ValidDurationPlan(models.DurationPlanYearly))
	require.False(t, ValidDurationPlan("weekly"))
}
