package membership_test

import (
	"encoding/json"
	"errors"
	"testing"
	"wellness-center/internal/domain/membership"
	"wellness-center/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCriteria_FillsMissingFromDefaults(t *testing.T) {
	c, err := membership.ParseCriteria([]byte(`{"gold": {"annual_revenue_min": 8000000}}`))
	require.NoError(t, err)

	defaults := membership.DefaultCriteria()
	assert.True(t, decimal.NewFromInt(8_000_000).Equal(c.Gold.AnnualRevenueMin))
	assert.Equal(t, defaults.Gold.TotalVisitsMin, c.Gold.TotalVisitsMin)
	require.NotNil(t, c.Gold.TotalVisitsMax)
	assert.Equal(t, 99, *c.Gold.TotalVisitsMax)
	assert.True(t, defaults.VIP.AnnualRevenueMin.Equal(c.VIP.AnnualRevenueMin))
	assert.Equal(t, defaults.Silver.TotalVisitsMin, c.Silver.TotalVisitsMin)
}

func TestParseCriteria_EmptyObjectIsDefaults(t *testing.T) {
	c, err := membership.ParseCriteria([]byte(`{}`))
	require.NoError(t, err)

	got, err := json.Marshal(c)
	require.NoError(t, err)
	want, err := json.Marshal(membership.DefaultCriteria())
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestParseCriteria_NullMaxRemovesCeiling(t *testing.T) {
	c, err := membership.ParseCriteria([]byte(`{"silver": {"total_visits_max": null}}`))
	require.NoError(t, err)
	assert.Nil(t, c.Silver.TotalVisitsMax)
	assert.Equal(t, membership.LevelSilver, membership.CalculateMembershipLevel(decimal.NewFromInt(6_000_000), 500, c))
}

func TestParseCriteria_BronzeAlias(t *testing.T) {
	c, err := membership.ParseCriteria([]byte(`{"bronze": {"annual_revenue_min": 0, "total_visits_min": 0}}`))
	require.NoError(t, err)
	assert.True(t, c.Basic.AnnualRevenueMin.IsZero())

	_, err = membership.ParseCriteria([]byte(`{"bronze": {}, "basic": {}}`))
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestParseCriteria_AcceptsStringNumbers(t *testing.T) {
	c, err := membership.ParseCriteria([]byte(`{"vip": {"annual_revenue_min": "45000000.50"}, "gold": {"total_visits_min": 30.0}}`))
	require.NoError(t, err)
	assert.Equal(t, "45000000.5", c.VIP.AnnualRevenueMin.String())
	assert.Equal(t, 30, c.Gold.TotalVisitsMin)
}

func TestParseCriteria_LargestVisitThreshold(t *testing.T) {
	c, err := membership.ParseCriteria([]byte(`{"platinum": {"total_visits_min": 2147483647}}`))
	require.NoError(t, err)
	assert.Equal(t, 2147483647, c.Platinum.TotalVisitsMin)
	assert.Equal(t, membership.LevelGold, membership.CalculateMembershipLevel(decimal.NewFromInt(25_000_000), 40, c))
}

func TestParseCriteria_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantField string
	}{
		{"not an object", `[1,2,3]`, ""},
		{"empty input", ``, ""},
		{"malformed json", `{"gold": `, ""},
		{"tier is not an object", `{"gold": 5}`, ""},
		{"unknown tier", `{"diamond": {"annual_revenue_min": 1}}`, "diamond"},
		{"unknown field", `{"gold": {"min_revenue": 1}}`, "gold.min_revenue"},
		{"negative revenue", `{"silver": {"annual_revenue_min": -1}}`, "silver.annual_revenue_min"},
		{"negative visits", `{"silver": {"total_visits_min": -3}}`, "silver.total_visits_min"},
		{"fractional visits", `{"gold": {"total_visits_min": 30.5}}`, "gold.total_visits_min"},
		{"non numeric revenue", `{"vip": {"annual_revenue_min": true}}`, "vip.annual_revenue_min"},
		{"max below min", `{"gold": {"total_visits_min": 50, "total_visits_max": 40}}`, "gold.total_visits_max"},
		{"visits beyond int range", `{"platinum": {"total_visits_min": 1e19}}`, "platinum.total_visits_min"},
		{"visit ceiling beyond int range", `{"gold": {"total_visits_max": 2147483648}}`, "gold.total_visits_max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := membership.ParseCriteria([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidation), "expected validation error, got %v", err)

			var vErr *apperrors.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestCriteria_JSONRoundTripKeepsNullCeiling(t *testing.T) {
	original := membership.DefaultCriteria()

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Len(t, doc, len(membership.Levels))
	assert.Nil(t, doc["platinum"]["total_visits_max"])
	assert.EqualValues(t, 50000000, doc["vip"]["annual_revenue_min"])

	var decoded membership.Criteria
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded.Platinum.TotalVisitsMax)
	assert.True(t, original.Gold.AnnualRevenueMin.Equal(decoded.Gold.AnnualRevenueMin))
}

func TestParseLevel(t *testing.T) {
	l, ok := membership.ParseLevel(" VIP ")
	assert.True(t, ok)
	assert.Equal(t, membership.LevelVIP, l)

	l, ok = membership.ParseLevel("bronze")
	assert.True(t, ok)
	assert.Equal(t, membership.LevelBasic, l)

	_, ok = membership.ParseLevel("diamond")
	assert.False(t, ok)

	assert.Equal(t, 0, membership.LevelBasic.Rank())
	assert.Equal(t, 4, membership.LevelVIP.Rank())
	assert.Equal(t, -1, membership.Level("diamond").Rank())
}
