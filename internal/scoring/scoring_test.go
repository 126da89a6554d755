package scoring

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessRisk_AllRatings(t *testing.T) {
	for l := MinRating; l <= MaxRating; l++ {
		for i := MinRating; i <= MaxRating; i++ {
			r := AssessRisk(l, i)
			assert.Equal(t, l*i, r.Score)
			assert.True(t, r.Level.Valid(), "level %q for %dx%d", r.Level, l, i)
		}
	}
}

func TestRiskLevelFor_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  RiskLevel
	}{
		{25, RiskCritical},
		{20, RiskCritical},
		{19, RiskHigh},
		{12, RiskHigh},
		{11, RiskMedium},
		{6, RiskMedium},
		{5, RiskLow},
		{2, RiskLow},
		{1, RiskNegligible},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevelFor(tt.score), "score %d", tt.score)
	}
}

func TestAssetCriticality(t *testing.T) {
	t.Run("maximum ratings", func(t *testing.T) {
		c := AssetCriticality(5, 5, 5)
		assert.True(t, c.Score.Equal(decimal.NewFromInt(5)), "got %s", c.Score)
		assert.Equal(t, CriticalityCritical, c.Level)
	})

	t.Run("minimum ratings", func(t *testing.T) {
		c := AssetCriticality(1, 1, 1)
		assert.True(t, c.Score.Equal(decimal.NewFromInt(1)))
		assert.Equal(t, CriticalityLow, c.Level)
	})

	t.Run("exact threshold is not lost to float error", func(t *testing.T) {
		// 4*0.4 + 4*0.35 + 4*0.25 = 4.00
		c := AssetCriticality(4, 4, 4)
		assert.Equal(t, "4", c.Score.String())
		assert.Equal(t, CriticalityCritical, c.Level)
	})

	t.Run("weights", func(t *testing.T) {
		c := AssetCriticality(3, 2, 1)
		// 1.2 + 0.7 + 0.25
		assert.True(t, c.Score.Equal(decimal.RequireFromString("2.15")), "got %s", c.Score)
		assert.Equal(t, CriticalityMedium, c.Level)
	})
}

func TestAssetCriticality_Monotonic(t *testing.T) {
	for c := MinRating; c <= MaxRating; c++ {
		for i := MinRating; i <= MaxRating; i++ {
			for a := MinRating; a <= MaxRating; a++ {
				base := AssetCriticality(c, i, a)
				assert.Equal(t, CriticalityLevelFor(base.Score), base.Level)

				if c < MaxRating {
					assert.True(t, AssetCriticality(c+1, i, a).Score.GreaterThanOrEqual(base.Score))
				}
				if i < MaxRating {
					assert.True(t, AssetCriticality(c, i+1, a).Score.GreaterThanOrEqual(base.Score))
				}
				if a < MaxRating {
					assert.True(t, AssetCriticality(c, i, a+1).Score.GreaterThanOrEqual(base.Score))
				}
			}
		}
	}
}

func TestCriticalityLevelFor_Steps(t *testing.T) {
	tests := []struct {
		score string
		want  CriticalityLevel
	}{
		{"5", CriticalityCritical},
		{"4", CriticalityCritical},
		{"3.99", CriticalityHigh},
		{"3", CriticalityHigh},
		{"2.95", CriticalityMedium},
		{"2", CriticalityMedium},
		{"1.99", CriticalityLow},
		{"1", CriticalityLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CriticalityLevelFor(decimal.RequireFromString(tt.score)), tt.score)
	}
}

func TestCounts_Score(t *testing.T) {
	t.Run("partial counts half", func(t *testing.T) {
		c := Counts{Total: 10, Assessed: 8, Compliant: 4, Partial: 2, NotApplicable: 2}
		assert.Equal(t, 8, c.Effective())
		// 100*(4+1)/8 = 62.5 -> 63
		assert.Equal(t, 63, c.Score())
	})

	t.Run("unassessed controls stay in the denominator", func(t *testing.T) {
		c := Counts{Total: 4, Assessed: 1, Compliant: 1}
		assert.Equal(t, 25, c.Score())
		assert.Equal(t, 3, c.Unassessed())
		assert.Equal(t, 25, c.Coverage())
	})

	t.Run("everything not applicable", func(t *testing.T) {
		c := Counts{Total: 3, Assessed: 3, NotApplicable: 3}
		assert.Equal(t, 0, c.Score())
		assert.Equal(t, 100, c.Coverage())
	})

	t.Run("no controls", func(t *testing.T) {
		assert.Equal(t, 0, Counts{}.Score())
		assert.Equal(t, 0, Counts{}.Coverage())
	})

	t.Run("single non-compliant control", func(t *testing.T) {
		c := Counts{Total: 1, Assessed: 1, NonCompliant: 1}
		assert.Equal(t, 0, c.Score())
	})

	t.Run("fully compliant", func(t *testing.T) {
		c := Counts{Total: 5, Assessed: 5, Compliant: 4, NotApplicable: 1}
		assert.Equal(t, 100, c.Score())
	})
}

func TestPercent_RoundsHalfUp(t *testing.T) {
	assert.Equal(t, 63, Percent(5, 8))   // 62.5
	assert.Equal(t, 33, Percent(1, 3))   // 33.33
	assert.Equal(t, 67, Percent(2, 3))   // 66.67
	assert.Equal(t, 13, Percent(1, 8))   // 12.5
	assert.Equal(t, 50, Percent(1, 2))
	assert.Equal(t, 0, Percent(0, 7))
	assert.Equal(t, 0, Percent(3, 0))
}

func TestCounts_Add(t *testing.T) {
	a := Counts{Total: 2, Assessed: 1, Compliant: 1}
	b := Counts{Total: 3, Assessed: 3, Partial: 1, NonCompliant: 1, NotApplicable: 1}
	sum := a.Add(b)

	require.Equal(t, Counts{Total: 5, Assessed: 4, Compliant: 1, Partial: 1, NonCompliant: 1, NotApplicable: 1}, sum)
}

func TestMaturityFor(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "Initial"},
		{19, "Initial"},
		{20, "Developing"},
		{39, "Developing"},
		{40, "Defined"},
		{59, "Defined"},
		{60, "Managed"},
		{79, "Managed"},
		{80, "Optimizing"},
		{100, "Optimizing"},
		{101, "Optimizing"},
		{-1, "Initial"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MaturityFor(tt.score).Name, "score %d", tt.score)
	}
}

func TestMaturityLevels_Contiguous(t *testing.T) {
	for i := 1; i < len(MaturityLevels); i++ {
		assert.Equal(t, MaturityLevels[i-1].Max, MaturityLevels[i].Min)
	}
	assert.Equal(t, 0, MaturityLevels[0].Min)
	// верхняя граница отдаётся клиентам как обычное число
	assert.Equal(t, 100, MaturityLevels[len(MaturityLevels)-1].Max)
}
