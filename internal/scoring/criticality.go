// Package scoring содержит чистые функции расчёта критичности активов,
// уровня риска, процента соответствия и уровня зрелости.
package scoring

import "github.com/shopspring/decimal"

type CriticalityLevel string

const (
	CriticalityCritical CriticalityLevel = "critical"
	CriticalityHigh     CriticalityLevel = "high"
	CriticalityMedium   CriticalityLevel = "medium"
	CriticalityLow      CriticalityLevel = "low"
)

// CriticalityLevels: от самого высокого к самому низкому.
var CriticalityLevels = []CriticalityLevel{
	CriticalityCritical,
	CriticalityHigh,
	CriticalityMedium,
	CriticalityLow,
}

// веса CIA
var (
	weightConfidentiality = decimal.RequireFromString("0.40")
	weightIntegrity       = decimal.RequireFromString("0.35")
	weightAvailability    = decimal.RequireFromString("0.25")

	thresholdCritical = decimal.NewFromInt(4)
	thresholdHigh     = decimal.NewFromInt(3)
	thresholdMedium   = decimal.NewFromInt(2)
)

const (
	MinRating = 1
	MaxRating = 5
)

type Criticality struct {
	Score decimal.Decimal
	Level CriticalityLevel
}

// AssetCriticality считает C*0.4 + I*0.35 + A*0.25. Диапазон входов не проверяется.
func AssetCriticality(confidentiality, integrity, availability int) Criticality {
	score := decimal.NewFromInt(int64(confidentiality)).Mul(weightConfidentiality).
		Add(decimal.NewFromInt(int64(integrity)).Mul(weightIntegrity)).
		Add(decimal.NewFromInt(int64(availability)).Mul(weightAvailability))

	return Criticality{
		Score: score,
		Level: CriticalityLevelFor(score),
	}
}

// CriticalityLevelFor: ступенчатая функция с порогами 4/3/2.
func CriticalityLevelFor(score decimal.Decimal) CriticalityLevel {
	switch {
	case score.GreaterThanOrEqual(thresholdCritical):
		return CriticalityCritical
	case score.GreaterThanOrEqual(thresholdHigh):
		return CriticalityHigh
	case score.GreaterThanOrEqual(thresholdMedium):
		return CriticalityMedium
	default:
		return CriticalityLow
	}
}

// ValidRating: проверка оценки 1..5 для вызывающего кода.
func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}
