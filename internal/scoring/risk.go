package scoring

type RiskLevel string

const (
	RiskCritical   RiskLevel = "critical"
	RiskHigh       RiskLevel = "high"
	RiskMedium     RiskLevel = "medium"
	RiskLow        RiskLevel = "low"
	RiskNegligible RiskLevel = "negligible"
)

var RiskLevels = []RiskLevel{
	RiskCritical,
	RiskHigh,
	RiskMedium,
	RiskLow,
	RiskNegligible,
}

type Risk struct {
	Score int
	Level RiskLevel
}

// AssessRisk: score = likelihood * impact (1..25).
// Используется и для оценки пары актив/уязвимость, и для матрицы рисков.
func AssessRisk(likelihood, impact int) Risk {
	score := likelihood * impact
	return Risk{Score: score, Level: RiskLevelFor(score)}
}

// RiskLevelFor: >=20 critical, >=12 high, >=6 medium, >=2 low, иначе negligible.
func RiskLevelFor(score int) RiskLevel {
	switch {
	case score >= 20:
		return RiskCritical
	case score >= 12:
		return RiskHigh
	case score >= 6:
		return RiskMedium
	case score >= 2:
		return RiskLow
	default:
		return RiskNegligible
	}
}

func (l RiskLevel) Valid() bool {
	for _, v := range RiskLevels {
		if v == l {
			return true
		}
	}
	return false
}
