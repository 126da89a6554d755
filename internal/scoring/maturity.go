package scoring

type Maturity struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Min         int    `json:"min"`
	Max         int    `json:"max"`
}

// MaturityLevels: непрерывные полуинтервалы [Min, Max). Max последнего уровня (100)
// указан для клиентов, в MaturityFor верхняя граница открыта.
var MaturityLevels = []Maturity{
	{Name: "Initial", Description: "Ad hoc, unpredictable processes", Min: 0, Max: 20},
	{Name: "Developing", Description: "Basic controls being established", Min: 20, Max: 40},
	{Name: "Defined", Description: "Documented and standardized", Min: 40, Max: 60},
	{Name: "Managed", Description: "Measured and controlled", Min: 60, Max: 80},
	{Name: "Optimizing", Description: "Continuous improvement", Min: 80, Max: 100},
}

// MaturityFor выбирает уровень, для которого Min <= score < Max.
func MaturityFor(score int) Maturity {
	last := len(MaturityLevels) - 1
	for i, l := range MaturityLevels {
		if score >= l.Min && (score < l.Max || i == last) {
			return l
		}
	}
	return MaturityLevels[0]
}
