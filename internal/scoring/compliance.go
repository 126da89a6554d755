package scoring

import "github.com/shopspring/decimal"

// Counts: счётчики по набору контролей (домен или вся организация).
// Total включает неоценённые контроли.
type Counts struct {
	Total         int `json:"total"`
	Assessed      int `json:"assessed"`
	Compliant     int `json:"compliant"`
	Partial       int `json:"partial"`
	NonCompliant  int `json:"non_compliant"`
	NotApplicable int `json:"not_applicable"`
}

// Effective: знаменатель процента соответствия: все контроли кроме not_applicable.
// Неоценённые контроли остаются в знаменателе.
func (c Counts) Effective() int {
	return c.Total - c.NotApplicable
}

// Score = round(100 * (compliant + 0.5*partial) / effective), 0 если effective <= 0.
func (c Counts) Score() int {
	eff := c.Effective()
	if eff <= 0 {
		return 0
	}
	// (compliant + partial/2) / eff == (2*compliant + partial) / (2*eff)
	return Percent(2*c.Compliant+c.Partial, 2*eff)
}

// Coverage = round(100 * assessed / total).
func (c Counts) Coverage() int {
	return Percent(c.Assessed, c.Total)
}

// Unassessed: сколько контролей ещё предстоит оценить.
func (c Counts) Unassessed() int {
	return c.Total - c.Assessed
}

// Add суммирует счётчики (домены → организация).
func (c Counts) Add(o Counts) Counts {
	return Counts{
		Total:         c.Total + o.Total,
		Assessed:      c.Assessed + o.Assessed,
		Compliant:     c.Compliant + o.Compliant,
		Partial:       c.Partial + o.Partial,
		NonCompliant:  c.NonCompliant + o.NonCompliant,
		NotApplicable: c.NotApplicable + o.NotApplicable,
	}
}

var hundred = decimal.NewFromInt(100)

// Percent: round-half-up(100*num/den); 0 при den <= 0.
func Percent(num, den int) int {
	if den <= 0 {
		return 0
	}
	// для неотрицательных значений Round(0) = округление половины вверх
	v := decimal.NewFromInt(int64(num)).Mul(hundred).Div(decimal.NewFromInt(int64(den))).Round(0)
	return int(v.IntPart())
}
