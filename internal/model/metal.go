package model

// Metal identifies a tracked precious metal.
type Metal string

const (
	Gold     Metal = "gold"
	Silver   Metal = "silver"
	Platinum Metal = "platinum"
)

// Metals lists every supported metal in display order.
var Metals = []Metal{Gold, Silver, Platinum}

// Valid reports whether m is one of the supported metals.
func (m Metal) Valid() bool {
	switch m {
	case Gold, Silver, Platinum:
		return true
	}
	return false
}

// ParseMetal converts a string to a Metal, returning false for unknown tags.
func ParseMetal(s string) (Metal, bool) {
	m := Metal(s)
	return m, m.Valid()
}

// PerMetal holds one float value per metal (percentages, multipliers, amounts).
type PerMetal map[Metal]float64

// Sum adds up the values of all supported metals.
func (p PerMetal) Sum() float64 {
	total := 0.0
	for _, m := range Metals {
		total += p[m]
	}
	return total
}
