package view

var diversityLabels = []string{"very low", "low", "medium", "high", "very high"}

// DiversityLabel maps a 0-10 slider value to its label by halving.
// Out-of-range values are clamped; 10 shares the last label.
func DiversityLabel(value int) string {
	if value < 0 {
		value = 0
	}
	if value > 10 {
		value = 10
	}
	bucket := value / 2
	if bucket >= len(diversityLabels) {
		bucket = len(diversityLabels) - 1
	}
	return diversityLabels[bucket]
}
