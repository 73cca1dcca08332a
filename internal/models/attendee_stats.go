package models

// AttendeeStats tallies submitted tickets. Total and Submitted are both the
// number of submitted tickets.
type AttendeeStats struct {
	Total         int                 `json:"total"`
	Submitted     int                 `json:"submitted"`
	Regular       int                 `json:"regular"`
	VIP           int                 `json:"vip"`
	DietaryCounts map[DietaryNeed]int `json:"dietaryCounts"`
	MealCounts    map[MealChoice]int  `json:"mealCounts"`
}

// NewAttendeeStats returns stats with every dietary and meal key present at zero.
func NewAttendeeStats() *AttendeeStats {
	stats := &AttendeeStats{
		DietaryCounts: make(map[DietaryNeed]int, len(DietaryNeeds)),
		MealCounts:    make(map[MealChoice]int, len(MealChoices)),
	}
	for _, need := range DietaryNeeds {
		stats.DietaryCounts[need] = 0
	}
	for _, meal := range MealChoices {
		stats.MealCounts[meal] = 0
	}
	return stats
}
