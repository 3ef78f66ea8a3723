package core

import "testing"

func TestClassifyLevel(t *testing.T) {
	tests := []struct {
		name  string
		score int
		age   int
		want  Level
	}{
		{"pro at threshold", 60, 18, LevelFinancePro},
		{"just under pro", 59, 18, LevelSmartSpender},
		{"spender", 57, 18, LevelSmartSpender},
		{"under-16 adjustment lifts band", 37, 15, LevelSmartSpender},
		{"16-17 adjustment", 57, 17, LevelFinancePro},
		{"emerging", 15, 20, LevelEmergingLearner},
		{"saver at threshold", 20, 20, LevelGrowingSaver},
		{"adjustment crosses saver threshold", 16, 14, LevelGrowingSaver},
		{"zero score", 0, 25, LevelEmergingLearner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyLevel(tt.score, tt.age); got != tt.want {
				t.Errorf("ClassifyLevel(%d, %d) = %s, want %s", tt.score, tt.age, got, tt.want)
			}
		})
	}
}
