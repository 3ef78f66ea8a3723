package core

const (
	LevelEmergingLearner Level = "Emerging Learner"
	LevelGrowingSaver    Level = "Growing Saver"
	LevelSmartSpender    Level = "Smart Spender"
	LevelFinancePro      Level = "Finance Pro"
)

// Level is a discrete financial-literacy band.
type Level string

// ClassifyLevel maps a quiz score and age to a literacy level. Younger
// users get a small score adjustment before banding: +5 under 16, +3 under
// 18. Thresholds are inclusive lower bounds; the highest matching band
// wins.
func ClassifyLevel(score, age int) Level {
	adjustment := 0
	switch {
	case age < 16:
		adjustment = 5
	case age < 18:
		adjustment = 3
	}
	adjusted := score + adjustment

	switch {
	case adjusted >= 60:
		return LevelFinancePro
	case adjusted >= 40:
		return LevelSmartSpender
	case adjusted >= 20:
		return LevelGrowingSaver
	default:
		return LevelEmergingLearner
	}
}
