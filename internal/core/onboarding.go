package core

import "errors"

const (
	MinOnboardingAge = 13
	MaxOnboardingAge = 25
)

type (
	// QuizQuestion is one multiple-choice question from the onboarding
	// quiz. CorrectAnswer indexes into Options.
	QuizQuestion struct {
		ID            int      `json:"id"`
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer int      `json:"correct_answer"`
		Points        int      `json:"points"`
	}

	// OnboardingResult is the outcome of the literacy quiz.
	OnboardingResult struct {
		Age            int      `json:"age"`
		Goals          []string `json:"goals"`
		KnowledgeScore int      `json:"knowledge_score"`
		Level          Level    `json:"level"`
	}
)

var (
	ErrInvalidAge = errors.New("age must be between 13 and 25")
	ErrEmptyGoals = errors.New("at least one goal must be selected")
)

// ScoreQuiz sums the points of correctly answered questions. answers maps
// question id to the chosen option index; unanswered questions score
// nothing.
func ScoreQuiz(questions []QuizQuestion, answers map[int]int) int {
	score := 0
	for _, q := range questions {
		if chosen, ok := answers[q.ID]; ok && chosen == q.CorrectAnswer {
			score += q.Points
		}
	}
	return score
}

// NewOnboardingResult validates the collected age and goals, then scores
// the quiz and derives the literacy level.
func NewOnboardingResult(age int, goals []string, questions []QuizQuestion, answers map[int]int) (OnboardingResult, error) {
	if age < MinOnboardingAge || age > MaxOnboardingAge {
		return OnboardingResult{}, ErrInvalidAge
	}
	if len(goals) == 0 {
		return OnboardingResult{}, ErrEmptyGoals
	}
	score := ScoreQuiz(questions, answers)
	return OnboardingResult{
		Age:            age,
		Goals:          goals,
		KnowledgeScore: score,
		Level:          ClassifyLevel(score, age),
	}, nil
}

// DefaultQuizQuestions is the built-in onboarding question bank.
var DefaultQuizQuestions = []QuizQuestion{
	{
		ID:       1,
		Question: "What's the best way to start building an emergency fund?",
		Options: []string{
			"Save whatever's left after spending",
			"Set aside a fixed amount each month first",
			"Only save when you get extra money",
			"Wait until you have a job to start saving",
		},
		CorrectAnswer: 1,
		Points:        10,
	},
	{
		ID:       2,
		Question: "If you want to buy something that costs $200, and you get $50 allowance per month, how should you plan?",
		Options: []string{
			"Ask parents to buy it now",
			"Save $50 for 4 months",
			"Use a credit card",
			"Buy something cheaper instead",
		},
		CorrectAnswer: 1,
		Points:        15,
	},
	{
		ID:       3,
		Question: "What does 'compound interest' mean?",
		Options: []string{
			"Interest you pay on loans",
			"Interest that grows on both your original money and previous interest earned",
			"Interest that stays the same",
			"Interest you get from your parents",
		},
		CorrectAnswer: 1,
		Points:        20,
	},
	{
		ID:       4,
		Question: "You have $100. The best way to make it grow is to:",
		Options: []string{
			"Keep it under your mattress",
			"Spend it on things you want",
			"Put it in a savings account or investment",
			"Lend it to friends",
		},
		CorrectAnswer: 2,
		Points:        15,
	},
	{
		ID:       5,
		Question: "What's a budget?",
		Options: []string{
			"A plan for how you'll spend and save your money",
			"The total amount of money you have",
			"Money your parents give you",
			"A type of bank account",
		},
		CorrectAnswer: 0,
		Points:        10,
	},
}
