package grading

import "math"

// QuizResult aggregates the per-question results of one quiz attempt.
type QuizResult struct {
	Score        float64  `json:"score"` // 0-100, rounded
	EarnedPoints float64  `json:"earned_points"`
	MaxPoints    float64  `json:"max_points"`
	Passed       bool     `json:"passed"`
	NeedsReview  bool     `json:"needs_review"`
	Results      []Result `json:"results"`
}

// GradeQuiz grades an ordered question list against a parallel answer
// array. Missing trailing answers are treated as skipped questions, not
// an error, so a partial submission still grades deterministically.
func GradeQuiz(questions []Question, answers []Answer, passingScore float64) QuizResult {
	out := QuizResult{
		Results: make([]Result, 0, len(questions)),
	}

	for i, q := range questions {
		var ans Answer
		if i < len(answers) {
			ans = answers[i]
		}
		res := GradeQuestion(q, ans)
		out.EarnedPoints += res.EarnedPoints
		out.MaxPoints += res.MaxPoints
		if res.NeedsManualReview {
			out.NeedsReview = true
		}
		out.Results = append(out.Results, res)
	}

	if out.MaxPoints > 0 {
		out.Score = math.Round(100 * out.EarnedPoints / out.MaxPoints)
	}
	out.Passed = out.Score >= passingScore

	return out
}
