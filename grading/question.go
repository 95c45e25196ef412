package grading

import (
	"strings"

	courseModels "medtrain/models/course"
)

// Answer is a submitted answer for a single question. Exactly one
// concrete type exists per answer shape, so a question type can never be
// paired with an answer of the wrong shape at compile time; a nil Answer
// means the learner skipped the question.
type Answer interface {
	isAnswer()
}

// IndexAnswer is the selected option index for choice questions.
type IndexAnswer int

// TextAnswer is free text for fill-blank and short-answer questions.
type TextAnswer string

// MatchAnswer is the ordered list of right-hand values for a matching
// question, parallel to the question's pairs.
type MatchAnswer []string

func (IndexAnswer) isAnswer() {}
func (TextAnswer) isAnswer()  {}
func (MatchAnswer) isAnswer() {}

// Question is the in-memory definition a grader evaluates. Which answer
// key field applies depends on Type, mirroring the QuizQuestion columns.
type Question struct {
	ID            uint
	Type          string
	Prompt        string
	Options       []string
	CorrectIndex  int
	CorrectText   string
	MatchingPairs []courseModels.MatchingPair
	Points        float64
}

// Result is the immutable outcome of grading one question on one attempt.
type Result struct {
	QuestionID        uint    `json:"question_id"`
	IsCorrect         bool    `json:"is_correct"`
	NeedsManualReview bool    `json:"needs_manual_review"`
	EarnedPoints      float64 `json:"earned_points"`
	MaxPoints         float64 `json:"max_points"`
}

// shortAnswerMinLength is the substantiveness heuristic for provisional
// short-answer credit: shorter trimmed answers earn nothing until an
// instructor grades them.
const shortAnswerMinLength = 20

// GradeQuestion grades a single answered question against its
// definition. It has no side effects. A nil answer, or an answer whose
// shape does not match the question type, earns zero credit and is not
// an error.
func GradeQuestion(q Question, ans Answer) Result {
	res := Result{
		QuestionID: q.ID,
		MaxPoints:  q.Points,
	}

	switch q.Type {
	case courseModels.QuestionMultipleChoice, courseModels.QuestionTrueFalse:
		idx, ok := ans.(IndexAnswer)
		if ok && int(idx) == q.CorrectIndex {
			res.IsCorrect = true
			res.EarnedPoints = q.Points
		}

	case courseModels.QuestionFillBlank:
		text, ok := ans.(TextAnswer)
		if ok && normalize(string(text)) == normalize(q.CorrectText) {
			res.IsCorrect = true
			res.EarnedPoints = q.Points
		}

	case courseModels.QuestionMatching:
		// All-or-nothing: every right value must match in order. An
		// incomplete array is wrong even if its entries line up.
		matches, ok := ans.(MatchAnswer)
		if ok && len(matches) == len(q.MatchingPairs) && len(q.MatchingPairs) > 0 {
			allMatch := true
			for i, pair := range q.MatchingPairs {
				if matches[i] != pair.Right {
					allMatch = false
					break
				}
			}
			if allMatch {
				res.IsCorrect = true
				res.EarnedPoints = q.Points
			}
		}

	case courseModels.QuestionShortAnswer:
		// Never auto-marked correct; the flag routes the attempt to the
		// manual review queue. Provisional full credit is granted only
		// when the answer looks substantive; the final grade comes from
		// an instructor correction in the ledger.
		res.NeedsManualReview = true
		if text, ok := ans.(TextAnswer); ok {
			if len(strings.TrimSpace(string(text))) >= shortAnswerMinLength {
				res.EarnedPoints = q.Points
			}
		}
	}

	return res
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
