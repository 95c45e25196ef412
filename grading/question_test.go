package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	courseModels "medtrain/models/course"
)

func TestGradeQuestionMultipleChoice(t *testing.T) {
	q := Question{
		ID:           1,
		Type:         courseModels.QuestionMultipleChoice,
		Options:      []string{"Airborne", "Droplet", "Contact"},
		CorrectIndex: 1,
		Points:       25,
	}

	res := GradeQuestion(q, IndexAnswer(1))
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 25.0, res.EarnedPoints)
	assert.Equal(t, 25.0, res.MaxPoints)
	assert.False(t, res.NeedsManualReview)

	res = GradeQuestion(q, IndexAnswer(2))
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 0.0, res.EarnedPoints)
}

func TestGradeQuestionTrueFalse(t *testing.T) {
	q := Question{
		ID:           2,
		Type:         courseModels.QuestionTrueFalse,
		Options:      []string{"True", "False"},
		CorrectIndex: 0,
		Points:       5,
	}

	assert.True(t, GradeQuestion(q, IndexAnswer(0)).IsCorrect)
	assert.False(t, GradeQuestion(q, IndexAnswer(1)).IsCorrect)
}

func TestGradeQuestionFillBlankIgnoresCaseAndWhitespace(t *testing.T) {
	q := Question{
		ID:          3,
		Type:        courseModels.QuestionFillBlank,
		CorrectText: "Hand Hygiene",
		Points:      10,
	}

	for _, answer := range []string{"hand hygiene", "  Hand Hygiene  ", "HAND HYGIENE"} {
		res := GradeQuestion(q, TextAnswer(answer))
		assert.True(t, res.IsCorrect, "answer %q should be correct", answer)
		assert.Equal(t, 10.0, res.EarnedPoints)
	}

	assert.False(t, GradeQuestion(q, TextAnswer("hand washing")).IsCorrect)
}

func TestGradeQuestionMatchingAllOrNothing(t *testing.T) {
	q := Question{
		ID:   4,
		Type: courseModels.QuestionMatching,
		MatchingPairs: []courseModels.MatchingPair{
			{Left: "MRSA", Right: "Contact precautions"},
			{Left: "TB", Right: "Airborne precautions"},
			{Left: "Influenza", Right: "Droplet precautions"},
		},
		Points: 15,
	}

	full := MatchAnswer{"Contact precautions", "Airborne precautions", "Droplet precautions"}
	res := GradeQuestion(q, full)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 15.0, res.EarnedPoints)

	// One wrong entry loses everything; there is no partial credit.
	oneOff := MatchAnswer{"Contact precautions", "Droplet precautions", "Airborne precautions"}
	res = GradeQuestion(q, oneOff)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 0.0, res.EarnedPoints)

	// Incomplete arrays are wrong even if the entries present line up.
	incomplete := MatchAnswer{"Contact precautions", "Airborne precautions"}
	res = GradeQuestion(q, incomplete)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 0.0, res.EarnedPoints)
}

func TestGradeQuestionShortAnswer(t *testing.T) {
	q := Question{
		ID:     5,
		Type:   courseModels.QuestionShortAnswer,
		Prompt: "Describe the escalation protocol for a medication error.",
		Points: 20,
	}

	substantive := TextAnswer("First notify the charge nurse, then file an incident report within 24 hours.")
	res := GradeQuestion(q, substantive)
	assert.False(t, res.IsCorrect, "short answers are never auto-correct")
	assert.True(t, res.NeedsManualReview)
	assert.Equal(t, 20.0, res.EarnedPoints, "substantive answers get provisional full credit")

	brief := TextAnswer("tell someone")
	res = GradeQuestion(q, brief)
	assert.False(t, res.IsCorrect)
	assert.True(t, res.NeedsManualReview)
	assert.Equal(t, 0.0, res.EarnedPoints)

	// Skipped short answers still need review.
	res = GradeQuestion(q, nil)
	assert.True(t, res.NeedsManualReview)
	assert.Equal(t, 0.0, res.EarnedPoints)
}

func TestGradeQuestionWrongShapeTreatedAsAbsent(t *testing.T) {
	mc := Question{ID: 6, Type: courseModels.QuestionMultipleChoice, CorrectIndex: 0, Points: 10}
	res := GradeQuestion(mc, TextAnswer("0"))
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 0.0, res.EarnedPoints)

	matching := Question{
		ID:            7,
		Type:          courseModels.QuestionMatching,
		MatchingPairs: []courseModels.MatchingPair{{Left: "a", Right: "b"}},
		Points:        10,
	}
	res = GradeQuestion(matching, TextAnswer("b"))
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 0.0, res.EarnedPoints)
}

func TestGradeQuestionMissingAnswer(t *testing.T) {
	q := Question{ID: 8, Type: courseModels.QuestionMultipleChoice, CorrectIndex: 0, Points: 10}
	res := GradeQuestion(q, nil)
	assert.False(t, res.IsCorrect)
	assert.False(t, res.NeedsManualReview)
	assert.Equal(t, 0.0, res.EarnedPoints)
	assert.Equal(t, 10.0, res.MaxPoints)
}
