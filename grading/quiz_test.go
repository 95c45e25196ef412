package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	courseModels "medtrain/models/course"
)

func mcQuestion(id uint, points float64) Question {
	return Question{
		ID:           id,
		Type:         courseModels.QuestionMultipleChoice,
		Options:      []string{"A", "B", "C", "D"},
		CorrectIndex: 0,
		Points:       points,
	}
}

func TestGradeQuizThreeOfFourCorrect(t *testing.T) {
	questions := []Question{
		mcQuestion(1, 25), mcQuestion(2, 25), mcQuestion(3, 25), mcQuestion(4, 25),
	}
	answers := []Answer{IndexAnswer(0), IndexAnswer(0), IndexAnswer(0), IndexAnswer(3)}

	res := GradeQuiz(questions, answers, 80)
	assert.Equal(t, 75.0, res.Score)
	assert.False(t, res.Passed)
	assert.False(t, res.NeedsReview)
	assert.Len(t, res.Results, 4)
}

func TestGradeQuizShortAnswerFlagsReview(t *testing.T) {
	questions := []Question{
		mcQuestion(1, 20), mcQuestion(2, 20), mcQuestion(3, 20),
		{ID: 4, Type: courseModels.QuestionShortAnswer, Points: 20},
	}
	answers := []Answer{
		IndexAnswer(0), IndexAnswer(0), IndexAnswer(0),
		TextAnswer("Escalate to the charge nurse and document the incident fully."),
	}

	res := GradeQuiz(questions, answers, 80)
	assert.Equal(t, 100.0, res.Score)
	assert.True(t, res.Passed, "pass is provisional pending review")
	assert.True(t, res.NeedsReview)
}

func TestGradeQuizShortAnswerArray(t *testing.T) {
	questions := []Question{mcQuestion(1, 10), mcQuestion(2, 10)}
	answers := []Answer{IndexAnswer(0)}

	res := GradeQuiz(questions, answers, 50)
	assert.Equal(t, 50.0, res.Score)
	assert.Len(t, res.Results, 2, "missing answers still produce results")
	assert.False(t, res.Results[1].IsCorrect)
}

func TestGradeQuizNoQuestions(t *testing.T) {
	res := GradeQuiz(nil, nil, 70)
	assert.Equal(t, 0.0, res.Score)
	assert.False(t, res.Passed)
	assert.Empty(t, res.Results)
}

func TestGradeQuizRounding(t *testing.T) {
	questions := []Question{mcQuestion(1, 1), mcQuestion(2, 1), mcQuestion(3, 1)}
	answers := []Answer{IndexAnswer(0), IndexAnswer(0), IndexAnswer(1)}

	res := GradeQuiz(questions, answers, 70)
	assert.Equal(t, 67.0, res.Score) // 66.67 rounds up
}
