package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestionType enum values
const (
	QuestionMultipleChoice = "multiple-choice"
	QuestionTrueFalse      = "true-false"
	QuestionMatching       = "matching"
	QuestionFillBlank      = "fill-blank"
	QuestionShortAnswer    = "short-answer"
)

// QuizQuestion represents one question inside a QUIZ content block.
// The answer-key column used depends on QuestionType: CorrectIndex for
// multiple-choice/true-false, CorrectText for fill-blank, MatchingPairs
// for matching. Short-answer questions carry no key; they are graded by
// an instructor through the grade ledger.
type QuizQuestion struct {
	gorm.Model
	ContentBlockID uint           `json:"content_block_id" gorm:"index;not null"`
	ModuleID       uint           `json:"module_id" gorm:"index;not null"`
	QuestionType   string         `json:"question_type" gorm:"not null"`
	Prompt         string         `json:"prompt" gorm:"type:text"`
	Options        datatypes.JSON `json:"options"`        // []string, for choice types
	CorrectIndex   *int           `json:"correct_index"`  // index into Options
	CorrectText    string         `json:"correct_text"`   // for fill-blank
	MatchingPairs  datatypes.JSON `json:"matching_pairs"` // []MatchingPair
	Points         float64        `json:"points" gorm:"default:1"`
	OrderIndex     int            `json:"order_index" gorm:"default:0"`
	IsDeleted      bool           `gorm:"default:false"`
}

// MatchingPair is one left/right pair of a matching question, stored in
// QuizQuestion.MatchingPairs as a JSON array.
type MatchingPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// QuizAttempt represents a learner's graded attempt at a quiz block
type QuizAttempt struct {
	gorm.Model
	UserID         uint           `json:"user_id" gorm:"index;not null"`
	CourseID       uint           `json:"course_id" gorm:"index;not null"`
	ModuleID       uint           `json:"module_id" gorm:"index;not null"`
	ContentBlockID uint           `json:"content_block_id" gorm:"index;not null"`
	Answers        datatypes.JSON `json:"answers"` // raw submitted answers, kept for manual review
	Score          float64        `json:"score"`   // 0-100
	EarnedPoints   float64        `json:"earned_points"`
	MaxPoints      float64        `json:"max_points"`
	Passed         bool           `json:"passed" gorm:"default:false"`
	NeedsReview    bool           `json:"needs_review" gorm:"default:false"`
	AttemptNumber  int            `json:"attempt_number" gorm:"default:1"`
	IsDeleted      bool           `gorm:"default:false"`
}
