package controllers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"medtrain/database"
	"medtrain/grading"
	"medtrain/middleware"
	"medtrain/models"
	courseModels "medtrain/models/course"
	"medtrain/services/events"
)

// AnswerPayload is one submitted answer; the field set determines the
// answer shape. Empty payloads mean the question was skipped.
type AnswerPayload struct {
	Index   *int     `json:"index,omitempty"`
	Text    *string  `json:"text,omitempty"`
	Matches []string `json:"matches,omitempty"`
}

func (p AnswerPayload) toAnswer() grading.Answer {
	switch {
	case p.Index != nil:
		return grading.IndexAnswer(*p.Index)
	case p.Matches != nil:
		return grading.MatchAnswer(p.Matches)
	case p.Text != nil:
		return grading.TextAnswer(*p.Text)
	default:
		return nil
	}
}

// toGradingQuestion converts a stored quiz question to its in-memory
// grading form. A missing correct index is mapped to -1 so no submitted
// index can accidentally match it.
func toGradingQuestion(q courseModels.QuizQuestion) grading.Question {
	out := grading.Question{
		ID:           q.ID,
		Type:         q.QuestionType,
		Prompt:       q.Prompt,
		CorrectText:  q.CorrectText,
		CorrectIndex: -1,
		Points:       q.Points,
	}
	if q.CorrectIndex != nil {
		out.CorrectIndex = *q.CorrectIndex
	}
	if len(q.Options) > 0 {
		_ = json.Unmarshal(q.Options, &out.Options)
	}
	if len(q.MatchingPairs) > 0 {
		_ = json.Unmarshal(q.MatchingPairs, &out.MatchingPairs)
	}
	return out
}

// GetQuizQuestions returns the questions of a quiz block with the
// answer keys stripped
func GetQuizQuestions(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	blockID := c.Locals("blockID").(int)

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	var questions []courseModels.QuizQuestion
	database.Database.Db.Where("content_block_id = ? AND is_deleted = ?", blockID, false).
		Order("order_index asc").Find(&questions)

	type questionView struct {
		ID           uint            `json:"id"`
		QuestionType string          `json:"question_type"`
		Prompt       string          `json:"prompt"`
		Options      json.RawMessage `json:"options,omitempty"`
		LeftItems    []string        `json:"left_items,omitempty"`
		RightItems   []string        `json:"right_items,omitempty"`
		Points       float64         `json:"points"`
	}

	views := make([]questionView, len(questions))
	for i, q := range questions {
		views[i] = questionView{
			ID:           q.ID,
			QuestionType: q.QuestionType,
			Prompt:       q.Prompt,
			Options:      json.RawMessage(q.Options),
			Points:       q.Points,
		}
		if q.QuestionType == courseModels.QuestionMatching && len(q.MatchingPairs) > 0 {
			var pairs []courseModels.MatchingPair
			_ = json.Unmarshal(q.MatchingPairs, &pairs)
			for _, pair := range pairs {
				views[i].LeftItems = append(views[i].LeftItems, pair.Left)
				views[i].RightItems = append(views[i].RightItems, pair.Right)
			}
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched successfully!", fiber.Map{
		"questions": views,
	})
}

// SubmitQuiz grades a quiz submission, records the attempt, and drives
// progress, grading and the enrollment lifecycle off the result
func SubmitQuiz(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	blockID := c.Locals("blockID").(int)

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	var block courseModels.ContentBlock
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ? AND is_published = ?", blockID, courseID, false, true).First(&block).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content block not found!", nil)
	}
	if block.BlockType != courseModels.BlockTypeQuiz {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Content block is not a quiz!", nil)
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", block.ModuleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	reqData := new(struct {
		Answers []AnswerPayload `json:"answers"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	var questions []courseModels.QuizQuestion
	database.Database.Db.Where("content_block_id = ? AND is_deleted = ?", blockID, false).
		Order("order_index asc").Find(&questions)
	if len(questions) == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz has no questions!", nil)
	}

	gradingQuestions := make([]grading.Question, len(questions))
	for i, q := range questions {
		gradingQuestions[i] = toGradingQuestion(q)
	}
	answers := make([]grading.Answer, len(reqData.Answers))
	for i, payload := range reqData.Answers {
		answers[i] = payload.toAnswer()
	}

	result := grading.GradeQuiz(gradingQuestions, answers, module.PassingScore)

	// Attempt numbering follows the stored history, not the tracker.
	var attemptCount int64
	database.Database.Db.Model(&courseModels.QuizAttempt{}).
		Where("user_id = ? AND content_block_id = ? AND is_deleted = ?", userID, blockID, false).
		Count(&attemptCount)

	rawAnswers, _ := json.Marshal(reqData.Answers)
	attempt := courseModels.QuizAttempt{
		UserID:         userID,
		CourseID:       uint(courseID),
		ModuleID:       module.ID,
		ContentBlockID: uint(blockID),
		Answers:        rawAnswers,
		Score:          result.Score,
		EarnedPoints:   result.EarnedPoints,
		MaxPoints:      result.MaxPoints,
		Passed:         result.Passed,
		NeedsReview:    result.NeedsReview,
		AttemptNumber:  int(attemptCount) + 1,
	}
	if err := database.Database.Db.Create(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit quiz!", nil)
	}

	// Raw answers are kept on the enrollment for the review queue.
	if result.NeedsReview {
		database.Database.Db.Model(&enrollment).Update("quiz_answers", rawAnswers)
	}

	var totalRequiredBlocks int64
	database.Database.Db.Model(&courseModels.ContentBlock{}).
		Where("module_id = ? AND is_required = ? AND is_published = ? AND is_deleted = ?", module.ID, true, true, false).
		Count(&totalRequiredBlocks)

	before, _ := Tracker.Get(userID, module.ID)
	record, err := Tracker.RecordQuizAttempt(userID, uint(courseID), module.ID, uint(blockID), result.Score, result.Passed, int(totalRequiredBlocks))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record attempt!", nil)
	}

	// Module completion writes the module grade into the ledger before
	// the progress change fans out, so the snapshot refresh sees it.
	if result.Passed && record.IsComplete {
		gradeRecord, err := Ledger.EnterGrade(userID, module.ID, result.Score, module.PassingScore, userID, "module quiz passed")
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record grade!", nil)
		}
		Bus.Publish(events.Change{Kind: events.KindGradeRecord, After: gradeRecord})
	}

	Bus.Publish(events.Change{Kind: events.KindProgress, Before: before, After: record})

	if !result.Passed {
		if _, err := Machine.HandleFailedAttempt(enrollment.ID, module.ID, record.TotalAttempts, result.Score, userID); err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process attempt!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz submitted!", fiber.Map{
		"attempt":      attempt,
		"score":        result.Score,
		"passed":       result.Passed,
		"needs_review": result.NeedsReview,
		"results":      result.Results,
	})
}
