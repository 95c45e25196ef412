package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"medtrain/database"
	"medtrain/middleware"
	"medtrain/models"
	courseModels "medtrain/models/course"
	"medtrain/services/events"
	"medtrain/services/progress"
)

// MarkBlockComplete records completion of a text/video/image block and
// recomputes module progress. Quiz blocks only complete through a
// passing quiz submission.
func MarkBlockComplete(c *fiber.Ctx) error {
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
	if block.BlockType == courseModels.BlockTypeQuiz {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Quiz blocks are completed by passing the quiz!", nil)
	}

	var totalRequiredBlocks int64
	database.Database.Db.Model(&courseModels.ContentBlock{}).
		Where("module_id = ? AND is_required = ? AND is_published = ? AND is_deleted = ?", block.ModuleID, true, true, false).
		Count(&totalRequiredBlocks)

	before, _ := Tracker.Get(userID, block.ModuleID)
	record, err := Tracker.MarkBlockComplete(userID, uint(courseID), block.ModuleID, uint(blockID), int(totalRequiredBlocks))
	if err != nil {
		if errors.Is(err, progress.ErrNoRequiredBlocks) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Module has no required blocks!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark block complete!", nil)
	}

	Bus.Publish(events.Change{Kind: events.KindProgress, Before: before, After: record})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Block marked complete!", record)
}

// GetUserProgress gets the user's progress in a course
func GetUserProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	var modules []courseModels.Module
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc").Find(&modules)

	type moduleView struct {
		ModuleID        uint    `json:"module_id"`
		ModuleName      string  `json:"module_name"`
		Weight          float64 `json:"weight"`
		IsCritical      bool    `json:"is_critical"`
		OverallProgress float64 `json:"overall_progress"`
		TotalAttempts   int     `json:"total_attempts"`
		BestScore       float64 `json:"best_score"`
		LastScore       float64 `json:"last_score"`
		IsComplete      bool    `json:"is_complete"`
	}

	views := make([]moduleView, len(modules))
	for i, mod := range modules {
		views[i] = moduleView{
			ModuleID:   mod.ID,
			ModuleName: mod.Title,
			Weight:     mod.Weight,
			IsCritical: mod.IsCritical,
		}
		if record, err := Tracker.Get(userID, mod.ID); err == nil {
			views[i].OverallProgress = record.OverallProgress
			views[i].TotalAttempts = record.TotalAttempts
			views[i].BestScore = record.BestScore
			views[i].LastScore = record.LastScore
			views[i].IsComplete = record.IsComplete
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"enrollment":      enrollment,
		"module_progress": views,
	})
}
