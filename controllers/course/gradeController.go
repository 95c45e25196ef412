package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"medtrain/database"
	"medtrain/middleware"
	"medtrain/models"
	courseModels "medtrain/models/course"
	"medtrain/services/events"
	"medtrain/services/ledger"
)

func gradeErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidScore):
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Score and passing score must be between 0 and 100!", nil)
	case errors.Is(err, ledger.ErrReasonRequired):
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "A correction reason is required!", nil)
	case errors.Is(err, ledger.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Grade record not found!", nil)
	case errors.Is(err, ledger.ErrAlreadySuperseded):
		return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Grade record has already been corrected!", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process grade!", nil)
	}
}

// EnterGrade records a new grade for a learner's module (instructor only)
func EnterGrade(c *fiber.Ctx) error {
	graderID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := c.Locals("validatedGrade").(*struct {
		UserID       uint    `json:"user_id"`
		ModuleID     uint    `json:"module_id"`
		Score        float64 `json:"score"`
		PassingScore float64 `json:"passing_score"`
		Notes        string  `json:"notes"`
	})

	var learner models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", reqData.UserID, false).First(&learner).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Learner not found!", nil)
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", reqData.ModuleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	record, err := Ledger.EnterGrade(reqData.UserID, reqData.ModuleID, reqData.Score, reqData.PassingScore, graderID, reqData.Notes)
	if err != nil {
		return gradeErrorResponse(c, err)
	}

	Bus.Publish(events.Change{Kind: events.KindGradeRecord, After: record})

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Grade entered successfully!", record)
}

// CorrectGrade supersedes an existing grade record with a correction
// (instructor only)
func CorrectGrade(c *fiber.Ctx) error {
	graderID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	gradeID := c.Locals("gradeID").(int)

	reqData := c.Locals("validatedCorrection").(*struct {
		Score        float64 `json:"score"`
		PassingScore float64 `json:"passing_score"`
		Reason       string  `json:"reason"`
		Notes        string  `json:"notes"`
	})

	record, err := Ledger.CorrectGrade(uint(gradeID), reqData.Score, reqData.PassingScore, reqData.Reason, graderID, reqData.Notes)
	if err != nil {
		return gradeErrorResponse(c, err)
	}

	Bus.Publish(events.Change{Kind: events.KindGradeRecord, After: record})

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Grade corrected successfully!", record)
}

// GetCurrentGrade returns the newest unsuperseded grade for a learner's
// module
func GetCurrentGrade(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	userID := c.Locals("learnerID").(int)
	moduleID := c.Locals("moduleID").(int)

	record, err := Ledger.CurrentGrade(uint(userID), uint(moduleID))
	if err != nil {
		return gradeErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Grade fetched successfully!", record)
}

// GetGradeHistory returns the full correction chain for a learner's
// module, oldest first
func GetGradeHistory(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	userID := c.Locals("learnerID").(int)
	moduleID := c.Locals("moduleID").(int)

	history, err := Ledger.History(uint(userID), uint(moduleID))
	if err != nil {
		return gradeErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Grade history fetched successfully!", fiber.Map{
		"history": history,
		"total":   len(history),
	})
}
