package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"medtrain/database"
	"medtrain/middleware"
	"medtrain/models"
	courseModels "medtrain/models/course"
	"medtrain/services/lifecycle"
	"medtrain/utils"
)

func notifyRemediationOutcome(request *courseModels.RemediationRequest, approved bool) {
	var learner models.User
	var module courseModels.Module
	if err := database.Database.Db.Where("id = ?", request.UserID).First(&learner).Error; err != nil {
		return
	}
	if err := database.Database.Db.Where("id = ?", request.ModuleID).First(&module).Error; err != nil {
		return
	}
	utils.SendRemediationEmail(learner.Email, learner.Name, module.Title, approved)
}

// GetRemediationQueue lists pending remediation requests (instructor
// only)
func GetRemediationQueue(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var requests []courseModels.RemediationRequest
	database.Database.Db.Where("status = ? AND is_deleted = ?", courseModels.RemediationPending, false).
		Order("requested_at asc").Find(&requests)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Remediation queue fetched successfully!", fiber.Map{
		"requests": requests,
		"total":    len(requests),
	})
}

func remediationErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Remediation request not found!", nil)
	case errors.Is(err, lifecycle.ErrNotPending):
		return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Remediation request has already been reviewed!", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process remediation request!", nil)
	}
}

// ApproveRemediation resets the learner's module progress and reopens
// the enrollment (instructor only)
func ApproveRemediation(c *fiber.Ctx) error {
	reviewerID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	requestID := c.Locals("requestID").(int)

	reqData := new(struct {
		Notes string `json:"notes"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	request, err := Machine.ApproveRemediation(uint(requestID), reviewerID, reqData.Notes)
	if err != nil {
		return remediationErrorResponse(c, err)
	}

	go notifyRemediationOutcome(request, true)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Remediation approved, learner may retry the module!", request)
}

// DenyRemediation leaves the enrollment failed (instructor only)
func DenyRemediation(c *fiber.Ctx) error {
	reviewerID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	requestID := c.Locals("requestID").(int)

	reqData := new(struct {
		Notes string `json:"notes"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	request, err := Machine.DenyRemediation(uint(requestID), reviewerID, reqData.Notes)
	if err != nil {
		return remediationErrorResponse(c, err)
	}

	go notifyRemediationOutcome(request, false)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Remediation denied!", request)
}
