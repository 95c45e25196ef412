package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"medtrain/database"
	"medtrain/middleware"
	"medtrain/models"
	courseModels "medtrain/models/course"
	"medtrain/services/events"
	"medtrain/services/lifecycle"
	"medtrain/utils"
)

func notifyReviewOutcome(userID, courseID uint, approved bool, reason string) {
	var learner models.User
	var course courseModels.Course
	if err := database.Database.Db.Where("id = ?", userID).First(&learner).Error; err != nil {
		return
	}
	if err := database.Database.Db.Where("id = ?", courseID).First(&course).Error; err != nil {
		return
	}
	utils.SendReviewOutcomeEmail(learner.Email, learner.Name, course.Title, approved, reason)
}

// GetReviewQueue lists enrollments waiting on manual review together
// with the attempts that triggered the review (instructor only)
func GetReviewQueue(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var enrollments []courseModels.Enrollment
	database.Database.Db.Where("status = ? AND is_deleted = ?", courseModels.StatusNeedsReview, false).
		Order("updated_at asc").Find(&enrollments)

	type queueItem struct {
		Enrollment courseModels.Enrollment    `json:"enrollment"`
		Attempts   []courseModels.QuizAttempt `json:"attempts"`
	}

	items := make([]queueItem, len(enrollments))
	for i, enrollment := range enrollments {
		items[i].Enrollment = enrollment
		database.Database.Db.Where("user_id = ? AND course_id = ? AND needs_review = ? AND is_deleted = ?",
			enrollment.UserID, enrollment.CourseID, true, false).
			Order("created_at asc").Find(&items[i].Attempts)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review queue fetched successfully!", fiber.Map{
		"queue": items,
		"total": len(items),
	})
}

// ApproveReview accepts a manually-reviewed submission: the reviewer's
// final score is recorded through the grade ledger and the enrollment
// completes (instructor only)
func ApproveReview(c *fiber.Ctx) error {
	reviewerID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("enrollmentID").(int)

	reqData := c.Locals("validatedReview").(*struct {
		ModuleID     uint    `json:"module_id"`
		FinalScore   float64 `json:"final_score"`
		PassingScore float64 `json:"passing_score"`
		Notes        string  `json:"notes"`
	})

	enrollment, err := Machine.ApproveReview(uint(enrollmentID), reqData.ModuleID, reqData.FinalScore, reqData.PassingScore, reviewerID, reqData.Notes)
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
		case errors.Is(err, lifecycle.ErrInvalidTransition):
			return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Enrollment is not waiting on review!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve review!", nil)
		}
	}

	// The attempts that were queued for this enrollment are settled now.
	database.Database.Db.Model(&courseModels.QuizAttempt{}).
		Where("user_id = ? AND course_id = ? AND needs_review = ? AND is_deleted = ?",
			enrollment.UserID, enrollment.CourseID, true, false).
		Update("needs_review", false)

	grade, err := Ledger.CurrentGrade(enrollment.UserID, reqData.ModuleID)
	if err == nil {
		Bus.Publish(events.Change{Kind: events.KindGradeRecord, After: grade})
	}

	go notifyReviewOutcome(enrollment.UserID, enrollment.CourseID, true, "")

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review approved!", enrollment)
}

// RejectReview sends a reviewed submission back to the learner. A
// reason is required (instructor only)
func RejectReview(c *fiber.Ctx) error {
	reviewerID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("enrollmentID").(int)

	reqData := c.Locals("validatedRejection").(*struct {
		Reason string `json:"reason"`
	})

	enrollment, err := Machine.RejectReview(uint(enrollmentID), reviewerID, reqData.Reason)
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrReasonRequired):
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "A rejection reason is required!", nil)
		case errors.Is(err, lifecycle.ErrNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
		case errors.Is(err, lifecycle.ErrInvalidTransition):
			return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Enrollment is not waiting on review!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reject review!", nil)
		}
	}

	database.Database.Db.Model(&courseModels.QuizAttempt{}).
		Where("user_id = ? AND course_id = ? AND needs_review = ? AND is_deleted = ?",
			enrollment.UserID, enrollment.CourseID, true, false).
		Update("needs_review", false)

	go notifyReviewOutcome(enrollment.UserID, enrollment.CourseID, false, reqData.Reason)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review rejected, learner can resubmit!", enrollment)
}
