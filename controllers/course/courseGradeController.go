package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"medtrain/database"
	"medtrain/middleware"
	"medtrain/models"
	courseModels "medtrain/models/course"
	"medtrain/services/coursegrade"
)

// CalculateCourseGrade recomputes and returns the weighted course grade.
// Learners get their own grade; instructors and admins may pass a
// user_id query parameter to look at any learner.
func CalculateCourseGrade(c *fiber.Ctx) error {
	callerID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	targetID := callerID
	if requested := c.QueryInt("user_id", 0); requested > 0 && uint(requested) != callerID {
		role, _ := c.Locals("role").(string)
		if role != models.RoleInstructor && role != models.RoleAdmin {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not allowed to view another learner's grade!", nil)
		}
		targetID = uint(requested)
	}

	calc, err := Grades.Snapshot(targetID, uint(courseID))
	if err != nil {
		if errors.Is(err, coursegrade.ErrCourseNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to calculate course grade!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course grade calculated successfully!", calc)
}

// GetCourseGradeSnapshot returns the stored snapshot without
// recomputing, for dashboard reads.
func GetCourseGradeSnapshot(c *fiber.Ctx) error {
	callerID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	targetID := callerID
	if requested := c.QueryInt("user_id", 0); requested > 0 && uint(requested) != callerID {
		role, _ := c.Locals("role").(string)
		if role != models.RoleInstructor && role != models.RoleAdmin {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not allowed to view another learner's grade!", nil)
		}
		targetID = uint(requested)
	}

	var snapshot courseModels.CourseGradeSnapshot
	if err := database.Database.Db.Where("user_id = ? AND course_id = ?", targetID, courseID).First(&snapshot).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No grade snapshot for this course yet!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course grade fetched successfully!", snapshot)
}
