package controllers

import (
	"github.com/gofiber/fiber/v2"

	"medtrain/database"
	"medtrain/middleware"
	courseModels "medtrain/models/course"
)

// GetCourseList lists published courses, optionally filtered by the
// staff member's department
func GetCourseList(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	query := database.Database.Db.Where("is_deleted = ? AND is_published = ?", false, true)
	if department := c.Query("department"); department != "" {
		query = query.Where("department = ? OR department = ''", department)
	}

	var courses []courseModels.Course
	query.Order("created_at desc").Find(&courses)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"total":   len(courses),
	})
}

// GetCourseContent returns a course's modules and published content
// blocks, with the learner's completion flag on each block
func GetCourseContent(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	var modules []courseModels.Module
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc").Find(&modules)

	type blockView struct {
		courseModels.ContentBlock
		IsCompleted bool `json:"is_completed"`
	}
	type moduleView struct {
		Module courseModels.Module `json:"module"`
		Blocks []blockView         `json:"blocks"`
	}

	views := make([]moduleView, len(modules))
	for i, mod := range modules {
		views[i].Module = mod

		var blocks []courseModels.ContentBlock
		database.Database.Db.Where("module_id = ? AND is_deleted = ? AND is_published = ?", mod.ID, false, true).
			Order("order_index asc").Find(&blocks)

		var completions []courseModels.BlockCompletion
		database.Database.Db.Where("user_id = ? AND module_id = ? AND is_deleted = ?", userID, mod.ID, false).
			Find(&completions)
		completed := make(map[uint]bool, len(completions))
		for _, completion := range completions {
			completed[completion.ContentBlockID] = true
		}

		views[i].Blocks = make([]blockView, len(blocks))
		for j, block := range blocks {
			views[i].Blocks[j] = blockView{ContentBlock: block, IsCompleted: completed[block.ID]}
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course content fetched successfully!", fiber.Map{
		"course":     course,
		"enrollment": enrollment,
		"modules":    views,
	})
}

// GetComplianceDashboard summarises enrollment status and grade
// snapshots across a course (instructor only)
func GetComplianceDashboard(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var enrollments []courseModels.Enrollment
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).Find(&enrollments)

	statusCounts := map[string]int{}
	passedCount := 0

	type learnerRow struct {
		Enrollment courseModels.Enrollment           `json:"enrollment"`
		Snapshot   *courseModels.CourseGradeSnapshot `json:"snapshot,omitempty"`
	}
	rows := make([]learnerRow, len(enrollments))
	for i, enrollment := range enrollments {
		statusCounts[enrollment.Status]++
		rows[i].Enrollment = enrollment

		var snapshot courseModels.CourseGradeSnapshot
		if err := database.Database.Db.Where("user_id = ? AND course_id = ?", enrollment.UserID, courseID).First(&snapshot).Error; err == nil {
			rows[i].Snapshot = &snapshot
			if snapshot.OverallPassed {
				passedCount++
			}
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Compliance dashboard fetched successfully!", fiber.Map{
		"course":         course,
		"total_enrolled": len(enrollments),
		"status_counts":  statusCounts,
		"passed_count":   passedCount,
		"learners":       rows,
	})
}
