package controllers

import (
	"github.com/gofiber/fiber/v2"

	"medtrain/database"
	"medtrain/middleware"
	"medtrain/models"
	courseModels "medtrain/models/course"
	"medtrain/services/audit"
	"medtrain/utils"
)

// EnrollInCourse enrolls the authenticated staff member in a published
// course and seeds a progress record per module
func EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var existing courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Already enrolled in this course!", existing)
	}

	enrollment := courseModels.Enrollment{
		UserID:   userID,
		CourseID: uint(courseID),
		Status:   courseModels.StatusNotStarted,
	}
	if err := database.Database.Db.Create(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll!", nil)
	}

	var modules []courseModels.Module
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).Find(&modules)
	for _, mod := range modules {
		if _, err := Tracker.Initialize(userID, uint(courseID), mod.ID); err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to initialise progress!", nil)
		}
	}

	Audit.Record(audit.Entry{
		ActorID:    userID,
		ActorName:  user.Name,
		ActionType: audit.ActionEnrolled,
		TargetID:   course.Title,
		Details:    user.Name + " enrolled in " + course.Title,
	})

	go utils.SendEnrollmentEmail(user.Email, user.Name, course.Title)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled successfully!", enrollment)
}

// GetUserEnrollmentsList gets the list of the user's enrollments with
// their course details
func GetUserEnrollmentsList(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var enrollments []courseModels.Enrollment
	database.Database.Db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("created_at desc").Find(&enrollments)

	type enrollmentView struct {
		Enrollment courseModels.Enrollment `json:"enrollment"`
		Course     courseModels.Course     `json:"course"`
	}

	views := make([]enrollmentView, 0, len(enrollments))
	for _, enrollment := range enrollments {
		var course courseModels.Course
		if err := database.Database.Db.Where("id = ? AND is_deleted = ?", enrollment.CourseID, false).First(&course).Error; err != nil {
			continue
		}
		views = append(views, enrollmentView{Enrollment: enrollment, Course: course})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": views,
		"total":       len(views),
	})
}
