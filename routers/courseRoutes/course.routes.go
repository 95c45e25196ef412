package courseRoutes

import (
	"github.com/gofiber/fiber/v2"

	controllers "medtrain/controllers/course"
	"medtrain/middleware"
	validators "medtrain/validators/course"
)

// SetupCourseRoutes sets up all learner-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Course listing and playback
	courseGroup.Get("/list", middleware.JWTMiddleware, controllers.GetCourseList)
	courseGroup.Get("/:course_id/content", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseContent)

	// Enrollment
	courseGroup.Post("/:course_id/enroll", middleware.JWTMiddleware, validators.CourseID(), controllers.EnrollInCourse)

	// Block completion
	courseGroup.Post("/:course_id/block/:block_id/complete", middleware.JWTMiddleware, validators.CourseID(), validators.BlockID(), controllers.MarkBlockComplete)

	// Quiz playback and submission
	courseGroup.Get("/:course_id/block/:block_id/quiz", middleware.JWTMiddleware, validators.CourseID(), validators.BlockID(), controllers.GetQuizQuestions)
	courseGroup.Post("/:course_id/block/:block_id/quiz/submit", middleware.JWTMiddleware, validators.CourseID(), validators.BlockID(), controllers.SubmitQuiz)

	// Progress and course grade
	courseGroup.Get("/:course_id/progress", middleware.JWTMiddleware, validators.CourseID(), controllers.GetUserProgress)
	courseGroup.Get("/:course_id/grade", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseGradeSnapshot)
	courseGroup.Post("/:course_id/grade/calculate", middleware.JWTMiddleware, validators.CourseID(), controllers.CalculateCourseGrade)

	// Certificate request
	courseGroup.Post("/:course_id/certificate/request", middleware.JWTMiddleware, validators.CourseID(), controllers.RequestCertificate)

	// User enrollments and certificates
	userGroup := app.Group("/user")
	userGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetUserEnrollmentsList)
	userGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)
}
