package courseRoutes

import (
	"github.com/gofiber/fiber/v2"

	controllers "medtrain/controllers/course"
	"medtrain/middleware"
	"medtrain/models"
	validators "medtrain/validators/course"
)

// SetupAdminCourseRoutes sets up course authoring, grading and review
// routes for instructors and administrators
func SetupAdminCourseRoutes(app *fiber.App) {
	staff := middleware.RequireRole(models.RoleInstructor, models.RoleAdmin)
	admin := middleware.RequireRole(models.RoleAdmin)

	// Course authoring
	adminGroup := app.Group("/admin/course")
	adminGroup.Post("/create", middleware.JWTMiddleware, admin, validators.CreateCourse(), controllers.CreateCourse)
	adminGroup.Put("/:course_id", middleware.JWTMiddleware, admin, validators.CourseID(), controllers.UpdateCourse)
	adminGroup.Delete("/:course_id", middleware.JWTMiddleware, admin, validators.CourseID(), controllers.DeleteCourse)

	// Module management
	adminGroup.Post("/:course_id/module", middleware.JWTMiddleware, admin, validators.CourseID(), validators.CreateModule(), controllers.AddModule)
	adminGroup.Put("/module/:module_id", middleware.JWTMiddleware, admin, validators.ModuleID(), controllers.UpdateModule)
	adminGroup.Delete("/module/:module_id", middleware.JWTMiddleware, admin, validators.ModuleID(), controllers.DeleteModule)

	// Content management
	adminGroup.Post("/module/:module_id/block", middleware.JWTMiddleware, admin, validators.ModuleID(), validators.CreateContentBlock(), controllers.AddContentBlock)
	adminGroup.Put("/block/:block_id", middleware.JWTMiddleware, admin, validators.BlockID(), controllers.UpdateContentBlock)
	adminGroup.Delete("/block/:block_id", middleware.JWTMiddleware, admin, validators.BlockID(), controllers.DeleteContentBlock)
	adminGroup.Post("/block/:block_id/question", middleware.JWTMiddleware, admin, validators.BlockID(), validators.CreateQuestion(), controllers.AddQuizQuestion)
	adminGroup.Put("/question/:question_id", middleware.JWTMiddleware, admin, validators.QuestionID(), controllers.UpdateQuizQuestion)
	adminGroup.Delete("/question/:question_id", middleware.JWTMiddleware, admin, validators.QuestionID(), controllers.DeleteQuizQuestion)

	// Compliance dashboard
	adminGroup.Get("/:course_id/dashboard", middleware.JWTMiddleware, staff, validators.CourseID(), controllers.GetComplianceDashboard)

	// Grade ledger
	gradeGroup := app.Group("/admin/grade")
	gradeGroup.Post("/enter", middleware.JWTMiddleware, staff, validators.EnterGrade(), controllers.EnterGrade)
	gradeGroup.Post("/:grade_id/correct", middleware.JWTMiddleware, staff, validators.GradeID(), validators.CorrectGrade(), controllers.CorrectGrade)
	gradeGroup.Get("/user/:user_id/module/:module_id", middleware.JWTMiddleware, staff, validators.LearnerID(), validators.ModuleID(), controllers.GetCurrentGrade)
	gradeGroup.Get("/user/:user_id/module/:module_id/history", middleware.JWTMiddleware, staff, validators.LearnerID(), validators.ModuleID(), controllers.GetGradeHistory)

	// Manual review queue
	reviewGroup := app.Group("/admin/review")
	reviewGroup.Get("/queue", middleware.JWTMiddleware, staff, controllers.GetReviewQueue)
	reviewGroup.Post("/:enrollment_id/approve", middleware.JWTMiddleware, staff, validators.EnrollmentID(), validators.ApproveReview(), controllers.ApproveReview)
	reviewGroup.Post("/:enrollment_id/reject", middleware.JWTMiddleware, staff, validators.EnrollmentID(), validators.RejectReview(), controllers.RejectReview)

	// Remediation queue
	remediationGroup := app.Group("/admin/remediation")
	remediationGroup.Get("/queue", middleware.JWTMiddleware, staff, controllers.GetRemediationQueue)
	remediationGroup.Post("/:request_id/approve", middleware.JWTMiddleware, staff, validators.RequestID(), controllers.ApproveRemediation)
	remediationGroup.Post("/:request_id/deny", middleware.JWTMiddleware, staff, validators.RequestID(), controllers.DenyRemediation)

	// Certificates
	certificateGroup := app.Group("/admin/certificate")
	certificateGroup.Get("/requests", middleware.JWTMiddleware, admin, controllers.GetCertificateRequests)
	certificateGroup.Post("/:request_id/approve", middleware.JWTMiddleware, admin, validators.RequestID(), controllers.ApproveCertificate)
	certificateGroup.Post("/:request_id/reject", middleware.JWTMiddleware, admin, validators.RequestID(), controllers.RejectCertificate)
}
