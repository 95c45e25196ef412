package courseValidator

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"medtrain/middleware"
)

// paramID validates a positive integer route parameter and stores it
// under the given locals key.
func paramID(param, key, label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Params(param))
		if raw == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, label+" is required!", nil)
		}

		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+label+"!", nil)
		}

		c.Locals(key, id)
		return c.Next()
	}
}

func CourseID() fiber.Handler {
	return paramID("course_id", "courseID", "Course ID")
}

func ModuleID() fiber.Handler {
	return paramID("module_id", "moduleID", "Module ID")
}

func BlockID() fiber.Handler {
	return paramID("block_id", "blockID", "Block ID")
}

func QuestionID() fiber.Handler {
	return paramID("question_id", "questionID", "Question ID")
}

func GradeID() fiber.Handler {
	return paramID("grade_id", "gradeID", "Grade ID")
}

func LearnerID() fiber.Handler {
	return paramID("user_id", "learnerID", "User ID")
}

func EnrollmentID() fiber.Handler {
	return paramID("enrollment_id", "enrollmentID", "Enrollment ID")
}

func RequestID() fiber.Handler {
	return paramID("request_id", "requestID", "Request ID")
}
