package courseValidator

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"medtrain/middleware"
)

// EnterGrade validator middleware
func EnterGrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			UserID       uint    `json:"user_id"`
			ModuleID     uint    `json:"module_id"`
			Score        float64 `json:"score"`
			PassingScore float64 `json:"passing_score"`
			Notes        string  `json:"notes"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.UserID == 0 {
			errors["user_id"] = "User ID is required!"
		}
		if reqData.ModuleID == 0 {
			errors["module_id"] = "Module ID is required!"
		}
		if reqData.Score < 0 || reqData.Score > 100 {
			errors["score"] = "Score must be between 0 and 100!"
		}
		if reqData.PassingScore < 0 || reqData.PassingScore > 100 {
			errors["passing_score"] = "Passing score must be between 0 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedGrade", reqData)
		return c.Next()
	}
}

// CorrectGrade validator middleware
func CorrectGrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Score        float64 `json:"score"`
			PassingScore float64 `json:"passing_score"`
			Reason       string  `json:"reason"`
			Notes        string  `json:"notes"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Score < 0 || reqData.Score > 100 {
			errors["score"] = "Score must be between 0 and 100!"
		}
		if reqData.PassingScore < 0 || reqData.PassingScore > 100 {
			errors["passing_score"] = "Passing score must be between 0 and 100!"
		}
		if strings.TrimSpace(reqData.Reason) == "" {
			errors["reason"] = "A correction reason is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCorrection", reqData)
		return c.Next()
	}
}

// ApproveReview validator middleware
func ApproveReview() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ModuleID     uint    `json:"module_id"`
			FinalScore   float64 `json:"final_score"`
			PassingScore float64 `json:"passing_score"`
			Notes        string  `json:"notes"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.ModuleID == 0 {
			errors["module_id"] = "Module ID is required!"
		}
		if reqData.FinalScore < 0 || reqData.FinalScore > 100 {
			errors["final_score"] = "Final score must be between 0 and 100!"
		}
		if reqData.PassingScore < 0 || reqData.PassingScore > 100 {
			errors["passing_score"] = "Passing score must be between 0 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedReview", reqData)
		return c.Next()
	}
}

// RejectReview validator middleware
func RejectReview() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Reason string `json:"reason"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if strings.TrimSpace(reqData.Reason) == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"reason": "A rejection reason is required!",
			})
		}

		c.Locals("validatedRejection", reqData)
		return c.Next()
	}
}
