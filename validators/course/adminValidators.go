package courseValidator

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"medtrain/middleware"
	courseModels "medtrain/models/course"
)

// CreateCourse validator middleware
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title           string  `json:"title"`
			Description     string  `json:"description"`
			Author          string  `json:"author"`
			Department      string  `json:"department"`
			Duration        int64   `json:"duration"`
			MinOverallScore float64 `json:"min_overall_score"`
			ThumbnailURL    string  `json:"thumbnail_url"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate Title
		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		} else if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		// Validate Description
		if strings.TrimSpace(reqData.Description) == "" {
			errors["description"] = "Description is required!"
		}

		if reqData.MinOverallScore < 0 || reqData.MinOverallScore > 100 {
			errors["min_overall_score"] = "Minimum overall score must be between 0 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// CreateModule validator middleware
func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title        string  `json:"title"`
			Description  string  `json:"description"`
			Weight       float64 `json:"weight"`
			IsCritical   bool    `json:"is_critical"`
			PassingScore float64 `json:"passing_score"`
			OrderIndex   int     `json:"order_index"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}
		if reqData.Weight < 0 || reqData.Weight > 100 {
			errors["weight"] = "Weight must be between 0 and 100!"
		}
		if reqData.PassingScore < 0 || reqData.PassingScore > 100 {
			errors["passing_score"] = "Passing score must be between 0 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

// CreateContentBlock validator middleware
func CreateContentBlock() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			BlockType   string `json:"block_type"`
			TextContent string `json:"text_content"`
			VideoURL    string `json:"video_url"`
			ImageURL    string `json:"image_url"`
			OrderIndex  int    `json:"order_index"`
			IsRequired  *bool  `json:"is_required"`
			IsPublished bool   `json:"is_published"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}

		switch reqData.BlockType {
		case courseModels.BlockTypeText:
			if strings.TrimSpace(reqData.TextContent) == "" {
				errors["text_content"] = "Text content is required for TEXT blocks!"
			}
		case courseModels.BlockTypeVideo:
			if strings.TrimSpace(reqData.VideoURL) == "" {
				errors["video_url"] = "Video URL is required for VIDEO blocks!"
			}
		case courseModels.BlockTypeImage:
			if strings.TrimSpace(reqData.ImageURL) == "" {
				errors["image_url"] = "Image URL is required for IMAGE blocks!"
			}
		case courseModels.BlockTypeQuiz:
		default:
			errors["block_type"] = "Block type must be TEXT, VIDEO, IMAGE or QUIZ!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedBlock", reqData)
		return c.Next()
	}
}

// CreateQuestion validator middleware
func CreateQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			QuestionType  string                      `json:"question_type"`
			Prompt        string                      `json:"prompt"`
			Options       []string                    `json:"options"`
			CorrectIndex  *int                        `json:"correct_index"`
			CorrectText   string                      `json:"correct_text"`
			MatchingPairs []courseModels.MatchingPair `json:"matching_pairs"`
			Points        float64                     `json:"points"`
			OrderIndex    int                         `json:"order_index"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Prompt) == "" {
			errors["prompt"] = "Prompt is required!"
		}
		if reqData.Points < 0 {
			errors["points"] = "Points cannot be negative!"
		}

		switch reqData.QuestionType {
		case courseModels.QuestionMultipleChoice:
			if len(reqData.Options) < 2 {
				errors["options"] = "Multiple-choice questions need at least 2 options!"
			} else if reqData.CorrectIndex == nil || *reqData.CorrectIndex < 0 || *reqData.CorrectIndex >= len(reqData.Options) {
				errors["correct_index"] = "Correct index must point at one of the options!"
			}
		case courseModels.QuestionTrueFalse:
			if reqData.CorrectIndex == nil || *reqData.CorrectIndex < 0 || *reqData.CorrectIndex > 1 {
				errors["correct_index"] = "True/false questions need a correct index of 0 or 1!"
			}
		case courseModels.QuestionFillBlank:
			if strings.TrimSpace(reqData.CorrectText) == "" {
				errors["correct_text"] = "Fill-in-the-blank questions need a correct text!"
			}
		case courseModels.QuestionMatching:
			if len(reqData.MatchingPairs) == 0 {
				errors["matching_pairs"] = "Matching questions need at least one pair!"
			}
		case courseModels.QuestionShortAnswer:
		default:
			errors["question_type"] = "Unknown question type!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuestion", reqData)
		return c.Next()
	}
}
