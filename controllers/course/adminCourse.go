package controllers

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"medtrain/database"
	"medtrain/middleware"
	courseModels "medtrain/models/course"
	"medtrain/services/audit"
)

// CreateCourse creates a new training course (admin only)
func CreateCourse(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := c.Locals("validatedCourse").(*struct {
		Title           string  `json:"title"`
		Description     string  `json:"description"`
		Author          string  `json:"author"`
		Department      string  `json:"department"`
		Duration        int64   `json:"duration"`
		MinOverallScore float64 `json:"min_overall_score"`
		ThumbnailURL    string  `json:"thumbnail_url"`
	})

	course := courseModels.Course{
		Title:           reqData.Title,
		Description:     reqData.Description,
		Author:          reqData.Author,
		Department:      reqData.Department,
		Duration:        reqData.Duration,
		MinOverallScore: reqData.MinOverallScore,
		ThumbnailURL:    reqData.ThumbnailURL,
		Status:          "DRAFT",
	}
	if course.MinOverallScore <= 0 {
		course.MinOverallScore = 70
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	Audit.Record(audit.Entry{
		ActorID:    adminID,
		ActionType: audit.ActionCourseChanged,
		TargetID:   fmt.Sprintf("course:%d", course.ID),
		Details:    "course created: " + course.Title,
	})

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// UpdateCourse updates course fields, including publish state (admin
// only)
func UpdateCourse(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData := new(struct {
		Title           *string  `json:"title"`
		Description     *string  `json:"description"`
		Department      *string  `json:"department"`
		Duration        *int64   `json:"duration"`
		Status          *string  `json:"status"`
		MinOverallScore *float64 `json:"min_overall_score"`
		ThumbnailURL    *string  `json:"thumbnail_url"`
		IsPublished     *bool    `json:"is_published"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.Title != nil {
		course.Title = *reqData.Title
	}
	if reqData.Description != nil {
		course.Description = *reqData.Description
	}
	if reqData.Department != nil {
		course.Department = *reqData.Department
	}
	if reqData.Duration != nil {
		course.Duration = *reqData.Duration
	}
	if reqData.Status != nil {
		course.Status = *reqData.Status
	}
	if reqData.MinOverallScore != nil {
		if *reqData.MinOverallScore < 0 || *reqData.MinOverallScore > 100 {
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Minimum overall score must be between 0 and 100!", nil)
		}
		course.MinOverallScore = *reqData.MinOverallScore
	}
	if reqData.ThumbnailURL != nil {
		course.ThumbnailURL = *reqData.ThumbnailURL
	}
	if reqData.IsPublished != nil {
		course.IsPublished = *reqData.IsPublished
	}

	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	Audit.Record(audit.Entry{
		ActorID:    adminID,
		ActionType: audit.ActionCourseChanged,
		TargetID:   fmt.Sprintf("course:%d", course.ID),
		Details:    "course updated: " + course.Title,
	})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// DeleteCourse soft-deletes a course (admin only)
func DeleteCourse(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	course.IsDeleted = true
	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	Audit.Record(audit.Entry{
		ActorID:    adminID,
		ActionType: audit.ActionCourseChanged,
		TargetID:   fmt.Sprintf("course:%d", course.ID),
		Details:    "course deleted: " + course.Title,
	})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// AddModule adds a graded module to a course (admin only)
func AddModule(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData := c.Locals("validatedModule").(*struct {
		Title        string  `json:"title"`
		Description  string  `json:"description"`
		Weight       float64 `json:"weight"`
		IsCritical   bool    `json:"is_critical"`
		PassingScore float64 `json:"passing_score"`
		OrderIndex   int     `json:"order_index"`
	})

	module := courseModels.Module{
		CourseID:     uint(courseID),
		Title:        reqData.Title,
		Description:  reqData.Description,
		Weight:       reqData.Weight,
		IsCritical:   reqData.IsCritical,
		PassingScore: reqData.PassingScore,
		OrderIndex:   reqData.OrderIndex,
	}
	if module.PassingScore <= 0 {
		module.PassingScore = 70
	}

	if err := database.Database.Db.Create(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module added successfully!", module)
}

// UpdateModule updates a module's grading settings (admin only)
func UpdateModule(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	moduleID := c.Locals("moduleID").(int)

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	reqData := new(struct {
		Title        *string  `json:"title"`
		Description  *string  `json:"description"`
		Weight       *float64 `json:"weight"`
		IsCritical   *bool    `json:"is_critical"`
		PassingScore *float64 `json:"passing_score"`
		OrderIndex   *int     `json:"order_index"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.Title != nil {
		module.Title = *reqData.Title
	}
	if reqData.Description != nil {
		module.Description = *reqData.Description
	}
	if reqData.Weight != nil {
		if *reqData.Weight < 0 || *reqData.Weight > 100 {
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Weight must be between 0 and 100!", nil)
		}
		module.Weight = *reqData.Weight
	}
	if reqData.IsCritical != nil {
		module.IsCritical = *reqData.IsCritical
	}
	if reqData.PassingScore != nil {
		if *reqData.PassingScore < 0 || *reqData.PassingScore > 100 {
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Passing score must be between 0 and 100!", nil)
		}
		module.PassingScore = *reqData.PassingScore
	}
	if reqData.OrderIndex != nil {
		module.OrderIndex = *reqData.OrderIndex
	}

	if err := database.Database.Db.Save(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

// DeleteModule soft-deletes a module (admin only)
func DeleteModule(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	moduleID := c.Locals("moduleID").(int)

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	module.IsDeleted = true
	if err := database.Database.Db.Save(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}

// AddContentBlock adds a content block to a module (admin only)
func AddContentBlock(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	moduleID := c.Locals("moduleID").(int)

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	reqData := c.Locals("validatedBlock").(*struct {
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

	block := courseModels.ContentBlock{
		CourseID:    module.CourseID,
		ModuleID:    module.ID,
		Title:       reqData.Title,
		Description: reqData.Description,
		BlockType:   reqData.BlockType,
		TextContent: reqData.TextContent,
		VideoURL:    reqData.VideoURL,
		ImageURL:    reqData.ImageURL,
		OrderIndex:  reqData.OrderIndex,
		IsRequired:  true,
		IsPublished: reqData.IsPublished,
	}
	if reqData.IsRequired != nil {
		block.IsRequired = *reqData.IsRequired
	}

	if err := database.Database.Db.Create(&block).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add content block!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Content block added successfully!", block)
}

// UpdateContentBlock updates a content block, including its publish
// state (admin only)
func UpdateContentBlock(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	blockID := c.Locals("blockID").(int)

	var block courseModels.ContentBlock
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", blockID, false).First(&block).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content block not found!", nil)
	}

	reqData := new(struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		TextContent *string `json:"text_content"`
		VideoURL    *string `json:"video_url"`
		ImageURL    *string `json:"image_url"`
		OrderIndex  *int    `json:"order_index"`
		IsRequired  *bool   `json:"is_required"`
		IsPublished *bool   `json:"is_published"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.Title != nil {
		block.Title = *reqData.Title
	}
	if reqData.Description != nil {
		block.Description = *reqData.Description
	}
	if reqData.TextContent != nil {
		block.TextContent = *reqData.TextContent
	}
	if reqData.VideoURL != nil {
		block.VideoURL = *reqData.VideoURL
	}
	if reqData.ImageURL != nil {
		block.ImageURL = *reqData.ImageURL
	}
	if reqData.OrderIndex != nil {
		block.OrderIndex = *reqData.OrderIndex
	}
	if reqData.IsRequired != nil {
		block.IsRequired = *reqData.IsRequired
	}
	if reqData.IsPublished != nil {
		block.IsPublished = *reqData.IsPublished
	}

	if err := database.Database.Db.Save(&block).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update content block!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content block updated successfully!", block)
}

// DeleteContentBlock soft-deletes a content block (admin only)
func DeleteContentBlock(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	blockID := c.Locals("blockID").(int)

	var block courseModels.ContentBlock
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", blockID, false).First(&block).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content block not found!", nil)
	}

	block.IsDeleted = true
	if err := database.Database.Db.Save(&block).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete content block!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content block deleted successfully!", nil)
}

// AddQuizQuestion adds a question to a quiz block (admin only)
func AddQuizQuestion(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	blockID := c.Locals("blockID").(int)

	var block courseModels.ContentBlock
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", blockID, false).First(&block).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content block not found!", nil)
	}
	if block.BlockType != courseModels.BlockTypeQuiz {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Content block is not a quiz!", nil)
	}

	reqData := c.Locals("validatedQuestion").(*struct {
		QuestionType  string                     `json:"question_type"`
		Prompt        string                     `json:"prompt"`
		Options       []string                   `json:"options"`
		CorrectIndex  *int                       `json:"correct_index"`
		CorrectText   string                     `json:"correct_text"`
		MatchingPairs []courseModels.MatchingPair `json:"matching_pairs"`
		Points        float64                    `json:"points"`
		OrderIndex    int                        `json:"order_index"`
	})

	question := courseModels.QuizQuestion{
		ContentBlockID: uint(blockID),
		ModuleID:       block.ModuleID,
		QuestionType:   reqData.QuestionType,
		Prompt:         reqData.Prompt,
		CorrectIndex:   reqData.CorrectIndex,
		CorrectText:    reqData.CorrectText,
		Points:         reqData.Points,
		OrderIndex:     reqData.OrderIndex,
	}
	if question.Points <= 0 {
		question.Points = 1
	}
	if len(reqData.Options) > 0 {
		raw, _ := json.Marshal(reqData.Options)
		question.Options = raw
	}
	if len(reqData.MatchingPairs) > 0 {
		raw, _ := json.Marshal(reqData.MatchingPairs)
		question.MatchingPairs = raw
	}

	if err := database.Database.Db.Create(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question added successfully!", question)
}

// UpdateQuizQuestion updates a quiz question's prompt, key or points
// (admin only)
func UpdateQuizQuestion(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	questionID := c.Locals("questionID").(int)

	var question courseModels.QuizQuestion
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", questionID, false).First(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	reqData := new(struct {
		Prompt        *string                     `json:"prompt"`
		Options       []string                    `json:"options"`
		CorrectIndex  *int                        `json:"correct_index"`
		CorrectText   *string                     `json:"correct_text"`
		MatchingPairs []courseModels.MatchingPair `json:"matching_pairs"`
		Points        *float64                    `json:"points"`
		OrderIndex    *int                        `json:"order_index"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.Prompt != nil {
		question.Prompt = *reqData.Prompt
	}
	if reqData.Options != nil {
		raw, _ := json.Marshal(reqData.Options)
		question.Options = raw
	}
	if reqData.CorrectIndex != nil {
		question.CorrectIndex = reqData.CorrectIndex
	}
	if reqData.CorrectText != nil {
		question.CorrectText = *reqData.CorrectText
	}
	if reqData.MatchingPairs != nil {
		raw, _ := json.Marshal(reqData.MatchingPairs)
		question.MatchingPairs = raw
	}
	if reqData.Points != nil {
		if *reqData.Points < 0 {
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Points cannot be negative!", nil)
		}
		question.Points = *reqData.Points
	}
	if reqData.OrderIndex != nil {
		question.OrderIndex = *reqData.OrderIndex
	}

	if err := database.Database.Db.Save(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully!", question)
}

// DeleteQuizQuestion soft-deletes a quiz question (admin only)
func DeleteQuizQuestion(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	questionID := c.Locals("questionID").(int)

	var question courseModels.QuizQuestion
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", questionID, false).First(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	question.IsDeleted = true
	if err := database.Database.Db.Save(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully!", nil)
}
