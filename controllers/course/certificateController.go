package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"medtrain/database"
	"medtrain/middleware"
	"medtrain/models"
	courseModels "medtrain/models/course"
	"medtrain/services/audit"
	"medtrain/utils"
)

// RequestCertificate lets a learner request a certificate for a
// completed, passing enrollment
func RequestCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}
	if enrollment.Status != courseModels.StatusCompleted {
		return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Course must be completed before requesting a certificate!", nil)
	}

	var snapshot courseModels.CourseGradeSnapshot
	if err := database.Database.Db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&snapshot).Error; err != nil || !snapshot.OverallPassed {
		return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Course grade does not meet the certificate requirements!", nil)
	}

	var existing courseModels.CertificateRequest
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND status = ? AND is_deleted = ?",
		userID, courseID, "PENDING", false).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "A certificate request is already pending!", existing)
	}

	request := courseModels.CertificateRequest{
		UserID:       userID,
		CourseID:     uint(courseID),
		EnrollmentID: enrollment.ID,
		Status:       "PENDING",
		RequestedAt:  time.Now(),
	}
	if err := database.Database.Db.Create(&request).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to request certificate!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate requested successfully!", request)
}

// ApproveCertificate issues the certificate for an approved request
// (admin only)
func ApproveCertificate(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	requestID := c.Locals("requestID").(int)

	var request courseModels.CertificateRequest
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", requestID, false).First(&request).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate request not found!", nil)
	}
	if request.Status != "PENDING" {
		return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Certificate request has already been reviewed!", nil)
	}

	var snapshot courseModels.CourseGradeSnapshot
	if err := database.Database.Db.Where("user_id = ? AND course_id = ?", request.UserID, request.CourseID).First(&snapshot).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "No grade snapshot for this enrollment!", nil)
	}

	now := time.Now()
	request.Status = "APPROVED"
	request.ApprovedAt = &now
	request.ApprovedBy = &adminID
	if err := database.Database.Db.Save(&request).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve request!", nil)
	}

	certificate := courseModels.Certificate{
		UserID:            request.UserID,
		CourseID:          request.CourseID,
		CertificateNumber: fmt.Sprintf("MT-%d-%s", request.CourseID, uuid.New().String()[:8]),
		FinalScore:        snapshot.OverallScore,
		IssuedAt:          now,
	}
	if err := database.Database.Db.Create(&certificate).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to issue certificate!", nil)
	}

	var learner models.User
	var course courseModels.Course
	database.Database.Db.Where("id = ?", request.UserID).First(&learner)
	database.Database.Db.Where("id = ?", request.CourseID).First(&course)

	Audit.Record(audit.Entry{
		ActorID:    adminID,
		ActionType: audit.ActionCertificateIssued,
		TargetID:   certificate.CertificateNumber,
		Details:    fmt.Sprintf("certificate %s issued to user %d for course %d", certificate.CertificateNumber, request.UserID, request.CourseID),
	})

	go utils.SendCertificateEmail(learner.Email, learner.Name, course.Title, certificate.CertificateNumber)
	go utils.NotifyWebhook("certificate.issued", map[string]interface{}{
		"user_id":            certificate.UserID,
		"course_id":          certificate.CourseID,
		"certificate_number": certificate.CertificateNumber,
		"final_score":        certificate.FinalScore,
	})

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate issued successfully!", certificate)
}

// RejectCertificate rejects a pending certificate request (admin only)
func RejectCertificate(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	requestID := c.Locals("requestID").(int)

	reqData := new(struct {
		Reason string `json:"reason"`
	})
	if err := c.BodyParser(reqData); err != nil || reqData.Reason == "" {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "A rejection reason is required!", nil)
	}

	var request courseModels.CertificateRequest
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", requestID, false).First(&request).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate request not found!", nil)
	}
	if request.Status != "PENDING" {
		return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Certificate request has already been reviewed!", nil)
	}

	request.Status = "REJECTED"
	request.RejectionReason = reqData.Reason
	if err := database.Database.Db.Save(&request).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reject request!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate request rejected!", request)
}

// GetUserCertificates lists the authenticated user's issued
// certificates
func GetUserCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var certificates []courseModels.Certificate
	database.Database.Db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("issued_at desc").Find(&certificates)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": certificates,
		"total":        len(certificates),
	})
}

// GetCertificateRequests lists pending certificate requests (admin
// only)
func GetCertificateRequests(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var requests []courseModels.CertificateRequest
	database.Database.Db.Where("status = ? AND is_deleted = ?", "PENDING", false).
		Order("requested_at asc").Find(&requests)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate requests fetched successfully!", fiber.Map{
		"requests": requests,
		"total":    len(requests),
	})
}
