package utils

import (
	"fmt"
	"net/smtp"
	"strings"

	"medtrain/config"
)

// Generic Send Email. A missing sender configuration disables outgoing
// mail entirely.
func SendEmail(to []string, subject string, htmlBody string) error {
	if config.AppConfig == nil || config.AppConfig.EmailSender == "" {
		return nil
	}

	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: MedTrain <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		fmt.Println("Error sending email:", err)
		return err
	}
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #0B4F6C; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B1B1E; line-height: 1.6; }
			.content h2 { color: #0B4F6C; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #0B4F6C; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>MedTrain</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				This is an automated message from the staff training platform. Please do not reply.
			</div>
		</div>
	</body>
	</html>`, title, bodyContent)
}

// SendEnrollmentEmail confirms a new course enrollment
func SendEnrollmentEmail(email, name, courseTitle string) error {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>You have been enrolled in <strong>%s</strong>.</p>
		<div class="info-box">Complete all required modules to stay compliant. Your progress is tracked automatically.</div>`,
		name, courseTitle)

	return SendEmail([]string{email}, "Enrollment confirmed: "+courseTitle, getEmailTemplate("Enrollment Confirmed", body))
}

// SendCertificateEmail notifies a staff member that their certificate
// was issued
func SendCertificateEmail(email, name, courseTitle, certificateNumber string) error {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Congratulations! Your certificate for <strong>%s</strong> has been issued.</p>
		<div class="info-box">Certificate number: <strong>%s</strong></div>
		<p>Keep this number for your compliance records.</p>`,
		name, courseTitle, certificateNumber)

	return SendEmail([]string{email}, "Your certificate is ready", getEmailTemplate("Certificate Issued", body))
}

// SendCompletionEmail congratulates a staff member on finishing a
// course
func SendCompletionEmail(email, name, courseTitle string) error {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>You have completed <strong>%s</strong>.</p>
		<div class="info-box">If your final grade meets the course requirements you can now request your certificate.</div>`,
		name, courseTitle)

	return SendEmail([]string{email}, "Course completed: "+courseTitle, getEmailTemplate("Course Completed", body))
}

// SendReviewOutcomeEmail notifies a staff member about a manual review
// decision
func SendReviewOutcomeEmail(email, name, courseTitle string, approved bool, reason string) error {
	if approved {
		body := fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>Your submitted answers for <strong>%s</strong> were reviewed and approved.</p>
			<div class="info-box">Your final grade has been recorded.</div>`,
			name, courseTitle)
		return SendEmail([]string{email}, "Review approved: "+courseTitle, getEmailTemplate("Review Approved", body))
	}

	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your submitted answers for <strong>%s</strong> were returned by the reviewer.</p>
		<div class="info-box">%s</div>
		<p>You can resubmit from the course page.</p>`,
		name, courseTitle, reason)
	return SendEmail([]string{email}, "Review returned: "+courseTitle, getEmailTemplate("Review Returned", body))
}

// SendRemediationEmail notifies a staff member about the outcome of a
// remediation request
func SendRemediationEmail(email, name, moduleTitle string, approved bool) error {
	outcome := "approved"
	detail := "Your module progress has been reset. You may retry the module now."
	if !approved {
		outcome = "denied"
		detail = "Please contact your training coordinator for next steps."
	}

	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your remediation request for <strong>%s</strong> was <strong>%s</strong>.</p>
		<div class="info-box">%s</div>`,
		name, moduleTitle, outcome, detail)

	return SendEmail([]string{email}, "Remediation request "+outcome, getEmailTemplate("Remediation Update", body))
}
