package utils

import (
	"fmt"
	"log"

	"osvita/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

func sendEmail(toEmail, toName, subject, htmlBody string) error {
	if config.AppConfig.SendgridAPIKey == "" {
		log.Printf("Email skipped (no SENDGRID_API_KEY): %q to %s", subject, toEmail)
		return nil
	}

	from := mail.NewEmail("Osvita", config.AppConfig.EmailSender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendgridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("Error sending email to %s: %v", toEmail, err)
		return err
	}
	if resp.StatusCode >= 400 {
		log.Printf("Sendgrid returned %d for email to %s", resp.StatusCode, toEmail)
		return fmt.Errorf("sendgrid returned %d", resp.StatusCode)
	}
	return nil
}

// SendWelcomeEmail greets a freshly registered user and carries the
// email verification link
func SendWelcomeEmail(email, name, verifyLink string) error {
	body := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif; padding: 20px;">
				<h2>Welcome to Osvita!</h2>
				<p>Dear %s,</p>
				<p>Your account has been created. Browse the topics, study the materials and earn XP by passing quizzes.</p>
				<p>Please <a href="%s">verify your email address</a> to complete your registration.</p>
				<p style="color: #999999; font-size: 12px;">Osvita Team</p>
			</body>
		</html>
	`, name, verifyLink)
	return sendEmail(email, name, "Welcome to Osvita", body)
}

// SendQuizPassedEmail congratulates a student on passing a quiz
func SendQuizPassedEmail(email, name, quizTitle string, score, maxScore int, xp uint) error {
	body := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif; padding: 20px;">
				<h2>Quiz passed!</h2>
				<p>Dear %s,</p>
				<p>You passed <b>%s</b> with a score of %d/%d and earned %d XP.</p>
				<p style="color: #999999; font-size: 12px;">Osvita Team</p>
			</body>
		</html>
	`, name, quizTitle, score, maxScore, xp)
	return sendEmail(email, name, "Quiz passed: "+quizTitle, body)
}
