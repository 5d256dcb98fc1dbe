package utils

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func emailConfigFromEnv() EmailConfig {
	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		port = p
	}
	return EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

// NotifyOperatorPayment emails the operator about a confirmed transfer so the
// claimed amount can be reconciled against the bank statement. Returns nil
// without sending when SMTP or the operator address is not configured.
func NotifyOperatorPayment(to string, userID int64, category string, amount int64, code string) error {
	config := emailConfigFromEnv()
	if config.Host == "" || to == "" {
		LogInfo("SMTP not configured, skipping operator notification for user %d", userID)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Payment claimed: %s by user %d", category, userID))

	body := fmt.Sprintf(`
		<h2>Payment confirmation accepted</h2>
		<p>User <b>%d</b> confirmed a transfer for category <b>%s</b>.</p>
		<p>Amount: <b>%d.%02d RUB</b></p>
		<p>Code: <code>%s</code></p>
		<p>Please check the bank statement for the exact amount above.</p>
	`, userID, category, amount/100, amount%100, code)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}
