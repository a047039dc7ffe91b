package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// EnvOrDefault returns the ENV value or the fallback default.
func EnvOrDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// SendCheckoutNotice sends the best-effort post-checkout notification to the
// front desk. Delivery goes through the configured SMTP relay; without
// credentials it logs a mock line instead so local setups keep working.
func SendCheckoutNotice(bookingID uint, guestName, resourceName string, amount float64) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USERNAME")
	smtpPass := os.Getenv("SMTP_PASSWORD")
	recipient := os.Getenv("FRONTDESK_EMAIL")

	if smtpUser == "" || smtpPass == "" || smtpHost == "" || smtpPort == "" || recipient == "" {
		log.Printf("[MOCK NOTICE] auto checkout booking:%d guest:%s resource:%s amount:%.2f",
			bookingID, guestName, resourceName, amount)
		return nil
	}

	safe := func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
	}
	guestName = safe(guestName)
	resourceName = safe(resourceName)

	fromName := EnvOrDefault("SMTP_FROM_NAME", "Hotel Admin")
	from := fmt.Sprintf("%s <%s>", fromName, smtpUser)
	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)
	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)

	subject := fmt.Sprintf("Auto checkout completed — booking #%d", bookingID)
	body := fmt.Sprintf(
		"Booking #%d was checked out automatically.\n\n"+
			"Guest: %s\nResource: %s\nAmount due: %.2f\n",
		bookingID, guestName, resourceName, amount,
	)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", recipient))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(body)

	if err := smtp.SendMail(addr, auth, smtpUser, []string{recipient}, []byte(sb.String())); err != nil {
		log.Printf("Failed to send checkout notice for booking %d: %v", bookingID, err)
		return err
	}
	return nil
}
