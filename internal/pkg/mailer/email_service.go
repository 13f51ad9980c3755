// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendLeadNotification(toEmail string, lead LeadDetails) error
}

// LeadDetails carries the captured contact info for the sales notification.
type LeadDetails struct {
	LeadID        string
	SessionID     string
	Name          string
	Company       string
	Email         string
	Phone         string
	PreferredTime string
	Summary       string
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) SendLeadNotification(toEmail string, lead LeadDetails) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.senderEmail, s.senderName))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("New lead captured: %s", lead.Name))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>New Lead Captured</h2>
			<table style="border-collapse: collapse;">
				<tr><td style="padding: 4px 12px 4px 0;"><b>Name</b></td><td>%s</td></tr>
				<tr><td style="padding: 4px 12px 4px 0;"><b>Company</b></td><td>%s</td></tr>
				<tr><td style="padding: 4px 12px 4px 0;"><b>Email</b></td><td>%s</td></tr>
				<tr><td style="padding: 4px 12px 4px 0;"><b>Phone</b></td><td>%s</td></tr>
				<tr><td style="padding: 4px 12px 4px 0;"><b>Preferred time</b></td><td>%s</td></tr>
			</table>
			<h3>Conversation summary</h3>
			<p>%s</p>
			<p style="color: #888; font-size: 12px;">Lead %s &middot; Session %s</p>
		</div>
	`, lead.Name, lead.Company, lead.Email, lead.Phone, lead.PreferredTime, lead.Summary, lead.LeadID, lead.SessionID)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send lead notification to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Lead notification sent to %s\n", toEmail)
	return nil
}
