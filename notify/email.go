// Package notify sends vendor-facing emails for proposal status changes.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"rfp-agent/config"
	"rfp-agent/web/types"

	"go.uber.org/zap"
)

type EmailService struct {
	cfg    *config.Config
	logger *zap.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService(cfg *config.Config, logger *zap.Logger) *EmailService {
	return &EmailService{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// SendApproval notifies the contractor their proposal was approved. Failures
// are logged, never fatal to the approval itself.
func (es *EmailService) SendApproval(proposal types.Proposal, rfp types.RFP) {
	subject := fmt.Sprintf("Proposal Approved: %s", rfp.Title)
	body := fmt.Sprintf(`Dear %s,

Congratulations! Your proposal for "%s" has been approved.

Our team will contact you shortly to discuss contract details and next steps.

Best regards,
Procurement Team`, proposal.Contractor, rfp.Title)

	es.deliver(proposal, subject, body)
}

// SendRejection notifies the contractor their proposal was not selected.
func (es *EmailService) SendRejection(proposal types.Proposal, rfp types.RFP) {
	subject := fmt.Sprintf("Proposal Update: %s", rfp.Title)
	body := fmt.Sprintf(`Dear %s,

Thank you for submitting your proposal for "%s".

After careful review, we have decided not to move forward with your proposal at this time. We appreciate the effort you put into your submission and encourage you to bid on future opportunities.

Best regards,
Procurement Team`, proposal.Contractor, rfp.Title)

	es.deliver(proposal, subject, body)
}

func (es *EmailService) deliver(proposal types.Proposal, subject, body string) {
	if !es.cfg.NotificationsEnable {
		es.logger.Debug("Notifications disabled, skipping email",
			zap.String("proposal_id", proposal.ID.String()))
		return
	}
	if proposal.ContractorEmail == "" {
		es.logger.Warn("No contractor email on proposal, skipping notification",
			zap.String("proposal_id", proposal.ID.String()))
		return
	}

	from := es.cfg.NotificationsFrom
	if from == "" {
		from = es.cfg.SMTPUsername
	}

	headers := []string{
		"From: " + from,
		"To: " + proposal.ContractorEmail,
		"Subject: " + subject,
		"",
		body,
	}
	msg := []byte(strings.Join(headers, "\r\n") + "\r\n")

	addr := fmt.Sprintf("%s:%d", es.cfg.SMTPHost, es.cfg.SMTPPort)
	var auth smtp.Auth
	if es.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", es.cfg.SMTPUsername, es.cfg.SMTPPassword, es.cfg.SMTPHost)
	}

	if err := es.send(addr, auth, from, []string{proposal.ContractorEmail}, msg); err != nil {
		es.logger.Error("Failed to send notification email",
			zap.String("proposal_id", proposal.ID.String()),
			zap.String("to", proposal.ContractorEmail),
			zap.Error(err))
		return
	}
	es.logger.Info("Notification email sent",
		zap.String("proposal_id", proposal.ID.String()),
		zap.String("to", proposal.ContractorEmail))
}
