package notify

import (
	"net/smtp"
	"strings"
	"testing"

	"rfp-agent/config"
	"rfp-agent/web/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func testService(enabled bool) (*EmailService, *[]string) {
	cfg := &config.Config{
		NotificationsEnable: enabled,
		NotificationsFrom:   "procurement@example.com",
		SMTPHost:            "smtp.example.com",
		SMTPPort:            587,
	}
	es := NewEmailService(cfg, zap.NewNop())
	var sent []string
	es.send = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		sent = append(sent, string(msg))
		return nil
	}
	return es, &sent
}

func TestSendApproval(t *testing.T) {
	es, sent := testService(true)

	es.SendApproval(
		types.Proposal{ID: uuid.New(), Contractor: "Acme Roofing", ContractorEmail: "bids@acme.test"},
		types.RFP{Title: "Roof Replacement"},
	)
	if len(*sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(*sent))
	}
	msg := (*sent)[0]
	if !strings.Contains(msg, "Subject: Proposal Approved: Roof Replacement") {
		t.Errorf("missing subject: %s", msg)
	}
	if !strings.Contains(msg, "Dear Acme Roofing") {
		t.Error("missing salutation")
	}
}

func TestSendSkipsWithoutEmail(t *testing.T) {
	es, sent := testService(true)

	es.SendRejection(types.Proposal{ID: uuid.New(), Contractor: "Acme"}, types.RFP{Title: "X"})
	if len(*sent) != 0 {
		t.Errorf("should not send without a recipient, got %d", len(*sent))
	}
}

func TestSendSkipsWhenDisabled(t *testing.T) {
	es, sent := testService(false)

	es.SendApproval(
		types.Proposal{ID: uuid.New(), Contractor: "Acme", ContractorEmail: "bids@acme.test"},
		types.RFP{Title: "X"},
	)
	if len(*sent) != 0 {
		t.Errorf("notifications disabled, got %d emails", len(*sent))
	}
}
