package services

import (
	"context"
	"fmt"

	"github.com/reunionrs/reunion-site-backend/config"
	"github.com/reunionrs/reunion-site-backend/models"
	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// maxSMSBody keeps a mirrored message within a few SMS segments.
const maxSMSBody = 480

// messageCreator is the part of the Twilio REST client the mirror uses.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSMirror texts a short copy of every submission to the operators.
type SMSMirror struct {
	messages   messageCreator
	from       string
	recipients []string
}

// NewSMSMirror reads TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_FROM and
// NOTIFY_SMS_TO. It returns nil when any of them is missing.
func NewSMSMirror(cfg map[string]string) *SMSMirror {
	accountSID := config.GetString(cfg, "TWILIO_ACCOUNT_SID", "")
	authToken := config.GetString(cfg, "TWILIO_AUTH_TOKEN", "")
	from := config.GetString(cfg, "TWILIO_FROM", "")
	recipients := config.GetList(cfg, "NOTIFY_SMS_TO")
	if accountSID == "" || authToken == "" || from == "" || len(recipients) == 0 {
		return nil
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSMirror{messages: client.Api, from: from, recipients: recipients}
}

func (m *SMSMirror) Name() string {
	return "sms"
}

// Mirror sends one message per recipient and stops at the first failure.
// The Twilio client does not take a context; ctx is only checked between
// messages.
func (m *SMSMirror) Mirror(ctx context.Context, submission models.ContactSubmission) error {
	body := FormatPlainText(submission)
	if runes := []rune(body); len(runes) > maxSMSBody {
		body = string(runes[:maxSMSBody-1]) + "…"
	}

	for _, to := range m.recipients {
		if err := ctx.Err(); err != nil {
			return err
		}

		params := &twilioApi.CreateMessageParams{}
		params.SetTo(to)
		params.SetFrom(m.from)
		params.SetBody(body)

		resp, err := m.messages.CreateMessage(params)
		if err != nil {
			return fmt.Errorf("failed to send SMS to %s: %w", to, err)
		}
		if resp != nil && resp.Sid != nil {
			log.Info().Str("messageSid", *resp.Sid).Msg("Successfully sent SMS via Twilio")
		}
	}
	return nil
}
