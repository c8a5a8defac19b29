package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type TwilioSender struct {
	api            messageCreator
	phoneNumber    string
	whatsAppNumber string
}

func NewTwilioSender(accountSID, authToken, phoneNumber, whatsAppNumber string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{
		api:            client.Api,
		phoneNumber:    phoneNumber,
		whatsAppNumber: whatsAppNumber,
	}
}

// route picks WhatsApp for E.164 numbers when a WhatsApp sender is
// configured, SMS otherwise.
func (s *TwilioSender) route(phone string) (to, from, channel string) {
	if strings.HasPrefix(phone, "+") && s.whatsAppNumber != "" {
		return "whatsapp:" + phone, "whatsapp:" + s.whatsAppNumber, "whatsapp"
	}
	return phone, s.phoneNumber, "sms"
}

func (s *TwilioSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	to, from, channel := s.route(msg.To)

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(msg.Body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return Receipt{Channel: channel}, fmt.Errorf("twilio create message: %w", err)
	}
	receipt := Receipt{Channel: channel}
	if resp != nil && resp.Sid != nil {
		receipt.ProviderID = *resp.Sid
	}
	return receipt, nil
}
