package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeCreator struct {
	params *twilioApi.CreateMessageParams
	err    error
}

func (f *fakeCreator) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM42"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioRoute(t *testing.T) {
	s := &TwilioSender{phoneNumber: "+15550001111", whatsAppNumber: "+15550002222"}

	to, from, channel := s.route("+50212345678")
	assert.Equal(t, "whatsapp:+50212345678", to)
	assert.Equal(t, "whatsapp:+15550002222", from)
	assert.Equal(t, "whatsapp", channel)

	to, from, channel = s.route("5551234567")
	assert.Equal(t, "5551234567", to)
	assert.Equal(t, "+15550001111", from)
	assert.Equal(t, "sms", channel)

	smsOnly := &TwilioSender{phoneNumber: "+15550001111"}
	_, _, channel = smsOnly.route("+50212345678")
	assert.Equal(t, "sms", channel)
}

func TestTwilioSend(t *testing.T) {
	creator := &fakeCreator{}
	s := &TwilioSender{api: creator, phoneNumber: "+15550001111"}

	receipt, err := s.Send(context.Background(), Message{To: "+50212345678", Body: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "SM42", receipt.ProviderID)
	assert.Equal(t, "sms", receipt.Channel)
	require.NotNil(t, creator.params.Body)
	assert.Equal(t, "hello", *creator.params.Body)
	assert.Equal(t, "+50212345678", *creator.params.To)
}

func TestTwilioSendError(t *testing.T) {
	s := &TwilioSender{api: &fakeCreator{err: errors.New("401")}, phoneNumber: "+15550001111"}
	_, err := s.Send(context.Background(), Message{To: "+50212345678", Body: "hello"})
	assert.Error(t, err)
}
