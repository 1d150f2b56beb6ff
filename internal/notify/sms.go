package notify

import (
	"context"
	"fmt"

	"github.com/trycourier/courier-go/v2"
)

// SMSSender delivers one message to one phone number. Failures are
// per-recipient and independent.
type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, title, body string) error
}

// CourierSender routes SMS through Courier.
type CourierSender struct {
	client *courier.Client
}

func NewCourierSender(authToken string) *CourierSender {
	return &CourierSender{client: courier.CreateClient(authToken, nil)}
}

func (s *CourierSender) SendSMS(ctx context.Context, phoneNumber, title, body string) error {
	_, err := s.client.SendMessage(ctx, courier.SendMessageRequestBody{
		Message: map[string]interface{}{
			"to": map[string]string{
				"phone_number": phoneNumber,
			},
			"content": map[string]string{
				"title": title,
				"body":  body,
			},
			"routing": map[string]interface{}{
				"method":   "single",
				"channels": []string{"sms"},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send SMS to %s: %w", phoneNumber, err)
	}
	return nil
}
