package notification

import (
	"fmt"

	"github.com/MineVault/MineVault-Backend/services/monitoring/logging"
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
)

// PushService delivers notifications to mobile devices through Expo.
type PushService struct {
	client *expo.PushClient
	logger *logging.Logger
}

func NewPushService(logger *logging.Logger) *PushService {
	return &PushService{
		client: expo.NewPushClient(nil),
		logger: logger,
	}
}

func (p *PushService) Send(token, title, message string) error {
	pushToken, err := expo.NewExponentPushToken(token)
	if err != nil {
		return fmt.Errorf("invalid expo token: %w", err)
	}

	response, err := p.client.Publish(
		&expo.PushMessage{
			To:       []expo.ExponentPushToken{pushToken},
			Title:    title,
			Body:     message,
			Sound:    "default",
			Priority: expo.DefaultPriority,
		},
	)
	if err != nil {
		return err
	}

	if err := response.ValidateResponse(); err != nil {
		p.logger.Error(fmt.Sprintf("push rejected for %v: %v", response.PushMessage.To, err))
		return err
	}

	return nil
}
