package servicebus

import (
	"context"
	"encoding/json"

	"creator-contest/domain/model"
	"creator-contest/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

type LeaderboardPublisher struct {
	client *azservicebus.Client
	topic  string
}

func NewLeaderboardPublisher(client *azservicebus.Client, topic string) *LeaderboardPublisher {
	return &LeaderboardPublisher{client: client, topic: topic}
}

func (p *LeaderboardPublisher) PublishLeaderboard(ctx context.Context, evt model.LeaderboardEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	sender, err := p.client.NewSender(p.topic, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while making new sender service bus.")
		return err
	}
	defer func() {
		if err := sender.Close(context.Background()); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing sender.")
		}
	}()

	contentType := "application/json"
	subject := evt.Type
	msg := &azservicebus.Message{
		Body:                  body,
		ContentType:           &contentType,
		Subject:               &subject,
		ApplicationProperties: map[string]interface{}{"contest_id": evt.ContestID},
	}
	if err := sender.SendMessage(ctx, msg, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}
	return nil
}
