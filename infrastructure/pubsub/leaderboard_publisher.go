package pubsub

import (
	"context"
	"encoding/json"
	"sync"

	"creator-contest/domain/model"
	"creator-contest/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

// LeaderboardPublisher sends leaderboard events to a Pub/Sub topic, creating it on first use.
type LeaderboardPublisher struct {
	client    *pubsub.Client
	topicName string

	mu    sync.Mutex
	topic *pubsub.Topic
}

func NewLeaderboardPublisher(client *pubsub.Client, topicName string) *LeaderboardPublisher {
	return &LeaderboardPublisher{client: client, topicName: topicName}
}

// ensureTopic remembers the topic only once a lookup succeeded; failures are retried on the next publish.
func (p *LeaderboardPublisher) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		return p.topic, nil
	}

	topic := p.client.Topic(p.topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		logger.GetLogger().WithField("topic", p.topicName).WithField("error", err).Warn("Topic lookup failed")
		return nil, err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topicName).Info("Topic doesn't exist - creating it")
		if topic, err = p.client.CreateTopic(ctx, p.topicName); err != nil {
			return nil, err
		}
	}
	p.topic = topic
	return topic, nil
}

func (p *LeaderboardPublisher) PublishLeaderboard(ctx context.Context, evt model.LeaderboardEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return err
	}
	serverID, err := topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"type": evt.Type, "contest_id": evt.ContestID},
	}).Get(ctx)
	if err != nil {
		return err
	}
	logger.GetLogger().WithField("server ID", serverID).WithField("contest_id", evt.ContestID).Info("Leaderboard event published")
	return nil
}
