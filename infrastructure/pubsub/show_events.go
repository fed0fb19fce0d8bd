package pubsub

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"cloud.google.com/go/pubsub"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/model"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/repository"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/logger"
)

const EventShowIngested = "show.ingested"

// ShowEventPublisher publishes show.ingested events to a Pub/Sub topic,
// creating the topic on first use when it does not exist.
type ShowEventPublisher struct {
	client    *pubsub.Client
	topicName string

	once  sync.Once
	topic *pubsub.Topic
	err   error
}

func NewShowEventPublisher(client *pubsub.Client, topicName string) *ShowEventPublisher {
	return &ShowEventPublisher{client: client, topicName: topicName}
}

func (p *ShowEventPublisher) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	p.once.Do(func() {
		topic := p.client.Topic(p.topicName)
		exists, err := topic.Exists(ctx)
		if err != nil {
			p.err = err
			return
		}
		if !exists {
			logger.GetLogger().WithField("topic", p.topicName).Info("Topic doesn't exist - creating it")
			if topic, err = p.client.CreateTopic(ctx, p.topicName); err != nil {
				p.err = err
				return
			}
		}
		p.topic = topic
	})
	return p.topic, p.err
}

func (p *ShowEventPublisher) PublishShowIngested(ctx context.Context, event model.ShowIngestedEvent) error {
	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"type":    EventShowIngested,
			"show_id": strconv.FormatInt(event.ShowID, 10),
			"slug":    event.Slug,
		},
	}
	serverID, err := topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).WithField("serverId", serverID).Info("Show event published")
	return nil
}

// Stop flushes pending messages.
func (p *ShowEventPublisher) Stop() {
	if p.topic != nil {
		p.topic.Stop()
	}
}

var _ repository.IShowEvents = (*ShowEventPublisher)(nil)
