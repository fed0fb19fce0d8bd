package servicebus

import (
	"context"
	"encoding/json"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/model"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/repository"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/logger"
)

const EventShowIngested = "show.ingested"

type messageSender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
	Close(ctx context.Context) error
}

// ShowEventPublisher sends show.ingested events to a Service Bus queue.
type ShowEventPublisher struct {
	newSender func() (messageSender, error)
}

func NewShowEventPublisher(client *azservicebus.Client, queue string) *ShowEventPublisher {
	return &ShowEventPublisher{newSender: func() (messageSender, error) {
		return client.NewSender(queue, nil)
	}}
}

func (p *ShowEventPublisher) PublishShowIngested(ctx context.Context, event model.ShowIngestedEvent) error {
	sender, err := p.newSender()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while making new sender service bus.")
		return err
	}
	defer func() {
		if err := sender.Close(context.Background()); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing sender.")
		}
	}()

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	contentType := "application/json"
	subject := EventShowIngested
	msg := &azservicebus.Message{
		Body:        body,
		ContentType: &contentType,
		Subject:     &subject,
		ApplicationProperties: map[string]interface{}{
			"show_id": event.ShowID,
			"slug":    event.Slug,
		},
	}
	if err := sender.SendMessage(ctx, msg, nil); err != nil {
		logger.FromContext(ctx).WithField("error", err).Error("Error while sending message.")
		return err
	}
	return nil
}

var _ repository.IShowEvents = (*ShowEventPublisher)(nil)
