package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"bitbucket.org/mmdatafocus/pricewatch_backend/models"
	"bitbucket.org/mmdatafocus/pricewatch_backend/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const EventPriceReported = "price.reported"

// Publisher delivers one encoded event to the message bus.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data []byte) error
	Close() error
}

type PriceEvent struct {
	EventId       string                  `json:"eventId"`
	EventType     string                  `json:"eventType"`
	OccurredAt    time.Time               `json:"occurredAt"`
	CorrelationId string                  `json:"correlationId,omitempty"`
	Data          *models.PriceReportView `json:"data"`
}

// PublisherFromEnv builds the publisher named by EVENT_BUS. An empty EVENT_BUS means events
// are disabled and a nil Publisher is returned.
func PublisherFromEnv(ctx context.Context) (Publisher, error) {
	switch bus := config.EventBus(); bus {
	case "":
		return nil, nil
	case "pubsub":
		p, err := config.NewPubSubPublisher(ctx)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "nats":
		p, err := config.NewNATSPublisher()
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown EVENT_BUS %q", bus)
	}
}

var (
	publisherMu sync.RWMutex
	publisher   Publisher
)

func SetPublisher(p Publisher) {
	publisherMu.Lock()
	defer publisherMu.Unlock()
	publisher = p
}

func getPublisher() Publisher {
	publisherMu.RLock()
	defer publisherMu.RUnlock()
	return publisher
}

// PublishPriceReported announces a stored report. It runs after the insert has committed and
// never fails the caller: delivery errors are logged and dropped.
func PublishPriceReported(ctx context.Context, view *models.PriceReportView) {
	p := getPublisher()
	if p == nil || view == nil {
		return
	}

	event := PriceEvent{
		EventId:    uuid.NewString(),
		EventType:  EventPriceReported,
		OccurredAt: time.Now().UTC(),
		Data:       view,
	}
	if correlationId, ok := utils.GetCorrelationIdFromContext(ctx); ok {
		event.CorrelationId = correlationId
	}

	logger := config.GetLogger()
	payload, err := json.Marshal(event)
	if err != nil {
		config.LogError(logger, "workflow", "PublishPriceReported", "encoding event", event.EventId, err)
		return
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.Publish(publishCtx, EventPriceReported, payload); err != nil {
		config.LogError(logger, "workflow", "PublishPriceReported", "publishing event", view.ID, err)
		return
	}
	logger.WithFields(logrus.Fields{
		"module":        "workflow",
		"event_id":      event.EventId,
		"price_report":  view.ID,
		"correlationId": event.CorrelationId,
	}).Debug("price event published")
}
