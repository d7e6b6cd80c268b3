package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// EventBus returns the configured event transport: "pubsub", "nats" or "" (disabled).
func EventBus() string {
	return strings.ToLower(strings.TrimSpace(os.Getenv("EVENT_BUS")))
}

// PubSubPublisher publishes price events to a single Google Cloud Pub/Sub topic.
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

func getPubSubProjectID() string {
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return os.Getenv("GCP_PROJECT")
}

func pubSubTopicName() string {
	if v := strings.TrimSpace(os.Getenv("PUBSUB_PRICE_TOPIC")); v != "" {
		return v
	}
	return "price-reported"
}

// NewPubSubPublisher uses Application Default Credentials unless PUBSUB_CREDENTIALS_JSON is set.
// The topic is created when it does not exist yet.
func NewPubSubPublisher(ctx context.Context) (*PubSubPublisher, error) {
	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}

	var (
		client *pubsub.Client
		err    error
	)
	if credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON"); credJSON != "" {
		client, err = pubsub.NewClient(ctx, projectID, option.WithCredentialsJSON([]byte(credJSON)))
	} else {
		client, err = pubsub.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	topic, err := createTopicIfNotExists(ctx, client, pubSubTopicName())
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	log.Printf("pubsub publisher ready (project_id=%s topic=%s)", projectID, topic.ID())
	return &PubSubPublisher{client: client, topic: topic}, nil
}

func createTopicIfNotExists(ctx context.Context, c *pubsub.Client, topic string) (*pubsub.Topic, error) {
	t := c.Topic(topic)
	ok, err := t.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check topic exists: %w", err)
	}
	if ok {
		return t, nil
	}
	t, err = c.CreateTopic(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("create topic %q: %w", topic, err)
	}
	return t, nil
}

func (p *PubSubPublisher) Publish(ctx context.Context, eventType string, data []byte) error {
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"event_type": eventType},
	})
	_, err := result.Get(ctx)
	return err
}

func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
