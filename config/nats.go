package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes price events on a core NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

func NewNATSPublisher() (*NATSPublisher, error) {
	url := strings.TrimSpace(os.Getenv("NATS_URL"))
	if url == "" {
		url = nats.DefaultURL
	}
	subject := strings.TrimSpace(os.Getenv("NATS_PRICE_SUBJECT"))
	if subject == "" {
		subject = "pricewatch.price.reported"
	}

	conn, err := nats.Connect(url,
		nats.Name("pricewatch-api"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	log.Printf("nats publisher ready (url=%s subject=%s)", url, subject)
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// Publish is synchronous in NATS; the context is only checked up front.
func (p *NATSPublisher) Publish(ctx context.Context, eventType string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	msg := nats.NewMsg(p.subject)
	msg.Header.Set("event_type", eventType)
	msg.Data = data
	return p.conn.PublishMsg(msg)
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
