package linkverify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// BrokenLinkEvent is published for each broken link found by a build.
type BrokenLinkEvent struct {
	URL       string    `json:"url"`
	Tag       string    `json:"tag"`
	Target    string    `json:"target"`
	PageURL   string    `json:"page_url"`
	Source    string    `json:"source"`
	BuildID   string    `json:"build_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent builds the event for b.
func NewEvent(b BrokenLink, buildID string, at time.Time) BrokenLinkEvent {
	return BrokenLinkEvent{
		URL:       b.URL,
		Tag:       b.Tag,
		Target:    b.Target,
		PageURL:   b.PageURL,
		Source:    b.Source,
		BuildID:   buildID,
		Timestamp: at,
	}
}

// Publisher delivers broken-link events.
type Publisher interface {
	Publish(ctx context.Context, events []BrokenLinkEvent) error
	Close() error
}

// NATSPublisher publishes events as JSON messages on a core NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// ConnectNATS dials url.
func ConnectNATS(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("sitebuilder"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// Publish sends every event and flushes, so a nil error means the server has
// received them.
func (p *NATSPublisher) Publish(ctx context.Context, events []BrokenLinkEvent) error {
	for i := range events {
		data, err := json.Marshal(&events[i])
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		if err := p.conn.Publish(p.subject, data); err != nil {
			return fmt.Errorf("failed to publish event: %w", err)
		}
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush events: %w", err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
