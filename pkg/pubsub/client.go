package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/propdesk/fundedpay/pkg/config"
	"github.com/propdesk/fundedpay/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errTopicRequired     = errors.New("pubsub topic is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

// Client holds the Pub/Sub connection used to emit payment events.
type Client struct {
	client    *pubsub.Client
	projectID string
}

func NewClient(ctx context.Context, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errProjectIDRequired
	}
	psClient, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "project_id", cfg.ProjectID), "pubsub client initialized")
	}
	return &Client{client: psClient, projectID: cfg.ProjectID}, nil
}

// Publisher returns a publisher for a topic id or full resource name.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	full := TopicResourceName(c.projectID, name)
	if full == "" {
		return nil
	}
	return c.client.Publisher(full)
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// TopicResourceName expands a bare topic id to projects/<p>/topics/<id>.
func TopicResourceName(projectID, name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/topics/") {
		return n
	}
	p := strings.TrimSpace(projectID)
	if p == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/topics/%s", p, n)
}

// JSONPublisher publishes JSON encoded payloads to a single topic and waits
// for the server to acknowledge each message.
type JSONPublisher struct {
	pub *pubsub.Publisher
}

func NewJSONPublisher(c *Client, topic string) (*JSONPublisher, error) {
	if c == nil || c.client == nil {
		return nil, errNotInitialized
	}
	pub := c.Publisher(topic)
	if pub == nil {
		return nil, errTopicRequired
	}
	pub.EnableMessageOrdering = true
	return &JSONPublisher{pub: pub}, nil
}

// Publish sends payload with the given attributes. orderingKey keeps events of
// one order in sequence.
func (p *JSONPublisher) Publish(ctx context.Context, orderingKey string, attrs map[string]string, payload any) (string, error) {
	if p == nil || p.pub == nil {
		return "", errNotInitialized
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode event payload: %w", err)
	}
	res := p.pub.Publish(ctx, &pubsub.Message{
		Data:        data,
		Attributes:  attrs,
		OrderingKey: orderingKey,
	})
	id, err := res.Get(ctx)
	if err != nil {
		p.pub.ResumePublish(orderingKey)
		return "", fmt.Errorf("publish event: %w", err)
	}
	return id, nil
}

// Stop flushes pending messages.
func (p *JSONPublisher) Stop() {
	if p == nil || p.pub == nil {
		return
	}
	p.pub.Stop()
}
