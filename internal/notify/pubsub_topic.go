package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"
)

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type publisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) publishResult
	Stop()
}

type gcpPublisher struct {
	*pubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *pubsub.Message) publishResult {
	return p.Publisher.Publish(ctx, msg)
}

// PubSubTopic broadcasts customer notifications on a Pub/Sub topic.
type PubSubTopic struct {
	client    *pubsub.Client
	publisher publisher
	topic     string
	region    string
}

var errProjectIDRequired = errors.New("gcp project id is required")

// NewPubSubTopic connects to Pub/Sub and binds a publisher to topic (id or full resource name).
func NewPubSubTopic(ctx context.Context, projectID, topic, region string, opts ...option.ClientOption) (*PubSubTopic, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, errProjectIDRequired
	}
	name := topicResourceName(projectID, topic)
	if name == "" {
		return nil, errors.New("pubsub topic is required")
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubTopic{
		client:    client,
		publisher: &gcpPublisher{Publisher: client.Publisher(name)},
		topic:     name,
		region:    region,
	}, nil
}

// Publish implements TopicPublisher and waits for the server-assigned id.
func (t *PubSubTopic) Publish(ctx context.Context, msg TopicMessage) (string, error) {
	attrs := make(map[string]string, len(msg.Attributes)+1)
	for k, v := range msg.Attributes {
		attrs[k] = v
	}
	if t.region != "" {
		attrs["region"] = t.region
	}

	serverID, err := t.publisher.Publish(ctx, &pubsub.Message{
		Data:       []byte(msg.Text),
		Attributes: attrs,
	}).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish to %s: %w", t.topic, err)
	}
	return serverID, nil
}

// Close stops the publisher and releases the client.
func (t *PubSubTopic) Close() error {
	if t == nil {
		return nil
	}
	if t.publisher != nil {
		t.publisher.Stop()
	}
	if t.client == nil {
		return nil
	}
	return t.client.Close()
}

func topicResourceName(projectID, name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/topics/") {
		return n
	}
	return fmt.Sprintf("projects/%s/topics/%s", strings.TrimSpace(projectID), n)
}
