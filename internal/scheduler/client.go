package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"

	"leadmarket_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	client *asynq.Client
	queue  string
}

// NotificationEnqueuer enqueues the notification email tasks handled by the
// worker process.
type NotificationEnqueuer interface {
	EnqueueLeadAssignedEmail(ctx context.Context, payload LeadEmailPayload) error
	EnqueueLeadRevealedEmail(ctx context.Context, payload LeadEmailPayload) error
	EnqueueLeadMatchedEmail(ctx context.Context, payload LeadEmailPayload) error
	EnqueueCreditsGrantedEmail(ctx context.Context, payload CreditsGrantedEmailPayload) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) EnqueueLeadAssignedEmail(ctx context.Context, payload LeadEmailPayload) error {
	task, err := NewLeadAssignedEmailTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

func (c *Client) EnqueueLeadRevealedEmail(ctx context.Context, payload LeadEmailPayload) error {
	task, err := NewLeadRevealedEmailTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

func (c *Client) EnqueueLeadMatchedEmail(ctx context.Context, payload LeadEmailPayload) error {
	task, err := NewLeadMatchedEmailTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

func (c *Client) EnqueueCreditsGrantedEmail(ctx context.Context, payload CreditsGrantedEmailPayload) error {
	task, err := NewCreditsGrantedEmailTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.client == nil {
		return nil
	}
	_, err := c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
