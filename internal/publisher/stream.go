// Package publisher pushes selected parlays onto a Redis stream for
// downstream consumers.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rustam-sa/nba-01/internal/config"
	"github.com/rustam-sa/nba-01/internal/models"
)

// StreamClient is the subset of the Redis client the publisher needs
type StreamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// ParlayMessage is the JSON payload of one stream entry
type ParlayMessage struct {
	RunID    string               `json:"run_id"`
	ParlayID int                  `json:"parlay_id"`
	Rank     int                  `json:"rank"`
	EVMode   string               `json:"ev_mode"`
	Legs     []models.Proposition `json:"legs"`
	Parlay   models.Parlay        `json:"parlay"`
}

// StreamPublisher publishes each parlay of a run as one stream entry
type StreamPublisher struct {
	client StreamClient
	stream string
	maxLen int64
	logger *logrus.Entry
}

// NewStreamPublisher creates a publisher writing to stream. maxLen > 0 caps
// the stream length approximately.
func NewStreamPublisher(client StreamClient, stream string, maxLen int64, logger *logrus.Logger) *StreamPublisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StreamPublisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: logger.WithField("component", "publisher"),
	}
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func buildMessage(run *models.Run, p models.Parlay) ParlayMessage {
	legs := make([]models.Proposition, 0, len(p.Legs))
	for _, idx := range p.Legs {
		legs = append(legs, run.Propositions[idx])
	}
	return ParlayMessage{
		RunID:    run.ID.String(),
		ParlayID: p.ParlayID,
		Rank:     p.Rank,
		EVMode:   run.EVMode,
		Legs:     legs,
		Parlay:   p,
	}
}

// PublishParlay publishes one parlay and returns the stream entry ID
func (p *StreamPublisher) PublishParlay(ctx context.Context, run *models.Run, parlay models.Parlay) (string, error) {
	msg := buildMessage(run, parlay)
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshaling parlay %d: %w", parlay.ParlayID, err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":        string(data),
			"run_id":      msg.RunID,
			"parlay_id":   parlay.ParlayID,
			"combined_ev": parlay.CombinedEV,
			"to_win":      parlay.ToWin.StringFixed(2),
			"legs":        parlay.Describe(run.Propositions),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("failed to publish to stream %s: %w", p.stream, err)
	}
	return id, nil
}

// PublishRun publishes every parlay of the run's portfolio in parlay order
func (p *StreamPublisher) PublishRun(ctx context.Context, run *models.Run) (int, error) {
	if run == nil || run.Portfolio == nil || len(run.Portfolio.Parlays) == 0 {
		return 0, nil
	}

	published := 0
	for _, parlay := range run.Portfolio.Parlays {
		if _, err := p.PublishParlay(ctx, run, parlay); err != nil {
			return published, err
		}
		published++
	}

	p.logger.WithFields(logrus.Fields{
		"run_id":    run.ID.String(),
		"stream":    p.stream,
		"published": published,
	}).Info("Parlays published")
	return published, nil
}
