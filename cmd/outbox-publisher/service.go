package main

import (
	"context"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/avaloza-dev/marketstall-backend/pkg/config"
	"github.com/avaloza-dev/marketstall-backend/pkg/db/models"
	"github.com/avaloza-dev/marketstall-backend/pkg/logger"
)

const (
	defaultBatchSize    = 50
	defaultPollInterval = 2 * time.Second
	publishTimeout      = 15 * time.Second
)

type outboxRepository interface {
	FetchUnpublished(limit int) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, err error) error
}

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type gcpPublisher struct {
	inner *gcppubsub.Publisher
}

func (p gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return p.inner.Publish(ctx, msg)
}

func newGCPPublisher(inner *gcppubsub.Publisher) publisher {
	if inner == nil {
		return nil
	}
	return gcpPublisher{inner: inner}
}

type ServiceParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	Repository outboxRepository
	Publisher  publisher
}

// Service drains the transactional outbox into the ledger topic. Rows
// stay unpublished until the broker acknowledges them, so a crash
// between publish and mark produces duplicates, never losses.
type Service struct {
	logg         *logger.Logger
	repo         outboxRepository
	pub          publisher
	batchSize    int
	pollInterval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Repository == nil {
		return nil, errors.New("outbox repository is required")
	}
	if params.Publisher == nil {
		return nil, errors.New("publisher is required")
	}

	batch := params.Config.Outbox.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	poll := params.Config.Outbox.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}

	return &Service{
		logg:         params.Logger,
		repo:         params.Repository,
		pub:          params.Publisher,
		batchSize:    batch,
		pollInterval: poll,
	}, nil
}

// Run polls until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		if err := s.drainBatch(ctx); err != nil {
			s.logg.Error(ctx, "outbox batch failed", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Service) drainBatch(ctx context.Context) error {
	rows, err := s.repo.FetchUnpublished(s.batchSize)
	if err != nil {
		return err
	}

	var errs error
	for _, row := range rows {
		if err := s.publishRow(ctx, row); err != nil {
			errs = multierr.Append(errs, err)
			if markErr := s.repo.MarkFailed(row.ID, err); markErr != nil {
				errs = multierr.Append(errs, markErr)
			}
			continue
		}
		if err := s.repo.MarkPublished(row.ID); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (s *Service) publishRow(ctx context.Context, row models.OutboxEvent) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	result := s.pub.Publish(pubCtx, &gcppubsub.Message{
		Data: row.Payload,
		Attributes: map[string]string{
			"event_type":     string(row.EventType),
			"aggregate_type": string(row.AggregateType),
			"aggregate_id":   row.AggregateID.String(),
			"outbox_id":      row.ID.String(),
		},
	})
	_, err := result.Get(pubCtx)
	return err
}
