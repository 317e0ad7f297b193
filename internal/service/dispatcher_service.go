package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/config"
	"github.com/text-materials-api/internal/mail"
	"github.com/text-materials-api/internal/models"
)

// dispatcherService is the concrete implementation of DispatcherService.
// It polls the outbox and delivers notifications through a bounded pool
// of workers.
type dispatcherService struct {
	*deps
	cfg     *config.NotificationConfig
	mailer  mail.Mailer
	log     zerolog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	done    chan struct{}
	mu      sync.Mutex
	// Semaphore: buffered channel limiting concurrent deliveries
	sem chan struct{}
}

func newDispatcherService(d *deps, cfg *config.NotificationConfig, mailer mail.Mailer) *dispatcherService {
	workers := cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	return &dispatcherService{
		deps:   d,
		cfg:    cfg,
		mailer: mailer,
		log:    d.log.With().Str("service", "dispatcher").Logger(),
		sem:    make(chan struct{}, workers),
	}
}

// StartProcessor polls the outbox until ctx is cancelled or StopProcessor
// is called. It blocks, so callers run it in its own goroutine.
func (s *dispatcherService) StartProcessor(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	runCtx, done := s.ctx, s.done
	s.mu.Unlock()
	defer close(done)

	interval := s.cfg.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	s.log.Info().
		Dur("interval", interval).
		Int("max_workers", cap(s.sem)).
		Msg("Notification dispatcher started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			s.log.Info().Msg("Notification dispatcher stopping")
			return
		case <-ticker.C:
			s.DispatchPending(runCtx)
		}
	}
}

// StopProcessor stops polling and waits for in-flight deliveries
func (s *dispatcherService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	<-s.done
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Notification dispatcher stopped")
}

// DispatchPending claims one batch of pending notifications, delivers them
// and waits for the batch to finish. It returns the number claimed.
func (s *dispatcherService) DispatchPending(ctx context.Context) int {
	pending, err := s.repos.Notification.GetPending(ctx, s.cfg.BatchSize)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get pending notifications")
		return 0
	}

	var batch sync.WaitGroup
	claimed := 0
	for _, n := range pending {
		// Acquire a worker slot; blocks while all workers are busy
		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			batch.Wait()
			return claimed
		}

		marked, err := s.repos.Notification.MarkAsSending(ctx, n.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("notification_id", n.ID).Msg("Failed to claim notification")
			<-s.sem
			continue
		}
		if !marked {
			<-s.sem
			continue // another dispatcher claimed it
		}
		claimed++

		s.wg.Add(1)
		batch.Add(1)
		go func(n *models.Notification) {
			defer s.wg.Done()
			defer batch.Done()
			defer func() { <-s.sem }()

			defer func() {
				if r := recover(); r != nil {
					s.log.Error().
						Interface("panic", r).
						Str("notification_id", n.ID).
						Msg("Notification delivery panicked - recovered")
					s.finish(ctx, n, fmt.Errorf("panic: %v", r))
				}
			}()
			s.deliver(ctx, n)
		}(n)
	}

	batch.Wait()
	return claimed
}

func (s *dispatcherService) deliver(ctx context.Context, n *models.Notification) {
	msg := &mail.Message{
		From:    s.cfg.From,
		To:      n.Email,
		Subject: n.Subject,
		Body:    n.Body,
	}
	if n.AttachmentName != "" {
		msg.Attachments = []mail.Attachment{{
			Name:        n.AttachmentName,
			ContentType: n.AttachmentType,
			Data:        n.Attachment,
		}}
	}
	s.finish(ctx, n, s.mailer.Send(ctx, msg))
}

// finish records the outcome of one delivery attempt. Failures go back to
// pending until MaxAttempts is reached.
func (s *dispatcherService) finish(ctx context.Context, n *models.Notification, sendErr error) {
	n.Attempts++
	if sendErr == nil {
		now := s.now().UTC()
		n.Status = models.NotificationSent
		n.SentAt = &now
		n.LastError = ""
	} else {
		n.LastError = sendErr.Error()
		n.Status = models.NotificationPending
		if n.Attempts >= s.cfg.MaxAttempts {
			n.Status = models.NotificationFailed
		}
		s.log.Warn().
			Err(sendErr).
			Str("notification_id", n.ID).
			Int("attempts", n.Attempts).
			Str("status", string(n.Status)).
			Msg("Notification delivery failed")
	}

	// Record the outcome even when the dispatcher is shutting down
	if err := s.repos.Notification.Update(context.WithoutCancel(ctx), n); err != nil {
		s.log.Error().Err(err).Str("notification_id", n.ID).Msg("Failed to update notification")
	}
}
