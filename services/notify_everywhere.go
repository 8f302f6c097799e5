package services

import (
	"context"
	"sync"
	"time"

	"github.com/reunionrs/reunion-site-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Mirror receives a best-effort copy of each submission. Its failures never
// change what the visitor is told.
type Mirror interface {
	Name() string
	Mirror(ctx context.Context, submission models.ContactSubmission) error
}

// Sender is what the HTTP handlers need from a notifier.
type Sender interface {
	Notify(ctx context.Context, submission models.ContactSubmission) (Outcome, error)
}

// Notifier sends a submission to the primary dispatcher and to every mirror
// at once. The result is the primary's.
type Notifier struct {
	primary *Dispatcher
	mirrors []Mirror
	logger  zerolog.Logger
	pending sync.WaitGroup
}

func NewNotifier(primary *Dispatcher, mirrors ...Mirror) *Notifier {
	return &Notifier{
		primary: primary,
		mirrors: mirrors,
		logger:  log.With().Str("component", "notifier").Logger(),
	}
}

// NewNotifierFromConfig wires the dispatcher and whichever mirrors are
// configured.
func NewNotifierFromConfig(cfg map[string]string) *Notifier {
	var mirrors []Mirror
	if email := NewEmailMirror(cfg, nil); email != nil {
		mirrors = append(mirrors, email)
	}
	if sms := NewSMSMirror(cfg); sms != nil {
		mirrors = append(mirrors, sms)
	}

	notifier := NewNotifier(NewDispatcher(DispatcherConfigFrom(cfg)), mirrors...)
	if !notifier.primary.Configured() {
		notifier.logger.Warn().Msg("NOTIFY_ENDPOINT is not configured, contact forms will fail")
	}
	return notifier
}

// Notify stamps the submission and delivers it. A dispatch runs to
// completion even when the caller goes away. Mirrors run in the background
// and do not hold up the answer.
func (n *Notifier) Notify(ctx context.Context, submission models.ContactSubmission) (Outcome, error) {
	if !n.primary.Configured() {
		return n.primary.Dispatch(ctx, submission)
	}

	if submission.Timestamp.IsZero() {
		submission.Timestamp = time.Now().UTC()
	}
	ctx = context.WithoutCancel(ctx)

	n.mirror(ctx, submission)

	outcome, err := n.primary.Dispatch(ctx, submission)
	if err != nil {
		n.logger.Error().Err(err).Str("source", submission.Source).Msg("Failed to dispatch submission")
	}
	return outcome, err
}

// Wait blocks until every background mirror has finished.
func (n *Notifier) Wait() {
	n.pending.Wait()
}

func (n *Notifier) mirror(ctx context.Context, submission models.ContactSubmission) {
	if len(n.mirrors) == 0 {
		return
	}

	n.pending.Add(1)
	go func() {
		defer n.pending.Done()

		var g errgroup.Group
		for _, mirror := range n.mirrors {
			g.Go(func() error {
				mirrorCtx, cancel := context.WithTimeout(ctx, n.primary.timeout)
				defer cancel()
				if err := mirror.Mirror(mirrorCtx, submission); err != nil {
					n.logger.Error().Err(err).Str("mirror", mirror.Name()).Msg("Failed to mirror submission")
					return nil
				}
				n.logger.Debug().Str("mirror", mirror.Name()).Msg("Mirrored submission")
				return nil
			})
		}
		_ = g.Wait()
	}()
}
