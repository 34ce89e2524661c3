package application

import (
	"context"
	"fmt"

	"gamenight/domain/entities"
	"gamenight/domain/interfaces"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// SettlementWorker periodically settles outcomes that are past their
// scheduled date with a recorded result and open wagers.
type SettlementWorker struct {
	wageringService *WageringService
	uowFactory      UnitOfWorkFactory
	clock           interfaces.Clock
	cron            *cron.Cron
}

// NewSettlementWorker creates a new settlement worker
func NewSettlementWorker(wageringService *WageringService, uowFactory UnitOfWorkFactory, clock interfaces.Clock) *SettlementWorker {
	return &SettlementWorker{
		wageringService: wageringService,
		uowFactory:      uowFactory,
		clock:           clock,
	}
}

// Start schedules the settlement sweep every intervalMinutes. The returned
// function stops the scheduler.
func (w *SettlementWorker) Start(ctx context.Context, intervalMinutes int) (func(), error) {
	if w.cron != nil {
		return nil, fmt.Errorf("settlement worker already started")
	}

	w.cron = cron.New()
	spec := fmt.Sprintf("@every %dm", intervalMinutes)
	_, err := w.cron.AddFunc(spec, func() {
		if err := w.Sweep(ctx); err != nil {
			log.WithError(err).Error("Settlement sweep failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule settlement sweep: %w", err)
	}

	w.cron.Start()
	log.Infof("Settlement worker started, sweeping every %dm", intervalMinutes)

	return func() {
		stopCtx := w.cron.Stop()
		<-stopCtx.Done()
		log.Info("Settlement worker stopped")
	}, nil
}

// Sweep settles every outcome currently awaiting settlement. Failures on one
// outcome do not block the others.
func (w *SettlementWorker) Sweep(ctx context.Context) error {
	outcomes, err := w.awaitingSettlement(ctx)
	if err != nil {
		return err
	}
	if len(outcomes) == 0 {
		return nil
	}

	var settled, failed int
	for _, outcome := range outcomes {
		_, err := w.wageringService.ResolveOutcome(ctx, outcome.ID)
		switch {
		case err == entities.ErrAlreadyResolved:
			// Another pass got there first
		case err != nil:
			log.WithError(err).WithField("outcome_id", outcome.ID).Error("Failed to settle outcome")
			failed++
		default:
			settled++
		}
	}

	log.WithFields(log.Fields{
		"candidates": len(outcomes),
		"settled":    settled,
		"failed":     failed,
	}).Info("Completed settlement sweep")

	return nil
}

// awaitingSettlement reads the settlement candidates in a short read-only
// transaction
func (w *SettlementWorker) awaitingSettlement(ctx context.Context) ([]*entities.GameOutcome, error) {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	outcomes, err := uow.OutcomeRepository().GetAwaitingSettlement(ctx, w.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes awaiting settlement: %w", err)
	}

	return outcomes, nil
}
