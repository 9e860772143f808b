package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/freshness/internal/freshness"
	"github.com/wonny/freshness/pkg/logger"
)

// CurrencySweep periodically evaluates the currency report for every
// watched product group and logs stale checkpoints. It only reports;
// triggering re-validation is the caller's business, not ours.
type CurrencySweep struct {
	registry        *freshness.Registry
	groups          []string
	schedule        string
	resolverTimeout time.Duration
	logger          *logger.Logger
}

// NewCurrencySweep creates the sweep job
func NewCurrencySweep(registry *freshness.Registry, groups []string, schedule string, resolverTimeout time.Duration, log *logger.Logger) *CurrencySweep {
	return &CurrencySweep{
		registry:        registry,
		groups:          groups,
		schedule:        schedule,
		resolverTimeout: resolverTimeout,
		logger:          log,
	}
}

// Name returns the job name
func (j *CurrencySweep) Name() string {
	return "currency_sweep"
}

// Schedule returns the cron schedule expression
func (j *CurrencySweep) Schedule() string {
	return j.schedule
}

// Run sweeps all watched groups. A resolver failure for one group does
// not stop the others, but any failure makes the run as a whole fail so
// the scheduler retries it.
func (j *CurrencySweep) Run(ctx context.Context) error {
	failed := 0

	for _, group := range j.groups {
		if err := j.sweepGroup(ctx, group); err != nil {
			j.logger.WithError(err).WithField("group", group).Error("Currency sweep failed for group")
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("currency sweep: %d of %d groups failed", failed, len(j.groups))
	}
	return nil
}

func (j *CurrencySweep) sweepGroup(ctx context.Context, group string) error {
	ctx, cancel := context.WithTimeout(ctx, j.resolverTimeout)
	defer cancel()

	report, err := j.registry.CurrencyReport(ctx, group, time.Now())
	if err != nil {
		return err
	}

	log := j.logger.WithFields(map[string]interface{}{
		"group":           group,
		"total_contracts": report.TotalContracts,
		"fully_current":   report.FullyCurrentCount,
		"stale":           report.StaleContractCount,
	})

	if report.AllCurrent {
		log.Info("Product group fully current")
		return nil
	}

	log.Warn("Product group has stale checkpoints")

	for _, contract := range report.Contracts {
		if contract.FullyCurrent {
			continue
		}
		for _, entry := range contract.Events {
			if !entry.Stale {
				continue
			}
			j.logger.WithFields(map[string]interface{}{
				"group":    group,
				"contract": contract.ContractID,
				"event":    entry.Event,
				"last_run": entry.LastRun,
			}).Warn("Stale checkpoint")
		}
	}
	for _, entry := range report.ProductGroupEvents {
		if !entry.Stale {
			continue
		}
		j.logger.WithFields(map[string]interface{}{
			"group":    group,
			"event":    entry.Event,
			"last_run": entry.LastRun,
		}).Warn("Stale group checkpoint")
	}

	return nil
}
