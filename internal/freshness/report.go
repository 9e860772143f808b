package freshness

import (
	"context"
	"fmt"
	"time"
)

// ReportEntry describes one checkpoint in a currency report. Unlike the
// query path, the report evaluates every event including "never stale"
// ones: an absent stamp marks the event stale even under the sentinel,
// while a present stamp makes a never-stale event current regardless of
// age. This asymmetry with StaleEvents is deliberate.
type ReportEntry struct {
	Event         Event      `json:"event"`
	Stale         bool       `json:"stale"`
	NeverStale    bool       `json:"never_stale"`
	LastRun       *time.Time `json:"last_run,omitempty"`
	AgeMinutes    *int       `json:"age_minutes,omitempty"`
	MaxAgeMinutes *int       `json:"max_age_minutes,omitempty"`
}

// ContractReport aggregates the report entries for one contract
type ContractReport struct {
	ContractID   string        `json:"contract_id"`
	Events       []ReportEntry `json:"events"`
	StaleCount   int           `json:"stale_count"`
	FullyCurrent bool          `json:"fully_current"`
}

// CurrencyReport is a display-oriented snapshot of a product group's
// currency. All ages are computed against the single CheckedAt instant.
type CurrencyReport struct {
	ProductGroup       string           `json:"product_group"`
	CheckedAt          time.Time        `json:"checked_at"`
	Contracts          []ContractReport `json:"contracts"`
	ProductGroupEvents []ReportEntry    `json:"product_group_events"`
	TotalContracts     int              `json:"total_contracts"`
	FullyCurrentCount  int              `json:"fully_current"`
	StaleContractCount int              `json:"stale"`
	AllCurrent         bool             `json:"all_current"`
}

// CurrencyReport builds the full report for a product group at the given
// instant. Contract order follows the resolver's answer.
func (r *Registry) CurrencyReport(ctx context.Context, productGroup string, now time.Time) (*CurrencyReport, error) {
	// Membership first, stamp map second. See ProductGroupStaleness.
	contractIDs, err := r.resolver.ListContractIDs(ctx, productGroup)
	if err != nil {
		return nil, fmt.Errorf("resolve product group %q: %w", productGroup, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	report := &CurrencyReport{
		ProductGroup:   productGroup,
		CheckedAt:      now,
		Contracts:      make([]ContractReport, 0, len(contractIDs)),
		TotalContracts: len(contractIDs),
	}

	for _, id := range contractIDs {
		entries, staleCount := r.reportEventsLocked(kindContract, id, r.contractPolicy, now)
		contract := ContractReport{
			ContractID:   id,
			Events:       entries,
			StaleCount:   staleCount,
			FullyCurrent: staleCount == 0,
		}
		if contract.FullyCurrent {
			report.FullyCurrentCount++
		} else {
			report.StaleContractCount++
		}
		report.Contracts = append(report.Contracts, contract)
	}

	groupEntries, groupStaleCount := r.reportEventsLocked(kindProductGroup, productGroup, r.groupPolicy, now)
	report.ProductGroupEvents = groupEntries

	report.AllCurrent = report.FullyCurrentCount == report.TotalContracts && groupStaleCount == 0

	return report, nil
}

// reportEventsLocked evaluates the report-path staleness rules for one
// subject. Caller must hold at least the read lock.
func (r *Registry) reportEventsLocked(kind subjectKind, subject string, policy Policy, now time.Time) ([]ReportEntry, int) {
	entries := make([]ReportEntry, 0, len(policy.events))
	staleCount := 0

	for _, ev := range policy.events {
		threshold := policy.thresholds[ev]

		entry := ReportEntry{
			Event:      ev,
			NeverStale: threshold.IsNeverStale(),
		}
		if !threshold.IsNeverStale() {
			maxAge := threshold.MaxAgeMinutes()
			entry.MaxAgeMinutes = &maxAge
		}

		ts, ok := r.stamps[stampKey{kind: kind, subject: subject, event: ev}]
		if !ok {
			// Report path: absence is stale even for never-stale events
			entry.Stale = true
		} else {
			t := ts
			age := now.Sub(ts)
			minutes := roundMinutes(age)
			entry.LastRun = &t
			entry.AgeMinutes = &minutes
			// A stamped never-stale event is current regardless of age
			entry.Stale = !threshold.IsNeverStale() && age > threshold.MaxAge()
		}

		if entry.Stale {
			staleCount++
		}
		entries = append(entries, entry)
	}

	return entries, staleCount
}
