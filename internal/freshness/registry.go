package freshness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/freshness/pkg/logger"
)

// MembershipResolver lists the contracts belonging to a product group.
// An empty group is a valid answer; a failed lookup must be an error.
type MembershipResolver interface {
	ListContractIDs(ctx context.Context, productGroup string) ([]string, error)
}

// subjectKind separates the contract and product-group stamp spaces.
// Textually equal identifiers never collide across kinds.
type subjectKind uint8

const (
	kindContract subjectKind = iota + 1
	kindProductGroup
)

// stampKey is the composite key for one (subject, event) stamp
type stampKey struct {
	kind    subjectKind
	subject string
	event   Event
}

// Registry records checkpoint completion times and answers staleness queries
// ⭐ SSOT: 체크포인트 스탬프는 이 레지스트리에서만 관리
type Registry struct {
	mu     sync.RWMutex
	stamps map[stampKey]time.Time

	// Immutable after construction, safe to read without the lock
	contractPolicy Policy
	groupPolicy    Policy

	resolver MembershipResolver
	logger   *logger.Logger
}

// New creates a registry with the given threshold tables and resolver
func New(contractPolicy, groupPolicy Policy, resolver MembershipResolver, log *logger.Logger) *Registry {
	return &Registry{
		stamps:         make(map[stampKey]time.Time),
		contractPolicy: contractPolicy,
		groupPolicy:    groupPolicy,
		resolver:       resolver,
		logger:         log,
	}
}

// ContractPolicy returns the contract-level threshold table
func (r *Registry) ContractPolicy() Policy {
	return r.contractPolicy
}

// ProductGroupPolicy returns the product-group-level threshold table
func (r *Registry) ProductGroupPolicy() Policy {
	return r.groupPolicy
}

// RecordContractEvent overwrites the stamp for (contract, event).
// Last writer wins; history is not retained. Unknown events are stored
// silently but never consulted by staleness queries.
func (r *Registry) RecordContractEvent(contractID string, event Event, at time.Time) {
	r.record(kindContract, contractID, event, at)
}

// RecordProductGroupEvent overwrites the stamp for (product group, event)
func (r *Registry) RecordProductGroupEvent(productGroup string, event Event, at time.Time) {
	r.record(kindProductGroup, productGroup, event, at)
}

func (r *Registry) record(kind subjectKind, subject string, event Event, at time.Time) {
	r.mu.Lock()
	r.stamps[stampKey{kind: kind, subject: subject, event: event}] = at
	r.mu.Unlock()

	r.logger.WithFields(map[string]interface{}{
		"subject": subject,
		"event":   event,
		"at":      at,
	}).Debug("Checkpoint recorded")
}

// GetStamps returns the last completion time for every configured
// contract-level event, nil if never recorded. Pure read, no staleness logic.
func (r *Registry) GetStamps(contractID string) map[Event]*time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[Event]*time.Time, len(r.contractPolicy.events))
	for _, ev := range r.contractPolicy.events {
		if ts, ok := r.stamps[stampKey{kind: kindContract, subject: contractID, event: ev}]; ok {
			t := ts
			out[ev] = &t
		} else {
			out[ev] = nil
		}
	}
	return out
}

// StaleEntry describes one stale checkpoint in a query result
type StaleEntry struct {
	Event         Event      `json:"event"`
	LastRun       *time.Time `json:"last_run,omitempty"`
	MaxAgeMinutes int        `json:"max_age_minutes"`
	AgeMinutes    *int       `json:"age_minutes,omitempty"`
}

// StaleEvents returns every contract-level event that is stale for the
// contract at the given instant, in configured event order. Never-recorded
// events are stale; events with the "never stale" threshold are exempt
// entirely, recorded or not.
func (r *Registry) StaleEvents(contractID string, now time.Time) []StaleEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.staleEventsLocked(kindContract, contractID, r.contractPolicy, now)
}

// IsCurrent reports whether the contract has no stale checkpoints
func (r *Registry) IsCurrent(contractID string, now time.Time) bool {
	return len(r.StaleEvents(contractID, now)) == 0
}

// GroupStaleness is the result of a product-group staleness query
type GroupStaleness struct {
	ProductGroup string                  `json:"product_group"`
	Contracts    map[string][]StaleEntry `json:"contracts"`
	GroupEvents  []StaleEntry            `json:"product_group_events"`
}

// ProductGroupStaleness resolves the group's contracts and evaluates
// staleness for each of them plus the group-level events. A resolver
// failure propagates; it is never treated as an empty group.
func (r *Registry) ProductGroupStaleness(ctx context.Context, productGroup string, now time.Time) (*GroupStaleness, error) {
	// Resolve membership before touching the stamp map, so a slow lookup
	// never stalls concurrent stamp writes.
	contractIDs, err := r.resolver.ListContractIDs(ctx, productGroup)
	if err != nil {
		return nil, fmt.Errorf("resolve product group %q: %w", productGroup, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := &GroupStaleness{
		ProductGroup: productGroup,
		Contracts:    make(map[string][]StaleEntry, len(contractIDs)),
		GroupEvents:  r.staleEventsLocked(kindProductGroup, productGroup, r.groupPolicy, now),
	}
	for _, id := range contractIDs {
		result.Contracts[id] = r.staleEventsLocked(kindContract, id, r.contractPolicy, now)
	}

	return result, nil
}

// ProductGroupIsCurrent reports whether the group-level events and every
// member contract are free of stale checkpoints. A group with zero
// contracts is vacuously current at the contract level.
func (r *Registry) ProductGroupIsCurrent(ctx context.Context, productGroup string, now time.Time) (bool, error) {
	staleness, err := r.ProductGroupStaleness(ctx, productGroup, now)
	if err != nil {
		return false, err
	}

	if len(staleness.GroupEvents) > 0 {
		return false, nil
	}
	for _, entries := range staleness.Contracts {
		if len(entries) > 0 {
			return false, nil
		}
	}
	return true, nil
}

// staleEventsLocked evaluates the query-path staleness rules for one
// subject. Caller must hold at least the read lock.
//
// Decision is made on exact elapsed time (strict >); the rounded minute
// values in the result are display-only.
func (r *Registry) staleEventsLocked(kind subjectKind, subject string, policy Policy, now time.Time) []StaleEntry {
	stale := make([]StaleEntry, 0)

	for _, ev := range policy.events {
		threshold := policy.thresholds[ev]
		if threshold.IsNeverStale() {
			// Query path: never-stale events are exempt, even when absent
			continue
		}

		ts, ok := r.stamps[stampKey{kind: kind, subject: subject, event: ev}]
		if !ok {
			stale = append(stale, StaleEntry{
				Event:         ev,
				MaxAgeMinutes: threshold.MaxAgeMinutes(),
			})
			continue
		}

		age := now.Sub(ts)
		if age > threshold.MaxAge() {
			t := ts
			minutes := roundMinutes(age)
			stale = append(stale, StaleEntry{
				Event:         ev,
				LastRun:       &t,
				MaxAgeMinutes: threshold.MaxAgeMinutes(),
				AgeMinutes:    &minutes,
			})
		}
	}

	return stale
}
