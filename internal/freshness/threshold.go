package freshness

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Threshold is the staleness policy for a single event: either a maximum
// age or the "never stale" sentinel. The sentinel is a tagged value, never
// a numeric constant, so it cannot be compared numerically by accident.
type Threshold struct {
	maxAge time.Duration
	never  bool
}

// Minutes returns a bounded threshold of n minutes
func Minutes(n int) Threshold {
	return Threshold{maxAge: time.Duration(n) * time.Minute}
}

// Never returns the "never stale" sentinel threshold
func Never() Threshold {
	return Threshold{never: true}
}

// IsNeverStale reports whether this is the "never stale" sentinel
func (t Threshold) IsNeverStale() bool {
	return t.never
}

// MaxAge returns the maximum age for a bounded threshold (zero for the sentinel)
func (t Threshold) MaxAge() time.Duration {
	return t.maxAge
}

// MaxAgeMinutes returns the maximum age in whole minutes
func (t Threshold) MaxAgeMinutes() int {
	return int(t.maxAge / time.Minute)
}

// String implements fmt.Stringer
func (t Threshold) String() string {
	if t.never {
		return "never"
	}
	return fmt.Sprintf("%dm", t.MaxAgeMinutes())
}

// Policy is an immutable threshold table over a fixed, ordered event set
// ⭐ SSOT: 임계값 테이블은 기동 시 한 번만 로드됨
type Policy struct {
	events     []Event
	thresholds map[Event]Threshold
}

// NewPolicy builds a policy over the given ordered event set. Every event
// must have a threshold.
func NewPolicy(events []Event, thresholds map[Event]Threshold) (Policy, error) {
	for _, ev := range events {
		if _, ok := thresholds[ev]; !ok {
			return Policy{}, fmt.Errorf("missing threshold for event %q", ev)
		}
	}

	// Copy so callers cannot mutate the table afterwards
	ts := make(map[Event]Threshold, len(thresholds))
	for ev, t := range thresholds {
		ts[ev] = t
	}
	evs := make([]Event, len(events))
	copy(evs, events)

	return Policy{events: evs, thresholds: ts}, nil
}

// DefaultContractPolicy returns the default contract-level threshold table
func DefaultContractPolicy() Policy {
	p, _ := NewPolicy(ContractEvents, map[Event]Threshold{
		EventParsed:            Minutes(1440),  // daily
		EventTemplateValidated: Minutes(1440),  // daily
		EventLLMValidated:      Minutes(10080), // weekly
		EventSAPValidated:      Minutes(10080), // weekly
		EventPositionRefreshed: Minutes(60),
		EventLegalReviewed:     Never(),
	})
	return p
}

// DefaultProductGroupPolicy returns the default product-group-level threshold table
func DefaultProductGroupPolicy() Policy {
	p, _ := NewPolicy(ProductGroupEvents, map[Event]Threshold{
		EventFullRefresh: Minutes(1440), // daily
	})
	return p
}

// Events returns the configured event set in evaluation order
func (p Policy) Events() []Event {
	evs := make([]Event, len(p.events))
	copy(evs, p.events)
	return evs
}

// Threshold returns the threshold for an event
func (p Policy) Threshold(ev Event) (Threshold, bool) {
	t, ok := p.thresholds[ev]
	return t, ok
}

// WithOverrides returns a copy of the policy with thresholds overridden from
// a "event=minutes|never" comma-separated spec, e.g.
// "parsed=60,legal_reviewed=never". Unknown events are rejected.
func (p Policy) WithOverrides(spec string) (Policy, error) {
	if strings.TrimSpace(spec) == "" {
		return p, nil
	}

	ts := make(map[Event]Threshold, len(p.thresholds))
	for ev, t := range p.thresholds {
		ts[ev] = t
	}

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, value, found := strings.Cut(part, "=")
		if !found {
			return Policy{}, fmt.Errorf("invalid threshold entry %q (expected event=minutes|never)", part)
		}

		ev := Event(strings.TrimSpace(name))
		if _, ok := ts[ev]; !ok {
			return Policy{}, fmt.Errorf("unknown event %q in threshold overrides", ev)
		}

		value = strings.TrimSpace(value)
		if strings.EqualFold(value, "never") {
			ts[ev] = Never()
			continue
		}

		minutes, err := strconv.Atoi(value)
		if err != nil || minutes <= 0 {
			return Policy{}, fmt.Errorf("invalid threshold %q for event %q", value, ev)
		}
		ts[ev] = Minutes(minutes)
	}

	return NewPolicy(p.events, ts)
}

// roundMinutes converts an exact elapsed duration to whole minutes for
// display. The stale decision itself never uses the rounded value.
func roundMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}
