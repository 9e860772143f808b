package freshness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportEntry(t *testing.T, entries []ReportEntry, ev Event) ReportEntry {
	t.Helper()
	for _, e := range entries {
		if e.Event == ev {
			return e
		}
	}
	t.Fatalf("event %q not in report entries", ev)
	return ReportEntry{}
}

// The §8-style scenario: a bounded event past its threshold plus an
// unstamped never-stale event. The query path exempts the latter, the
// report path marks it stale.
func TestReportDivergesFromQueryPath(t *testing.T) {
	contractPolicy, err := NewPolicy(
		[]Event{EventParsed, EventLegalReviewed},
		map[Event]Threshold{
			EventParsed:        Minutes(1440),
			EventLegalReviewed: Never(),
		},
	)
	require.NoError(t, err)

	resolver := &fakeResolver{members: map[string][]string{"fx-forwards": {"C1"}}}
	reg := New(contractPolicy, DefaultProductGroupPolicy(), resolver, testLogger())

	now := time.Now()
	reg.RecordContractEvent("C1", EventParsed, now.Add(-2000*time.Minute))

	// Query path: only parsed is stale
	stale := reg.StaleEvents("C1", now)
	require.Len(t, stale, 1)
	assert.Equal(t, EventParsed, stale[0].Event)

	// Report path: both are stale
	report, err := reg.CurrencyReport(context.Background(), "fx-forwards", now)
	require.NoError(t, err)
	require.Len(t, report.Contracts, 1)

	contract := report.Contracts[0]
	assert.Equal(t, "C1", contract.ContractID)
	assert.Equal(t, 2, contract.StaleCount)
	assert.False(t, contract.FullyCurrent)

	parsed := reportEntry(t, contract.Events, EventParsed)
	assert.True(t, parsed.Stale)
	require.NotNil(t, parsed.AgeMinutes)
	assert.Equal(t, 2000, *parsed.AgeMinutes)

	legal := reportEntry(t, contract.Events, EventLegalReviewed)
	assert.True(t, legal.Stale, "absent never-stale events are stale in the report")
	assert.True(t, legal.NeverStale)
	assert.Nil(t, legal.MaxAgeMinutes)
}

func TestReportStampedNeverStaleIsCurrentRegardlessOfAge(t *testing.T) {
	resolver := &fakeResolver{members: map[string][]string{"fx-forwards": {"C1"}}}
	reg := newTestRegistry(t, resolver)
	now := time.Now()

	for _, ev := range ContractEvents {
		reg.RecordContractEvent("C1", ev, now.Add(-time.Minute))
	}
	// legal_reviewed stamped years ago
	reg.RecordContractEvent("C1", EventLegalReviewed, now.Add(-3*365*24*time.Hour))
	reg.RecordProductGroupEvent("fx-forwards", EventFullRefresh, now.Add(-time.Minute))

	report, err := reg.CurrencyReport(context.Background(), "fx-forwards", now)
	require.NoError(t, err)

	legal := reportEntry(t, report.Contracts[0].Events, EventLegalReviewed)
	assert.False(t, legal.Stale, "any past stamp satisfies a never-stale event")
	assert.True(t, report.Contracts[0].FullyCurrent)
	assert.True(t, report.AllCurrent)
}

func TestReportAggregation(t *testing.T) {
	resolver := &fakeResolver{members: map[string][]string{
		"fx-forwards": {"C1", "C2", "C3"},
	}}
	reg := newTestRegistry(t, resolver)
	now := time.Now()

	// C1 and C2 fully current, C3 untouched
	for _, id := range []string{"C1", "C2"} {
		for _, ev := range ContractEvents {
			reg.RecordContractEvent(id, ev, now.Add(-time.Minute))
		}
	}
	reg.RecordProductGroupEvent("fx-forwards", EventFullRefresh, now.Add(-time.Minute))

	report, err := reg.CurrencyReport(context.Background(), "fx-forwards", now)
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalContracts)
	assert.Equal(t, 2, report.FullyCurrentCount)
	assert.Equal(t, 1, report.StaleContractCount)
	assert.False(t, report.AllCurrent)
	assert.Equal(t, now, report.CheckedAt)

	// Contract order follows the resolver's answer
	ids := []string{report.Contracts[0].ContractID, report.Contracts[1].ContractID, report.Contracts[2].ContractID}
	assert.Equal(t, []string{"C1", "C2", "C3"}, ids)

	// Fix C3 and the report flips to all current
	for _, ev := range ContractEvents {
		reg.RecordContractEvent("C3", ev, now.Add(-time.Minute))
	}
	report, err = reg.CurrencyReport(context.Background(), "fx-forwards", now)
	require.NoError(t, err)
	assert.Equal(t, 3, report.FullyCurrentCount)
	assert.True(t, report.AllCurrent)
}

func TestReportAllCurrentRequiresGroupEvents(t *testing.T) {
	resolver := &fakeResolver{members: map[string][]string{
		"fx-forwards": {"C1"},
	}}
	reg := newTestRegistry(t, resolver)
	now := time.Now()

	for _, ev := range ContractEvents {
		reg.RecordContractEvent("C1", ev, now.Add(-time.Minute))
	}
	// full_refresh never recorded for the group

	report, err := reg.CurrencyReport(context.Background(), "fx-forwards", now)
	require.NoError(t, err)

	assert.Equal(t, report.TotalContracts, report.FullyCurrentCount)
	assert.False(t, report.AllCurrent, "stale group-level events block all_current")

	refresh := reportEntry(t, report.ProductGroupEvents, EventFullRefresh)
	assert.True(t, refresh.Stale)
}

func TestReportEmptyGroup(t *testing.T) {
	resolver := &fakeResolver{members: map[string][]string{}}
	reg := newTestRegistry(t, resolver)
	now := time.Now()

	reg.RecordProductGroupEvent("empty-group", EventFullRefresh, now)

	report, err := reg.CurrencyReport(context.Background(), "empty-group", now)
	require.NoError(t, err)

	assert.Zero(t, report.TotalContracts)
	assert.Empty(t, report.Contracts)
	assert.True(t, report.AllCurrent, "empty group with fresh group events is current")
}
