package freshness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdValues(t *testing.T) {
	bounded := Minutes(60)
	assert.False(t, bounded.IsNeverStale())
	assert.Equal(t, time.Hour, bounded.MaxAge())
	assert.Equal(t, 60, bounded.MaxAgeMinutes())
	assert.Equal(t, "60m", bounded.String())

	never := Never()
	assert.True(t, never.IsNeverStale())
	assert.Equal(t, "never", never.String())
}

func TestNewPolicyRequiresAllEvents(t *testing.T) {
	_, err := NewPolicy(ContractEvents, map[Event]Threshold{
		EventParsed: Minutes(60),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing threshold")
}

func TestDefaultPolicies(t *testing.T) {
	contract := DefaultContractPolicy()
	assert.Equal(t, ContractEvents, contract.Events())

	legal, ok := contract.Threshold(EventLegalReviewed)
	require.True(t, ok)
	assert.True(t, legal.IsNeverStale())

	group := DefaultProductGroupPolicy()
	refresh, ok := group.Threshold(EventFullRefresh)
	require.True(t, ok)
	assert.Equal(t, 1440, refresh.MaxAgeMinutes())
}

func TestWithOverrides(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
		check   func(t *testing.T, p Policy)
	}{
		{
			name: "empty spec keeps defaults",
			spec: "",
			check: func(t *testing.T, p Policy) {
				th, _ := p.Threshold(EventParsed)
				assert.Equal(t, 1440, th.MaxAgeMinutes())
			},
		},
		{
			name: "override minutes",
			spec: "parsed=60, position_refreshed=15",
			check: func(t *testing.T, p Policy) {
				parsed, _ := p.Threshold(EventParsed)
				assert.Equal(t, 60, parsed.MaxAgeMinutes())
				pos, _ := p.Threshold(EventPositionRefreshed)
				assert.Equal(t, 15, pos.MaxAgeMinutes())
				// Untouched events keep their defaults
				llm, _ := p.Threshold(EventLLMValidated)
				assert.Equal(t, 10080, llm.MaxAgeMinutes())
			},
		},
		{
			name: "override to never",
			spec: "sap_validated=never",
			check: func(t *testing.T, p Policy) {
				th, _ := p.Threshold(EventSAPValidated)
				assert.True(t, th.IsNeverStale())
			},
		},
		{
			name:    "unknown event rejected",
			spec:    "reconciled=60",
			wantErr: true,
		},
		{
			name:    "malformed entry rejected",
			spec:    "parsed",
			wantErr: true,
		},
		{
			name:    "non-numeric minutes rejected",
			spec:    "parsed=soon",
			wantErr: true,
		},
		{
			name:    "zero minutes rejected",
			spec:    "parsed=0",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DefaultContractPolicy().WithOverrides(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestWithOverridesDoesNotMutateOriginal(t *testing.T) {
	base := DefaultContractPolicy()
	_, err := base.WithOverrides("parsed=1")
	require.NoError(t, err)

	th, _ := base.Threshold(EventParsed)
	assert.Equal(t, 1440, th.MaxAgeMinutes(), "overrides must copy the table")
}

func TestRoundMinutes(t *testing.T) {
	assert.Equal(t, 60, roundMinutes(60*time.Minute))
	assert.Equal(t, 60, roundMinutes(60*time.Minute+20*time.Second))
	assert.Equal(t, 61, roundMinutes(60*time.Minute+40*time.Second))
	assert.Equal(t, 0, roundMinutes(10*time.Second))
}
