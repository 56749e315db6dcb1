package survey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestResolve(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		existing *Survey
		incoming *Survey
		want     Outcome
	}{
		{
			name:     "no existing record is inserted",
			existing: nil,
			incoming: &Survey{ClientTimestamp: t0},
			want:     OutcomeInserted,
		},
		{
			name:     "strictly newer incoming wins",
			existing: &Survey{ClientTimestamp: t0},
			incoming: &Survey{ClientTimestamp: t0.Add(time.Millisecond)},
			want:     OutcomeUpdated,
		},
		{
			name:     "equal timestamp keeps stored record",
			existing: &Survey{ClientTimestamp: t0},
			incoming: &Survey{ClientTimestamp: t0},
			want:     OutcomeRejected,
		},
		{
			name:     "older incoming is rejected",
			existing: &Survey{ClientTimestamp: t0},
			incoming: &Survey{ClientTimestamp: t0.Add(-time.Hour)},
			want:     OutcomeRejected,
		},
		{
			name:     "sub-millisecond difference counts as equal",
			existing: &Survey{ClientTimestamp: t0},
			incoming: &Survey{ClientTimestamp: t0.Add(500 * time.Microsecond)},
			want:     OutcomeRejected,
		},
		{
			name:     "same instant in another zone counts as equal",
			existing: &Survey{ClientTimestamp: t0},
			incoming: &Survey{ClientTimestamp: t0.In(time.FixedZone("VUT", 11*3600))},
			want:     OutcomeRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.existing, tt.incoming))
		})
	}
}

func TestOutcome_Conflict(t *testing.T) {
	assert.False(t, OutcomeInserted.Conflict())
	assert.True(t, OutcomeUpdated.Conflict())
	assert.True(t, OutcomeRejected.Conflict())
	assert.False(t, OutcomeFailed.Conflict())
}

func TestMerge(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	serverTS := time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC)
	stored := &Survey{
		ID:              42,
		ClientID:        "c1",
		DeviceID:        "d1",
		FarmerName:      "Maria",
		FarmSize:        ptr(2.5),
		Crops:           []string{"taro"},
		ClientTimestamp: created,
		ServerTimestamp: serverTS,
		CreatedAt:       created,
	}
	incoming := &Survey{
		ClientID:        "c1",
		DeviceID:        "d1",
		FarmerName:      "Maria K.",
		FarmSize:        ptr(3.0),
		Crops:           []string{"yam", "kava"},
		Livestock:       Livestock{Pigs: 3},
		ClientTimestamp: created.Add(time.Hour),
	}

	now := serverTS.Add(time.Minute)
	Merge(stored, incoming, "enumerator1", now)

	assert.Equal(t, int64(42), stored.ID)
	assert.Equal(t, created, stored.CreatedAt)
	assert.Equal(t, "Maria K.", stored.FarmerName)
	assert.Equal(t, 3.0, *stored.FarmSize)
	assert.Equal(t, []string{"yam", "kava"}, stored.Crops)
	assert.Equal(t, 3, stored.Livestock.Pigs)
	assert.Equal(t, incoming.ClientTimestamp, stored.ClientTimestamp)
	assert.Equal(t, now, stored.ServerTimestamp)
	assert.Equal(t, "enumerator1", stored.SyncedBy)
	assert.NotNil(t, stored.SyncedAt)
}

func TestNextServerTimestamp(t *testing.T) {
	prev := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, prev.Add(time.Second), NextServerTimestamp(prev, prev.Add(time.Second)))
	assert.Equal(t, prev, NextServerTimestamp(prev, prev.Add(-time.Second)))
	assert.Equal(t, prev, NextServerTimestamp(prev, prev))
}
