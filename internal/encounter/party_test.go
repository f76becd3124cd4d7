package encounter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleFrom(t *testing.T) {
	got, err := ScheduleFrom("2025-03-14", "09:30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, testSchedule, got)

	got, err = ScheduleFrom("2025-03-14", "2:15 PM", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 14, got.Hour())

	_, err = ScheduleFrom("14/03/2025", "09:30", time.UTC)
	assert.ErrorIs(t, err, ErrIncompleteSelection)
	_, err = ScheduleFrom("2025-03-14", "", time.UTC)
	assert.ErrorIs(t, err, ErrIncompleteSelection)
}

func TestLookupParty(t *testing.T) {
	gw := newFakeGateway()
	p, err := LookupParty(context.Background(), gw, 7, 3, testSchedule)
	require.NoError(t, err)
	assert.Equal(t, validParty(), p)

	_, err = LookupParty(context.Background(), gw, 8, 3, testSchedule)
	assert.ErrorIs(t, err, ErrIncompleteSelection)
	_, err = LookupParty(context.Background(), gw, 7, 99, testSchedule)
	assert.ErrorIs(t, err, ErrIncompleteSelection)
}

func TestNewReference(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		ref, err := NewReference()
		require.NoError(t, err)
		assert.Regexp(t, `^[A-Z0-9]{10}$`, ref)
		seen[ref] = struct{}{}
	}
	assert.Greater(t, len(seen), 190)
}
