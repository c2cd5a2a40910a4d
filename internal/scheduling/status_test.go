package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	allStatuses := []Status{
		StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted,
		StatusCancelled, StatusNoShow, StatusRescheduled,
	}
	legal := map[Status][]Status{
		StatusScheduled:  {StatusConfirmed, StatusInProgress, StatusCancelled, StatusNoShow, StatusRescheduled},
		StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusNoShow, StatusRescheduled},
		StatusInProgress: {StatusCompleted, StatusNoShow, StatusCancelled},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			allowed := false
			for _, target := range legal[from] {
				if target == to {
					allowed = true
				}
			}
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				got, err := Transition(from, to)
				if allowed {
					require.NoError(t, err)
					assert.Equal(t, to, got)
				} else {
					var illegal *IllegalTransitionError
					require.ErrorAs(t, err, &illegal)
					assert.Equal(t, from, illegal.From)
					assert.Equal(t, to, illegal.To)
				}
			})
		}
	}
}

func TestTransitionInProgressBackToConfirmed(t *testing.T) {
	// A consultation that already started cannot be demoted.
	_, err := Transition(StatusInProgress, StatusConfirmed)

	var illegal *IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, "illegal transition from in_progress to confirmed", err.Error())
}

func TestTransitionIsPure(t *testing.T) {
	first, err1 := Transition(StatusScheduled, StatusConfirmed)
	second, err2 := Transition(StatusScheduled, StatusConfirmed)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusNoShow.Terminal())
	assert.True(t, StatusRescheduled.Terminal())

	assert.False(t, StatusScheduled.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
	assert.False(t, StatusInProgress.Terminal())
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, st)

	_, err = ParseStatus("attending")
	assert.Error(t, err)

	_, err = ParseStatus("")
	assert.Error(t, err)
}
