package learning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core/child"
)

func TestAssignment_Start(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("from assigned", func(t *testing.T) {
		asg := Assignment{Status: StatusAssigned}
		err := asg.Start(now)
		assert.NoError(t, err)
		assert.Equal(t, StatusInProgress, asg.Status)
		assert.Equal(t, null.TimeFrom(now), asg.StartedAt)
	})

	t.Run("repeated start is rejected and leaves the stamp intact", func(t *testing.T) {
		asg := Assignment{Status: StatusAssigned}
		assert.NoError(t, asg.Start(now))

		later := now.Add(time.Hour)
		err := asg.Start(later)
		assert.ErrorIs(t, err, ErrNotStartable)
		assert.Equal(t, StatusInProgress, asg.Status)
		assert.Equal(t, null.TimeFrom(now), asg.StartedAt)
	})

	for _, status := range []string{StatusCompleted, StatusOverdue, StatusCancelled} {
		t.Run("from "+status, func(t *testing.T) {
			asg := Assignment{Status: status}
			assert.ErrorIs(t, asg.Start(now), ErrNotStartable)
			assert.Equal(t, status, asg.Status)
			assert.False(t, asg.StartedAt.Valid)
		})
	}
}

func TestAssignment_Continue(t *testing.T) {
	asg := Assignment{Status: StatusInProgress}
	assert.NoError(t, asg.Continue())

	for _, status := range []string{StatusAssigned, StatusCompleted, StatusOverdue, StatusCancelled} {
		asg := Assignment{Status: status}
		assert.ErrorIs(t, asg.Continue(), ErrNotInProgress, status)
	}
}

func TestActivity_SuitableFor(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	a := Activity{AgeRangeMin: 12, AgeRangeMax: 24}

	tests := []struct {
		name string
		dob  time.Time
		want bool
	}{
		{"too young", now.AddDate(0, -6, 0), false},
		{"lower bound", now.AddDate(-1, 0, 0), true},
		{"upper bound", now.AddDate(-2, 0, 0), true},
		{"too old", now.AddDate(-3, 0, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := child.Child{DateOfBirth: tt.dob}
			assert.Equal(t, tt.want, a.SuitableFor(c, now))
		})
	}
}
