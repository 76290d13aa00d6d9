package timerdomain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyValidate(t *testing.T) {
	tests := []struct {
		name    string
		key     Key
		wantErr bool
	}{
		{name: "valid first star", key: Key{UserID: "u1", Year: 2022, Day: 1, Star: 1}},
		{name: "valid last day second star", key: Key{UserID: "u1", Year: 2015, Day: 25, Star: 2}},
		{name: "empty user", key: Key{Year: 2022, Day: 1, Star: 1}, wantErr: true},
		{name: "year too early", key: Key{UserID: "u1", Year: 2014, Day: 1, Star: 1}, wantErr: true},
		{name: "day zero", key: Key{UserID: "u1", Year: 2022, Day: 0, Star: 1}, wantErr: true},
		{name: "day 26", key: Key{UserID: "u1", Year: 2022, Day: 26, Star: 1}, wantErr: true},
		{name: "star 3", key: Key{UserID: "u1", Year: 2022, Day: 3, Star: 3}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTimerStateAndDuration(t *testing.T) {
	start := time.Date(2022, 12, 1, 5, 0, 0, 0, time.UTC)
	stop := start.Add(90 * time.Second)

	var missing *Timer
	assert.Equal(t, StateNotStarted, missing.State())

	running := &Timer{InitTime: start}
	assert.Equal(t, StateInProgress, running.State())
	_, ok := running.Duration()
	assert.False(t, ok)

	done := &Timer{InitTime: start, StopTime: &stop}
	assert.Equal(t, StateCompleted, done.State())
	d, ok := done.Duration()
	assert.True(t, ok)
	assert.Equal(t, 90*time.Second, d)
	assert.Equal(t, "completed", done.State().String())
}
