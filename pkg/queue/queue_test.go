package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJob(t *testing.T) {
	j := NewJob(42)
	assert.NotEmpty(t, j.Id)
	assert.Equal(t, uint(42), j.NoteId)
	assert.Equal(t, 1, j.Attempt)
	assert.NotEqual(t, j.Id, NewJob(42).Id)
}

func TestJob_Retry(t *testing.T) {
	j := NewJob(1)
	for i := 2; i <= MaxAttempts; i++ {
		var ok bool
		j, ok = j.Retry()
		require.True(t, ok)
		assert.Equal(t, i, j.Attempt)
	}
	_, ok := j.Retry()
	assert.False(t, ok)
}

func TestUnmarshalJob(t *testing.T) {
	data, err := NewJob(7).Marshal()
	require.NoError(t, err)

	j, err := UnmarshalJob(data)
	require.NoError(t, err)
	assert.Equal(t, uint(7), j.NoteId)

	_, err = UnmarshalJob([]byte(`{"id":"x"}`))
	assert.Error(t, err)
	_, err = UnmarshalJob([]byte(`not json`))
	assert.Error(t, err)
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, RetryDelay(1))
	assert.Equal(t, 5*time.Second, RetryDelay(50))
}
