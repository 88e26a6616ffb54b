package timeoututil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeoutFiresAfterDuration(t *testing.T) {
	to := New(20 * time.Millisecond)
	assert.False(t, to.TimedOut())
	time.Sleep(30 * time.Millisecond)
	assert.True(t, to.TimedOut())
}

func TestExtendDoesNotMoveStart(t *testing.T) {
	to := New(10 * time.Millisecond)
	time.Sleep(15 * time.Millisecond)
	assert.True(t, to.TimedOut())

	to.Extend(50 * time.Millisecond)
	assert.False(t, to.TimedOut())
}

func TestResetMovesStart(t *testing.T) {
	to := New(10 * time.Millisecond)
	time.Sleep(15 * time.Millisecond)
	assert.True(t, to.TimedOut())

	to.Reset()
	assert.False(t, to.TimedOut())
}
