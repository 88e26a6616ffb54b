package registry

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	return logrus.New().WithField("test", true)
}

func TestMemRegistryCreateThenExists(t *testing.T) {
	reg := NewMem()
	assert.False(t, reg.Exists("/root"))

	require.NoError(t, reg.Create("/root"))
	assert.True(t, reg.Exists("/root"))
}

func TestMemRegistryCreateTwiceFails(t *testing.T) {
	reg := NewMem()
	require.NoError(t, reg.Create("/root"))
	assert.Error(t, reg.Create("/root"))
}

func TestJoinAsChildSucceedsOncePresent(t *testing.T) {
	reg := NewMem()
	require.NoError(t, reg.Create("/root"))

	require.NoError(t, JoinAsChild(reg, "/root", "/root/A", testLogger()))
	assert.True(t, reg.Exists("/root/A"))
}

func TestJoinAsChildFailsWhenParentNeverAppears(t *testing.T) {
	orig := WaitInterval
	NRetries = 2
	WaitInterval = time.Millisecond
	defer func() { WaitInterval = orig; NRetries = 5 }()

	reg := NewMem()
	err := JoinAsChild(reg, "/root", "/root/A", testLogger())
	assert.Error(t, err)
}
