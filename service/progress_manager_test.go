package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressManager_NonInteractiveWriter(t *testing.T) {
	pm := NewProgressManager()
	var buf bytes.Buffer
	pm.SetWriter(&buf)

	assert.False(t, pm.IsInteractive())

	pm.Initialize(10)
	pm.Start()
	pm.Update(5, 10)
	pm.Complete(true)
	pm.Close()

	assert.Empty(t, buf.String(), "no bar is drawn for a non-terminal writer")
}

func TestProgressManager_InteractiveBar(t *testing.T) {
	var buf bytes.Buffer
	pm := &ProgressManagerImpl{writer: &buf, interactive: true}

	pm.Initialize(4)
	pm.Start()
	pm.Update(2, 4)
	pm.Update(4, 4)
	pm.Complete(true)

	assert.Contains(t, buf.String(), "Loading variants")
	assert.Nil(t, pm.bar)

	// A second run after completion starts a fresh bar
	pm.Initialize(2)
	pm.Update(1, 2)
	assert.NotNil(t, pm.bar)
	pm.Complete(false)
	assert.Nil(t, pm.bar)
	pm.Close()
}

func TestProgressManager_OutOfOrderUpdates(t *testing.T) {
	pm := &ProgressManagerImpl{writer: &bytes.Buffer{}}

	pm.Initialize(6)
	pm.Update(3, 6)
	pm.Update(2, 6)
	assert.Equal(t, 3, pm.Loaded())

	pm.Update(5, 6)
	assert.Equal(t, 5, pm.Loaded())

	pm.Initialize(6)
	assert.Equal(t, 0, pm.Loaded())
}

func TestIsInteractiveEnvironment_CI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.False(t, IsInteractiveEnvironment())
}
