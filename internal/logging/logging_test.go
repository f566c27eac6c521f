package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(false, &buf)
	logger.Debug("hidden")
	logger.Info("shown", "class", "User")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "class=User")

	buf.Reset()
	New(true, &buf).Debug("visible")
	assert.Contains(t, buf.String(), "level=DEBUG")
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))

	l := New(false, &bytes.Buffer{})
	assert.Same(t, l, OrDiscard(l))

	assert.NotPanics(t, func() { Discard().Error("nothing") })
}
