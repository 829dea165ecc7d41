package utils

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugfHonorsVerbose(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	t.Cleanup(func() {
		SetLogOutput(os.Stderr)
		SetVerbose(false)
	})

	SetVerbose(false)
	Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Debugf("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")

	buf.Reset()
	Warnf("careful %s", "now")
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "careful now")
}

func TestGetDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/app")
	assert.Equal(t, "postgres://localhost/app", GetDatabaseURL())
}
