package logging

import (
	"bytes"
	"testing"

	"github.com/1broseidon/aicookbook/common"
	"github.com/stretchr/testify/assert"
)

func TestLoggerDisabledByDefault(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Error("should not appear")
	assert.Empty(t, buf.String())
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.SetLevel(common.WarnLevel)

	l.Infof("hidden %d", 1)
	l.Warnf("shown %d", 2)
	l.Error("also", " shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "also shown")
	assert.Contains(t, out, `"level":"warn"`)
}

func TestLoggerAllMethods(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.SetLevel(common.DebugLevel)

	l.Debug("debug", 1)
	l.Debugf("debugf %d", 2)
	l.Info("info", 3)
	l.Infof("infof %d", 4)
	l.Warn("warn", 5)
	l.Warnf("warnf %d", 6)
	l.Error("error", 7)
	l.Errorf("errorf %d", 8)

	out := buf.String()
	for _, want := range []string{"debug1", "debugf 2", "info3", "infof 4", "warn5", "warnf 6", "error7", "errorf 8"} {
		assert.Contains(t, out, want)
	}
	for _, level := range []string{"debug", "info", "warn", "error"} {
		assert.Contains(t, out, `"level":"`+level+`"`)
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.SetLevel(common.DebugLevel)
	l.Debug("nothing")
}
