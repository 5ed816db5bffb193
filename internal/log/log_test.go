package log

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"NetZoneFlow/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_Pattern(t *testing.T) {
	f := &formatter{pattern: "%time [%level] %msg %field", time: "15:04:05"}
	entry := &logrus.Entry{
		Time:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "flush failed",
		Data:    logrus.Fields{"sender": "http", "attempt": 2},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "03:04:05 [warning] flush failed attempt=2,sender=http\n", string(out))
}

func TestFormatter_NoFields(t *testing.T) {
	f := &formatter{pattern: "[%level] %msg %field", time: time.RFC3339}
	out, err := f.Format(&logrus.Entry{Level: logrus.InfoLevel, Message: "ready"})
	require.NoError(t, err)
	assert.Equal(t, "[info] ready\n", string(out))
}

func TestBuild_WritesToConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default().Log
	cfg.Level = "debug"
	cfg.File.Enabled = true
	cfg.File.Path = filepath.Join(t.TempDir(), "client.log")

	l, closer, err := build(cfg, &console)
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()

	adapter := newLogrusAdapter(l)
	adapter.WithError(errors.New("boom")).Debugf("sent %d records", 3)

	assert.Contains(t, console.String(), "sent 3 records")
	assert.Contains(t, console.String(), "error=boom")
	assert.True(t, adapter.IsDebugEnabled())
}

func TestBuild_JSONAndBadLevel(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default().Log
	cfg.Format = "json"
	cfg.Level = "loud"

	l, closer, err := build(cfg, &console)
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())

	newLogrusAdapter(l).WithField("iface", "eth0").Info("capturing")
	assert.Contains(t, console.String(), `"iface":"eth0"`)
}
