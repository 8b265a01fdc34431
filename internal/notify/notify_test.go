package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDesktopNotify(t *testing.T) {
	var sent, alerted []string

	d := NewDesktop("LockieMedia", zap.NewNop())
	d.send = func(title, message string) error {
		sent = append(sent, title+": "+message)
		return nil
	}
	d.alert = func(title, message string) error {
		alerted = append(alerted, title+": "+message)
		return nil
	}

	d.Notify(Notification{Level: LevelInfo, Message: "saved"})
	assert.Empty(t, sent, "info is skipped by default")

	d.Notify(Notification{Level: LevelWarning, Message: "could not save"})
	d.Notify(Notification{Level: LevelError, Title: "Startup", Message: "unreachable", Fatal: true})

	assert.Equal(t, []string{"LockieMedia: could not save"}, sent)
	assert.Equal(t, []string{"Startup: unreachable"}, alerted)

	d.IncludeInfo = true
	d.Notify(Notification{Level: LevelInfo, Message: "saved"})
	assert.Len(t, sent, 2)
}

func TestDesktopNotifyLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	d := NewDesktop("LockieMedia", zap.New(core))
	d.send = func(string, string) error { return errors.New("no dbus") }

	d.Notify(Notification{Level: LevelError, Message: "boom"})

	assert.Equal(t, 1, logs.FilterMessage("failed to send desktop notification").Len())
}

func TestMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, nil, b}

	m.Notify(Notification{Message: "hi"})

	assert.Len(t, a.All(), 1)
	assert.Len(t, b.All(), 1)
	assert.Equal(t, "hi", b.All()[0].Message)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "warning", LevelWarning.String())
	assert.Equal(t, "error", LevelError.String())
}
