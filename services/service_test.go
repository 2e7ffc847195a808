package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupLogging(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	assert.NoError(t, SetupLogging("debug", "text"))
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))

	assert.NoError(t, SetupLogging("warn", "json"))
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))

	assert.Error(t, SetupLogging("chatty", "text"))
	assert.Error(t, SetupLogging("info", "xml"))
}

type stubService struct {
	err error
}

func (s *stubService) ID() string { return "stub" }
func (s *stubService) Run(ctx context.Context) error { return s.err }

func TestLaunch(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	assert.NoError(t, Launch(&stubService{}))
	assert.NoError(t, Launch(&stubService{err: context.Canceled}))
	assert.Error(t, Launch(&stubService{err: errors.New("boom")}))
}
