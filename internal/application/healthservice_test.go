package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/authorsite/internal/application"
)

func TestHealthService_AllHealthy(t *testing.T) {
	svc := application.NewHealthService(time.Second)
	svc.Register("database", func(context.Context) error { return nil })
	svc.Register("cache", func(context.Context) error { return nil })

	report := svc.Check(context.Background())

	assert.True(t, report.Healthy())
	require.Len(t, report.Checks, 2)
	assert.Equal(t, "cache", report.Checks[0].Name)
	assert.Equal(t, "database", report.Checks[1].Name)
}

func TestHealthService_FailingCheck(t *testing.T) {
	svc := application.NewHealthService(time.Second)
	svc.Register("database", func(context.Context) error { return errors.New("disk I/O error") })
	svc.Register("cache", func(context.Context) error { return nil })

	report := svc.Check(context.Background())

	assert.False(t, report.Healthy())
	assert.True(t, report.Checks[0].OK())
	assert.EqualError(t, report.Checks[1].Err, "disk I/O error")
}

func TestHealthService_CheckTimeout(t *testing.T) {
	svc := application.NewHealthService(20 * time.Millisecond)
	svc.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	report := svc.Check(context.Background())

	require.Len(t, report.Checks, 1)
	assert.ErrorIs(t, report.Checks[0].Err, context.DeadlineExceeded)
}

func TestHealthService_NoChecks(t *testing.T) {
	report := application.NewHealthService(0).Check(context.Background())

	assert.True(t, report.Healthy())
	assert.Empty(t, report.Checks)
}
