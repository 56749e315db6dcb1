package telemetry

import (
	"context"
	"errors"
	"testing"

	"farmsurvey/internal/app/server/config"
	"farmsurvey/internal/domain/auditlog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type countingFailures struct{ n int }

func (c *countingFailures) AuditFailure() { c.n++ }

func TestInitSentry_Disabled(t *testing.T) {
	enabled, flush, err := InitSentry(config.Telemetry{}, "local")
	require.NoError(t, err)
	assert.False(t, enabled)
	flush()
}

func TestInitSentry_BadDSN(t *testing.T) {
	_, _, err := InitSentry(config.Telemetry{SentryDSN: "::not a dsn"}, "local")
	assert.Error(t, err)
}

func TestAuditReporter_CountsWithoutSentry(t *testing.T) {
	counter := &countingFailures{}
	r := NewAuditReporter(false, counter, slog.Default())

	r.ReportAuditFailure(context.Background(), errors.New("disk full"), auditlog.Entry{DeviceID: "dev-a"})
	r.ReportAuditFailure(context.Background(), errors.New("disk full"), auditlog.Entry{DeviceID: "dev-a"})

	assert.Equal(t, 2, counter.n)
}

func TestAuditReporter_NilCounter(t *testing.T) {
	r := NewAuditReporter(false, nil, slog.Default())
	assert.NotPanics(t, func() {
		r.ReportAuditFailure(context.Background(), errors.New("x"), auditlog.Entry{})
	})
}

func TestInitTracer_NoEndpoint(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "", "dev")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
