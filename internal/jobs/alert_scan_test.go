package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jhoicas/stock-transfer-api/internal/application/inventory"
	"github.com/jhoicas/stock-transfer-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAlertLister struct {
	mock.Mock
}

func (m *mockAlertLister) ListAlerts(ctx context.Context, locationID string) (*inventory.AlertReport, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.AlertReport), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishTransfer(ctx context.Context, result inventory.TransferResult) error {
	return m.Called(ctx, result).Error(0)
}

func (m *mockPublisher) PublishAlerts(ctx context.Context, report inventory.AlertReport) error {
	return m.Called(ctx, report).Error(0)
}

func reportWith(n int) *inventory.AlertReport {
	report := &inventory.AlertReport{GeneratedAt: time.Now()}
	for i := 0; i < n; i++ {
		report.Alerts = append(report.Alerts, inventory.Alert{
			ProductID: "p", LocationID: "l", Quantity: 2, MinThreshold: 5, Deficit: 3,
			Level: inventory.AlertLevelWarning,
		})
	}
	report.Summary = inventory.AlertSummary{TotalAlerts: n, WarningAlerts: n}
	return report
}

func TestAlertScanJob_PublishesReportWithAlerts(t *testing.T) {
	lister := new(mockAlertLister)
	publisher := new(mockPublisher)
	report := reportWith(2)
	lister.On("ListAlerts", mock.Anything, "").Return(report, nil).Once()
	publisher.On("PublishAlerts", mock.Anything, *report).Return(nil).Once()

	job := NewAlertScanJob(lister, publisher, nil)
	require.NoError(t, job.Run(context.Background()))

	lister.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestAlertScanJob_EmptyReportIsNotPublished(t *testing.T) {
	lister := new(mockAlertLister)
	publisher := new(mockPublisher)
	lister.On("ListAlerts", mock.Anything, "").Return(reportWith(0), nil).Once()

	job := NewAlertScanJob(lister, publisher, nil)
	require.NoError(t, job.Run(context.Background()))

	publisher.AssertNotCalled(t, "PublishAlerts", mock.Anything, mock.Anything)
}

func TestAlertScanJob_ScanError(t *testing.T) {
	lister := new(mockAlertLister)
	lister.On("ListAlerts", mock.Anything, "").Return(nil, domain.ErrStoreUnavailable).Once()

	job := NewAlertScanJob(lister, nil, nil)
	err := job.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestAlertScanJob_PublishFailureIsNotAJobFailure(t *testing.T) {
	lister := new(mockAlertLister)
	publisher := new(mockPublisher)
	report := reportWith(1)
	lister.On("ListAlerts", mock.Anything, "").Return(report, nil).Once()
	publisher.On("PublishAlerts", mock.Anything, *report).Return(errors.New("redis down")).Once()

	job := NewAlertScanJob(lister, publisher, nil)
	assert.NoError(t, job.Run(context.Background()))
	publisher.AssertExpectations(t)
}

func TestScheduler_ZeroIntervalDisablesJob(t *testing.T) {
	s, err := NewScheduler(nil)
	require.NoError(t, err)
	defer func() { _ = s.Stop() }()

	registered, err := s.Register("noop", 0, func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.False(t, registered)
}

func TestScheduler_RunsRegisteredTask(t *testing.T) {
	s, err := NewScheduler(nil)
	require.NoError(t, err)

	var runs atomic.Int32
	registered, err := s.Register("counter", 20*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)
	require.True(t, registered)

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())
}

func TestScheduler_StopCancelsTaskContext(t *testing.T) {
	s, err := NewScheduler(nil)
	require.NoError(t, err)

	started := make(chan struct{})
	var cancelled atomic.Bool
	_, err = s.Register("blocking", time.Hour, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	})
	require.NoError(t, err)

	s.Start()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not start")
	}
	require.NoError(t, s.Stop())
	assert.True(t, cancelled.Load())
}
