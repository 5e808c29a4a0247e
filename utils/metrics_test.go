package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSingleton(t *testing.T) {
	assert.Same(t, GetMetrics(), GetMetrics())
}

func TestMetricsRecordFinanceOperation(t *testing.T) {
	m := GetMetrics()
	m.ResetMetrics()

	m.RecordFinanceOperation("transaction_create", nil)
	m.RecordFinanceOperation("goal_deposit", nil)
	m.RecordFinanceOperation("goal_deposit", nil)
	m.RecordFinanceOperation("goal_withdraw", errors.New("откат"))

	snapshot := m.GetMetricsSnapshot()
	assert.Equal(t, int64(1), snapshot["transactions_created"])
	assert.Equal(t, int64(2), snapshot["goal_deposits"])
	assert.Equal(t, int64(1), snapshot["goal_withdrawals"])
	assert.Equal(t, int64(1), snapshot["error_count"])
}

func TestMetricsRecordRequest(t *testing.T) {
	m := GetMetrics()
	m.ResetMetrics()

	m.RecordRequest(10*time.Millisecond, nil)
	m.RecordRequest(30*time.Millisecond, errors.New("таймаут"))

	snapshot := m.GetMetricsSnapshot()
	assert.Equal(t, int64(2), snapshot["total_requests"])
	assert.Equal(t, int64(1), snapshot["failed_requests"])
	assert.Equal(t, 20*time.Millisecond, snapshot["average_latency"])
}
