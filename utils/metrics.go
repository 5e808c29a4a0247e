package utils

import (
	"sync"
	"time"
)

// Metrics содержит метрики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики запросов
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Метрики финансовых операций
	TransactionsCreated int64
	TransactionsUpdated int64
	TransactionsDeleted int64
	GoalDeposits        int64
	GoalWithdrawals     int64
	GoalsDeleted        int64
	LastFinanceOp       time.Time

	// Метрики ошибок
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics возвращает экземпляр метрик
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			ErrorTypes: make(map[string]int64),
		}
	})
	return metrics
}

// RecordRequest записывает метрики запроса
func (m *Metrics) RecordRequest(duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if err != nil {
		m.FailedRequests++
		m.recordErrorLocked(err)
	}
}

// RecordFinanceOperation записывает метрики финансовой операции
func (m *Metrics) RecordFinanceOperation(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastFinanceOp = time.Now()

	switch operation {
	case "transaction_create":
		m.TransactionsCreated++
	case "transaction_update":
		m.TransactionsUpdated++
	case "transaction_delete":
		m.TransactionsDeleted++
	case "goal_deposit":
		m.GoalDeposits++
	case "goal_withdraw":
		m.GoalWithdrawals++
	case "goal_delete":
		m.GoalsDeleted++
	}

	if err != nil {
		m.recordErrorLocked(err)
	}
}

// RecordError записывает метрики ошибки
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordErrorLocked(err)
}

// recordErrorLocked обновляет счетчики ошибок, mu уже захвачен
func (m *Metrics) recordErrorLocked(err error) {
	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}

	m.ErrorTypes[errorType]++
}

// GetMetricsSnapshot возвращает снимок текущих метрик
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	errorTypes := make(map[string]int64, len(m.ErrorTypes))
	for k, v := range m.ErrorTypes {
		errorTypes[k] = v
	}

	return map[string]interface{}{
		"total_requests":       m.TotalRequests,
		"failed_requests":      m.FailedRequests,
		"average_latency":      m.AverageLatency,
		"transactions_created": m.TransactionsCreated,
		"transactions_updated": m.TransactionsUpdated,
		"transactions_deleted": m.TransactionsDeleted,
		"goal_deposits":        m.GoalDeposits,
		"goal_withdrawals":     m.GoalWithdrawals,
		"goals_deleted":        m.GoalsDeleted,
		"error_count":          m.ErrorCount,
		"last_error_time":      m.LastErrorTime,
		"error_types":          errorTypes,
	}
}

// ResetMetrics сбрасывает все метрики
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.RequestLatency = 0
	m.AverageLatency = 0
	m.TransactionsCreated = 0
	m.TransactionsUpdated = 0
	m.TransactionsDeleted = 0
	m.GoalDeposits = 0
	m.GoalWithdrawals = 0
	m.GoalsDeleted = 0
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}
