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

	// Метрики заявок
	ApplicationsCreated   int64
	ApplicationsSubmitted int64
	ApplicationsApproved  int64
	ApplicationsRejected  int64
	LastApplicationAt     time.Time

	// Метрики расчетов
	AssessmentsPerformed int64
	WorkerCalculations   int64

	// Метрики OTP
	OTPIssued   int64
	OTPVerified int64
	OTPFailed   int64

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

// RecordApplicationEvent записывает метрики события заявки
func (m *Metrics) RecordApplicationEvent(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastApplicationAt = time.Now()

	switch event {
	case "create":
		m.ApplicationsCreated++
	case "submit":
		m.ApplicationsSubmitted++
	case "approve":
		m.ApplicationsApproved++
	case "reject":
		m.ApplicationsRejected++
	}
}

// RecordAssessment записывает метрики расчета платежеспособности
func (m *Metrics) RecordAssessment() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AssessmentsPerformed++
}

// RecordWorkerCalculation записывает метрики быстрого расчета займа
func (m *Metrics) RecordWorkerCalculation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WorkerCalculations++
}

// RecordOTP записывает метрики операций с одноразовыми кодами
func (m *Metrics) RecordOTP(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch event {
	case "issue":
		m.OTPIssued++
	case "verify":
		m.OTPVerified++
	case "fail":
		m.OTPFailed++
	}
}

// RecordError записывает метрики ошибки
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordErrorLocked(err)
}

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

	return map[string]interface{}{
		"total_requests":         m.TotalRequests,
		"failed_requests":        m.FailedRequests,
		"average_latency":        m.AverageLatency,
		"applications_created":   m.ApplicationsCreated,
		"applications_submitted": m.ApplicationsSubmitted,
		"applications_approved":  m.ApplicationsApproved,
		"applications_rejected":  m.ApplicationsRejected,
		"assessments_performed":  m.AssessmentsPerformed,
		"worker_calculations":    m.WorkerCalculations,
		"otp_issued":             m.OTPIssued,
		"otp_verified":           m.OTPVerified,
		"otp_failed":             m.OTPFailed,
		"error_count":            m.ErrorCount,
		"last_error_time":        m.LastErrorTime,
		"error_types":            m.ErrorTypes,
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
	m.ApplicationsCreated = 0
	m.ApplicationsSubmitted = 0
	m.ApplicationsApproved = 0
	m.ApplicationsRejected = 0
	m.AssessmentsPerformed = 0
	m.WorkerCalculations = 0
	m.OTPIssued = 0
	m.OTPVerified = 0
	m.OTPFailed = 0
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}
