package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	LedgerOperationTotal       = "ledger_operation_total"
	VaultTransferFailure       = "vault_transfer_failure"
	VaultTransferOrphaned      = "vault_transfer_orphaned"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"method", "status_code"}),
		LedgerOperationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: LedgerOperationTotal,
			Help: "Count of all mutating ledger operations",
		}, []string{"operation", "result"}),
		VaultTransferFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: VaultTransferFailure,
			Help: "Count of all failed vault transfers",
		}, []string{"method"}),
		VaultTransferOrphaned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: VaultTransferOrphaned,
			Help: "Count of all settled vault transfers of rolled back operations",
		}, []string{"operation"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"method", "status_code"}),
	}
)
