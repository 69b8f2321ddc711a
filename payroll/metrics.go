package payroll

import "github.com/prometheus/client_golang/prometheus"

var payslipsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "payroll_payslips_total",
		Help: "How many payslips were computed, partitioned by country.",
	},
	[]string{"country"},
)

var runFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "payroll_run_failures_total",
		Help: "How many payroll runs were aborted, partitioned by country.",
	},
	[]string{"country"},
)

// Collectors returns the package's metrics for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{payslipsTotal, runFailures}
}
