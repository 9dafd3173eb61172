// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/provider"
	"github.com/xmidt-org/procsema/xmetrics"
)

const (
	SemaphoreCount = "semaphore_count"
	WaiterCount    = "semaphore_waiters"
)

// Metrics returns the metrics used by this package.
func Metrics() []xmetrics.Metric {
	return []xmetrics.Metric{
		{
			Name: SemaphoreCount,
			Type: xmetrics.GaugeType,
			Help: "The number of allocated semaphores",
		},
		{
			Name: WaiterCount,
			Type: xmetrics.GaugeType,
			Help: "The number of processes blocked in down",
		},
	}
}

// Measures is the set of metrics a Subsystem updates.
type Measures struct {
	Semaphores metrics.Gauge
	Waiters    metrics.Gauge
}

// NewMeasures produces Measures from a go-kit provider.  If p is nil, metrics are discarded.
func NewMeasures(p provider.Provider) *Measures {
	if p == nil {
		return discardMeasures()
	}

	return &Measures{
		Semaphores: p.NewGauge(SemaphoreCount),
		Waiters:    p.NewGauge(WaiterCount),
	}
}

func discardMeasures() *Measures {
	return &Measures{
		Semaphores: discard.NewGauge(),
		Waiters:    discard.NewGauge(),
	}
}
