// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package sysent

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/provider"
	"github.com/xmidt-org/procsema/xmetrics"
)

const (
	SyscallCounter = "semaphore_syscalls"

	CallLabel   = "call"
	ResultLabel = "result"

	SuccessResult = "ok"
)

// Metrics returns the metrics used by this package.
func Metrics() []xmetrics.Metric {
	return []xmetrics.Metric{
		{
			Name:       SyscallCounter,
			Type:       xmetrics.CounterType,
			Help:       "Semaphore system calls by call and result",
			LabelNames: []string{CallLabel, ResultLabel},
		},
	}
}

// Measures is the set of metrics a Table updates.
type Measures struct {
	Calls metrics.Counter
}

// NewMeasures produces Measures from a go-kit provider.  If p is nil, metrics are discarded.
func NewMeasures(p provider.Provider) *Measures {
	if p == nil {
		return &Measures{Calls: discard.NewCounter()}
	}

	return &Measures{
		Calls: p.NewCounter(SyscallCounter),
	}
}
