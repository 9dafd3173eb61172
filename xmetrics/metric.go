// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xmetrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	CounterType   = "counter"
	GaugeType     = "gauge"
	HistogramType = "histogram"
)

var errNoName = errors.New("A name is required for a metric")

// Module is a function type that returns prebuilt metrics.
type Module func() []Metric

// Metric describes a single metric that will be preregistered.  This type loosely
// corresponds with Prometheus' Opts struct.
type Metric struct {
	// Name is the required name of this metric.
	Name string

	// Type is the required type of metric.  This value must be one of the constants defined in this package.
	Type string

	// Namespace is the namespace of this metric.  The enclosing Options' Namespace is used if this is not supplied.
	Namespace string

	// Subsystem is the subsystem of this metric.  The enclosing Options' Subsystem is used if this is not supplied.
	Subsystem string

	// Help is the help string for this metric.  If not supplied, the metric's name is used
	Help string

	// ConstLabels are the Prometheus ConstLabels for this metric.  This field is optional.
	ConstLabels map[string]string

	// LabelNames are the Prometheus label names for this metric.  This field is optional.
	LabelNames []string

	// Buckets describes the observation buckets for a histogram.  This field is ignored for other metric types.
	Buckets []float64
}

// NewCollector creates a Prometheus metric from a Metric descriptor, using the given
// namespace and subsystem when the metric does not define its own.
func NewCollector(m Metric, namespace, subsystem string) (prometheus.Collector, error) {
	if len(m.Name) == 0 {
		return nil, errNoName
	}

	if len(m.Namespace) > 0 {
		namespace = m.Namespace
	}

	if len(m.Subsystem) > 0 {
		subsystem = m.Subsystem
	}

	help := m.Help
	if len(help) == 0 {
		help = m.Name
	}

	switch m.Type {
	case CounterType:
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        m.Name,
			Help:        help,
			ConstLabels: prometheus.Labels(m.ConstLabels),
		}, m.LabelNames), nil

	case GaugeType:
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        m.Name,
			Help:        help,
			ConstLabels: prometheus.Labels(m.ConstLabels),
		}, m.LabelNames), nil

	case HistogramType:
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        m.Name,
			Help:        help,
			Buckets:     m.Buckets,
			ConstLabels: prometheus.Labels(m.ConstLabels),
		}, m.LabelNames), nil

	default:
		return nil, fmt.Errorf("Unsupported metric type: %s", m.Type)
	}
}
