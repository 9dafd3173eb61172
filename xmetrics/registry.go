// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xmetrics

import (
	"fmt"
	"sync"

	"github.com/go-kit/kit/metrics"
	gokitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/go-kit/kit/metrics/provider"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is a Prometheus registry and a go-kit provider.Provider all in one.
//
// Metrics preregistered through modules keep their label names, so the go-kit wrappers
// returned for them must be curried with With before use.  Any other name produces an
// unlabeled metric that is cached and returned by subsequent calls.
type Registry interface {
	provider.Provider
	prometheus.Gatherer
	prometheus.Registerer
}

type registry struct {
	*prometheus.Registry

	namespace string
	subsystem string

	lock  sync.Mutex
	cache map[string]prometheus.Collector
}

// NewRegistry creates a Registry and preregisters every metric returned by the modules.
// Two metrics with the same name produce an error.
func NewRegistry(o *Options, modules ...Module) (Registry, error) {
	r := &registry{
		Registry:  o.registry(),
		namespace: o.namespace(),
		subsystem: o.subsystem(),
		cache:     make(map[string]prometheus.Collector),
	}

	for _, module := range modules {
		for _, m := range module() {
			if _, ok := r.cache[m.Name]; ok {
				return nil, fmt.Errorf("Duplicate metric %s", m.Name)
			}

			c, err := NewCollector(m, r.namespace, r.subsystem)
			if err != nil {
				return nil, err
			}

			if err := r.Registry.Register(c); err != nil {
				return nil, fmt.Errorf("Error while preregistering metric %s: %s", m.Name, err)
			}

			r.cache[m.Name] = c
		}
	}

	return r, nil
}

// collector returns the cached collector for name, creating an unlabeled one of type t if necessary.
func (r *registry) collector(name, t string) prometheus.Collector {
	defer r.lock.Unlock()
	r.lock.Lock()

	if existing, ok := r.cache[name]; ok {
		return existing
	}

	c, err := NewCollector(Metric{Name: name, Type: t}, r.namespace, r.subsystem)
	if err != nil {
		panic(err)
	}

	if err := r.Registry.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			c = already.ExistingCollector
		} else {
			panic(err)
		}
	}

	r.cache[name] = c
	return c
}

func (r *registry) NewCounter(name string) metrics.Counter {
	if vec, ok := r.collector(name, CounterType).(*prometheus.CounterVec); ok {
		return gokitprometheus.NewCounter(vec)
	}

	panic(fmt.Errorf("The metric %s is not a counter", name))
}

func (r *registry) NewGauge(name string) metrics.Gauge {
	if vec, ok := r.collector(name, GaugeType).(*prometheus.GaugeVec); ok {
		return gokitprometheus.NewGauge(vec)
	}

	panic(fmt.Errorf("The metric %s is not a gauge", name))
}

func (r *registry) NewHistogram(name string, _ int) metrics.Histogram {
	if vec, ok := r.collector(name, HistogramType).(*prometheus.HistogramVec); ok {
		return gokitprometheus.NewHistogram(vec)
	}

	panic(fmt.Errorf("The metric %s is not a histogram", name))
}

func (r *registry) Stop() {
}
