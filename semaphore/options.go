// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

const (
	// DefaultMaxSemaphores is the system-wide limit on allocated semaphores.
	DefaultMaxSemaphores = 64

	// OptionsKey is the configuration subkey under which Options are stored.
	OptionsKey = "semaphores"
)

// Options is the externally configurable part of a Subsystem.  Zero limits mean unlimited.
type Options struct {
	// MaxSemaphores is the limit on semaphores allocated across all processes.
	MaxSemaphores int `json:"maxSemaphores"`

	// MaxWaiters is the limit on processes blocked on a single semaphore.
	MaxWaiters int `json:"maxWaiters"`

	// OwnerOnlyFree restricts Free to semaphores owned by the caller.  By default any
	// semaphore visible through the ancestry walk may be freed.
	OwnerOnlyFree bool `json:"ownerOnlyFree"`
}

// DefaultOptions returns the Options used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaxSemaphores: DefaultMaxSemaphores,
	}
}

// Option configures a Subsystem.
type Option func(*Subsystem)

// WithOptions applies configured limits and policies.
func WithOptions(o Options) Option {
	return func(s *Subsystem) {
		s.options = o
	}
}

// WithLogger sets the Subsystem's logger.  If nil, sallust.Default() is used.
func WithLogger(l *zap.Logger) Option {
	return func(s *Subsystem) {
		if l == nil {
			s.logger = sallust.Default()
		} else {
			s.logger = l
		}
	}
}

// WithMeasures sets the Subsystem's metrics.  If nil, metrics are discarded.
func WithMeasures(m *Measures) Option {
	return func(s *Subsystem) {
		if m == nil {
			s.measures = discardMeasures()
		} else {
			s.measures = m
		}
	}
}
