// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package logging builds the zap loggers used throughout procsema from configuration.
*/
package logging

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// LoggingKey is the Viper subkey under which logging should be stored.
	// FromViper *does not* assume this key.
	LoggingKey = "log"
)

// Sub returns the standard child Viper, using LoggingKey, for this package.
// If passed nil, this function returns nil.
func Sub(v *viper.Viper) *viper.Viper {
	if v != nil {
		return v.Sub(LoggingKey)
	}

	return nil
}

// FromViper produces an Options from a (possibly nil) Viper instance.
// Callers should use FromViper(Sub(v)) if the standard subkey is desired.
func FromViper(v *viper.Viper) (*Options, error) {
	o := new(Options)
	if v != nil {
		if err := v.Unmarshal(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// New creates a zap Logger from a set of options.  A nil Options is allowed and produces
// a console logger on stdout at the ERROR level.
func New(o *Options, zo ...zap.Option) *zap.Logger {
	core := zapcore.NewCore(o.encoder(), o.output(), zap.NewAtomicLevelAt(o.level()))
	return zap.New(core, append([]zap.Option{zap.AddCaller()}, zo...)...)
}

// NewFromViper reads Options from the LoggingKey subtree of v and builds a Logger.
func NewFromViper(v *viper.Viper, zo ...zap.Option) (*zap.Logger, error) {
	o, err := FromViper(Sub(v))
	if err != nil {
		return nil, err
	}

	return New(o, zo...), nil
}
