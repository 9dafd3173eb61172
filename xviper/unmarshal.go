// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xviper

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Strict is a decoder option that fails decoding when the configuration contains keys
// the target struct has no field for.
func Strict(dc *mapstructure.DecoderConfig) {
	dc.ErrorUnused = true
}

// KeyUnmarshaler is the subset of Viper behavior used to decode a configuration subtree.
type KeyUnmarshaler interface {
	UnmarshalKey(string, interface{}, ...viper.DecoderConfigOption) error
}

// UnmarshalKey strictly decodes the subtree under key into target.  A missing key leaves
// target untouched.
func UnmarshalKey(u KeyUnmarshaler, key string, target interface{}) error {
	if err := u.UnmarshalKey(key, target, Strict); err != nil {
		return fmt.Errorf("unable to unmarshal configuration key %s: %w", key, err)
	}

	return nil
}

type defaulter interface {
	SetDefault(string, interface{})
}

// Defaults is a set of configuration defaults, keyed by dotted configuration key.
type Defaults map[string]interface{}

func ApplyDefaults(d defaulter, v Defaults) {
	for key, value := range v {
		d.SetDefault(key, value)
	}
}
