// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xviper

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultNameFlag = "name"
	DefaultFileFlag = "file"
)

// Option is a configuration step applied to a Viper instance by New or Configure.
type Option func(*viper.Viper) error

func AddConfigPaths(paths ...string) Option {
	return func(v *viper.Viper) error {
		for _, p := range paths {
			v.AddConfigPath(p)
		}

		return nil
	}
}

// SetEnvPrefix sets the environment prefix.  Nested keys are looked up with their
// dots replaced by underscores, e.g. PREFIX_SEMAPHORES_MAXWAITERS.
func SetEnvPrefix(prefix string) Option {
	return func(v *viper.Viper) error {
		v.SetEnvPrefix(prefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		return nil
	}
}

func SetConfigName(name string) Option {
	return func(v *viper.Viper) error {
		v.SetConfigName(name)
		return nil
	}
}

func AutomaticEnv(v *viper.Viper) error {
	v.AutomaticEnv()
	return nil
}

func BindPFlags(fs *pflag.FlagSet) Option {
	return func(v *viper.Viper) error {
		return v.BindPFlags(fs)
	}
}

func WithDefaults(d Defaults) Option {
	return func(v *viper.Viper) error {
		ApplyDefaults(v, d)
		return nil
	}
}

// ReadInConfig reads the configuration file.  When required is false, a configuration
// file that cannot be found is not an error.
func ReadInConfig(required bool) Option {
	return func(v *viper.Viper) error {
		err := v.ReadInConfig()
		var notFound viper.ConfigFileNotFoundError
		if !required && errors.As(err, &notFound) {
			return nil
		}

		return err
	}
}

// StdOptions is the standard setup for an application: the *nix configuration paths,
// an environment prefix equal to the upper-cased application name, flag bindings and
// a configuration file chosen by the --file or --name flags.  If --file is given, the
// file must exist.
func StdOptions(applicationName string, fs *pflag.FlagSet) Option {
	return func(v *viper.Viper) error {
		AddStandardConfigPaths(v, applicationName)
		v.SetConfigName(applicationName)

		err := SetEnvPrefix(strings.ToUpper(applicationName))(v)
		if err == nil {
			err = AutomaticEnv(v)
		}

		if err == nil {
			err = BindPFlags(fs)(v)
		}

		if err == nil {
			required := BindConfigFile(v, fs, DefaultFileFlag)
			if !required {
				BindConfigName(v, fs, DefaultNameFlag)
			}

			err = ReadInConfig(required)(v)
		}

		return err
	}
}

func New(o ...Option) (*viper.Viper, error) {
	return Configure(viper.New(), o...)
}

func Configure(v *viper.Viper, o ...Option) (*viper.Viper, error) {
	if v != nil {
		for _, f := range o {
			if err := f(v); err != nil {
				return nil, err
			}
		}
	}

	return v, nil
}
