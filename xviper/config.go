// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xviper

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Configer is the subset of Viper behavior dealing with configuration paths and locations.
// *viper.Viper implements this interface.
type Configer interface {
	AddConfigPath(string)
	SetConfigName(string)
	SetConfigFile(string)
}

// AddStandardConfigPaths adds the standard *nix-style configuration paths, searched in order:
// /etc/<applicationName>, the hidden directory $HOME/.<applicationName>, and the working directory.
func AddStandardConfigPaths(c Configer, applicationName string) {
	c.AddConfigPath(fmt.Sprintf("/etc/%s", applicationName))
	c.AddConfigPath(fmt.Sprintf("$HOME/.%s", applicationName))
	c.AddConfigPath(".")
}

// FlagLookup is the behavior expected of a pflag.FlagSet to lookup individual flags by longhand name.
type FlagLookup interface {
	Lookup(string) *pflag.Flag
}

// flagValue returns the value of the named flag, or false if the flag is not defined
// or was left empty.
func flagValue(fl FlagLookup, flag string) (string, bool) {
	f := fl.Lookup(flag)
	if f == nil {
		return "", false
	}

	value := f.Value.String()
	return value, len(value) > 0
}

// BindConfigName extracts the name of the Viper configuration file from a flagset.  If the given flag
// is set, its value is passed to c.SetConfigName and this function returns true.  If the flag was missing
// or empty, this function returns false and the supplied Configer is not changed.
//
// This function is useful to allow the name of the file that Viper searches for on the standard
// paths to be specified or overridden from the command line, e.g. semtest's --name flag.
func BindConfigName(c Configer, fl FlagLookup, flag string) bool {
	configName, ok := flagValue(fl, flag)
	if ok {
		c.SetConfigName(configName)
	}

	return ok
}

// BindConfigFile extracts the path of the Viper configuration file from a flagset.  If the given flag
// is set, its value is passed to c.SetConfigFile and this function returns true.  If the flag was missing
// or empty, this function returns false and the supplied Configer is not changed.
//
// This function is useful to allow the fully-qualified path of the file that Viper uses to be specified
// or overridden from the command line, e.g. semtest's --file flag.  A file bound this way bypasses the
// standard paths entirely.
func BindConfigFile(c Configer, fl FlagLookup, flag string) bool {
	configFile, ok := flagValue(fl, flag)
	if ok {
		c.SetConfigFile(configFile)
	}

	return ok
}

// BindConfig attempts first to bind the configuration file via BindConfigFile.  Failing that, it
// attempts to bind the configuration name via BindConfigName.  If either succeeds, this function
// returns true.  Otherwise, if no binding took place, this function returns false and Viper falls
// back to searching the standard paths for the application's default name.
func BindConfig(c Configer, fl FlagLookup, fileFlag, nameFlag string) bool {
	return BindConfigFile(c, fl, fileFlag) || BindConfigName(c, fl, nameFlag)
}
