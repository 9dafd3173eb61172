// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package xviper builds the Viper instance procsema is configured from.

Configuration comes, in increasing order of precedence, from defaults, an optional
configuration file, the environment and command line flags.  Subsystem options are
decoded with UnmarshalKey, which rejects keys the target struct does not know about.
*/
package xviper
