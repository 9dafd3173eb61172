// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package proc is the host process abstraction: a table of processes linked to their parents,
fork and exit with hooks for subsystems that keep per-process state, and a sleep/wakeup
facility in which every process parks on its own identity.
*/
package proc
