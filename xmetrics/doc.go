// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package xmetrics provides configurability for Prometheus-based metrics.  The more general go-kit interfaces
are used where possible, so that packages which only record metrics depend on provider.Provider rather
than on Prometheus.
*/
package xmetrics
