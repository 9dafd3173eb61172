// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package usermem models a process's user address space and the bounded copy boundary
between untrusted user memory and kernel-side buffers.

Every byte read through this package may fault.  Callers copy what they need into
their own buffers with CopyInString and never retain references into a Space.
*/
package usermem
