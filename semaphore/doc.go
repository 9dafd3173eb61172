// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package semaphore implements named counting semaphores scoped to a process tree.

A semaphore belongs to the process that allocated it.  Its name is visible to that
process and, through the ancestry walk performed by Lookup, to descendants that are
marked inherited.  A process may shadow an ancestor's semaphore by allocating its own
semaphore with the same name.

Down decrements the count and parks the calling process on itself when the result is
negative.  Up increments the count and resumes the longest waiting process, so waiters
are served strictly in the order they blocked.  Free drains the semaphore's lock and
resumes every remaining waiter with ErrRemoved.
*/
package semaphore
