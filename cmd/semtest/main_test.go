// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/procsema/semaphore"
	"github.com/xmidt-org/procsema/sysent"
	"github.com/xmidt-org/procsema/xmetrics"
)

// runSemtest runs the given scenario and returns every output line.
func runSemtest(t *testing.T, arguments ...string) []string {
	var output bytes.Buffer
	require.NoError(t, semtest(append([]string{"--name", "semtest-nosuch"}, arguments...), &output))
	return strings.Split(strings.TrimSpace(output.String()), "\n")
}

// statusLines filters out everything but the per-call status lines.
func statusLines(lines []string) []string {
	var status []string
	for _, l := range lines {
		if strings.Contains(l, " .... SUCCESS") || strings.Contains(l, " .... ERROR: ") {
			status = append(status, l)
		}
	}

	return status
}

func indexOf(t *testing.T, lines []string, line string) int {
	for i, l := range lines {
		if l == line {
			return i
		}
	}

	require.Failf(t, "missing line", "%q was not printed", line)
	return -1
}

func repeat(line string, n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = line
	}

	return lines
}

func testSemtestBasic(t *testing.T) {
	assert.Equal(
		t,
		[]string{
			"creating semaphore (Sem1, 0) .... SUCCESS",
			"creating semaphore (Sem1, 0) .... ERROR: EEXIST",
			"creating semaphore (" + tooLongName + ", 0) .... ERROR: ENAMETOOLONG",
			"creating semaphore (Sem_negative, -1) .... ERROR: EDOM",
			"up on semaphore (Sem1) .... SUCCESS",
			"up on semaphore (Sem_noexist) .... ERROR: ENOENT",
			"removing semaphore (Sem1) .... SUCCESS",
			"removing semaphore (Sem_noexist) .... ERROR: ENOENT",
			"removing semaphore (Sem1) .... ERROR: ENOENT",
			"up on semaphore (Sem1) .... ERROR: ENOENT",
			"up on semaphore (" + tooLongName + ") .... ERROR: ENAMETOOLONG",
		},
		statusLines(runSemtest(t, "--scenario", "basic")),
	)
}

func testSemtestInheritance(t *testing.T) {
	expected := []string{
		"creating semaphore (Sem_P, 0) .... SUCCESS",

		"creating semaphore (Sem_C1, 0) .... SUCCESS",
		"creating semaphore (Sem_P, 0) .... SUCCESS",
		"down on semaphore (Sem_random) .... ERROR: ENOENT",
		"down on semaphore (Sem_C2) .... ERROR: ENOENT",
		"up on semaphore (Sem_P) .... SUCCESS",
		"removing semaphore (Sem_P) .... SUCCESS",
		"removing semaphore (Sem_P) .... ERROR: ENOENT",
		"removing semaphore (Sem_C1) .... SUCCESS",
		"removing semaphore (Sem_C2) .... ERROR: ENOENT",

		"creating semaphore (Sem_C2, 0) .... SUCCESS",
		"removing semaphore (Sem_P) .... SUCCESS",
		"removing semaphore (Sem_C1) .... ERROR: ENOENT",
		"removing semaphore (Sem_C2) .... SUCCESS",
	}

	expected = append(expected, repeat("up on semaphore (Sem_P) .... SUCCESS", 5)...)
	expected = append(expected, repeat("down on semaphore (Sem_P) .... SUCCESS", 5)...)

	lines := runSemtest(t, "--scenario", "inheritance")
	assert.ElementsMatch(t, expected, statusLines(lines))
	assert.Less(t, indexOf(t, lines, "Child 2: END"), indexOf(t, lines, "FREE SEMAPHORE (Child 1):"))
}

func testSemtestFairness(t *testing.T) {
	expected := []string{"creating semaphore (Fair, 0) .... SUCCESS"}
	expected = append(expected, repeat("down on semaphore (Fair) .... SUCCESS", 3)...)
	expected = append(expected, repeat("up on semaphore (Fair) .... SUCCESS", 3)...)

	lines := runSemtest(t, "--scenario", "fairness")
	assert.ElementsMatch(t, expected, statusLines(lines))

	var (
		first  = indexOf(t, lines, "Child 1: completed down .... exiting")
		second = indexOf(t, lines, "Child 2: completed down .... exiting")
		third  = indexOf(t, lines, "Child 3: completed down .... exiting")
	)

	assert.Less(t, first, second)
	assert.Less(t, second, third)
}

func testSemtestExit(t *testing.T) {
	assert.Equal(
		t,
		[]string{
			"creating semaphore (Sem A, 0) .... SUCCESS",
			"creating semaphore (Sem B, 0) .... SUCCESS",
			"up on semaphore (Sem A) .... SUCCESS",
			"up on semaphore (Sem B) .... SUCCESS",
			"up on semaphore (Sem Control) .... ERROR: ENOENT",
			"up on semaphore (Sem A) .... ERROR: ENOENT",
			"up on semaphore (Sem B) .... ERROR: ENOENT",
			"up on semaphore (Sem Control) .... ERROR: ENOENT",
		},
		statusLines(runSemtest(t, "--scenario", "exit")),
	)
}

func testSemtestAll(t *testing.T) {
	var (
		assert = assert.New(t)
		lines  = runSemtest(t)
	)

	assert.Equal("=============== START SEMAPHORE TEST ===============", lines[0])
	assert.Equal("=============== END SEMAPHORE TEST =================", lines[len(lines)-1])
	for _, s := range scenarios {
		assert.Contains(lines, "_________________ END "+s.title+" _________________")
	}
}

func testSemtestUnknownScenario(t *testing.T) {
	var output bytes.Buffer
	err := semtest([]string{"--name", "semtest-nosuch", "--scenario", "nosuch"}, &output)
	assert.ErrorIs(t, err, errUnknownScenario)
	assert.Zero(t, output.Len())
}

func testSemtestBadFlag(t *testing.T) {
	var output bytes.Buffer
	assert.Error(t, semtest([]string{"--nosuch"}, &output))
}

func testSemtestStrictConfiguration(t *testing.T) {
	var (
		output bytes.Buffer
		file   = filepath.Join(t.TempDir(), "semtest.yaml")
	)

	require.NoError(t, os.WriteFile(file, []byte("semaphores:\n  maxWaitres: 3\n"), 0600))
	assert.Error(t, semtest([]string{"--file", file, "--scenario", "basic"}, &output))
}

func testSemtestConfiguredLimit(t *testing.T) {
	var (
		output bytes.Buffer
		file   = filepath.Join(t.TempDir(), "semtest.yaml")
	)

	require.NoError(t, os.WriteFile(file, []byte("semaphores:\n  maxSemaphores: 1\n"), 0600))
	require.NoError(t, semtest([]string{"--file", file, "--scenario", "exit"}, &output))
	assert.Contains(t, output.String(), "creating semaphore (Sem B, 0) .... ERROR: ENOMEM")
}

func TestSemtest(t *testing.T) {
	t.Run("Basic", testSemtestBasic)
	t.Run("Inheritance", testSemtestInheritance)
	t.Run("Fairness", testSemtestFairness)
	t.Run("Exit", testSemtestExit)
	t.Run("All", testSemtestAll)
	t.Run("UnknownScenario", testSemtestUnknownScenario)
	t.Run("BadFlag", testSemtestBadFlag)
	t.Run("StrictConfiguration", testSemtestStrictConfiguration)
	t.Run("ConfiguredLimit", testSemtestConfiguredLimit)
}

func TestMetricsHandler(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	r, err := xmetrics.NewRegistry(
		&xmetrics.Options{DisableGoCollector: true, DisableProcessCollector: true},
		semaphore.Metrics,
		sysent.Metrics,
	)

	require.NoError(err)
	sysent.NewMeasures(r).Calls.With(sysent.CallLabel, sysent.UpSemaphoreName, sysent.ResultLabel, sysent.SuccessResult).Add(1)

	var (
		handler  = metricsHandler(r)
		response = httptest.NewRecorder()
	)

	handler.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(http.StatusOK, response.Code)
	assert.Contains(response.Body.String(), xmetrics.DefaultNamespace+"_"+xmetrics.DefaultSubsystem+"_"+sysent.SyscallCounter)

	response = httptest.NewRecorder()
	handler.ServeHTTP(response, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	assert.Equal(http.StatusMethodNotAllowed, response.Code)
}
