// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xviper

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	var (
		assert        = assert.New(t)
		expectedError = errors.New("expected")
		calls         []string
	)

	v, err := Configure(nil, func(*viper.Viper) error {
		calls = append(calls, "nil")
		return nil
	})

	assert.Nil(v)
	assert.NoError(err)
	assert.Empty(calls)

	v, err = New(
		func(*viper.Viper) error {
			calls = append(calls, "first")
			return nil
		},
		func(*viper.Viper) error {
			calls = append(calls, "second")
			return expectedError
		},
		func(*viper.Viper) error {
			calls = append(calls, "third")
			return nil
		},
	)

	assert.Nil(v)
	assert.Equal(expectedError, err)
	assert.Equal([]string{"first", "second"}, calls)
}

func testStdOptionsFile(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		file    = filepath.Join(t.TempDir(), "procsema.yaml")
	)

	require.NoError(os.WriteFile(file, []byte("semaphores:\n  maxWaiters: 7\nlog:\n  level: DEBUG\n"), 0600))
	t.Setenv("PROCSEMATEST_LOG_LEVEL", "INFO")

	v, err := New(
		WithDefaults(Defaults{"semaphores.maxSemaphores": 64}),
		StdOptions("procsematest", newTestFlagSet(t, "--file", file)),
	)

	require.NoError(err)
	require.NotNil(v)
	assert.Equal(7, v.GetInt("semaphores.maxWaiters"))
	assert.Equal(64, v.GetInt("semaphores.maxSemaphores"))
	assert.Equal("INFO", v.GetString("log.level"))
	assert.Equal(file, v.GetString(DefaultFileFlag))
}

func testStdOptionsMissingFile(t *testing.T) {
	var (
		assert = assert.New(t)
		file   = filepath.Join(t.TempDir(), "nosuch.yaml")
	)

	v, err := New(StdOptions("procsematest", newTestFlagSet(t, "--file", file)))
	assert.Nil(v)
	assert.Error(err)
}

func testStdOptionsNoFile(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	v, err := New(StdOptions("procsematest", newTestFlagSet(t, "--name", "nosuch")))
	require.NoError(err)
	require.NotNil(v)
	assert.Empty(v.ConfigFileUsed())
}

func TestStdOptions(t *testing.T) {
	t.Run("File", testStdOptionsFile)
	t.Run("MissingFile", testStdOptionsMissingFile)
	t.Run("NoFile", testStdOptionsNoFile)
}
