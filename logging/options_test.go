// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func testOptionsEncoder(t *testing.T) {
	assert := assert.New(t)

	for _, o := range []*Options{nil, new(Options), {JSON: true}, {JSON: false}} {
		assert.NotNil(o.encoder())
	}
}

func testOptionsOutput(t *testing.T) {
	assert := assert.New(t)

	for _, o := range []*Options{nil, {File: StdoutFile}} {
		output := o.output()
		assert.NotNil(output)
		assert.NotPanics(func() {
			_, err := output.Write([]byte("expected output: this shouldn't panic\n"))
			assert.NoError(err)
		})
	}

	rolling := &Options{
		File:       "foobar.log",
		MaxSize:    689328,
		MaxAge:     9,
		MaxBackups: 454,
	}

	assert.NotNil(rolling.output())
}

func testOptionsLevel(t *testing.T) {
	testData := []struct {
		options  *Options
		expected zapcore.Level
	}{
		{nil, zapcore.ErrorLevel},
		{new(Options), zapcore.ErrorLevel},
		{&Options{Level: "nosuch"}, zapcore.ErrorLevel},
		{&Options{Level: "debug"}, zapcore.DebugLevel},
		{&Options{Level: "INFO"}, zapcore.InfoLevel},
		{&Options{Level: "Warn"}, zapcore.WarnLevel},
	}

	for _, record := range testData {
		assert.Equal(t, record.expected, record.options.level())
	}
}

func TestOptions(t *testing.T) {
	t.Run("Encoder", testOptionsEncoder)
	t.Run("Output", testOptionsOutput)
	t.Run("Level", testOptionsLevel)
}
