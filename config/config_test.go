// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tochemey/exo/actor"
	gerrors "github.com/tochemey/exo/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParse(t *testing.T) {
	t.Run("With defaults", func(t *testing.T) {
		config, err := Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, Default(), config)
	})
	t.Run("With full configuration", func(t *testing.T) {
		config, err := Parse([]byte(`
logLevel: debug
portCapacity: 64
spawnRetries: 5
spawnTimeout: 2s
journal:
  kind: bolt
  path: /tmp/exo.db
  openRetries: 4
  openTimeout: 500ms
`))
		require.NoError(t, err)
		assert.Equal(t, "debug", config.LogLevel)
		assert.Equal(t, 64, config.PortCapacity)
		assert.Equal(t, 5, config.SpawnRetries)
		assert.Equal(t, 2*time.Second, config.SpawnTimeout)
		assert.Equal(t, Journal{Kind: BoltJournal, Path: "/tmp/exo.db", OpenRetries: 4, OpenTimeout: 500 * time.Millisecond}, config.Journal)
	})

	invalid := map[string]string{
		"malformed":         "logLevel: [",
		"unknown level":     "logLevel: loud",
		"negative capacity": "portCapacity: -1",
		"zero retries":      "spawnRetries: 0",
		"unknown journal":   "journal: {kind: s3}",
		"bolt without path": "journal: {kind: bolt}",
	}
	for name, data := range invalid {
		t.Run("With "+name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.ErrorIs(t, err, gerrors.ErrInvalidConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("With file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "exo.yaml")
		require.NoError(t, os.WriteFile(path, []byte("portCapacity: 8\njournal:\n  kind: memory\n"), 0o600))

		config, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 8, config.PortCapacity)
		assert.Equal(t, MemoryJournal, config.Journal.Kind)
	})
	t.Run("With missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("Without journal", func(t *testing.T) {
		opts, err := Default().Options(ctx)
		require.NoError(t, err)

		hypervisor, err := actor.New(ctx, opts...)
		require.NoError(t, err)
		assert.Nil(t, hypervisor.Journal())
		require.NoError(t, hypervisor.Stop(ctx))
	})
	t.Run("With memory journal", func(t *testing.T) {
		config := Default()
		config.Journal.Kind = MemoryJournal
		opts, err := config.Options(ctx)
		require.NoError(t, err)

		hypervisor, err := actor.New(ctx, opts...)
		require.NoError(t, err)
		assert.NotNil(t, hypervisor.Journal())
		require.NoError(t, hypervisor.Stop(ctx))
	})
	t.Run("With bolt journal", func(t *testing.T) {
		config := Default()
		config.LogLevel = "error"
		config.Journal = Journal{Kind: BoltJournal, Path: filepath.Join(t.TempDir(), "journal.db"), OpenRetries: 1}
		opts, err := config.Options(ctx)
		require.NoError(t, err)

		hypervisor, err := actor.New(ctx, opts...)
		require.NoError(t, err)
		require.NotNil(t, hypervisor.Journal())
		require.NoError(t, hypervisor.Stop(ctx))

		// the file is released on stop
		opts, err = config.Options(ctx)
		require.NoError(t, err)
		hypervisor, err = actor.New(ctx, opts...)
		require.NoError(t, err)
		require.NoError(t, hypervisor.Stop(ctx))
	})
	t.Run("With invalid configuration", func(t *testing.T) {
		config := Default()
		config.PortCapacity = -2
		_, err := config.Options(ctx)
		assert.ErrorIs(t, err, gerrors.ErrInvalidConfig)
	})
}
