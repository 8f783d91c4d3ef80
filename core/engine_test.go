/*
 * Copyright (C) 2025 Wallet Foundation community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package core

import (
	"errors"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEngine struct {
	name       string
	stopped    *[]string
	configured bool
	startErr   error
}

func (t *testEngine) Name() string {
	return t.name
}

func (t *testEngine) Configure(_ ServerConfig) error {
	t.configured = true
	return nil
}

func (t *testEngine) Start() error {
	if t.startErr != nil {
		return t.startErr
	}
	*t.stopped = append(*t.stopped, "start:"+t.name)
	return nil
}

func (t *testEngine) Shutdown() error {
	*t.stopped = append(*t.stopped, "stop:"+t.name)
	return nil
}

func (t *testEngine) Routes(_ EchoRouter) {}

func TestSystem_Lifecycle(t *testing.T) {
	t.Run("ok - engines start in order and shut down in reverse", func(t *testing.T) {
		var calls []string
		system := NewSystem()
		system.Config.Datadir = t.TempDir()
		first := &testEngine{name: "first", stopped: &calls}
		second := &testEngine{name: "second", stopped: &calls}
		system.RegisterEngine(first)
		system.RegisterEngine(second)

		require.NoError(t, system.Configure())
		require.NoError(t, system.Start())
		require.NoError(t, system.Shutdown())

		assert.True(t, first.configured)
		assert.True(t, second.configured)
		assert.Equal(t, []string{"start:first", "start:second", "stop:second", "stop:first"}, calls)
	})
	t.Run("ok - routable engines are collected", func(t *testing.T) {
		var calls []string
		system := NewSystem()
		system.RegisterEngine(&testEngine{name: "routed", stopped: &calls})

		assert.Len(t, system.Routers, 1)
	})
	t.Run("error - start failure is returned", func(t *testing.T) {
		var calls []string
		system := NewSystem()
		system.RegisterEngine(&testEngine{name: "broken", stopped: &calls, startErr: errors.New("failed")})

		assert.EqualError(t, system.Start(), "failed")
	})
	t.Run("error - datadir is a file", func(t *testing.T) {
		system := NewSystem()
		system.Config.Datadir = path.Join("engine_test.go", "nested")

		assert.Error(t, system.Configure())
	})
}

func TestSystem_VisitEngines(t *testing.T) {
	var calls []string
	system := NewSystem()
	system.RegisterEngine(&testEngine{name: "a", stopped: &calls})
	system.RegisterEngine(&testEngine{name: "b", stopped: &calls})

	var visited []string
	system.VisitEngines(func(engine Engine) {
		visited = append(visited, engine.(Named).Name())
	})

	assert.Equal(t, []string{"a", "b"}, visited)
}
