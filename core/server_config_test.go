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
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerConfig_Load(t *testing.T) {
	t.Run("ok - defaults", func(t *testing.T) {
		cfg := NewServerConfig()

		require.NoError(t, cfg.Load(FlagSet()))

		assert.Equal(t, "info", cfg.Verbosity)
		assert.Equal(t, "text", cfg.LoggerFormat)
		assert.Equal(t, "localhost:1323", cfg.HTTP.Address)
	})
	t.Run("ok - config file overrides defaults", func(t *testing.T) {
		configFile := path.Join(t.TempDir(), "server.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("verbosity: debug\nhttp:\n  address: localhost:8080\n"), 0600))
		flags := FlagSet()
		require.NoError(t, flags.Parse([]string{"--configfile", configFile}))
		cfg := NewServerConfig()

		require.NoError(t, cfg.Load(flags))

		assert.Equal(t, "debug", cfg.Verbosity)
		assert.Equal(t, "localhost:8080", cfg.HTTP.Address)
	})
	t.Run("ok - environment overrides config file", func(t *testing.T) {
		configFile := path.Join(t.TempDir(), "server.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("datadir: /from/file\n"), 0600))
		t.Setenv("WALLET_DATADIR", "/from/env")
		flags := FlagSet()
		require.NoError(t, flags.Parse([]string{"--configfile", configFile}))
		cfg := NewServerConfig()

		require.NoError(t, cfg.Load(flags))

		assert.Equal(t, "/from/env", cfg.Datadir)
	})
	t.Run("ok - flags override environment", func(t *testing.T) {
		t.Setenv("WALLET_VERBOSITY", "warn")
		flags := FlagSet()
		require.NoError(t, flags.Parse([]string{"--verbosity", "trace"}))
		cfg := NewServerConfig()

		require.NoError(t, cfg.Load(flags))

		assert.Equal(t, "trace", cfg.Verbosity)
	})
	t.Run("error - unknown verbosity", func(t *testing.T) {
		flags := FlagSet()
		require.NoError(t, flags.Parse([]string{"--verbosity", "shouting"}))
		cfg := NewServerConfig()

		assert.Error(t, cfg.Load(flags))
	})
	t.Run("error - unknown logger format", func(t *testing.T) {
		flags := FlagSet()
		require.NoError(t, flags.Parse([]string{"--loggerformat", "yaml"}))
		cfg := NewServerConfig()

		assert.EqualError(t, cfg.Load(flags), "invalid formatter: 'yaml'")
	})
	t.Run("error - config file does not exist", func(t *testing.T) {
		flags := FlagSet()
		require.NoError(t, flags.Parse([]string{"--configfile", "/nonexistent/server.yaml"}))
		cfg := NewServerConfig()

		assert.Error(t, cfg.Load(flags))
	})
}

type injectableEngine struct {
	config injectableConfig
}

type injectableConfig struct {
	Endpoint string `koanf:"endpoint"`
}

func (e *injectableEngine) Name() string {
	return "Injectable"
}

func (e *injectableEngine) ConfigKey() string {
	return "injectable"
}

func (e *injectableEngine) Config() interface{} {
	return &e.config
}

func TestServerConfig_InjectIntoEngine(t *testing.T) {
	configFile := path.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("injectable:\n  endpoint: https://example.com\n"), 0600))
	flags := FlagSet()
	require.NoError(t, flags.Parse([]string{"--configfile", configFile}))
	cfg := NewServerConfig()
	require.NoError(t, cfg.Load(flags))

	engine := &injectableEngine{}
	require.NoError(t, cfg.InjectIntoEngine(engine))

	assert.Equal(t, "https://example.com", engine.config.Endpoint)
}
