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
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const defaultConfigFile = "wallet.yaml"
const configFileFlag = "configfile"
const defaultEnvPrefix = "WALLET_"
const defaultEnvDelimiter = "_"
const defaultDelimiter = "."

// ServerConfig has global server settings.
type ServerConfig struct {
	Verbosity    string     `koanf:"verbosity"`
	LoggerFormat string     `koanf:"loggerformat"`
	Datadir      string     `koanf:"datadir"`
	HTTP         HTTPConfig `koanf:"http"`
	flags        *pflag.FlagSet
}

// HTTPConfig contains the interface binding for the HTTP server.
type HTTPConfig struct {
	// Address holds the interface address the HTTP server binds to, in the form `interface:port` (e.g. localhost:1323).
	Address string `koanf:"address"`
}

// NewServerConfig creates an initialized server config with default values.
func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Verbosity:    "info",
		LoggerFormat: "text",
		Datadir:      "./data",
		HTTP: HTTPConfig{
			Address: "localhost:1323",
		},
	}
}

// Load loads the server config in the following order of precedence:
// defaults < config file < environment variables < command line flags.
// It also configures the global logger.
func (cfg *ServerConfig) Load(flags *pflag.FlagSet) error {
	cfg.flags = flags
	k, err := cfg.load(flags)
	if err != nil {
		return err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.Verbosity)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	switch cfg.LoggerFormat {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid formatter: '%s'", cfg.LoggerFormat)
	}
	return nil
}

func (cfg *ServerConfig) load(flags *pflag.FlagSet) (*koanf.Koanf, error) {
	k := koanf.New(defaultDelimiter)
	if err := k.Load(structs.Provider(*NewServerConfig(), "koanf"), nil); err != nil {
		return nil, err
	}
	if err := loadConfigFile(k, resolveConfigFilePath(flags)); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(defaultEnvPrefix, defaultDelimiter, func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, defaultEnvPrefix)), defaultEnvDelimiter, defaultDelimiter)
	}), nil); err != nil {
		return nil, err
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, defaultDelimiter, k), nil); err != nil {
			return nil, err
		}
	}
	return k, nil
}

// resolveConfigFilePath resolves the config file path from the command line flags,
// falling back to the default location.
func resolveConfigFilePath(flags *pflag.FlagSet) string {
	path := defaultConfigFile
	if flags != nil {
		if f := flags.Lookup(configFileFlag); f != nil {
			path = f.Value.String()
		}
	}
	return path
}

// loadConfigFile loads the given config file into the koanf instance.
// A missing file at the default location is not an error.
func loadConfigFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && path == defaultConfigFile {
			return nil
		}
		return fmt.Errorf("unable to load config file: %w", err)
	}
	return k.Load(file.Provider(path), yaml.Parser())
}

// InjectIntoEngine injects the engine's section of the config into the engine's config struct.
func (cfg *ServerConfig) InjectIntoEngine(engine Injectable) error {
	k, err := cfg.load(cfg.flags)
	if err != nil {
		return err
	}
	if err := k.Unmarshal(strings.ToLower(engine.ConfigKey()), engine.Config()); err != nil {
		return fmt.Errorf("unable to process config for engine '%s': %w", engine.Name(), err)
	}
	return nil
}

// FlagSet returns the flags for the global server config.
func FlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("server", pflag.ContinueOnError)
	defs := NewServerConfig()
	flags.String(configFileFlag, defaultConfigFile, "Location of the config file.")
	flags.String("verbosity", defs.Verbosity, "Log level (trace, debug, info, warn, error)")
	flags.String("loggerformat", defs.LoggerFormat, "Log format (text, json)")
	flags.String("datadir", defs.Datadir, "Directory where the node stores its files.")
	flags.String("http.address", defs.HTTP.Address, "Interface and port for the HTTP server to listen on.")
	return flags
}
