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

package cmd

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wallet-foundation/wallet-node/core"
	"github.com/wallet-foundation/wallet-node/vcservice"
)

var stdOutWriter io.Writer = os.Stdout

func createRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wallet-node",
		Short: "Verifiable credential wallet, with a demo issuer service.",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}
}

func createServerCommand(system *core.System) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Starts the demo issuer server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := system.Load(cmd.Flags()); err != nil {
				return err
			}
			if err := system.Configure(); err != nil {
				return err
			}
			if err := system.Start(); err != nil {
				return err
			}
			defer func() {
				if err := system.Shutdown(); err != nil {
					logrus.Error(err)
				}
			}()

			echoServer := core.NewEchoServer()
			for _, router := range system.Routers {
				router.Routes(echoServer)
			}

			serverErrors := make(chan error, 1)
			go func() {
				if err := echoServer.Start(system.Config.HTTP.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErrors <- err
				}
			}()
			logrus.WithField("address", system.Config.HTTP.Address).Info("Server started")

			signals := make(chan os.Signal, 1)
			signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
			select {
			case err := <-serverErrors:
				return err
			case <-signals:
				logrus.Info("Shutting down")
				return echoServer.Shutdown(context.Background())
			}
		},
	}
}

// CreateCommand creates the command with all subcommands to run the system.
func CreateCommand(system *core.System) *cobra.Command {
	command := createRootCommand()
	command.SetOut(stdOutWriter)
	command.AddCommand(createServerCommand(system))
	command.AddCommand(createWalletCommand(system))
	command.PersistentFlags().AddFlagSet(core.FlagSet())
	return command
}

// CreateSystem creates the system and registers all default engines.
func CreateSystem() *core.System {
	system := core.NewSystem()
	system.RegisterEngine(core.NewStatusEngine(system))
	system.RegisterEngine(core.NewMetricsEngine())
	system.RegisterEngine(vcservice.New())
	return system
}

// Execute creates the system and executes the root command, blocking until done.
func Execute() error {
	system := CreateSystem()
	return CreateCommand(system).Execute()
}
