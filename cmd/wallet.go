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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/nuts-foundation/go-stoabs/bbolt"
	"github.com/spf13/cobra"

	"github.com/wallet-foundation/wallet-node/bridge"
	"github.com/wallet-foundation/wallet-node/core"
	"github.com/wallet-foundation/wallet-node/shell"
	"github.com/wallet-foundation/wallet-node/wallet"
)

func createWalletCommand(system *core.System) *cobra.Command {
	return &cobra.Command{
		Use:   "wallet",
		Short: "Starts an interactive wallet session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := system.Load(cmd.Flags()); err != nil {
				return err
			}
			if err := os.MkdirAll(system.Config.Datadir, os.ModePerm); err != nil {
				return err
			}
			db, err := bbolt.CreateBBoltStore(path.Join(system.Config.Datadir, "wallet.db"))
			if err != nil {
				return fmt.Errorf("unable to open wallet store: %w", err)
			}
			defer func() {
				_ = db.Close(context.Background())
			}()

			host := shell.New(bridge.Instance(), db, func(view []byte) {
				printView(cmd, view)
			})
			defer host.Shutdown()

			if err := host.ProcessEvent(wallet.Ready{}); err != nil {
				return err
			}
			host.WaitIdle()

			return runWalletLoop(cmd, host)
		},
	}
}

// runWalletLoop reads commands from stdin and feeds them to the wallet until
// EOF or quit.
func runWalletLoop(cmd *cobra.Command, host *shell.Shell) error {
	cmd.Println(`Commands: scan <offer-url>, accept, pin <code>, select <id>, delete <id>, cancel, quit`)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	// Offer URLs exceed bufio's default token size.
	scanner.Buffer(make([]byte, 64*1024), 64*1024)
	for scanner.Scan() {
		verb, argument, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		var event wallet.Event
		switch verb {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "scan":
			event = wallet.ScanIssuanceOffer{Offer: argument}
		case "accept":
			event = wallet.AcceptOffer{}
		case "pin":
			event = wallet.EnterPIN{PIN: argument}
		case "select":
			event = wallet.SelectCredential{ID: argument}
		case "delete":
			event = wallet.DeleteCredential{ID: argument}
		case "cancel":
			event = wallet.Cancel{}
		default:
			cmd.Printf("unknown command: %s\n", verb)
			continue
		}
		if err := host.ProcessEvent(event); err != nil {
			cmd.Printf("error: %s\n", err)
			continue
		}
		host.WaitIdle()
	}
	return scanner.Err()
}

// printView renders the display model as terminal output.
func printView(cmd *cobra.Command, view []byte) {
	model := wallet.DisplayModel{}
	if err := json.Unmarshal(view, &model); err != nil {
		cmd.Printf("unable to render view: %s\n", err)
		return
	}
	if model.Error != "" {
		cmd.Printf("! %s\n", model.Error)
	}
	switch model.ActiveView {
	case wallet.AspectCredentialList:
		cmd.Printf("Credentials (%d):\n", len(model.Credentials))
		for _, summary := range model.Credentials {
			cmd.Printf("  %s  %s (%s)\n", summary.ID, summary.Name, summary.IssuerName)
		}
	case wallet.AspectCredentialDetail:
		if model.Detail == nil {
			return
		}
		cmd.Printf("%s issued by %s\n", model.Detail.Name, model.Detail.IssuerName)
		for _, claim := range model.Detail.Claims {
			cmd.Printf("  %s: %s\n", claim.Label, claim.Value)
		}
	case wallet.AspectIssuanceOffer:
		if model.Offer == nil {
			return
		}
		cmd.Printf("%s offers:\n", model.Offer.IssuerName)
		for _, offered := range model.Offer.Credentials {
			cmd.Printf("  %s\n", offered.Name)
		}
		cmd.Println("Type 'accept' to accept, 'cancel' to decline.")
	case wallet.AspectIssuancePIN:
		if model.PIN == nil {
			return
		}
		if model.PIN.Length > 0 {
			cmd.Printf("Enter the %d-character transaction code with 'pin <code>'.\n", model.PIN.Length)
		} else {
			cmd.Println("Enter the transaction code with 'pin <code>'.")
		}
	}
}
