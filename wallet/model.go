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

// Package wallet implements the holder core: the application model, the
// issuance flow state machine and the capability-backed providers it drives.
// All state lives in the Model; Update is the sole mutator and performs no I/O
// itself.
package wallet

import (
	"github.com/wallet-foundation/wallet-node/credential"
)

// Aspect identifies which part of the application the shell should present.
type Aspect string

const (
	AspectCredentialList   Aspect = "credential_list"
	AspectCredentialDetail Aspect = "credential_detail"
	AspectIssuanceOffer    Aspect = "issuance_offer"
	AspectIssuancePIN      Aspect = "issuance_pin"
	AspectError            Aspect = "error"
)

// Model is the application state. It is owned by the bridge and only mutated
// inside Update.
type Model struct {
	ActiveView  Aspect
	Credentials []credential.Credential
	// Selected is the ID of the credential shown in the detail view.
	Selected string
	// Issuance is the active flow state; nil when no flow is active.
	Issuance IssuanceState
	// Error is the message shown in the error aspect, or the inline
	// validation message on the PIN aspect.
	Error string
}

// NewModel returns the boot state: an empty credential list.
func NewModel() *Model {
	return &Model{ActiveView: AspectCredentialList}
}

// fail surfaces an error to the user. Flow state is deliberately left intact:
// the next user event (retry or cancel) decides what happens to it.
func (m *Model) fail(message string) {
	m.Error = message
	m.ActiveView = AspectError
}

// reset clears the active flow and returns to the credential list.
func (m *Model) reset() {
	m.Issuance = nil
	m.Error = ""
	m.Selected = ""
	m.ActiveView = AspectCredentialList
}
