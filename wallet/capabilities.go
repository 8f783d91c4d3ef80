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

package wallet

import (
	"encoding/json"

	"github.com/wallet-foundation/wallet-node/capability"
)

// Requester hands a capability operation to the bridge together with a
// continuation producing the follow-up event once the shell delivers the
// result. A continuation may return nil (no follow-up event) and may itself
// issue further requests. Operations without a result pass a nil continuation.
//
//go:generate mockgen -destination=requester_mock.go -package=wallet -source=capabilities.go
type Requester interface {
	Request(capabilityName string, operation json.RawMessage, continuation func(result json.RawMessage) Event)
}

// Capabilities bundles the capability handles and the role interfaces handed
// to Update. Tests substitute individual role interfaces with fakes.
type Capabilities struct {
	Render      Render
	Issuer      IssuerClient
	Verifier    VerifierClient
	Credentials CredentialStorer
	State       StateStore
	Signer      Signer
	Resolver    DIDResolver
}

// NewCapabilities wires the capability handles over the given requester and
// composes them into a Provider serving all role interfaces.
func NewCapabilities(requester Requester) *Capabilities {
	provider := NewProvider(
		Store{requester: requester},
		KeyStore{requester: requester},
		HTTP{requester: requester},
	)
	return &Capabilities{
		Render:      Render{requester: requester},
		Issuer:      provider,
		Verifier:    provider,
		Credentials: provider,
		State:       provider,
		Signer:      provider,
		Resolver:    provider,
	}
}

// mustMarshal serializes an operation descriptor or request body. These are
// plain data types, so failure is a programming error and engine-fatal.
func mustMarshal(operation any) json.RawMessage {
	data, err := json.Marshal(operation)
	if err != nil {
		panic(err)
	}
	return data
}

// Store is the handle to the persistence capability.
type Store struct {
	requester Requester
}

// Save overwrites the entry with the given ID, creating it if absent.
func (s Store) Save(catalog, id string, data []byte, resume func(capability.StoreResult) Event) {
	s.request(capability.SaveOperation(catalog, id, data), resume)
}

// List retrieves all entries in a catalog.
func (s Store) List(catalog string, resume func(capability.StoreResult) Event) {
	s.request(capability.ListOperation(catalog), resume)
}

// Delete removes the entry with the given ID.
func (s Store) Delete(catalog, id string, resume func(capability.StoreResult) Event) {
	s.request(capability.DeleteOperation(catalog, id), resume)
}

func (s Store) request(operation capability.StoreOperation, resume func(capability.StoreResult) Event) {
	s.requester.Request(capability.Store, mustMarshal(operation), func(raw json.RawMessage) Event {
		result := capability.StoreResult{}
		if err := json.Unmarshal(raw, &result); err != nil {
			result = capability.ErrStoreResult(capability.InvalidResponseError("malformed store result: %s", err))
		}
		return resume(result)
	})
}

// KeyStore is the handle to the key storage capability.
type KeyStore struct {
	requester Requester
}

// Get retrieves a serialized private key.
func (s KeyStore) Get(id, purpose string, resume func(capability.KeyStoreResult) Event) {
	s.request(capability.GetKeyOperation(id, purpose), resume)
}

// Set stores a serialized private key.
func (s KeyStore) Set(id, purpose string, data []byte, resume func(capability.KeyStoreResult) Event) {
	s.request(capability.SetKeyOperation(id, purpose, data), resume)
}

// Delete removes a serialized private key.
func (s KeyStore) Delete(id, purpose string, resume func(capability.KeyStoreResult) Event) {
	s.request(capability.DeleteKeyOperation(id, purpose), resume)
}

// GenerateSecret asks the shell for cryptographically secure random bytes.
func (s KeyStore) GenerateSecret(length int, resume func(capability.KeyStoreResult) Event) {
	s.request(capability.GenerateSecretOperation(length), resume)
}

func (s KeyStore) request(operation capability.KeyStoreOperation, resume func(capability.KeyStoreResult) Event) {
	s.requester.Request(capability.KeyStore, mustMarshal(operation), func(raw json.RawMessage) Event {
		result := capability.KeyStoreResult{}
		if err := json.Unmarshal(raw, &result); err != nil {
			result = capability.ErrKeyStoreResult(capability.InvalidResponseError("malformed keystore result: %s", err))
		}
		return resume(result)
	})
}

// HTTP is the handle to the transport capability.
type HTTP struct {
	requester Requester
}

// Exchange performs one HTTP exchange.
func (h HTTP) Exchange(operation capability.HTTPOperation, resume func(capability.HTTPResult) Event) {
	h.requester.Request(capability.HTTP, mustMarshal(operation), func(raw json.RawMessage) Event {
		result := capability.HTTPResult{}
		if err := json.Unmarshal(raw, &result); err != nil {
			result = capability.ErrHTTPResult(capability.InvalidResponseError("malformed http result: %s", err))
		}
		return resume(result)
	})
}

// Render is the handle to the redraw signal.
type Render struct {
	requester Requester
}

// Render signals the shell to redraw from the current view model. It has no
// result.
func (r Render) Render() {
	r.requester.Request(capability.Render, mustMarshal(capability.RenderOperation{}), nil)
}
