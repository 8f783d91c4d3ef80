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

package shell

import (
	"crypto/rand"
	"encoding/json"
	"sync"

	"github.com/wallet-foundation/wallet-node/capability"
)

// maxSecretLength bounds generate_secret requests; anything larger points at a
// corrupted operation.
const maxSecretLength = 1024

// keyStoreHandler holds private key material in memory. Key material never
// leaves the process through the store capability; a production shell would
// back this with the platform keychain.
type keyStoreHandler struct {
	mu   sync.Mutex
	keys map[string][]byte
}

func newKeyStoreHandler() *keyStoreHandler {
	return &keyStoreHandler{keys: map[string][]byte{}}
}

func keyName(id, purpose string) string {
	return id + "/" + purpose
}

func (h *keyStoreHandler) execute(operation json.RawMessage) capability.KeyStoreResult {
	op := capability.KeyStoreOperation{}
	if err := json.Unmarshal(operation, &op); err != nil {
		return capability.ErrKeyStoreResult(capability.InvalidRequestError("unable to unmarshal key store operation: %s", err))
	}
	switch op.Type {
	case capability.KeyStoreOpGet:
		return h.get(op)
	case capability.KeyStoreOpSet:
		return h.set(op)
	case capability.KeyStoreOpDelete:
		return h.delete(op)
	case capability.KeyStoreOpGenerateSecret:
		return h.generateSecret(op)
	default:
		return capability.ErrKeyStoreResult(capability.InvalidRequestError("unknown key store operation: %s", op.Type))
	}
}

func (h *keyStoreHandler) get(op capability.KeyStoreOperation) capability.KeyStoreResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	data, ok := h.keys[keyName(op.ID, op.Purpose)]
	if !ok {
		return capability.OkKeyStoreResult(capability.KeyStoreResponse{Type: capability.KeyStoreRespRetrieved, Key: capability.AbsentEntry()})
	}
	return capability.OkKeyStoreResult(capability.KeyStoreResponse{Type: capability.KeyStoreRespRetrieved, Key: capability.PresentEntry(data)})
}

func (h *keyStoreHandler) set(op capability.KeyStoreOperation) capability.KeyStoreResult {
	if op.ID == "" {
		return capability.ErrKeyStoreResult(capability.InvalidRequestError("set operation without id"))
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keys[keyName(op.ID, op.Purpose)] = op.Data
	return capability.OkKeyStoreResult(capability.KeyStoreResponse{Type: capability.KeyStoreRespSet})
}

func (h *keyStoreHandler) delete(op capability.KeyStoreOperation) capability.KeyStoreResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.keys, keyName(op.ID, op.Purpose))
	return capability.OkKeyStoreResult(capability.KeyStoreResponse{Type: capability.KeyStoreRespDeleted})
}

func (h *keyStoreHandler) generateSecret(op capability.KeyStoreOperation) capability.KeyStoreResult {
	if op.Length <= 0 || op.Length > maxSecretLength {
		return capability.ErrKeyStoreResult(capability.InvalidRequestError("invalid secret length: %d", op.Length))
	}
	secret := make([]byte, op.Length)
	if _, err := rand.Read(secret); err != nil {
		return capability.ErrKeyStoreResult(capability.UnavailableError("unable to generate secret: %s", err))
	}
	return capability.OkKeyStoreResult(capability.KeyStoreResponse{Type: capability.KeyStoreRespGeneratedSecret, Secret: secret})
}
