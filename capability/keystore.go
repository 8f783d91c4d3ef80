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

package capability

// Key store operation types.
const (
	KeyStoreOpGet            = "get"
	KeyStoreOpSet            = "set"
	KeyStoreOpDelete         = "delete"
	KeyStoreOpGenerateSecret = "generate_secret"
)

// Key store response types.
const (
	KeyStoreRespRetrieved       = "retrieved"
	KeyStoreRespSet             = "set"
	KeyStoreRespDeleted         = "deleted"
	KeyStoreRespGeneratedSecret = "generated_secret"
)

// KeyStoreOperation is the closed set of requests understood by the key store
// capability. Keys are identified by an ID plus a purpose so one key ID can
// serve multiple, isolated uses.
type KeyStoreOperation struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	Data    []byte `json:"data,omitempty"`
	Length  int    `json:"length,omitempty"`
}

// GetKeyOperation retrieves a serialized private key.
func GetKeyOperation(id, purpose string) KeyStoreOperation {
	return KeyStoreOperation{Type: KeyStoreOpGet, ID: id, Purpose: purpose}
}

// SetKeyOperation stores a serialized private key.
func SetKeyOperation(id, purpose string, data []byte) KeyStoreOperation {
	return KeyStoreOperation{Type: KeyStoreOpSet, ID: id, Purpose: purpose, Data: data}
}

// DeleteKeyOperation removes a serialized private key.
func DeleteKeyOperation(id, purpose string) KeyStoreOperation {
	return KeyStoreOperation{Type: KeyStoreOpDelete, ID: id, Purpose: purpose}
}

// GenerateSecretOperation asks the shell for cryptographically secure random
// bytes suitable for key derivation.
func GenerateSecretOperation(length int) KeyStoreOperation {
	return KeyStoreOperation{Type: KeyStoreOpGenerateSecret, Length: length}
}

// KeyStoreResponse is the success variant of a key store result.
type KeyStoreResponse struct {
	Type   string     `json:"type"`
	Key    StoreEntry `json:"key,omitempty"`
	Secret []byte     `json:"secret,omitempty"`
}

// KeyStoreResult is the outcome of a key store operation: exactly one of Ok and
// Err is set.
type KeyStoreResult struct {
	Ok  *KeyStoreResponse `json:"ok,omitempty"`
	Err *Error            `json:"err,omitempty"`
}

// OkKeyStoreResult wraps a response in a result.
func OkKeyStoreResult(response KeyStoreResponse) KeyStoreResult {
	return KeyStoreResult{Ok: &response}
}

// ErrKeyStoreResult wraps an error in a result.
func ErrKeyStoreResult(err *Error) KeyStoreResult {
	return KeyStoreResult{Err: err}
}

// IntoKey unwraps a result expected to answer a get operation.
func (r KeyStoreResult) IntoKey() (StoreEntry, error) {
	if r.Err != nil {
		return StoreEntry{}, *r.Err
	}
	if r.Ok == nil || r.Ok.Type != KeyStoreRespRetrieved {
		return StoreEntry{}, *InvalidResponseError("unexpected response for get operation: %+v", r.Ok)
	}
	return r.Ok.Key, nil
}

// IntoSet unwraps a result expected to answer a set operation.
func (r KeyStoreResult) IntoSet() error {
	return r.expect(KeyStoreRespSet)
}

// IntoDeleted unwraps a result expected to answer a delete operation.
func (r KeyStoreResult) IntoDeleted() error {
	return r.expect(KeyStoreRespDeleted)
}

// IntoSecret unwraps a result expected to answer a generate_secret operation.
func (r KeyStoreResult) IntoSecret() ([]byte, error) {
	if r.Err != nil {
		return nil, *r.Err
	}
	if r.Ok == nil || r.Ok.Type != KeyStoreRespGeneratedSecret {
		return nil, *InvalidResponseError("unexpected response for generate_secret operation: %+v", r.Ok)
	}
	return r.Ok.Secret, nil
}

func (r KeyStoreResult) expect(responseType string) error {
	if r.Err != nil {
		return *r.Err
	}
	if r.Ok == nil || r.Ok.Type != responseType {
		return *InvalidResponseError("unexpected response for %s operation: %+v", responseType, r.Ok)
	}
	return nil
}
