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

// Store operation types.
const (
	StoreOpSave   = "save"
	StoreOpList   = "list"
	StoreOpDelete = "delete"
)

// Catalogs partitioning the store capability. Unrelated collections share one
// capability instance.
const (
	CatalogCredential = "credential"
	CatalogState      = "state"
)

// StoreOperation is the closed set of requests understood by the store
// capability. Type selects the variant.
type StoreOperation struct {
	Type    string `json:"type"`
	Catalog string `json:"catalog"`
	ID      string `json:"id,omitempty"`
	Data    []byte `json:"data,omitempty"`
}

// SaveOperation overwrites the entry with the given ID, creating it if absent.
func SaveOperation(catalog, id string, data []byte) StoreOperation {
	return StoreOperation{Type: StoreOpSave, Catalog: catalog, ID: id, Data: data}
}

// ListOperation retrieves all entries in a catalog.
func ListOperation(catalog string) StoreOperation {
	return StoreOperation{Type: StoreOpList, Catalog: catalog}
}

// DeleteOperation removes the entry with the given ID.
func DeleteOperation(catalog, id string) StoreOperation {
	return StoreOperation{Type: StoreOpDelete, Catalog: catalog, ID: id}
}

// Store response types.
const (
	StoreRespSaved   = "saved"
	StoreRespList    = "list"
	StoreRespDeleted = "deleted"
)

// StoreResponse is the success variant of a store result.
type StoreResponse struct {
	Type    string       `json:"type"`
	Entries []StoreEntry `json:"entries,omitempty"`
}

// StoreResult is the outcome of a store operation: exactly one of Ok and Err is set.
type StoreResult struct {
	Ok  *StoreResponse `json:"ok,omitempty"`
	Err *Error         `json:"err,omitempty"`
}

// OkStoreResult wraps a response in a result.
func OkStoreResult(response StoreResponse) StoreResult {
	return StoreResult{Ok: &response}
}

// ErrStoreResult wraps an error in a result.
func ErrStoreResult(err *Error) StoreResult {
	return StoreResult{Err: err}
}

// IntoSaved unwraps a result expected to answer a save operation.
func (r StoreResult) IntoSaved() error {
	return r.expect(StoreRespSaved)
}

// IntoDeleted unwraps a result expected to answer a delete operation.
func (r StoreResult) IntoDeleted() error {
	return r.expect(StoreRespDeleted)
}

// IntoList unwraps a result expected to answer a list operation.
func (r StoreResult) IntoList() ([]StoreEntry, error) {
	if r.Err != nil {
		return nil, *r.Err
	}
	if r.Ok == nil || r.Ok.Type != StoreRespList {
		return nil, *InvalidResponseError("unexpected response for list operation: %+v", r.Ok)
	}
	return r.Ok.Entries, nil
}

func (r StoreResult) expect(responseType string) error {
	if r.Err != nil {
		return *r.Err
	}
	if r.Ok == nil || r.Ok.Type != responseType {
		return *InvalidResponseError("unexpected response for %s operation: %+v", responseType, r.Ok)
	}
	return nil
}
