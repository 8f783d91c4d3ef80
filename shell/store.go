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
	"context"
	"encoding/json"

	"github.com/nuts-foundation/go-stoabs"

	"github.com/wallet-foundation/wallet-node/capability"
)

// storeHandler executes store operations against a KV store, one shelf per
// catalog.
type storeHandler struct {
	db stoabs.KVStore
}

func (h storeHandler) execute(ctx context.Context, operation json.RawMessage) capability.StoreResult {
	op := capability.StoreOperation{}
	if err := json.Unmarshal(operation, &op); err != nil {
		return capability.ErrStoreResult(capability.InvalidRequestError("unable to unmarshal store operation: %s", err))
	}
	if op.Catalog == "" {
		return capability.ErrStoreResult(capability.InvalidRequestError("store operation without catalog"))
	}
	switch op.Type {
	case capability.StoreOpSave:
		return h.save(ctx, op)
	case capability.StoreOpList:
		return h.list(ctx, op)
	case capability.StoreOpDelete:
		return h.delete(ctx, op)
	default:
		return capability.ErrStoreResult(capability.InvalidRequestError("unknown store operation: %s", op.Type))
	}
}

func (h storeHandler) save(ctx context.Context, op capability.StoreOperation) capability.StoreResult {
	if op.ID == "" {
		return capability.ErrStoreResult(capability.InvalidRequestError("save operation without id"))
	}
	err := h.db.WriteShelf(ctx, op.Catalog, func(writer stoabs.Writer) error {
		return writer.Put(stoabs.BytesKey(op.ID), op.Data)
	})
	if err != nil {
		return capability.ErrStoreResult(capability.UnavailableError("unable to save entry: %s", err))
	}
	return capability.OkStoreResult(capability.StoreResponse{Type: capability.StoreRespSaved})
}

func (h storeHandler) list(ctx context.Context, op capability.StoreOperation) capability.StoreResult {
	entries := make([]capability.StoreEntry, 0)
	err := h.db.ReadShelf(ctx, op.Catalog, func(reader stoabs.Reader) error {
		return reader.Iterate(func(key stoabs.Key, value []byte) error {
			// the slice is only valid during the transaction
			data := make([]byte, len(value))
			copy(data, value)
			entries = append(entries, capability.PresentEntry(data))
			return nil
		}, stoabs.BytesKey{})
	})
	if err != nil {
		return capability.ErrStoreResult(capability.UnavailableError("unable to list entries: %s", err))
	}
	return capability.OkStoreResult(capability.StoreResponse{Type: capability.StoreRespList, Entries: entries})
}

// delete removes an entry. Deleting an entry that was never written succeeds.
func (h storeHandler) delete(ctx context.Context, op capability.StoreOperation) capability.StoreResult {
	if op.ID == "" {
		return capability.ErrStoreResult(capability.InvalidRequestError("delete operation without id"))
	}
	err := h.db.WriteShelf(ctx, op.Catalog, func(writer stoabs.Writer) error {
		return writer.Delete(stoabs.BytesKey(op.ID))
	})
	if err != nil {
		return capability.ErrStoreResult(capability.UnavailableError("unable to delete entry: %s", err))
	}
	return capability.OkStoreResult(capability.StoreResponse{Type: capability.StoreRespDeleted})
}
