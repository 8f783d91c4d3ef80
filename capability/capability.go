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

// Package capability defines the request/response contract between the holder
// core and a host shell. The core never performs I/O itself: it emits capability
// requests, the shell executes them and delivers exactly one result per request.
//
// All types in this package cross a serialization boundary to non-Go shells, so
// closed unions are encoded with a type discriminator and optionality is encoded
// with the explicit StoreEntry tag instead of nullable fields.
package capability

import (
	"encoding/json"
	"fmt"
)

// Capability names, used to route a request to the shell-side executor.
const (
	Store    = "store"
	KeyStore = "keystore"
	HTTP     = "http"
	Render   = "render"
)

// Request is one effect requested by the core. ID correlates the shell's result
// with the continuation held by the bridge.
type Request struct {
	ID         uint32          `json:"id"`
	Capability string          `json:"capability"`
	Operation  json.RawMessage `json:"operation"`
}

// Reason classifies a capability error.
type Reason string

const (
	// ReasonInvalidRequest means the caller built a malformed operation.
	ReasonInvalidRequest Reason = "invalid_request"
	// ReasonInvalidResponse means the shell returned something outside the
	// contract. This is an integration defect: it is always surfaced and never
	// retried.
	ReasonInvalidResponse Reason = "invalid_response"
	// ReasonUnavailable means the shell could not reach the backing resource,
	// for example a network failure after retries.
	ReasonUnavailable Reason = "unavailable"
)

// Error is the error variant of every capability result.
type Error struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return fmt.Sprintf("%s capability error: %s", e.Reason, e.Message)
}

// InvalidRequestError builds an Error for a malformed operation.
func InvalidRequestError(format string, args ...any) *Error {
	return &Error{Reason: ReasonInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// InvalidResponseError builds an Error for an out-of-contract shell response.
func InvalidResponseError(format string, args ...any) *Error {
	return &Error{Reason: ReasonInvalidResponse, Message: fmt.Sprintf(format, args...)}
}

// UnavailableError builds an Error for an unreachable backing resource.
func UnavailableError(format string, args ...any) *Error {
	return &Error{Reason: ReasonUnavailable, Message: fmt.Sprintf(format, args...)}
}

// StoreEntry is "maybe present" data in wire form. The boundary to host shells
// cannot carry a generic optional type, so presence is an explicit tag. The
// same shape is used for key store lookups.
type StoreEntry struct {
	Present bool   `json:"present"`
	Data    []byte `json:"data,omitempty"`
}

// PresentEntry wraps data in a present entry.
func PresentEntry(data []byte) StoreEntry {
	return StoreEntry{Present: true, Data: data}
}

// AbsentEntry is the empty variant.
func AbsentEntry() StoreEntry {
	return StoreEntry{}
}

// Bytes returns the entry data and whether it was present.
func (e StoreEntry) Bytes() ([]byte, bool) {
	if !e.Present {
		return nil, false
	}
	return e.Data, true
}

// RenderOperation signals the shell to redraw from the current view model.
// It is the only operation without a result.
type RenderOperation struct{}
