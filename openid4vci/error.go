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

package openid4vci

// ErrorCode specifies error codes as defined by OAuth2 and the OpenID4VCI spec.
type ErrorCode string

const (
	// InvalidRequest is returned when the request is missing a required
	// parameter or is otherwise malformed.
	InvalidRequest ErrorCode = "invalid_request"
	// InvalidGrant is returned when the pre-authorized code is unknown or
	// expired, or the provided transaction code is wrong.
	InvalidGrant ErrorCode = "invalid_grant"
	// InvalidToken is returned when the credential request carries a wrong or
	// missing access token.
	InvalidToken ErrorCode = "invalid_token"
	// UnsupportedGrantType is returned when the offer or token request uses a
	// grant type other than the pre-authorized code grant.
	UnsupportedGrantType ErrorCode = "unsupported_grant_type"
	// InvalidProof is returned when the credential request proof is missing or
	// not bound to the issuer-provided nonce.
	InvalidProof ErrorCode = "invalid_proof"
	// ServerError is returned on unexpected conditions at the issuer.
	ServerError ErrorCode = "server_error"
)

// Error is a protocol-level error: the OAuth error code travels to the client,
// the wrapped error does not.
type Error struct {
	// Code is the error code as defined by the OpenID4VCI spec.
	Code ErrorCode `json:"error"`
	// Description is an optional human-readable detail, safe for the client.
	Description string `json:"error_description,omitempty"`
	// Err is the underlying error. Not serialized.
	Err error `json:"-"`
	// StatusCode is the HTTP status code that should be returned to the client.
	StatusCode int `json:"-"`
}

// Error returns the error message, which is either the underlying error or the code if there is no underlying error.
func (e Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return string(e.Code) + " - " + e.Err.Error()
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e Error) Unwrap() error {
	return e.Err
}
