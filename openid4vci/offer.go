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

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// OfferURLScheme prefixes offers transported as a QR code payload.
const OfferURLScheme = "openid-credential-offer://"

// ParseOffer decodes a URL-encoded credential offer as scanned or pasted by the
// user. It accepts a bare URL-encoded JSON object, or the full QR payload with
// the openid-credential-offer scheme and credential_offer query parameter.
func ParseOffer(encoded string) (*CredentialOffer, error) {
	payload := strings.TrimSpace(encoded)
	if cut, found := strings.CutPrefix(payload, OfferURLScheme); found {
		payload = cut
		if idx := strings.Index(payload, "credential_offer="); idx >= 0 {
			payload = payload[idx+len("credential_offer="):]
		}
	}
	decoded, err := url.QueryUnescape(payload)
	if err != nil {
		return nil, Error{Code: InvalidRequest, Err: fmt.Errorf("credential offer is not URL-encoded: %w", err), StatusCode: http.StatusBadRequest}
	}
	offer := CredentialOffer{}
	if err := json.Unmarshal([]byte(decoded), &offer); err != nil {
		return nil, Error{Code: InvalidRequest, Err: fmt.Errorf("unable to unmarshal credential offer: %w", err), StatusCode: http.StatusBadRequest}
	}
	if err := offer.Validate(); err != nil {
		return nil, err
	}
	return &offer, nil
}

// Validate checks the structural requirements of an offer.
func (o CredentialOffer) Validate() error {
	if o.CredentialIssuer == "" {
		return Error{Code: InvalidRequest, Err: errors.New("credential offer does not contain credential_issuer"), StatusCode: http.StatusBadRequest}
	}
	if _, err := url.Parse(o.CredentialIssuer); err != nil {
		return Error{Code: InvalidRequest, Err: fmt.Errorf("invalid credential_issuer: %w", err), StatusCode: http.StatusBadRequest}
	}
	if len(o.CredentialConfigurationIDs) == 0 {
		return Error{Code: InvalidRequest, Err: errors.New("credential offer does not contain credential_configuration_ids"), StatusCode: http.StatusBadRequest}
	}
	return nil
}

// PreAuthorizedCode returns the pre-authorized code grant of the offer.
// Offers without one (other grant types, or no grants at all) are rejected:
// the wallet deliberately supports the pre-authorized code flow only.
func (o CredentialOffer) PreAuthorizedCode() (*PreAuthorizedCodeGrant, error) {
	if o.Grants == nil || o.Grants.PreAuthorizedCode == nil || o.Grants.PreAuthorizedCode.PreAuthorizedCode == "" {
		return nil, Error{
			Code:       UnsupportedGrantType,
			Err:        errors.New("credential offer does not contain a (valid) pre-authorized code grant"),
			StatusCode: http.StatusBadRequest,
		}
	}
	return o.Grants.PreAuthorizedCode, nil
}

// Encode renders the offer as the query-encoded form used in offer URLs.
func (o CredentialOffer) Encode() (string, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(string(data)), nil
}

// ValidateTxCode checks a user-entered PIN against the transaction code
// requirements of the grant. A nil spec accepts any (absent) PIN.
func ValidateTxCode(spec *TxCode, pin string) error {
	if spec == nil {
		return nil
	}
	if pin == "" {
		return Error{Code: InvalidRequest, Err: errors.New("issuer requires a transaction code"), StatusCode: http.StatusBadRequest}
	}
	if spec.Length > 0 && len(pin) != spec.Length {
		return Error{
			Code:       InvalidRequest,
			Err:        fmt.Errorf("transaction code must be %d characters, got %d", spec.Length, len(pin)),
			StatusCode: http.StatusBadRequest,
		}
	}
	if spec.Mode() == InputModeNumeric {
		for _, r := range pin {
			if r < '0' || r > '9' {
				return Error{Code: InvalidRequest, Err: errors.New("transaction code must be numeric"), StatusCode: http.StatusBadRequest}
			}
		}
	}
	return nil
}
