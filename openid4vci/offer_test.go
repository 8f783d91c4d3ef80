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
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const offerJSON = `{
  "credential_issuer": "https://issuer.example",
  "credential_configuration_ids": ["EmployeeID"],
  "grants": {
    "urn:ietf:params:oauth:grant-type:pre-authorized_code": {
      "pre-authorized_code": "abc123",
      "tx_code": {"input_mode": "numeric", "length": 4}
    }
  }
}`

func TestParseOffer(t *testing.T) {
	t.Run("ok - bare URL-encoded JSON", func(t *testing.T) {
		offer, err := ParseOffer(url.QueryEscape(offerJSON))

		require.NoError(t, err)
		assert.Equal(t, "https://issuer.example", offer.CredentialIssuer)
		assert.Equal(t, []string{"EmployeeID"}, offer.CredentialConfigurationIDs)

		grant, err := offer.PreAuthorizedCode()
		require.NoError(t, err)
		assert.Equal(t, "abc123", grant.PreAuthorizedCode)
		require.NotNil(t, grant.TxCode)
		assert.Equal(t, 4, grant.TxCode.Length)
	})
	t.Run("ok - full QR payload", func(t *testing.T) {
		offer, err := ParseOffer(OfferURLScheme + "?credential_offer=" + url.QueryEscape(offerJSON))

		require.NoError(t, err)
		assert.Equal(t, "https://issuer.example", offer.CredentialIssuer)
	})
	t.Run("error - not JSON", func(t *testing.T) {
		_, err := ParseOffer("not%20json")

		require.Error(t, err)
		assert.ErrorContains(t, err, "unable to unmarshal credential offer")
	})
	t.Run("error - missing issuer", func(t *testing.T) {
		_, err := ParseOffer(url.QueryEscape(`{"credential_configuration_ids":["a"]}`))

		assert.ErrorContains(t, err, "does not contain credential_issuer")
	})
	t.Run("error - no configuration ids", func(t *testing.T) {
		_, err := ParseOffer(url.QueryEscape(`{"credential_issuer":"https://issuer.example"}`))

		assert.ErrorContains(t, err, "does not contain credential_configuration_ids")
	})
	t.Run("error - unsupported grant", func(t *testing.T) {
		offer, err := ParseOffer(url.QueryEscape(`{"credential_issuer":"https://issuer.example","credential_configuration_ids":["a"],"grants":{"authorization_code":{}}}`))
		require.NoError(t, err)

		_, err = offer.PreAuthorizedCode()

		require.Error(t, err)
		protocolErr := Error{}
		require.ErrorAs(t, err, &protocolErr)
		assert.Equal(t, UnsupportedGrantType, protocolErr.Code)
	})
	t.Run("error - no grants at all", func(t *testing.T) {
		offer, err := ParseOffer(url.QueryEscape(`{"credential_issuer":"https://issuer.example","credential_configuration_ids":["a"]}`))
		require.NoError(t, err)

		_, err = offer.PreAuthorizedCode()
		assert.ErrorContains(t, err, "pre-authorized code grant")
	})
}

func TestCredentialOffer_Encode(t *testing.T) {
	offer := CredentialOffer{
		CredentialIssuer:           "https://issuer.example",
		CredentialConfigurationIDs: []string{"EmployeeID"},
		Grants: &Grants{PreAuthorizedCode: &PreAuthorizedCodeGrant{
			PreAuthorizedCode: "code",
		}},
	}

	encoded, err := offer.Encode()
	require.NoError(t, err)

	parsed, err := ParseOffer(encoded)
	require.NoError(t, err)
	assert.Equal(t, offer, *parsed)
}

func TestValidateTxCode(t *testing.T) {
	spec := &TxCode{InputMode: InputModeNumeric, Length: 4}

	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, ValidateTxCode(spec, "1234"))
	})
	t.Run("ok - no spec, no pin", func(t *testing.T) {
		assert.NoError(t, ValidateTxCode(nil, ""))
	})
	t.Run("error - missing pin", func(t *testing.T) {
		assert.ErrorContains(t, ValidateTxCode(spec, ""), "requires a transaction code")
	})
	t.Run("error - wrong length", func(t *testing.T) {
		assert.ErrorContains(t, ValidateTxCode(spec, "12345"), "must be 4 characters")
	})
	t.Run("error - not numeric", func(t *testing.T) {
		assert.ErrorContains(t, ValidateTxCode(spec, "12a4"), "must be numeric")
	})
	t.Run("ok - text mode", func(t *testing.T) {
		assert.NoError(t, ValidateTxCode(&TxCode{InputMode: InputModeText, Length: 3}, "abc"))
	})
	t.Run("ok - defaults to numeric", func(t *testing.T) {
		assert.ErrorContains(t, ValidateTxCode(&TxCode{Length: 2}, "ab"), "must be numeric")
	})
}

func TestError(t *testing.T) {
	t.Run("message with underlying error", func(t *testing.T) {
		err := Error{Code: InvalidGrant, Err: assert.AnError}
		assert.Equal(t, "invalid_grant - assert.AnError general error for testing", err.Error())
	})
	t.Run("message without underlying error", func(t *testing.T) {
		assert.Equal(t, "invalid_token", Error{Code: InvalidToken}.Error())
	})
}
