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

// Package openid4vci contains the OpenID 4 Verifiable Credential Issuance wire types
// shared by the holder core and the demonstration issuer service.
package openid4vci

import (
	"net/url"
)

const (
	// CredentialIssuerMetadataWellKnownPath defines the well-known path for retrieving Credential Issuer Metadata.
	CredentialIssuerMetadataWellKnownPath = "/.well-known/openid-credential-issuer"
	// ProviderMetadataWellKnownPath defines the well-known path for retrieving OAuth2 Authorization Server Metadata.
	ProviderMetadataWellKnownPath = "/.well-known/oauth-authorization-server"
	// PreAuthorizedCodeGrantType is the only grant type the wallet supports.
	PreAuthorizedCodeGrantType = "urn:ietf:params:oauth:grant-type:pre-authorized_code"
	// ProofJWTType is the required typ header of a credential request proof JWT.
	ProofJWTType = "openid4vci-proof+jwt"
)

// Transaction code input modes.
const (
	InputModeNumeric = "numeric"
	InputModeText    = "text"
)

// CredentialOffer is an offer from an issuer to issue one or more credentials,
// typically transported to the wallet as a URL-encoded query parameter.
type CredentialOffer struct {
	// CredentialIssuer is the identifier (origin URL) of the offering issuer.
	CredentialIssuer string `json:"credential_issuer"`
	// CredentialConfigurationIDs references entries in the issuer's
	// credential_configurations_supported metadata map.
	CredentialConfigurationIDs []string `json:"credential_configuration_ids"`
	// Grants holds the grants the offer can be redeemed with.
	Grants *Grants `json:"grants,omitempty"`
}

// Grants is the set of grant types an offer carries. Only the pre-authorized
// code grant is modelled; other grant types fail offer parsing.
type Grants struct {
	PreAuthorizedCode *PreAuthorizedCodeGrant `json:"urn:ietf:params:oauth:grant-type:pre-authorized_code,omitempty"`
}

// PreAuthorizedCodeGrant lets the wallet redeem a one-time code (optionally
// guarded by a transaction code) for an access token.
type PreAuthorizedCodeGrant struct {
	PreAuthorizedCode string  `json:"pre-authorized_code"`
	TxCode            *TxCode `json:"tx_code,omitempty"`
}

// TxCode describes the PIN the issuer expects the user to enter before the
// wallet may request a token.
type TxCode struct {
	// InputMode is "numeric" or "text". Numeric when absent.
	InputMode string `json:"input_mode,omitempty"`
	// Length is the expected number of characters. Zero means unspecified.
	Length int `json:"length,omitempty"`
	// Description is helper text to show the user.
	Description string `json:"description,omitempty"`
}

// Mode returns the effective input mode, defaulting to numeric.
func (t TxCode) Mode() string {
	if t.InputMode == "" {
		return InputModeNumeric
	}
	return t.InputMode
}

// CredentialIssuerMetadata holds the Credential Issuer Metadata as served from
// the issuer's well-known endpoint.
type CredentialIssuerMetadata struct {
	CredentialIssuer                  string                             `json:"credential_issuer"`
	CredentialEndpoint                string                             `json:"credential_endpoint"`
	DeferredCredentialEndpoint        string                             `json:"deferred_credential_endpoint,omitempty"`
	NotificationEndpoint              string                             `json:"notification_endpoint,omitempty"`
	CredentialConfigurationsSupported map[string]CredentialConfiguration `json:"credential_configurations_supported"`
	Display                           []Display                          `json:"display,omitempty"`
}

// IssuerName returns the issuer's display name for the given locale, falling
// back to the first display entry and finally the issuer identifier.
func (m CredentialIssuerMetadata) IssuerName(locale string) string {
	for _, display := range m.Display {
		if display.Locale == locale {
			return display.Name
		}
	}
	if len(m.Display) > 0 {
		return m.Display[0].Name
	}
	return m.CredentialIssuer
}

// ProviderMetadata holds the subset of OAuth2 Authorization Server Metadata the
// wallet needs.
type ProviderMetadata struct {
	Issuer        string `json:"issuer"`
	TokenEndpoint string `json:"token_endpoint"`
}

// CredentialConfiguration describes the shape of one issuable credential:
// format, type information, claim schema and display hints.
type CredentialConfiguration struct {
	Format               string               `json:"format"`
	Scope                string               `json:"scope,omitempty"`
	CredentialDefinition CredentialDefinition `json:"credential_definition"`
	Display              []Display            `json:"display,omitempty"`
}

// CredentialDefinition carries the credential type list and the (possibly
// nested) claim schema.
type CredentialDefinition struct {
	Type              []string              `json:"type,omitempty"`
	CredentialSubject map[string]ClaimEntry `json:"credentialSubject,omitempty"`
}

// ClaimEntry is one node in the claim schema: either a leaf claim definition or
// a nested group of claims. A node with a non-empty Nested map is a group.
type ClaimEntry struct {
	Mandatory bool                  `json:"mandatory,omitempty"`
	ValueType string                `json:"value_type,omitempty"`
	Display   []Display             `json:"display,omitempty"`
	Nested    map[string]ClaimEntry `json:"claims,omitempty"`
}

// Display is a locale-tagged rendering hint for a credential, claim or issuer.
type Display struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Locale          string `json:"locale,omitempty"`
	Logo            *Image `json:"logo,omitempty"`
	BackgroundImage *Image `json:"background_image,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	TextColor       string `json:"text_color,omitempty"`
}

// Image references display artwork by URI.
type Image struct {
	URI     string `json:"uri,omitempty"`
	AltText string `json:"alt_text,omitempty"`
}

// TokenRequest is the form-encoded request to the token endpoint for the
// pre-authorized code grant.
type TokenRequest struct {
	GrantType         string
	PreAuthorizedCode string
	TxCode            string
}

// FormEncode renders the request as application/x-www-form-urlencoded values.
func (r TokenRequest) FormEncode() url.Values {
	values := url.Values{}
	values.Set("grant_type", r.GrantType)
	values.Set("pre-authorized_code", r.PreAuthorizedCode)
	if r.TxCode != "" {
		values.Set("tx_code", r.TxCode)
	}
	return values
}

// TokenResponse is returned by the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
	CNonce      string `json:"c_nonce,omitempty"`
	// AuthorizationPending signals a deferred grant, unused in the
	// pre-authorized flow but part of the wire contract.
	AuthorizationPending bool `json:"authorization_pending,omitempty"`
}

// CredentialRequest asks the issuer to issue one credential, bound to the
// holder key demonstrated by the proof.
type CredentialRequest struct {
	Format               string                  `json:"format"`
	CredentialDefinition *CredentialDefinition   `json:"credential_definition,omitempty"`
	Proof                *CredentialRequestProof `json:"proof,omitempty"`
}

// CredentialRequestProof is the holder-binding proof of a credential request.
type CredentialRequestProof struct {
	ProofType string `json:"proof_type"`
	JWT       string `json:"jwt"`
}

// CredentialResponse is returned by the credential endpoint. Either Credential
// holds the issued credential, or TransactionID references a deferred issuance.
type CredentialResponse struct {
	Credential    string `json:"credential,omitempty"`
	Format        string `json:"format,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	CNonce        string `json:"c_nonce,omitempty"`
}

// Deferred returns true when the issuer deferred issuance to a later moment.
func (r CredentialResponse) Deferred() bool {
	return r.Credential == "" && r.TransactionID != ""
}

// DeferredCredentialRequest retrieves a previously deferred credential.
type DeferredCredentialRequest struct {
	TransactionID string `json:"transaction_id"`
}

// NotificationRequest informs the issuer about the outcome of an issuance.
type NotificationRequest struct {
	NotificationID string `json:"notification_id"`
	Event          string `json:"event"`
}
