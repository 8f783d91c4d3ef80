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

// Package credential defines the holder-owned credential as it is persisted in
// the wallet, decoupled from whatever the issuer serves later: display metadata
// is stamped at issuance time so issuer metadata changes do not retroactively
// alter stored credentials.
package credential

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/wallet-foundation/wallet-node/openid4vci"
)

// Image is fetched display artwork, stored alongside the credential.
type Image struct {
	Data      []byte `json:"data,omitempty"`
	MediaType string `json:"media_type,omitempty"`
}

// Credential is the persisted, holder-owned artifact. Instances are created
// once on successful completion of an issuance flow and never mutated in
// place; updates are full overwrites keyed by ID.
type Credential struct {
	// ID uniquely identifies the credential within the wallet.
	ID string `json:"id"`
	// Issuer is the credential issuer's identifier (origin URL or DID).
	Issuer string `json:"issuer"`
	// IssuerName is the issuer's display name at issuance time.
	IssuerName string `json:"issuer_name,omitempty"`
	// Issued is the raw issued representation: an opaque signed envelope.
	Issued string `json:"issued"`
	// Format tags the envelope format (e.g. jwt_vc_json).
	Format string `json:"format"`
	// Type is the credential type list declared by the issuer.
	Type []string `json:"type,omitempty"`
	// SubjectClaims holds the claim set of each credential subject.
	SubjectClaims []map[string]any `json:"subject_claims,omitempty"`
	// IssuanceDate is when the credential was issued.
	IssuanceDate time.Time `json:"issuance_date"`
	// ValidFrom and ValidUntil bound the validity period when declared.
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	// Display is the configuration-time display metadata.
	Display []openid4vci.Display `json:"display,omitempty"`
	// ClaimSchema is the configuration-time claim definition tree, kept for
	// claim label resolution when rendering.
	ClaimSchema map[string]openid4vci.ClaimEntry `json:"claim_schema,omitempty"`
	// Logo and Background are artwork fetched during the issuance flow.
	Logo       *Image `json:"logo,omitempty"`
	Background *Image `json:"background,omitempty"`
}

// DisplayFor returns the display record for the requested locale, falling back
// to the first record. The second return value is false when the credential
// carries no display metadata at all.
func (c Credential) DisplayFor(locale string) (openid4vci.Display, bool) {
	for _, d := range c.Display {
		if d.Locale == locale {
			return d, true
		}
	}
	if len(c.Display) > 0 {
		return c.Display[0], true
	}
	return openid4vci.Display{}, false
}

// FromIssued maps a wire credential onto the persisted shape, stamping the
// display metadata and claim schema of the offered configuration. The envelope
// is decoded without signature verification: the wallet stores what it was
// given and leaves verification to relying parties.
func FromIssued(issued string, config openid4vci.CredentialConfiguration, issuer, issuerName string, logo, background *Image) (*Credential, error) {
	token, err := jwt.ParseString(issued, jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return nil, fmt.Errorf("unable to decode issued credential: %w", err)
	}

	result := Credential{
		Issuer:       issuer,
		IssuerName:   issuerName,
		Issued:       issued,
		Format:       config.Format,
		Type:         config.CredentialDefinition.Type,
		IssuanceDate: token.IssuedAt(),
		Display:      config.Display,
		ClaimSchema:  config.CredentialDefinition.CredentialSubject,
		Logo:         logo,
		Background:   background,
	}
	result.ID = token.JwtID()

	if !token.NotBefore().IsZero() {
		notBefore := token.NotBefore()
		result.ValidFrom = &notBefore
	}
	if !token.Expiration().IsZero() {
		expiration := token.Expiration()
		result.ValidUntil = &expiration
	}

	if vcClaim, ok := token.Get("vc"); ok {
		applyVCClaim(&result, vcClaim)
	}
	if len(result.SubjectClaims) == 0 {
		// fall back to the registered subject claim
		if subject := token.Subject(); subject != "" {
			result.SubjectClaims = []map[string]any{{"id": subject}}
		}
	}
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	return &result, nil
}

// applyVCClaim lifts id, type and subject claim sets out of the embedded
// W3C VC object.
func applyVCClaim(target *Credential, vcClaim any) {
	vcMap, ok := vcClaim.(map[string]any)
	if !ok {
		return
	}
	if id, ok := vcMap["id"].(string); ok && id != "" {
		target.ID = id
	}
	if rawTypes, ok := vcMap["type"].([]any); ok {
		types := make([]string, 0, len(rawTypes))
		for _, rawType := range rawTypes {
			if s, ok := rawType.(string); ok {
				types = append(types, s)
			}
		}
		if len(types) > 0 {
			target.Type = types
		}
	}
	switch subject := vcMap["credentialSubject"].(type) {
	case map[string]any:
		target.SubjectClaims = []map[string]any{subject}
	case []any:
		for _, entry := range subject {
			if claims, ok := entry.(map[string]any); ok {
				target.SubjectClaims = append(target.SubjectClaims, claims)
			}
		}
	}
}

// Marshal serializes the credential for the store capability.
func (c Credential) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Unmarshal deserializes a stored credential.
func Unmarshal(data []byte) (*Credential, error) {
	result := Credential{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unable to unmarshal stored credential: %w", err)
	}
	return &result, nil
}
