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

package wallet

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/wallet-foundation/wallet-node/credential"
	"github.com/wallet-foundation/wallet-node/openid4vci"
)

// IssuanceState is the active flow instance, a sealed union with one variant
// per protocol stage. A nil IssuanceState means no flow is active. Each
// variant's constructor requires the previous variant, so a stage cannot be
// entered without its prerequisite data.
type IssuanceState interface {
	// Name identifies the variant for logging and persisted flow records.
	Name() string
	// FlowID identifies the flow instance; results tagged with another ID
	// are stale and dropped.
	FlowID() string
}

// Flow carries the data shared by every stage: the immutable offer and grant,
// plus what has been acquired so far.
type Flow struct {
	// ID keys persisted flow state and tags outstanding effect results.
	ID    string
	Offer openid4vci.CredentialOffer
	Grant openid4vci.PreAuthorizedCodeGrant
	// Metadata and OAuth are populated while in the Offered stage.
	Metadata *openid4vci.CredentialIssuerMetadata
	OAuth    *openid4vci.ProviderMetadata
	// PIN is the validated transaction code entered by the user.
	PIN string
	// AccessToken and CNonce are populated by the token response.
	AccessToken string
	CNonce      string
}

// IssuerName returns the issuer's display name, falling back to its identifier
// while metadata is not in yet.
func (f Flow) IssuerName(locale string) string {
	if f.Metadata == nil {
		return f.Offer.CredentialIssuer
	}
	return f.Metadata.IssuerName(locale)
}

// OfferedCredential is the working entry for one offered configuration ID:
// the issuer-declared configuration plus whichever artwork has resolved so far.
type OfferedCredential struct {
	Configuration openid4vci.CredentialConfiguration
	Logo          *credential.Image
	Background    *credential.Image
}

// NeedsLogo returns true until the configuration's logo (if it declares one)
// has been fetched. It keeps returning false once the image is populated, so
// an image is fetched at most once per flow.
func (o OfferedCredential) NeedsLogo() bool {
	return o.Logo == nil && o.LogoURI() != ""
}

// NeedsBackground is NeedsLogo for the background image.
func (o OfferedCredential) NeedsBackground() bool {
	return o.Background == nil && o.BackgroundURI() != ""
}

// LogoURI returns the first logo URI declared by the configuration's display
// metadata, if any.
func (o OfferedCredential) LogoURI() string {
	for _, display := range o.Configuration.Display {
		if display.Logo != nil && display.Logo.URI != "" {
			return display.Logo.URI
		}
	}
	return ""
}

// BackgroundURI returns the first background image URI declared by the
// configuration's display metadata, if any.
func (o OfferedCredential) BackgroundURI() string {
	for _, display := range o.Configuration.Display {
		if display.BackgroundImage != nil && display.BackgroundImage.URI != "" {
			return display.BackgroundImage.URI
		}
	}
	return ""
}

// State variants, in protocol order.
type (
	// Offered holds a decoded offer while issuer metadata is being fetched.
	Offered struct {
		Flow Flow
	}
	// IssuerMetadata holds the offer with resolved metadata, awaiting the
	// user's decision.
	IssuerMetadata struct {
		Flow    Flow
		Offered map[string]*OfferedCredential
	}
	// Accepted holds a flow the user consented to. The token request is
	// issued from here once any required transaction code is present.
	Accepted struct {
		Flow    Flow
		Offered map[string]*OfferedCredential
	}
	// Token holds a flow with an access token, awaiting the holder-binding
	// proof.
	Token struct {
		Flow    Flow
		Offered map[string]*OfferedCredential
	}
	// Proof holds the proof and tracks per-configuration completion of the
	// credential requests.
	Proof struct {
		Flow    Flow
		Offered map[string]*OfferedCredential
		Proof   string
		// Stored marks configuration IDs whose credential was persisted.
		Stored map[string]bool
		// Deferred maps configuration IDs to the issuer's transaction ID
		// when issuance was deferred.
		Deferred map[string]string
	}
)

func (s Offered) Name() string        { return "offered" }
func (s IssuerMetadata) Name() string { return "issuer_metadata" }
func (s Accepted) Name() string       { return "accepted" }
func (s Token) Name() string          { return "token" }
func (s Proof) Name() string          { return "proof" }

func (s Offered) FlowID() string        { return s.Flow.ID }
func (s IssuerMetadata) FlowID() string { return s.Flow.ID }
func (s Accepted) FlowID() string       { return s.Flow.ID }
func (s Token) FlowID() string          { return s.Flow.ID }
func (s Proof) FlowID() string          { return s.Flow.ID }

// FromOffer decodes an offer and opens a flow in the Offered stage. Offers
// without a pre-authorized code grant are a terminal decode error.
func FromOffer(encoded string) (*Offered, error) {
	offer, err := openid4vci.ParseOffer(encoded)
	if err != nil {
		return nil, err
	}
	grant, err := offer.PreAuthorizedCode()
	if err != nil {
		return nil, err
	}
	return &Offered{Flow: Flow{
		ID:    uuid.NewString(),
		Offer: *offer,
		Grant: *grant,
	}}, nil
}

// WithMetadata advances to the IssuerMetadata stage, building the offered-map
// from the configurations referenced by the offer. Every offered configuration
// ID must be declared by the issuer's metadata.
func (s Offered) WithMetadata() (*IssuerMetadata, error) {
	if s.Flow.Metadata == nil || s.Flow.OAuth == nil {
		return nil, fmt.Errorf("issuer metadata is incomplete")
	}
	offered := make(map[string]*OfferedCredential, len(s.Flow.Offer.CredentialConfigurationIDs))
	for _, configurationID := range s.Flow.Offer.CredentialConfigurationIDs {
		configuration, ok := s.Flow.Metadata.CredentialConfigurationsSupported[configurationID]
		if !ok {
			return nil, openid4vci.Error{
				Code:       openid4vci.InvalidRequest,
				Err:        fmt.Errorf("offer references unknown credential configuration: %s", configurationID),
				StatusCode: http.StatusBadRequest,
			}
		}
		offered[configurationID] = &OfferedCredential{Configuration: configuration}
	}
	return &IssuerMetadata{Flow: s.Flow, Offered: offered}, nil
}

// Accept advances to the Accepted stage.
func (s IssuerMetadata) Accept() *Accepted {
	return &Accepted{Flow: s.Flow, Offered: s.Offered}
}

// ReadyForToken reports whether the token request may be issued: either the
// grant has no transaction code requirement, or a valid PIN is held.
func (s Accepted) ReadyForToken() bool {
	return openid4vci.ValidateTxCode(s.Flow.Grant.TxCode, s.Flow.PIN) == nil
}

// WithToken advances to the Token stage.
func (s Accepted) WithToken(response openid4vci.TokenResponse) *Token {
	flow := s.Flow
	flow.AccessToken = response.AccessToken
	flow.CNonce = response.CNonce
	return &Token{Flow: flow, Offered: s.Offered}
}

// WithProof advances to the Proof stage.
func (s Token) WithProof(proof string) *Proof {
	return &Proof{
		Flow:     s.Flow,
		Offered:  s.Offered,
		Proof:    proof,
		Stored:   map[string]bool{},
		Deferred: map[string]string{},
	}
}

// MarkStored records persistence of the credential for a configuration ID.
func (s *Proof) MarkStored(configurationID string) {
	s.Stored[configurationID] = true
}

// MarkDeferred records a deferred issuance for a configuration ID.
func (s *Proof) MarkDeferred(configurationID, transactionID string) {
	s.Deferred[configurationID] = transactionID
}

// Complete reports whether every offered configuration has been stored or
// deferred, at which point the flow can be cleared.
func (s Proof) Complete() bool {
	for configurationID := range s.Offered {
		if !s.Stored[configurationID] && s.Deferred[configurationID] == "" {
			return false
		}
	}
	return true
}

// offeredMap returns the working offered-map of any stage that has one.
func offeredMap(state IssuanceState) map[string]*OfferedCredential {
	switch s := state.(type) {
	case *IssuerMetadata:
		return s.Offered
	case *Accepted:
		return s.Offered
	case *Token:
		return s.Offered
	case *Proof:
		return s.Offered
	default:
		return nil
	}
}

// setPIN validates and stores a transaction code on any stage that still
// accepts one. Validation failure preserves the flow.
func setPIN(state IssuanceState, pin string) error {
	var flow *Flow
	switch s := state.(type) {
	case *IssuerMetadata:
		flow = &s.Flow
	case *Accepted:
		flow = &s.Flow
	default:
		return fmt.Errorf("no active offer to enter a transaction code for")
	}
	if err := openid4vci.ValidateTxCode(flow.Grant.TxCode, pin); err != nil {
		return err
	}
	flow.PIN = pin
	return nil
}

// FlowRecord is the wire form of persisted flow state, keyed by the flow ID in
// the state catalog with an expiry hint for the shell's garbage collection.
type FlowRecord struct {
	State     string `json:"state"`
	Flow      Flow   `json:"flow"`
	ExpiresIn int    `json:"expires_in"`
}
