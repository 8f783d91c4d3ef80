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
	"encoding/json"
	"fmt"

	"github.com/wallet-foundation/wallet-node/credential"
	"github.com/wallet-foundation/wallet-node/openid4vci"
)

// Event is the closed set of inputs to Update. Shell events arrive serialized
// over the core boundary; result events are produced by capability
// continuations and never cross the boundary.
type Event interface {
	eventName() string
}

// Shell events.
type (
	// Ready signals the shell finished booting; triggers the initial
	// credential list load.
	Ready struct{}
	// SelectCredential opens the detail view of a stored credential.
	SelectCredential struct {
		ID string `json:"id"`
	}
	// DeleteCredential removes a stored credential.
	DeleteCredential struct {
		ID string `json:"id"`
	}
	// ScanIssuanceOffer submits a scanned or pasted credential offer.
	ScanIssuanceOffer struct {
		Offer string `json:"offer"`
	}
	// AcceptOffer is the user's consent to the active offer.
	AcceptOffer struct{}
	// EnterPIN submits the transaction code asked for by the issuer.
	EnterPIN struct {
		PIN string `json:"pin"`
	}
	// Cancel aborts the active flow from any state.
	Cancel struct{}
)

// Result events, delivered by capability continuations. Flow-scoped results
// carry the flow ID they belong to so deliveries for a cancelled or superseded
// flow can be dropped.
type (
	// CredentialsLoaded carries the deserialized credential list.
	CredentialsLoaded struct {
		Credentials []credential.Credential
	}
	// CredentialDeleted confirms removal of a stored credential.
	CredentialDeleted struct {
		ID string
	}
	// MetadataReceived carries the issuer's credential issuer metadata.
	MetadataReceived struct {
		FlowID   string
		Metadata *openid4vci.CredentialIssuerMetadata
	}
	// ProviderMetadataReceived carries the issuer's OAuth server metadata.
	ProviderMetadataReceived struct {
		FlowID   string
		Metadata *openid4vci.ProviderMetadata
	}
	// ImageFetched carries one resolved logo or background image.
	ImageFetched struct {
		FlowID          string
		ConfigurationID string
		Kind            ImageKind
		Image           credential.Image
	}
	// TokenReceived carries the token endpoint's response.
	TokenReceived struct {
		FlowID   string
		Response openid4vci.TokenResponse
	}
	// ProofCreated carries the signed holder-binding proof.
	ProofCreated struct {
		FlowID string
		Proof  string
	}
	// CredentialReceived carries the credential endpoint's response for one
	// offered configuration.
	CredentialReceived struct {
		FlowID          string
		ConfigurationID string
		Response        openid4vci.CredentialResponse
	}
	// CredentialStored confirms persistence of one issued credential.
	CredentialStored struct {
		FlowID          string
		ConfigurationID string
	}
	// IssuanceFailed reports a transport or protocol failure within a flow.
	IssuanceFailed struct {
		FlowID  string
		Message string
	}
	// Failed reports a failure outside any flow.
	Failed struct {
		Message string
	}
)

// ImageKind distinguishes the two image slots of an offered credential.
type ImageKind string

const (
	ImageKindLogo       ImageKind = "logo"
	ImageKindBackground ImageKind = "background"
)

func (Ready) eventName() string                    { return "ready" }
func (SelectCredential) eventName() string         { return "select_credential" }
func (DeleteCredential) eventName() string         { return "delete_credential" }
func (ScanIssuanceOffer) eventName() string        { return "scan_issuance_offer" }
func (AcceptOffer) eventName() string              { return "accept_offer" }
func (EnterPIN) eventName() string                 { return "enter_pin" }
func (Cancel) eventName() string                   { return "cancel" }
func (CredentialsLoaded) eventName() string        { return "credentials_loaded" }
func (CredentialDeleted) eventName() string        { return "credential_deleted" }
func (MetadataReceived) eventName() string         { return "metadata_received" }
func (ProviderMetadataReceived) eventName() string { return "provider_metadata_received" }
func (ImageFetched) eventName() string             { return "image_fetched" }
func (TokenReceived) eventName() string            { return "token_received" }
func (ProofCreated) eventName() string             { return "proof_created" }
func (CredentialReceived) eventName() string       { return "credential_received" }
func (CredentialStored) eventName() string         { return "credential_stored" }
func (IssuanceFailed) eventName() string           { return "issuance_failed" }
func (Failed) eventName() string                   { return "failed" }

type eventEnvelope struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Offer string `json:"offer,omitempty"`
	PIN   string `json:"pin,omitempty"`
}

// DecodeEvent deserializes a shell event. Result events are internal and are
// rejected here: a shell delivering one is a contract violation.
func DecodeEvent(data []byte) (Event, error) {
	envelope := eventEnvelope{}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("unable to decode event: %w", err)
	}
	switch envelope.Type {
	case Ready{}.eventName():
		return Ready{}, nil
	case SelectCredential{}.eventName():
		return SelectCredential{ID: envelope.ID}, nil
	case DeleteCredential{}.eventName():
		return DeleteCredential{ID: envelope.ID}, nil
	case ScanIssuanceOffer{}.eventName():
		return ScanIssuanceOffer{Offer: envelope.Offer}, nil
	case AcceptOffer{}.eventName():
		return AcceptOffer{}, nil
	case EnterPIN{}.eventName():
		return EnterPIN{PIN: envelope.PIN}, nil
	case Cancel{}.eventName():
		return Cancel{}, nil
	default:
		return nil, fmt.Errorf("unknown event type: %s", envelope.Type)
	}
}

// EncodeEvent serializes a shell event, the inverse of DecodeEvent. Shells use
// a native equivalent; this serves the in-process host and tests.
func EncodeEvent(event Event) ([]byte, error) {
	envelope := eventEnvelope{Type: event.eventName()}
	switch concrete := event.(type) {
	case Ready, AcceptOffer, Cancel:
	case SelectCredential:
		envelope.ID = concrete.ID
	case DeleteCredential:
		envelope.ID = concrete.ID
	case ScanIssuanceOffer:
		envelope.Offer = concrete.Offer
	case EnterPIN:
		envelope.PIN = concrete.PIN
	default:
		return nil, fmt.Errorf("event type cannot cross the core boundary: %s", event.eventName())
	}
	return json.Marshal(envelope)
}
