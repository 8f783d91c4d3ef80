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

	"github.com/wallet-foundation/wallet-node/credential"
	"github.com/wallet-foundation/wallet-node/openid4vci"
	"github.com/wallet-foundation/wallet-node/wallet/log"
)

// flowStateExpirySeconds is the expiry hint stored with persisted flow state.
const flowStateExpirySeconds = 900

// Update applies one event to the model and requests follow-up effects. It is
// the sole mutator of the model, runs to completion without blocking, and is
// never called re-entrantly by the bridge. Every pass ends with a render
// signal so the shell redraws from the new state.
func Update(event Event, model *Model, caps *Capabilities) {
	defer caps.Render.Render()

	switch e := event.(type) {
	case Ready:
		reloadCredentials(caps)
	case CredentialsLoaded:
		model.Credentials = e.Credentials
		if model.Issuance == nil && model.ActiveView != AspectCredentialDetail {
			model.ActiveView = AspectCredentialList
		}
	case SelectCredential:
		model.Selected = e.ID
		model.ActiveView = AspectCredentialDetail
	case DeleteCredential:
		id := e.ID
		caps.Credentials.RemoveCredential(id, func(err error) Event {
			if err != nil {
				return Failed{Message: fmt.Sprintf("unable to delete credential: %s", err)}
			}
			return CredentialDeleted{ID: id}
		})
	case CredentialDeleted:
		if model.Selected == e.ID {
			model.Selected = ""
		}
		model.ActiveView = AspectCredentialList
		reloadCredentials(caps)
	case ScanIssuanceOffer:
		scanOffer(e, model, caps)
	case MetadataReceived:
		metadataReceived(e, model, caps)
	case ProviderMetadataReceived:
		providerMetadataReceived(e, model, caps)
	case ImageFetched:
		imageFetched(e, model)
	case AcceptOffer:
		acceptOffer(model, caps)
	case EnterPIN:
		enterPIN(e, model)
	case TokenReceived:
		tokenReceived(e, model, caps)
	case ProofCreated:
		proofCreated(e, model, caps)
	case CredentialReceived:
		credentialReceived(e, model, caps)
	case CredentialStored:
		credentialStored(e, model, caps)
	case Cancel:
		cancel(model, caps)
	case IssuanceFailed:
		if model.Issuance == nil || model.Issuance.FlowID() != e.FlowID {
			dropStale(event)
			return
		}
		model.fail(e.Message)
	case Failed:
		model.fail(e.Message)
	default:
		// closed union; a new event variant without a handler is a defect
		model.fail(fmt.Sprintf("unhandled event: %s", event.eventName()))
	}
}

func scanOffer(e ScanIssuanceOffer, model *Model, caps *Capabilities) {
	state, err := FromOffer(e.Offer)
	if err != nil {
		model.fail(err.Error())
		return
	}
	model.Issuance = state
	model.Error = ""
	model.ActiveView = AspectIssuanceOffer
	flowID := state.Flow.ID
	caps.Issuer.Metadata(state.Flow.Offer.CredentialIssuer, func(metadata *openid4vci.CredentialIssuerMetadata, err error) Event {
		if err != nil {
			return IssuanceFailed{FlowID: flowID, Message: err.Error()}
		}
		return MetadataReceived{FlowID: flowID, Metadata: metadata}
	})
	persistFlow(state, caps)
}

func metadataReceived(e MetadataReceived, model *Model, caps *Capabilities) {
	state, ok := model.Issuance.(*Offered)
	if !ok || state.Flow.ID != e.FlowID {
		dropStale(e)
		return
	}
	state.Flow.Metadata = e.Metadata
	flowID := state.Flow.ID
	caps.Issuer.OAuthMetadata(state.Flow.Offer.CredentialIssuer, func(metadata *openid4vci.ProviderMetadata, err error) Event {
		if err != nil {
			return IssuanceFailed{FlowID: flowID, Message: err.Error()}
		}
		return ProviderMetadataReceived{FlowID: flowID, Metadata: metadata}
	})
}

func providerMetadataReceived(e ProviderMetadataReceived, model *Model, caps *Capabilities) {
	state, ok := model.Issuance.(*Offered)
	if !ok || state.Flow.ID != e.FlowID {
		dropStale(e)
		return
	}
	state.Flow.OAuth = e.Metadata
	next, err := state.WithMetadata()
	if err != nil {
		model.fail(err.Error())
		return
	}
	model.Issuance = next
	model.ActiveView = AspectIssuanceOffer
	requestImages(next, caps)
	persistFlow(next, caps)
}

func requestImages(state *IssuerMetadata, caps *Capabilities) {
	flowID := state.Flow.ID
	for configurationID, offered := range state.Offered {
		if offered.NeedsLogo() {
			caps.Issuer.Image(offered.LogoURI(), imageContinuation(flowID, configurationID, ImageKindLogo))
		}
		if offered.NeedsBackground() {
			caps.Issuer.Image(offered.BackgroundURI(), imageContinuation(flowID, configurationID, ImageKindBackground))
		}
	}
}

func imageContinuation(flowID, configurationID string, kind ImageKind) func(credential.Image, error) Event {
	return func(image credential.Image, err error) Event {
		if err != nil {
			// artwork is cosmetic; the view renders without it
			log.Logger().WithError(err).Warnf("unable to fetch %s image for %s", kind, configurationID)
			return nil
		}
		return ImageFetched{FlowID: flowID, ConfigurationID: configurationID, Kind: kind, Image: image}
	}
}

// imageFetched populates an image slot. Results for the two slots of a
// configuration may arrive in any order; each only touches its own field and
// only when still empty, so deliveries are commutative and idempotent.
func imageFetched(e ImageFetched, model *Model) {
	offered := offeredMap(model.Issuance)
	if offered == nil || model.Issuance.FlowID() != e.FlowID {
		dropStale(e)
		return
	}
	entry, ok := offered[e.ConfigurationID]
	if !ok {
		dropStale(e)
		return
	}
	image := e.Image
	switch e.Kind {
	case ImageKindLogo:
		if entry.Logo == nil {
			entry.Logo = &image
		}
	case ImageKindBackground:
		if entry.Background == nil {
			entry.Background = &image
		}
	}
}

func acceptOffer(model *Model, caps *Capabilities) {
	var accepted *Accepted
	switch state := model.Issuance.(type) {
	case *IssuerMetadata:
		accepted = state.Accept()
		model.Issuance = accepted
	case *Accepted:
		accepted = state
	default:
		model.fail("no active offer to accept")
		return
	}
	model.Error = ""
	if !accepted.ReadyForToken() {
		// a transaction code is required before the token request may go out
		model.ActiveView = AspectIssuancePIN
		persistFlow(accepted, caps)
		return
	}
	flowID := accepted.Flow.ID
	caps.Issuer.AccessToken(accepted.Flow, func(response openid4vci.TokenResponse, err error) Event {
		if err != nil {
			return IssuanceFailed{FlowID: flowID, Message: err.Error()}
		}
		return TokenReceived{FlowID: flowID, Response: response}
	})
	persistFlow(accepted, caps)
}

func enterPIN(e EnterPIN, model *Model) {
	if model.Issuance == nil {
		model.fail("no active offer to enter a transaction code for")
		return
	}
	model.ActiveView = AspectIssuancePIN
	if err := setPIN(model.Issuance, e.PIN); err != nil {
		// validation failure preserves flow progress for a corrected resubmit
		model.Error = err.Error()
		return
	}
	model.Error = ""
}

func tokenReceived(e TokenReceived, model *Model, caps *Capabilities) {
	state, ok := model.Issuance.(*Accepted)
	if !ok || state.Flow.ID != e.FlowID {
		dropStale(e)
		return
	}
	next := state.WithToken(e.Response)
	model.Issuance = next
	flowID := next.Flow.ID
	caps.Signer.SignProof(next.Flow, func(proof string, err error) Event {
		if err != nil {
			return IssuanceFailed{FlowID: flowID, Message: err.Error()}
		}
		return ProofCreated{FlowID: flowID, Proof: proof}
	})
	persistFlow(next, caps)
}

func proofCreated(e ProofCreated, model *Model, caps *Capabilities) {
	state, ok := model.Issuance.(*Token)
	if !ok || state.Flow.ID != e.FlowID {
		dropStale(e)
		return
	}
	next := state.WithProof(e.Proof)
	model.Issuance = next
	flowID := next.Flow.ID
	for configurationID, offered := range next.Offered {
		requestedID := configurationID
		caps.Issuer.Credential(next.Flow, offered.Configuration, next.Proof, func(response openid4vci.CredentialResponse, err error) Event {
			if err != nil {
				return IssuanceFailed{FlowID: flowID, Message: err.Error()}
			}
			return CredentialReceived{FlowID: flowID, ConfigurationID: requestedID, Response: response}
		})
	}
	persistFlow(next, caps)
}

func credentialReceived(e CredentialReceived, model *Model, caps *Capabilities) {
	state, ok := model.Issuance.(*Proof)
	if !ok || state.Flow.ID != e.FlowID {
		dropStale(e)
		return
	}
	offered, ok := state.Offered[e.ConfigurationID]
	if !ok {
		dropStale(e)
		return
	}
	if e.Response.Deferred() {
		log.Logger().Infof("issuance of %s deferred by issuer (transaction %s)", e.ConfigurationID, e.Response.TransactionID)
		state.MarkDeferred(e.ConfigurationID, e.Response.TransactionID)
		finishIfComplete(state, model, caps)
		return
	}
	cred, err := credential.FromIssued(
		e.Response.Credential,
		offered.Configuration,
		state.Flow.Offer.CredentialIssuer,
		state.Flow.IssuerName(DefaultLocale),
		offered.Logo,
		offered.Background,
	)
	if err != nil {
		model.fail(err.Error())
		return
	}
	flowID := state.Flow.ID
	configurationID := e.ConfigurationID
	caps.Credentials.SaveCredential(*cred, func(err error) Event {
		if err != nil {
			return IssuanceFailed{FlowID: flowID, Message: fmt.Sprintf("unable to store credential: %s", err)}
		}
		return CredentialStored{FlowID: flowID, ConfigurationID: configurationID}
	})
}

func credentialStored(e CredentialStored, model *Model, caps *Capabilities) {
	state, ok := model.Issuance.(*Proof)
	if !ok || state.Flow.ID != e.FlowID {
		dropStale(e)
		return
	}
	state.MarkStored(e.ConfigurationID)
	finishIfComplete(state, model, caps)
}

func finishIfComplete(state *Proof, model *Model, caps *Capabilities) {
	if !state.Complete() {
		return
	}
	purgeFlow(state.Flow.ID, caps)
	model.reset()
	reloadCredentials(caps)
}

func cancel(model *Model, caps *Capabilities) {
	if model.Issuance != nil {
		// in-flight results for this flow will be dropped as stale
		purgeFlow(model.Issuance.FlowID(), caps)
	}
	model.reset()
}

func reloadCredentials(caps *Capabilities) {
	caps.Credentials.LoadCredentials(func(credentials []credential.Credential, err error) Event {
		if err != nil {
			return Failed{Message: fmt.Sprintf("unable to load credentials: %s", err)}
		}
		return CredentialsLoaded{Credentials: credentials}
	})
}

// persistFlow snapshots the flow to the state catalog so the shell can
// diagnose or expire interrupted flows.
func persistFlow(state IssuanceState, caps *Capabilities) {
	flow := currentFlow(state)
	if flow == nil {
		return
	}
	record := FlowRecord{State: state.Name(), Flow: *flow, ExpiresIn: flowStateExpirySeconds}
	caps.State.PutState(record, func(err error) Event {
		if err != nil {
			// store capability errors are integration defects
			return Failed{Message: fmt.Sprintf("unable to persist flow state: %s", err)}
		}
		return nil
	})
}

// purgeFlow removes persisted flow state, keyed by the flow ID. Deleting a
// record that was never written succeeds.
func purgeFlow(flowID string, caps *Capabilities) {
	caps.State.PurgeState(flowID, func(err error) Event {
		if err != nil {
			return Failed{Message: fmt.Sprintf("unable to purge flow state: %s", err)}
		}
		return nil
	})
}

func currentFlow(state IssuanceState) *Flow {
	switch s := state.(type) {
	case *Offered:
		return &s.Flow
	case *IssuerMetadata:
		return &s.Flow
	case *Accepted:
		return &s.Flow
	case *Token:
		return &s.Flow
	case *Proof:
		return &s.Flow
	default:
		return nil
	}
}

func dropStale(event Event) {
	log.Logger().WithField("event", event.eventName()).
		Debug("dropping effect result for a superseded flow")
}
