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
	"errors"
	"fmt"
	"sort"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/nuts-foundation/go-did/did"

	"github.com/wallet-foundation/wallet-node/capability"
	"github.com/wallet-foundation/wallet-node/credential"
	"github.com/wallet-foundation/wallet-node/didkey"
	"github.com/wallet-foundation/wallet-node/openid4vci"
)

// The flow logic depends on these role interfaces only, never on the
// underlying capability handles. They are the seam across which the network
// and storage collaborators are substituted in tests. All of them are
// implemented by one Provider value.
//
//go:generate mockgen -destination=provider_mock.go -package=wallet -source=provider.go
type (
	// IssuerClient is the transport to a credential issuer.
	IssuerClient interface {
		// Metadata fetches the issuer's credential issuer metadata.
		Metadata(issuer string, resume func(*openid4vci.CredentialIssuerMetadata, error) Event)
		// OAuthMetadata fetches the issuer's OAuth2 authorization server metadata.
		OAuthMetadata(issuer string, resume func(*openid4vci.ProviderMetadata, error) Event)
		// Authorization starts an authorization code grant. The wallet
		// supports the pre-authorized code flow only, so this always fails.
		Authorization() error
		// AccessToken redeems the flow's pre-authorized code (plus PIN when
		// required) for an access token.
		AccessToken(flow Flow, resume func(openid4vci.TokenResponse, error) Event)
		// Credential requests issuance of one offered configuration, bound
		// to the holder key demonstrated by the proof.
		Credential(flow Flow, configuration openid4vci.CredentialConfiguration, proof string, resume func(openid4vci.CredentialResponse, error) Event)
		// DeferredCredential retrieves a previously deferred credential.
		DeferredCredential(flow Flow, transactionID string, resume func(openid4vci.CredentialResponse, error) Event)
		// Image fetches display artwork by URI.
		Image(uri string, resume func(credential.Image, error) Event)
		// Notify informs the issuer of the issuance outcome.
		Notify(flow Flow, notification openid4vci.NotificationRequest, resume func(error) Event)
	}

	// VerifierClient is the transport to a presentation verifier.
	VerifierClient interface {
		// RequestObject fetches an authorization request object by reference.
		RequestObject(uri string, resume func(string, error) Event)
		// Present submits a verifiable presentation to the verifier.
		Present(endpoint string, vpToken string, resume func(error) Event)
	}

	// CredentialStorer owns the credential catalog.
	CredentialStorer interface {
		SaveCredential(cred credential.Credential, resume func(error) Event)
		LoadCredentials(resume func([]credential.Credential, error) Event)
		FindCredentials(filter func(credential.Credential) bool, resume func([]credential.Credential, error) Event)
		RemoveCredential(id string, resume func(error) Event)
	}

	// StateStore persists flow state keyed by flow ID, so an interrupted
	// flow can be diagnosed or resumed by the shell.
	StateStore interface {
		PutState(record FlowRecord, resume func(error) Event)
		GetState(id string, resume func(*FlowRecord, error) Event)
		PurgeState(id string, resume func(error) Event)
	}

	// Signer produces holder-binding proofs with the wallet's holder key.
	Signer interface {
		SignProof(flow Flow, resume func(proof string, err error) Event)
		Algorithm() jwa.SignatureAlgorithm
	}

	// DIDResolver resolves a DID URL to its DID document.
	DIDResolver interface {
		Resolve(didURL string) (*did.Document, error)
	}
)

// Provider composes the generic capabilities into the role interfaces above.
type Provider struct {
	store    Store
	keyStore KeyStore
	http     HTTP
	signer   *ProofSigner
	resolver didkey.Resolver
}

// NewProvider builds a Provider over the given capability handles.
func NewProvider(store Store, keyStore KeyStore, http HTTP) *Provider {
	return &Provider{
		store:    store,
		keyStore: keyStore,
		http:     http,
		signer:   NewProofSigner(keyStore),
	}
}

var _ IssuerClient = (*Provider)(nil)
var _ VerifierClient = (*Provider)(nil)
var _ CredentialStorer = (*Provider)(nil)
var _ StateStore = (*Provider)(nil)
var _ Signer = (*Provider)(nil)
var _ DIDResolver = (*Provider)(nil)

// decodeJSONResponse unwraps an HTTP result and decodes a 2xx JSON body into
// target. Non-2xx responses are decoded as protocol errors when possible.
func decodeJSONResponse(result capability.HTTPResult, target any) error {
	response, err := result.IntoResponse()
	if err != nil {
		return err
	}
	if response.Status < 200 || response.Status > 299 {
		return httpError(response)
	}
	if err := json.Unmarshal(response.Body, target); err != nil {
		return fmt.Errorf("unable to unmarshal response: %w", err)
	}
	return nil
}

func httpError(response *capability.HTTPResponse) error {
	protocolError := openid4vci.Error{}
	if err := json.Unmarshal(response.Body, &protocolError); err == nil && protocolError.Code != "" {
		protocolError.StatusCode = response.Status
		return protocolError
	}
	return fmt.Errorf("server returned HTTP %d", response.Status)
}

func (p *Provider) Metadata(issuer string, resume func(*openid4vci.CredentialIssuerMetadata, error) Event) {
	p.http.Exchange(capability.GetOperation(issuer+openid4vci.CredentialIssuerMetadataWellKnownPath), func(result capability.HTTPResult) Event {
		metadata := openid4vci.CredentialIssuerMetadata{}
		if err := decodeJSONResponse(result, &metadata); err != nil {
			return resume(nil, fmt.Errorf("unable to load credential issuer metadata: %w", err))
		}
		if metadata.CredentialIssuer != issuer {
			return resume(nil, fmt.Errorf("issuer metadata (%s) does not match credential issuer (%s)", metadata.CredentialIssuer, issuer))
		}
		return resume(&metadata, nil)
	})
}

func (p *Provider) OAuthMetadata(issuer string, resume func(*openid4vci.ProviderMetadata, error) Event) {
	p.http.Exchange(capability.GetOperation(issuer+openid4vci.ProviderMetadataWellKnownPath), func(result capability.HTTPResult) Event {
		metadata := openid4vci.ProviderMetadata{}
		if err := decodeJSONResponse(result, &metadata); err != nil {
			return resume(nil, fmt.Errorf("unable to load OAuth server metadata: %w", err))
		}
		if metadata.TokenEndpoint == "" {
			return resume(nil, errors.New("OAuth server metadata does not contain token_endpoint"))
		}
		return resume(&metadata, nil)
	})
}

func (p *Provider) Authorization() error {
	return errors.New("authorization code grant is not supported, only the pre-authorized code flow")
}

func (p *Provider) AccessToken(flow Flow, resume func(openid4vci.TokenResponse, error) Event) {
	request := openid4vci.TokenRequest{
		GrantType:         openid4vci.PreAuthorizedCodeGrantType,
		PreAuthorizedCode: flow.Grant.PreAuthorizedCode,
		TxCode:            flow.PIN,
	}
	operation := capability.PostOperation(flow.OAuth.TokenEndpoint, "application/x-www-form-urlencoded", []byte(request.FormEncode().Encode()))
	p.http.Exchange(operation, func(result capability.HTTPResult) Event {
		tokenResponse := openid4vci.TokenResponse{}
		if err := decodeJSONResponse(result, &tokenResponse); err != nil {
			return resume(openid4vci.TokenResponse{}, fmt.Errorf("token request failed: %w", err))
		}
		if tokenResponse.AccessToken == "" {
			return resume(openid4vci.TokenResponse{}, errors.New("token response does not contain an access token"))
		}
		return resume(tokenResponse, nil)
	})
}

func (p *Provider) Credential(flow Flow, configuration openid4vci.CredentialConfiguration, proof string, resume func(openid4vci.CredentialResponse, error) Event) {
	request := openid4vci.CredentialRequest{
		Format:               configuration.Format,
		CredentialDefinition: &configuration.CredentialDefinition,
		Proof: &openid4vci.CredentialRequestProof{
			ProofType: "jwt",
			JWT:       proof,
		},
	}
	operation := capability.PostOperation(flow.Metadata.CredentialEndpoint, "application/json", mustMarshal(request)).
		WithHeader("Authorization", "Bearer "+flow.AccessToken)
	p.http.Exchange(operation, func(result capability.HTTPResult) Event {
		credentialResponse := openid4vci.CredentialResponse{}
		if err := decodeJSONResponse(result, &credentialResponse); err != nil {
			return resume(openid4vci.CredentialResponse{}, fmt.Errorf("credential request failed: %w", err))
		}
		if credentialResponse.Credential == "" && !credentialResponse.Deferred() {
			return resume(openid4vci.CredentialResponse{}, errors.New("credential response contains neither credential nor transaction_id"))
		}
		return resume(credentialResponse, nil)
	})
}

func (p *Provider) DeferredCredential(flow Flow, transactionID string, resume func(openid4vci.CredentialResponse, error) Event) {
	request := openid4vci.DeferredCredentialRequest{TransactionID: transactionID}
	operation := capability.PostOperation(flow.Metadata.DeferredCredentialEndpoint, "application/json", mustMarshal(request)).
		WithHeader("Authorization", "Bearer "+flow.AccessToken)
	p.http.Exchange(operation, func(result capability.HTTPResult) Event {
		credentialResponse := openid4vci.CredentialResponse{}
		if err := decodeJSONResponse(result, &credentialResponse); err != nil {
			return resume(openid4vci.CredentialResponse{}, fmt.Errorf("deferred credential request failed: %w", err))
		}
		return resume(credentialResponse, nil)
	})
}

func (p *Provider) Image(uri string, resume func(credential.Image, error) Event) {
	p.http.Exchange(capability.GetOperation(uri), func(result capability.HTTPResult) Event {
		response, err := result.IntoResponse()
		if err != nil {
			return resume(credential.Image{}, err)
		}
		if response.Status < 200 || response.Status > 299 {
			return resume(credential.Image{}, fmt.Errorf("image fetch returned HTTP %d", response.Status))
		}
		return resume(credential.Image{Data: response.Body, MediaType: response.ContentType()}, nil)
	})
}

func (p *Provider) Notify(flow Flow, notification openid4vci.NotificationRequest, resume func(error) Event) {
	if flow.Metadata.NotificationEndpoint == "" {
		// notifications are best-effort; nothing to do
		return
	}
	operation := capability.PostOperation(flow.Metadata.NotificationEndpoint, "application/json", mustMarshal(notification)).
		WithHeader("Authorization", "Bearer "+flow.AccessToken)
	p.http.Exchange(operation, func(result capability.HTTPResult) Event {
		response, err := result.IntoResponse()
		if err != nil {
			return resume(err)
		}
		if response.Status < 200 || response.Status > 299 {
			return resume(fmt.Errorf("notification returned HTTP %d", response.Status))
		}
		return resume(nil)
	})
}

func (p *Provider) RequestObject(uri string, resume func(string, error) Event) {
	p.http.Exchange(capability.GetOperation(uri), func(result capability.HTTPResult) Event {
		response, err := result.IntoResponse()
		if err != nil {
			return resume("", err)
		}
		if response.Status < 200 || response.Status > 299 {
			return resume("", fmt.Errorf("request object fetch returned HTTP %d", response.Status))
		}
		return resume(string(response.Body), nil)
	})
}

func (p *Provider) Present(endpoint string, vpToken string, resume func(error) Event) {
	values := "vp_token=" + vpToken
	operation := capability.PostOperation(endpoint, "application/x-www-form-urlencoded", []byte(values))
	p.http.Exchange(operation, func(result capability.HTTPResult) Event {
		response, err := result.IntoResponse()
		if err != nil {
			return resume(err)
		}
		if response.Status < 200 || response.Status > 299 {
			return resume(fmt.Errorf("presentation submission returned HTTP %d", response.Status))
		}
		return resume(nil)
	})
}

func (p *Provider) SaveCredential(cred credential.Credential, resume func(error) Event) {
	p.store.Save(capability.CatalogCredential, cred.ID, mustMarshal(cred), func(result capability.StoreResult) Event {
		return resume(result.IntoSaved())
	})
}

func (p *Provider) LoadCredentials(resume func([]credential.Credential, error) Event) {
	p.store.List(capability.CatalogCredential, func(result capability.StoreResult) Event {
		entries, err := result.IntoList()
		if err != nil {
			return resume(nil, err)
		}
		credentials := make([]credential.Credential, 0, len(entries))
		for _, entry := range entries {
			data, present := entry.Bytes()
			if !present {
				continue
			}
			cred, err := credential.Unmarshal(data)
			if err != nil {
				return resume(nil, err)
			}
			credentials = append(credentials, *cred)
		}
		// listing order is shelf-dependent
		sort.Slice(credentials, func(i, j int) bool {
			return credentials[i].ID < credentials[j].ID
		})
		return resume(credentials, nil)
	})
}

func (p *Provider) FindCredentials(filter func(credential.Credential) bool, resume func([]credential.Credential, error) Event) {
	p.LoadCredentials(func(credentials []credential.Credential, err error) Event {
		if err != nil {
			return resume(nil, err)
		}
		matches := make([]credential.Credential, 0, len(credentials))
		for _, cred := range credentials {
			if filter(cred) {
				matches = append(matches, cred)
			}
		}
		return resume(matches, nil)
	})
}

func (p *Provider) RemoveCredential(id string, resume func(error) Event) {
	p.store.Delete(capability.CatalogCredential, id, func(result capability.StoreResult) Event {
		return resume(result.IntoDeleted())
	})
}

func (p *Provider) PutState(record FlowRecord, resume func(error) Event) {
	p.store.Save(capability.CatalogState, record.Flow.ID, mustMarshal(record), func(result capability.StoreResult) Event {
		return resume(result.IntoSaved())
	})
}

func (p *Provider) GetState(id string, resume func(*FlowRecord, error) Event) {
	p.store.List(capability.CatalogState, func(result capability.StoreResult) Event {
		entries, err := result.IntoList()
		if err != nil {
			return resume(nil, err)
		}
		for _, entry := range entries {
			data, present := entry.Bytes()
			if !present {
				continue
			}
			record := FlowRecord{}
			if err := json.Unmarshal(data, &record); err != nil {
				continue
			}
			if record.Flow.ID == id {
				return resume(&record, nil)
			}
		}
		return resume(nil, nil)
	})
}

func (p *Provider) PurgeState(id string, resume func(error) Event) {
	p.store.Delete(capability.CatalogState, id, func(result capability.StoreResult) Event {
		return resume(result.IntoDeleted())
	})
}

func (p *Provider) SignProof(flow Flow, resume func(string, error) Event) {
	p.signer.SignProof(flow, resume)
}

func (p *Provider) Algorithm() jwa.SignatureAlgorithm {
	return p.signer.Algorithm()
}

func (p *Provider) Resolve(didURL string) (*did.Document, error) {
	id, err := did.ParseDIDURL(didURL)
	if err != nil {
		return nil, fmt.Errorf("invalid DID URL: %w", err)
	}
	return p.resolver.Resolve(id.DID)
}
