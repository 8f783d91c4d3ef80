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
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/nuts-foundation/go-did/did"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-foundation/wallet-node/capability"
	"github.com/wallet-foundation/wallet-node/credential"
	"github.com/wallet-foundation/wallet-node/didkey"
	"github.com/wallet-foundation/wallet-node/openid4vci"
)

const testIssuer = "https://issuer.example"

var testOffer = openid4vci.CredentialOffer{
	CredentialIssuer:           testIssuer,
	CredentialConfigurationIDs: []string{"EmployeeID"},
	Grants: &openid4vci.Grants{
		PreAuthorizedCode: &openid4vci.PreAuthorizedCodeGrant{
			PreAuthorizedCode: "abc123",
			TxCode:            &openid4vci.TxCode{InputMode: openid4vci.InputModeNumeric, Length: 4},
		},
	},
}

var testConfiguration = openid4vci.CredentialConfiguration{
	Format: "jwt_vc_json",
	CredentialDefinition: openid4vci.CredentialDefinition{
		Type: []string{"VerifiableCredential", "EmployeeIDCredential"},
		CredentialSubject: map[string]openid4vci.ClaimEntry{
			"givenName": {Display: []openid4vci.Display{{Name: "Given name", Locale: "en"}}},
		},
	},
	Display: []openid4vci.Display{{
		Name:            "Employee ID",
		Locale:          "en",
		Logo:            &openid4vci.Image{URI: testIssuer + "/logo.png"},
		BackgroundImage: &openid4vci.Image{URI: testIssuer + "/background.png"},
	}},
}

// pendingRequest is one dispatched capability request awaiting its result.
type pendingRequest struct {
	capabilityName string
	operation      json.RawMessage
	continuation   func(json.RawMessage) Event
}

// testShell records capability requests in dispatch order.
type testShell struct {
	requests []pendingRequest
	cursor   int
}

func (s *testShell) Request(capabilityName string, operation json.RawMessage, continuation func(json.RawMessage) Event) {
	s.requests = append(s.requests, pendingRequest{capabilityName, operation, continuation})
}

func (s *testShell) next() *pendingRequest {
	if s.cursor >= len(s.requests) {
		return nil
	}
	request := &s.requests[s.cursor]
	s.cursor++
	return request
}

func (s *testShell) count(capabilityName string) int {
	result := 0
	for _, request := range s.requests {
		if request.capabilityName == capabilityName {
			result++
		}
	}
	return result
}

// harness drives Update the way the bridge does, executing store and keystore
// requests against in-memory fakes and HTTP requests against a test handler.
type harness struct {
	t      *testing.T
	shell  *testShell
	model  *Model
	caps   *Capabilities
	stored map[string]map[string][]byte
	keys   map[string][]byte
	onHTTP func(capability.HTTPOperation) capability.HTTPResult
}

func newHarness(t *testing.T) *harness {
	shell := &testShell{}
	return &harness{
		t:      t,
		shell:  shell,
		model:  NewModel(),
		caps:   NewCapabilities(shell),
		stored: map[string]map[string][]byte{},
		keys:   map[string][]byte{},
	}
}

func (h *harness) update(event Event) {
	Update(event, h.model, h.caps)
}

// settle executes dispatched requests in order, feeding follow-up events back
// into Update, until no requests remain.
func (h *harness) settle() {
	for {
		request := h.shell.next()
		if request == nil {
			return
		}
		if request.continuation == nil {
			continue
		}
		if event := request.continuation(h.execute(*request)); event != nil {
			h.update(event)
		}
	}
}

func (h *harness) execute(request pendingRequest) json.RawMessage {
	switch request.capabilityName {
	case capability.Store:
		operation := capability.StoreOperation{}
		require.NoError(h.t, json.Unmarshal(request.operation, &operation))
		return mustMarshal(h.executeStore(operation))
	case capability.KeyStore:
		operation := capability.KeyStoreOperation{}
		require.NoError(h.t, json.Unmarshal(request.operation, &operation))
		return mustMarshal(h.executeKeyStore(operation))
	case capability.HTTP:
		operation := capability.HTTPOperation{}
		require.NoError(h.t, json.Unmarshal(request.operation, &operation))
		require.NotNil(h.t, h.onHTTP, "unexpected http request: %s %s", operation.Method, operation.URL)
		return mustMarshal(h.onHTTP(operation))
	}
	h.t.Fatalf("unexpected capability: %s", request.capabilityName)
	return nil
}

func (h *harness) executeStore(operation capability.StoreOperation) capability.StoreResult {
	catalog := h.stored[operation.Catalog]
	if catalog == nil {
		catalog = map[string][]byte{}
		h.stored[operation.Catalog] = catalog
	}
	switch operation.Type {
	case capability.StoreOpSave:
		catalog[operation.ID] = operation.Data
		return capability.OkStoreResult(capability.StoreResponse{Type: capability.StoreRespSaved})
	case capability.StoreOpList:
		ids := make([]string, 0, len(catalog))
		for id := range catalog {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		entries := make([]capability.StoreEntry, 0, len(ids))
		for _, id := range ids {
			entries = append(entries, capability.PresentEntry(catalog[id]))
		}
		return capability.OkStoreResult(capability.StoreResponse{Type: capability.StoreRespList, Entries: entries})
	case capability.StoreOpDelete:
		delete(catalog, operation.ID)
		return capability.OkStoreResult(capability.StoreResponse{Type: capability.StoreRespDeleted})
	}
	return capability.ErrStoreResult(capability.InvalidRequestError("unknown operation: %s", operation.Type))
}

func (h *harness) executeKeyStore(operation capability.KeyStoreOperation) capability.KeyStoreResult {
	key := operation.ID + "/" + operation.Purpose
	switch operation.Type {
	case capability.KeyStoreOpGet:
		if data, ok := h.keys[key]; ok {
			return capability.OkKeyStoreResult(capability.KeyStoreResponse{Type: capability.KeyStoreRespRetrieved, Key: capability.PresentEntry(data)})
		}
		return capability.OkKeyStoreResult(capability.KeyStoreResponse{Type: capability.KeyStoreRespRetrieved, Key: capability.AbsentEntry()})
	case capability.KeyStoreOpSet:
		h.keys[key] = operation.Data
		return capability.OkKeyStoreResult(capability.KeyStoreResponse{Type: capability.KeyStoreRespSet})
	case capability.KeyStoreOpDelete:
		delete(h.keys, key)
		return capability.OkKeyStoreResult(capability.KeyStoreResponse{Type: capability.KeyStoreRespDeleted})
	case capability.KeyStoreOpGenerateSecret:
		secret := make([]byte, operation.Length)
		_, err := rand.Read(secret)
		require.NoError(h.t, err)
		return capability.OkKeyStoreResult(capability.KeyStoreResponse{Type: capability.KeyStoreRespGeneratedSecret, Secret: secret})
	}
	return capability.ErrKeyStoreResult(capability.InvalidRequestError("unknown operation: %s", operation.Type))
}

func jsonResult(t *testing.T, body any) capability.HTTPResult {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return capability.OkHTTPResult(capability.HTTPResponse{
		Status:  200,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    data,
	})
}

func encodeOffer(t *testing.T, offer openid4vci.CredentialOffer) string {
	t.Helper()
	encoded, err := offer.Encode()
	require.NoError(t, err)
	return encoded
}

// issuerMetadataState builds a flow that has its metadata in, one offered
// configuration, awaiting user consent.
func issuerMetadataState() *IssuerMetadata {
	metadata := &openid4vci.CredentialIssuerMetadata{
		CredentialIssuer:   testIssuer,
		CredentialEndpoint: testIssuer + "/credential",
		CredentialConfigurationsSupported: map[string]openid4vci.CredentialConfiguration{
			"EmployeeID": testConfiguration,
		},
		Display: []openid4vci.Display{{Name: "Example Corp", Locale: "en"}},
	}
	return &IssuerMetadata{
		Flow: Flow{
			ID:       "flow-1",
			Offer:    testOffer,
			Grant:    *testOffer.Grants.PreAuthorizedCode,
			Metadata: metadata,
			OAuth:    &openid4vci.ProviderMetadata{Issuer: testIssuer, TokenEndpoint: testIssuer + "/token"},
		},
		Offered: map[string]*OfferedCredential{
			"EmployeeID": {Configuration: testConfiguration},
		},
	}
}

func TestFromOffer(t *testing.T) {
	t.Run("ok - pre-authorized code carried into the flow", func(t *testing.T) {
		state, err := FromOffer(encodeOffer(t, testOffer))

		require.NoError(t, err)
		assert.Equal(t, "abc123", state.Flow.Grant.PreAuthorizedCode)
		assert.Equal(t, testIssuer, state.Flow.Offer.CredentialIssuer)
		assert.NotEmpty(t, state.Flow.ID)
	})
	t.Run("error - no pre-authorized code grant", func(t *testing.T) {
		offer := testOffer
		offer.Grants = nil

		_, err := FromOffer(encodeOffer(t, offer))

		require.Error(t, err)
		assert.ErrorContains(t, err, "pre-authorized code grant")
	})
}

func TestUpdate_ImageResults(t *testing.T) {
	logo := credential.Image{Data: []byte("logo"), MediaType: "image/png"}
	background := credential.Image{Data: []byte("background"), MediaType: "image/png"}
	logoEvent := ImageFetched{FlowID: "flow-1", ConfigurationID: "EmployeeID", Kind: ImageKindLogo, Image: logo}
	backgroundEvent := ImageFetched{FlowID: "flow-1", ConfigurationID: "EmployeeID", Kind: ImageKindBackground, Image: background}

	t.Run("results commute", func(t *testing.T) {
		first := newHarness(t)
		first.model.Issuance = issuerMetadataState()
		first.update(logoEvent)
		first.update(backgroundEvent)

		second := newHarness(t)
		second.model.Issuance = issuerMetadataState()
		second.update(backgroundEvent)
		second.update(logoEvent)

		assert.Equal(t, first.model.Issuance, second.model.Issuance)
		entry := offeredMap(first.model.Issuance)["EmployeeID"]
		assert.Equal(t, &logo, entry.Logo)
		assert.Equal(t, &background, entry.Background)
	})
	t.Run("refetch suppression", func(t *testing.T) {
		h := newHarness(t)
		h.model.Issuance = issuerMetadataState()
		entry := offeredMap(h.model.Issuance)["EmployeeID"]
		assert.True(t, entry.NeedsLogo())

		h.update(logoEvent)

		assert.False(t, entry.NeedsLogo())
		assert.True(t, entry.NeedsBackground())

		// a duplicate delivery does not overwrite
		h.update(ImageFetched{FlowID: "flow-1", ConfigurationID: "EmployeeID", Kind: ImageKindLogo, Image: credential.Image{Data: []byte("other")}})
		assert.Equal(t, &logo, entry.Logo)
	})
	t.Run("stale flow result is dropped", func(t *testing.T) {
		h := newHarness(t)
		h.model.Issuance = issuerMetadataState()

		h.update(ImageFetched{FlowID: "another-flow", ConfigurationID: "EmployeeID", Kind: ImageKindLogo, Image: logo})

		assert.Nil(t, offeredMap(h.model.Issuance)["EmployeeID"].Logo)
	})
}

func TestUpdate_PINGate(t *testing.T) {
	t.Run("accept without transaction code asks for one, no token effect", func(t *testing.T) {
		h := newHarness(t)
		h.model.Issuance = issuerMetadataState()

		h.update(AcceptOffer{})

		assert.Equal(t, AspectIssuancePIN, h.model.ActiveView)
		assert.IsType(t, &Accepted{}, h.model.Issuance)
		assert.Equal(t, 0, h.shell.count(capability.HTTP))
	})
	t.Run("wrong length is rejected before any token effect", func(t *testing.T) {
		h := newHarness(t)
		h.model.Issuance = issuerMetadataState()
		h.update(AcceptOffer{})

		h.update(EnterPIN{PIN: "12"})

		assert.Contains(t, h.model.Error, "4 characters")
		assert.Equal(t, AspectIssuancePIN, h.model.ActiveView)
		assert.Equal(t, 0, h.shell.count(capability.HTTP))
	})
	t.Run("non-numeric is rejected", func(t *testing.T) {
		h := newHarness(t)
		h.model.Issuance = issuerMetadataState()
		h.update(AcceptOffer{})

		h.update(EnterPIN{PIN: "12ab"})

		assert.Contains(t, h.model.Error, "numeric")
		assert.Equal(t, 0, h.shell.count(capability.HTTP))
	})
	t.Run("valid transaction code unlocks the token request", func(t *testing.T) {
		h := newHarness(t)
		h.model.Issuance = issuerMetadataState()
		h.update(AcceptOffer{})
		h.update(EnterPIN{PIN: "1234"})
		assert.Empty(t, h.model.Error)

		h.update(AcceptOffer{})

		require.Equal(t, 1, h.shell.count(capability.HTTP))
		for _, request := range h.shell.requests {
			if request.capabilityName != capability.HTTP {
				continue
			}
			operation := capability.HTTPOperation{}
			require.NoError(t, json.Unmarshal(request.operation, &operation))
			assert.Equal(t, testIssuer+"/token", operation.URL)
			values, err := url.ParseQuery(string(operation.Body))
			require.NoError(t, err)
			assert.Equal(t, "abc123", values.Get("pre-authorized_code"))
			assert.Equal(t, "1234", values.Get("tx_code"))
		}
	})
}

func TestUpdate_Cancel(t *testing.T) {
	metadataState := issuerMetadataState()
	states := map[string]IssuanceState{
		"offered":         &Offered{Flow: metadataState.Flow},
		"issuer_metadata": issuerMetadataState(),
		"accepted":        issuerMetadataState().Accept(),
		"token":           issuerMetadataState().Accept().WithToken(openid4vci.TokenResponse{AccessToken: "at"}),
		"proof":           issuerMetadataState().Accept().WithToken(openid4vci.TokenResponse{AccessToken: "at"}).WithProof("jwt"),
	}
	for name, state := range states {
		t.Run("from "+name, func(t *testing.T) {
			h := newHarness(t)
			h.model.Issuance = state
			h.model.ActiveView = AspectIssuanceOffer

			h.update(Cancel{})
			h.settle()

			assert.Nil(t, h.model.Issuance)
			assert.Equal(t, AspectCredentialList, h.model.ActiveView)
			assert.Empty(t, h.model.Error)
			assert.Empty(t, h.stored[capability.CatalogState])
		})
	}
}

func TestUpdate_StaleResults(t *testing.T) {
	t.Run("token result after cancel is dropped", func(t *testing.T) {
		h := newHarness(t)
		h.model.Issuance = issuerMetadataState().Accept()

		h.update(Cancel{})
		h.update(TokenReceived{FlowID: "flow-1", Response: openid4vci.TokenResponse{AccessToken: "at"}})

		assert.Nil(t, h.model.Issuance)
		assert.Equal(t, 0, h.shell.count(capability.KeyStore))
	})
	t.Run("token result for a superseded flow is dropped", func(t *testing.T) {
		h := newHarness(t)
		h.model.Issuance = issuerMetadataState().Accept()

		h.update(TokenReceived{FlowID: "old-flow", Response: openid4vci.TokenResponse{AccessToken: "at"}})

		assert.IsType(t, &Accepted{}, h.model.Issuance)
		assert.Empty(t, currentFlow(h.model.Issuance).AccessToken)
	})
}

func TestUpdate_DeferredCredential(t *testing.T) {
	h := newHarness(t)
	state := issuerMetadataState().Accept().WithToken(openid4vci.TokenResponse{AccessToken: "at"}).WithProof("jwt")
	h.model.Issuance = state
	h.model.ActiveView = AspectIssuanceOffer

	h.update(CredentialReceived{FlowID: "flow-1", ConfigurationID: "EmployeeID", Response: openid4vci.CredentialResponse{TransactionID: "tx-1"}})
	h.settle()

	assert.Nil(t, h.model.Issuance)
	assert.Equal(t, AspectCredentialList, h.model.ActiveView)
	assert.Empty(t, h.stored[capability.CatalogCredential])
}

func TestUpdate_EndToEnd(t *testing.T) {
	_, issuerPrivateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	issuedCredential := func(t *testing.T) string {
		token, err := jwt.NewBuilder().
			Issuer(testIssuer).
			IssuedAt(time.Now()).
			Claim("jti", "urn:uuid:employee-1").
			Claim("vc", map[string]any{
				"type": []string{"VerifiableCredential", "EmployeeIDCredential"},
				"credentialSubject": map[string]any{
					"givenName": "Ada",
				},
			}).
			Build()
		require.NoError(t, err)
		signed, err := jwt.Sign(token, jwt.WithKey(jwa.EdDSA, issuerPrivateKey))
		require.NoError(t, err)
		return string(signed)
	}

	verifyProof := func(t *testing.T, proof string) {
		message, err := jws.Parse([]byte(proof))
		require.NoError(t, err)
		require.Len(t, message.Signatures(), 1)
		headers := message.Signatures()[0].ProtectedHeaders()
		assert.Equal(t, openid4vci.ProofJWTType, headers.Type())

		keyID, err := did.ParseDIDURL(headers.KeyID())
		require.NoError(t, err)
		document, err := didkey.Resolver{}.Resolve(keyID.DID)
		require.NoError(t, err)
		holderKey, err := document.VerificationMethod[0].PublicKey()
		require.NoError(t, err)

		proofToken, err := jwt.Parse([]byte(proof), jwt.WithKey(jwa.EdDSA, holderKey), jwt.WithValidate(false))
		require.NoError(t, err)
		assert.Equal(t, []string{testIssuer}, proofToken.Audience())
		nonce, _ := proofToken.Get("nonce")
		assert.Equal(t, "nonce-1", nonce)
	}

	h := newHarness(t)
	h.onHTTP = func(operation capability.HTTPOperation) capability.HTTPResult {
		switch {
		case strings.HasSuffix(operation.URL, openid4vci.CredentialIssuerMetadataWellKnownPath):
			return jsonResult(t, openid4vci.CredentialIssuerMetadata{
				CredentialIssuer:   testIssuer,
				CredentialEndpoint: testIssuer + "/credential",
				CredentialConfigurationsSupported: map[string]openid4vci.CredentialConfiguration{
					"EmployeeID": testConfiguration,
				},
				Display: []openid4vci.Display{{Name: "Example Corp", Locale: "en"}},
			})
		case strings.HasSuffix(operation.URL, openid4vci.ProviderMetadataWellKnownPath):
			return jsonResult(t, openid4vci.ProviderMetadata{Issuer: testIssuer, TokenEndpoint: testIssuer + "/token"})
		case strings.HasSuffix(operation.URL, "/logo.png"), strings.HasSuffix(operation.URL, "/background.png"):
			return capability.OkHTTPResult(capability.HTTPResponse{
				Status:  200,
				Headers: map[string]string{"Content-Type": "image/png"},
				Body:    []byte{0x89, 'P', 'N', 'G'},
			})
		case strings.HasSuffix(operation.URL, "/token"):
			values, err := url.ParseQuery(string(operation.Body))
			require.NoError(t, err)
			require.Equal(t, "abc123", values.Get("pre-authorized_code"))
			require.Equal(t, "1234", values.Get("tx_code"))
			return jsonResult(t, openid4vci.TokenResponse{AccessToken: "access-1", TokenType: "Bearer", CNonce: "nonce-1"})
		case strings.HasSuffix(operation.URL, "/credential"):
			require.Equal(t, "Bearer access-1", operation.Headers["Authorization"])
			request := openid4vci.CredentialRequest{}
			require.NoError(t, json.Unmarshal(operation.Body, &request))
			require.NotNil(t, request.Proof)
			verifyProof(t, request.Proof.JWT)
			return jsonResult(t, openid4vci.CredentialResponse{Credential: issuedCredential(t), Format: "jwt_vc_json"})
		}
		t.Fatalf("unexpected request: %s %s", operation.Method, operation.URL)
		return capability.HTTPResult{}
	}

	// boot
	h.update(Ready{})
	h.settle()
	assert.Equal(t, AspectCredentialList, h.model.ActiveView)
	assert.Empty(t, h.model.Credentials)

	// scan the offer; metadata and artwork resolve
	h.update(ScanIssuanceOffer{Offer: encodeOffer(t, testOffer)})
	require.IsType(t, &Offered{}, h.model.Issuance)
	h.settle()
	require.IsType(t, &IssuerMetadata{}, h.model.Issuance)
	entry := offeredMap(h.model.Issuance)["EmployeeID"]
	require.NotNil(t, entry.Logo)
	assert.Equal(t, "image/png", entry.Logo.MediaType)

	// accepting without the transaction code does not reach the issuer
	h.update(AcceptOffer{})
	h.settle()
	assert.Equal(t, AspectIssuancePIN, h.model.ActiveView)
	require.IsType(t, &Accepted{}, h.model.Issuance)

	// transaction code plus accept walks the flow to completion
	h.update(EnterPIN{PIN: "1234"})
	h.update(AcceptOffer{})
	h.settle()

	assert.Nil(t, h.model.Issuance)
	assert.Equal(t, AspectCredentialList, h.model.ActiveView)
	assert.Empty(t, h.model.Error)
	require.Len(t, h.model.Credentials, 1)
	stored := h.model.Credentials[0]
	assert.Equal(t, "urn:uuid:employee-1", stored.ID)
	assert.Equal(t, "Example Corp", stored.IssuerName)
	assert.Equal(t, testIssuer, stored.Issuer)
	require.NotNil(t, stored.Logo)
	assert.Equal(t, "image/png", stored.Logo.MediaType)
	require.Len(t, stored.SubjectClaims, 1)
	assert.Equal(t, "Ada", stored.SubjectClaims[0]["givenName"])

	// the persisted entry round-trips and flow state is purged
	require.Contains(t, h.stored[capability.CatalogCredential], "urn:uuid:employee-1")
	restored, err := credential.Unmarshal(h.stored[capability.CatalogCredential]["urn:uuid:employee-1"])
	require.NoError(t, err)
	assert.Equal(t, stored, *restored)
	assert.Empty(t, h.stored[capability.CatalogState])
}

func TestUpdate_DeleteCredential(t *testing.T) {
	h := newHarness(t)
	h.stored[capability.CatalogCredential] = map[string][]byte{
		"cred-1": mustMarshal(credential.Credential{ID: "cred-1", Issued: "jwt", Format: "jwt_vc_json"}),
	}
	h.update(Ready{})
	h.settle()
	require.Len(t, h.model.Credentials, 1)

	h.update(DeleteCredential{ID: "cred-1"})
	h.settle()

	assert.Empty(t, h.model.Credentials)
	assert.Equal(t, AspectCredentialList, h.model.ActiveView)
	assert.Empty(t, h.stored[capability.CatalogCredential])
}
