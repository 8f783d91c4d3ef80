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

package vcservice

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-foundation/wallet-node/core"
	"github.com/wallet-foundation/wallet-node/didkey"
	"github.com/wallet-foundation/wallet-node/openid4vci"
)

func startService(t *testing.T) (*Service, *httptest.Server) {
	t.Helper()
	service := New()
	echoServer := core.NewEchoServer()
	service.Routes(echoServer)
	httpServer := httptest.NewServer(echoServer.(*echo.Echo))
	t.Cleanup(httpServer.Close)
	service.config.ExternalURL = httpServer.URL
	require.NoError(t, service.Configure(core.ServerConfig{}))
	return service, httpServer
}

func createOffer(t *testing.T, server *httptest.Server, request CreateOfferRequest) CreateOfferResponse {
	t.Helper()
	body, _ := json.Marshal(request)
	httpResponse, err := http.Post(server.URL+"/create_offer", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer httpResponse.Body.Close()
	require.Equal(t, http.StatusOK, httpResponse.StatusCode)
	response := CreateOfferResponse{}
	require.NoError(t, json.NewDecoder(httpResponse.Body).Decode(&response))
	return response
}

func redeemCode(t *testing.T, server *httptest.Server, code, txCode string) (openid4vci.TokenResponse, int) {
	t.Helper()
	form := url.Values{}
	form.Set("grant_type", openid4vci.PreAuthorizedCodeGrantType)
	form.Set("pre-authorized_code", code)
	if txCode != "" {
		form.Set("tx_code", txCode)
	}
	httpResponse, err := http.Post(server.URL+"/token", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer httpResponse.Body.Close()
	response := openid4vci.TokenResponse{}
	_ = json.NewDecoder(httpResponse.Body).Decode(&response)
	return response, httpResponse.StatusCode
}

func TestService_CreateOffer(t *testing.T) {
	t.Run("ok - offer URL parses and carries a transaction code", func(t *testing.T) {
		_, server := startService(t)

		response := createOffer(t, server, CreateOfferRequest{
			SubjectID:                 "alice",
			CredentialConfigurationID: EmployeeIDConfiguration,
			TxCodeRequired:            true,
		})

		offer, err := openid4vci.ParseOffer(response.OfferURL)
		require.NoError(t, err)
		assert.Equal(t, server.URL, offer.CredentialIssuer)
		assert.Equal(t, []string{EmployeeIDConfiguration}, offer.CredentialConfigurationIDs)
		grant, err := offer.PreAuthorizedCode()
		require.NoError(t, err)
		assert.NotEmpty(t, grant.PreAuthorizedCode)
		require.NotNil(t, grant.TxCode)
		assert.Equal(t, 4, grant.TxCode.Length)
		assert.Len(t, response.TxCode, 4)
		assert.NoError(t, openid4vci.ValidateTxCode(grant.TxCode, response.TxCode))
	})
	t.Run("ok - without transaction code", func(t *testing.T) {
		_, server := startService(t)

		response := createOffer(t, server, CreateOfferRequest{
			SubjectID:                 "bob",
			CredentialConfigurationID: EmployeeIDConfiguration,
		})

		offer, err := openid4vci.ParseOffer(response.OfferURL)
		require.NoError(t, err)
		grant, err := offer.PreAuthorizedCode()
		require.NoError(t, err)
		assert.Nil(t, grant.TxCode)
		assert.Empty(t, response.TxCode)
	})
	t.Run("error - unknown subject", func(t *testing.T) {
		_, server := startService(t)

		body, _ := json.Marshal(CreateOfferRequest{SubjectID: "mallory", CredentialConfigurationID: EmployeeIDConfiguration})
		httpResponse, err := http.Post(server.URL+"/create_offer", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer httpResponse.Body.Close()

		assert.Equal(t, http.StatusBadRequest, httpResponse.StatusCode)
	})
	t.Run("error - unknown configuration", func(t *testing.T) {
		_, server := startService(t)

		body, _ := json.Marshal(CreateOfferRequest{SubjectID: "alice", CredentialConfigurationID: "DrivingLicense"})
		httpResponse, err := http.Post(server.URL+"/create_offer", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer httpResponse.Body.Close()

		assert.Equal(t, http.StatusBadRequest, httpResponse.StatusCode)
	})
}

func TestService_Metadata(t *testing.T) {
	_, server := startService(t)

	t.Run("credential issuer metadata", func(t *testing.T) {
		httpResponse, err := http.Get(server.URL + openid4vci.CredentialIssuerMetadataWellKnownPath)
		require.NoError(t, err)
		defer httpResponse.Body.Close()
		metadata := openid4vci.CredentialIssuerMetadata{}
		require.NoError(t, json.NewDecoder(httpResponse.Body).Decode(&metadata))

		assert.Equal(t, server.URL, metadata.CredentialIssuer)
		assert.Equal(t, server.URL+"/credential", metadata.CredentialEndpoint)
		assert.Contains(t, metadata.CredentialConfigurationsSupported, EmployeeIDConfiguration)
		assert.Equal(t, "Example Corp", metadata.IssuerName("en"))
	})
	t.Run("oauth server metadata", func(t *testing.T) {
		httpResponse, err := http.Get(server.URL + openid4vci.ProviderMetadataWellKnownPath)
		require.NoError(t, err)
		defer httpResponse.Body.Close()
		metadata := openid4vci.ProviderMetadata{}
		require.NoError(t, json.NewDecoder(httpResponse.Body).Decode(&metadata))

		assert.Equal(t, server.URL+"/token", metadata.TokenEndpoint)
	})
	t.Run("logo", func(t *testing.T) {
		httpResponse, err := http.Get(server.URL + "/logo.png")
		require.NoError(t, err)
		defer httpResponse.Body.Close()

		assert.Equal(t, http.StatusOK, httpResponse.StatusCode)
		assert.Equal(t, "image/png", httpResponse.Header.Get("Content-Type"))
	})
}

func TestService_Token(t *testing.T) {
	t.Run("ok - code redeems for an access token", func(t *testing.T) {
		_, server := startService(t)
		offer := createOffer(t, server, CreateOfferRequest{SubjectID: "alice", CredentialConfigurationID: EmployeeIDConfiguration, TxCodeRequired: true})
		code := offeredCode(t, offer)

		response, status := redeemCode(t, server, code, offer.TxCode)

		require.Equal(t, http.StatusOK, status)
		assert.NotEmpty(t, response.AccessToken)
		assert.NotEmpty(t, response.CNonce)
		assert.Equal(t, "Bearer", response.TokenType)
	})
	t.Run("error - codes are single use", func(t *testing.T) {
		_, server := startService(t)
		offer := createOffer(t, server, CreateOfferRequest{SubjectID: "alice", CredentialConfigurationID: EmployeeIDConfiguration})
		code := offeredCode(t, offer)

		_, status := redeemCode(t, server, code, "")
		require.Equal(t, http.StatusOK, status)
		_, status = redeemCode(t, server, code, "")
		assert.Equal(t, http.StatusBadRequest, status)
	})
	t.Run("error - wrong transaction code", func(t *testing.T) {
		_, server := startService(t)
		offer := createOffer(t, server, CreateOfferRequest{SubjectID: "alice", CredentialConfigurationID: EmployeeIDConfiguration, TxCodeRequired: true})
		code := offeredCode(t, offer)

		wrong := "0000"
		if offer.TxCode == wrong {
			wrong = "1111"
		}
		_, status := redeemCode(t, server, code, wrong)

		assert.Equal(t, http.StatusBadRequest, status)
	})
	t.Run("error - unknown code", func(t *testing.T) {
		_, server := startService(t)

		_, status := redeemCode(t, server, "nope", "")

		assert.Equal(t, http.StatusBadRequest, status)
	})
	t.Run("error - unsupported grant type", func(t *testing.T) {
		_, server := startService(t)

		form := url.Values{}
		form.Set("grant_type", "authorization_code")
		httpResponse, err := http.Post(server.URL+"/token", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
		require.NoError(t, err)
		defer httpResponse.Body.Close()

		assert.Equal(t, http.StatusBadRequest, httpResponse.StatusCode)
	})
}

func TestService_Credential(t *testing.T) {
	holderProof := func(t *testing.T, service *Service, cNonce string) (string, string) {
		t.Helper()
		publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		holderDID, err := didkey.FromPublicKey(publicKey)
		require.NoError(t, err)
		token, err := jwt.NewBuilder().
			Issuer(holderDID.String()).
			Audience([]string{service.config.ExternalURL}).
			IssuedAt(time.Now()).
			Claim("nonce", cNonce).
			Build()
		require.NoError(t, err)
		headers := jws.NewHeaders()
		require.NoError(t, headers.Set(jws.TypeKey, openid4vci.ProofJWTType))
		require.NoError(t, headers.Set(jws.KeyIDKey, didkey.VerificationMethodID(holderDID)))
		signed, err := jwt.Sign(token, jwt.WithKey(jwa.EdDSA, privateKey, jws.WithProtectedHeaders(headers)))
		require.NoError(t, err)
		return string(signed), holderDID.String()
	}
	requestCredential := func(t *testing.T, server *httptest.Server, accessToken, proof string) (*http.Response, openid4vci.CredentialResponse) {
		t.Helper()
		request := openid4vci.CredentialRequest{
			Format: "jwt_vc_json",
			CredentialDefinition: &openid4vci.CredentialDefinition{
				Type: []string{"VerifiableCredential", "EmployeeIDCredential"},
			},
			Proof: &openid4vci.CredentialRequestProof{ProofType: "jwt", JWT: proof},
		}
		body, _ := json.Marshal(request)
		httpRequest, err := http.NewRequest(http.MethodPost, server.URL+"/credential", bytes.NewReader(body))
		require.NoError(t, err)
		httpRequest.Header.Set("Content-Type", "application/json")
		if accessToken != "" {
			httpRequest.Header.Set("Authorization", "Bearer "+accessToken)
		}
		httpResponse, err := http.DefaultClient.Do(httpRequest)
		require.NoError(t, err)
		defer httpResponse.Body.Close()
		response := openid4vci.CredentialResponse{}
		_ = json.NewDecoder(httpResponse.Body).Decode(&response)
		return httpResponse, response
	}

	t.Run("ok - issues a verifiable JWT credential", func(t *testing.T) {
		service, server := startService(t)
		offer := createOffer(t, server, CreateOfferRequest{SubjectID: "alice", CredentialConfigurationID: EmployeeIDConfiguration})
		tokenResponse, status := redeemCode(t, server, offeredCode(t, offer), "")
		require.Equal(t, http.StatusOK, status)
		proof, holderDID := holderProof(t, service, tokenResponse.CNonce)

		httpResponse, response := requestCredential(t, server, tokenResponse.AccessToken, proof)

		require.Equal(t, http.StatusOK, httpResponse.StatusCode)
		assert.False(t, response.Deferred())
		assert.Equal(t, "jwt_vc_json", response.Format)

		issued, err := jwt.Parse([]byte(response.Credential), jwt.WithVerify(false), jwt.WithValidate(false))
		require.NoError(t, err)
		assert.Equal(t, service.issuerDID.String(), issued.Issuer())
		assert.Equal(t, holderDID, issued.Subject())
		vcClaim, _ := issued.Get("vc")
		vc, _ := vcClaim.(map[string]interface{})
		require.NotNil(t, vc)
		credentialSubject, _ := vc["credentialSubject"].(map[string]interface{})
		require.NotNil(t, credentialSubject)
		assert.Equal(t, "Alice", credentialSubject["givenName"])
		assert.Equal(t, holderDID, credentialSubject["id"])

		// Signature verifies against the issuer's did:key document.
		document, err := didkey.Resolver{}.Resolve(service.issuerDID)
		require.NoError(t, err)
		issuerKey, err := document.VerificationMethod[0].PublicKey()
		require.NoError(t, err)
		_, err = jwt.Parse([]byte(response.Credential), jwt.WithKey(jwa.EdDSA, issuerKey))
		assert.NoError(t, err)
	})
	t.Run("error - missing bearer token", func(t *testing.T) {
		service, server := startService(t)
		proof, _ := holderProof(t, service, "nonce")

		httpResponse, _ := requestCredential(t, server, "", proof)

		assert.Equal(t, http.StatusUnauthorized, httpResponse.StatusCode)
	})
	t.Run("error - stale nonce", func(t *testing.T) {
		service, server := startService(t)
		offer := createOffer(t, server, CreateOfferRequest{SubjectID: "alice", CredentialConfigurationID: EmployeeIDConfiguration})
		tokenResponse, status := redeemCode(t, server, offeredCode(t, offer), "")
		require.Equal(t, http.StatusOK, status)
		proof, _ := holderProof(t, service, "stale-nonce")

		httpResponse, _ := requestCredential(t, server, tokenResponse.AccessToken, proof)

		assert.Equal(t, http.StatusBadRequest, httpResponse.StatusCode)
	})
}

// offeredCode extracts the pre-authorized code from a create_offer response.
func offeredCode(t *testing.T, response CreateOfferResponse) string {
	t.Helper()
	offer, err := openid4vci.ParseOffer(response.OfferURL)
	require.NoError(t, err)
	grant, err := offer.PreAuthorizedCode()
	require.NoError(t, err)
	return grant.PreAuthorizedCode
}
