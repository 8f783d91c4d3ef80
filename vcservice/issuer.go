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
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/nuts-foundation/go-did/did"

	"github.com/wallet-foundation/wallet-node/core"
	"github.com/wallet-foundation/wallet-node/didkey"
	"github.com/wallet-foundation/wallet-node/openid4vci"
	"github.com/wallet-foundation/wallet-node/vcservice/log"
)

// CreateOfferRequest asks the issuer to mint a pre-authorized credential offer.
type CreateOfferRequest struct {
	// SubjectID identifies the intended holder in the issuer's subject records.
	SubjectID string `json:"subject_id"`
	// CredentialConfigurationID is the credential configuration to offer.
	CredentialConfigurationID string `json:"credential_configuration_id"`
	// TxCodeRequired guards the offer with a transaction code the user must enter.
	TxCodeRequired bool `json:"tx_code_required"`
}

// CreateOfferResponse carries the offer URL (the QR code payload) and, when
// requested, the transaction code to communicate to the user out-of-band.
type CreateOfferResponse struct {
	OfferURL string `json:"offer_url"`
	TxCode   string `json:"tx_code,omitempty"`
}

func (s *Service) handleCreateOffer(ctx echo.Context) error {
	request := CreateOfferRequest{}
	if err := ctx.Bind(&request); err != nil {
		return core.InvalidInputError("unable to parse request: %w", err)
	}
	subject, ok := subjects[request.SubjectID]
	if !ok {
		return core.InvalidInputError("unknown subject: %s", request.SubjectID)
	}
	if _, ok := s.issuerMetadata().CredentialConfigurationsSupported[request.CredentialConfigurationID]; !ok {
		return core.InvalidInputError("unknown credential configuration: %s", request.CredentialConfigurationID)
	}

	code := uuid.NewString()
	grant := &offerGrant{
		configurationIDs: []string{request.CredentialConfigurationID},
		subject:          subject,
		expires:          time.Now().Add(grantExpiry),
	}
	var txCodeSpec *openid4vci.TxCode
	if request.TxCodeRequired {
		txCode, err := generateTxCode()
		if err != nil {
			return err
		}
		grant.txCode = txCode
		txCodeSpec = &openid4vci.TxCode{
			InputMode:   openid4vci.InputModeNumeric,
			Length:      len(txCode),
			Description: "Enter the code you received from the issuer",
		}
	}

	offer := openid4vci.CredentialOffer{
		CredentialIssuer:           s.config.ExternalURL,
		CredentialConfigurationIDs: grant.configurationIDs,
		Grants: &openid4vci.Grants{
			PreAuthorizedCode: &openid4vci.PreAuthorizedCodeGrant{
				PreAuthorizedCode: code,
				TxCode:            txCodeSpec,
			},
		},
	}
	encoded, err := offer.Encode()
	if err != nil {
		return fmt.Errorf("unable to encode offer: %w", err)
	}

	s.mu.Lock()
	s.prune()
	s.offers[code] = grant
	s.mu.Unlock()

	log.Logger().
		WithField("subject", request.SubjectID).
		WithField("configuration", request.CredentialConfigurationID).
		Info("Created credential offer")
	return ctx.JSON(http.StatusOK, CreateOfferResponse{
		OfferURL: openid4vci.OfferURLScheme + "?credential_offer=" + encoded,
		TxCode:   grant.txCode,
	})
}

// generateTxCode returns a random 4-digit numeric transaction code.
func generateTxCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("unable to generate transaction code: %w", err)
	}
	return fmt.Sprintf("%04d", n), nil
}

func (s *Service) handleToken(ctx echo.Context) error {
	grantType := ctx.FormValue("grant_type")
	if grantType != openid4vci.PreAuthorizedCodeGrantType {
		return protocolError(ctx, http.StatusBadRequest, openid4vci.UnsupportedGrantType, "unsupported grant_type: "+grantType)
	}
	code := ctx.FormValue("pre-authorized_code")

	s.mu.Lock()
	s.prune()
	grant, ok := s.offers[code]
	if !ok {
		s.mu.Unlock()
		return protocolError(ctx, http.StatusBadRequest, openid4vci.InvalidGrant, "unknown or expired pre-authorized code")
	}
	if grant.txCode != "" && ctx.FormValue("tx_code") != grant.txCode {
		s.mu.Unlock()
		return protocolError(ctx, http.StatusBadRequest, openid4vci.InvalidGrant, "invalid transaction code")
	}
	// The code is single-use.
	delete(s.offers, code)
	accessToken := uuid.NewString()
	cNonce := uuid.NewString()
	s.tokens[accessToken] = &tokenGrant{
		cNonce:           cNonce,
		configurationIDs: grant.configurationIDs,
		subject:          grant.subject,
		expires:          time.Now().Add(tokenExpiry),
	}
	s.mu.Unlock()

	return ctx.JSON(http.StatusOK, openid4vci.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(tokenExpiry.Seconds()),
		CNonce:      cNonce,
	})
}

func (s *Service) handleCredential(ctx echo.Context) error {
	accessToken, ok := bearerToken(ctx)
	if !ok {
		return protocolError(ctx, http.StatusUnauthorized, openid4vci.InvalidToken, "missing bearer token")
	}
	s.mu.Lock()
	s.prune()
	grant, ok := s.tokens[accessToken]
	s.mu.Unlock()
	if !ok {
		return protocolError(ctx, http.StatusUnauthorized, openid4vci.InvalidToken, "unknown or expired access token")
	}

	request := openid4vci.CredentialRequest{}
	if err := ctx.Bind(&request); err != nil {
		return protocolError(ctx, http.StatusBadRequest, openid4vci.InvalidRequest, "unable to parse request")
	}
	if request.Proof == nil || request.Proof.ProofType != "jwt" {
		return protocolError(ctx, http.StatusBadRequest, openid4vci.InvalidProof, "missing or unsupported proof")
	}
	holderDID, err := s.verifyProof(request.Proof.JWT, grant.cNonce)
	if err != nil {
		log.Logger().WithError(err).Warn("Rejecting credential request")
		return protocolError(ctx, http.StatusBadRequest, openid4vci.InvalidProof, err.Error())
	}

	configuration, err := s.requestedConfiguration(request, grant)
	if err != nil {
		return protocolError(ctx, http.StatusBadRequest, openid4vci.InvalidRequest, err.Error())
	}
	credential, err := s.issueCredential(*configuration, holderDID, grant.subject)
	if err != nil {
		return fmt.Errorf("unable to issue credential: %w", err)
	}

	log.Logger().WithField("holder", holderDID.String()).Info("Issued credential")
	return ctx.JSON(http.StatusOK, openid4vci.CredentialResponse{
		Credential: credential,
		Format:     configuration.Format,
	})
}

// requestedConfiguration matches the credential request against the
// configurations the access token grants.
func (s *Service) requestedConfiguration(request openid4vci.CredentialRequest, grant *tokenGrant) (*openid4vci.CredentialConfiguration, error) {
	supported := s.issuerMetadata().CredentialConfigurationsSupported
	for _, id := range grant.configurationIDs {
		configuration, ok := supported[id]
		if !ok {
			continue
		}
		if request.Format != configuration.Format {
			continue
		}
		if request.CredentialDefinition != nil && !sameType(request.CredentialDefinition.Type, configuration.CredentialDefinition.Type) {
			continue
		}
		return &configuration, nil
	}
	return nil, fmt.Errorf("access token does not grant the requested credential")
}

func sameType(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// verifyProof validates an openid4vci-proof+jwt holder-binding proof and
// returns the holder's DID.
func (s *Service) verifyProof(proofJWT string, cNonce string) (did.DID, error) {
	message, err := jws.Parse([]byte(proofJWT))
	if err != nil {
		return did.DID{}, fmt.Errorf("invalid proof: %w", err)
	}
	headers := message.Signatures()[0].ProtectedHeaders()
	if headers.Type() != openid4vci.ProofJWTType {
		return did.DID{}, fmt.Errorf("proof typ must be %s", openid4vci.ProofJWTType)
	}
	keyID, err := did.ParseDIDURL(headers.KeyID())
	if err != nil {
		return did.DID{}, fmt.Errorf("proof kid is not a DID URL: %w", err)
	}
	document, err := didkey.Resolver{}.Resolve(keyID.DID)
	if err != nil {
		return did.DID{}, fmt.Errorf("unable to resolve holder DID: %w", err)
	}
	publicKey, err := document.VerificationMethod[0].PublicKey()
	if err != nil {
		return did.DID{}, fmt.Errorf("unable to extract holder key: %w", err)
	}
	token, err := jwt.Parse([]byte(proofJWT), jwt.WithKey(jwa.EdDSA, publicKey))
	if err != nil {
		return did.DID{}, fmt.Errorf("proof verification failed: %w", err)
	}
	nonce, _ := token.Get("nonce")
	if nonce != cNonce {
		return did.DID{}, fmt.Errorf("proof nonce does not match c_nonce")
	}
	return keyID.DID, nil
}

// issueCredential signs a JWT VC for the given holder, putting the subject's
// claims in the credentialSubject.
func (s *Service) issueCredential(configuration openid4vci.CredentialConfiguration, holder did.DID, subject map[string]interface{}) (string, error) {
	credentialSubject := map[string]interface{}{"id": holder.String()}
	for claim, value := range subject {
		credentialSubject[claim] = value
	}
	now := time.Now()
	token, err := jwt.NewBuilder().
		Issuer(s.issuerDID.String()).
		Subject(holder.String()).
		JwtID("urn:uuid:" + uuid.NewString()).
		NotBefore(now).
		IssuedAt(now).
		Expiration(now.AddDate(1, 0, 0)).
		Claim("vc", map[string]interface{}{
			"@context":          []string{"https://www.w3.org/2018/credentials/v1"},
			"type":              configuration.CredentialDefinition.Type,
			"credentialSubject": credentialSubject,
		}).
		Build()
	if err != nil {
		return "", err
	}
	headers := jws.NewHeaders()
	if err := headers.Set(jws.KeyIDKey, didkey.VerificationMethodID(s.issuerDID)); err != nil {
		return "", err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.EdDSA, s.signingKey, jws.WithProtectedHeaders(headers)))
	if err != nil {
		return "", err
	}
	return string(signed), nil
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(ctx echo.Context) (string, bool) {
	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// protocolError writes an OAuth-style JSON error body with the given status.
func protocolError(ctx echo.Context, status int, code openid4vci.ErrorCode, description string) error {
	return ctx.JSON(status, openid4vci.Error{Code: code, Description: description})
}
