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
	"encoding/json"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/wallet-foundation/wallet-node/capability"
	"github.com/wallet-foundation/wallet-node/didkey"
	"github.com/wallet-foundation/wallet-node/openid4vci"
)

// The holder key lives in the shell's key store, not in core memory, so a
// restarted core keeps its DID.
const (
	holderKeyID      = "holder-key"
	holderKeyPurpose = "credential-binding"
)

// ProofSigner builds openid4vci-proof+jwt holder-binding proofs with an
// Ed25519 holder key managed through the key store capability. The key is
// created on first use: a generated secret seeds the key, which is persisted
// as a JWK.
type ProofSigner struct {
	keyStore KeyStore
	now      func() time.Time
}

// NewProofSigner builds a ProofSigner over the given key store handle.
func NewProofSigner(keyStore KeyStore) *ProofSigner {
	return &ProofSigner{keyStore: keyStore, now: time.Now}
}

// Algorithm returns the signature algorithm of holder-binding proofs.
func (s *ProofSigner) Algorithm() jwa.SignatureAlgorithm {
	return jwa.EdDSA
}

// SignProof loads (or bootstraps) the holder key and signs a proof binding it
// to the flow's issuer and nonce. The key store round trips are capability
// effects; resume delivers the compact-serialized JWT.
func (s *ProofSigner) SignProof(flow Flow, resume func(string, error) Event) {
	s.keyStore.Get(holderKeyID, holderKeyPurpose, func(result capability.KeyStoreResult) Event {
		entry, err := result.IntoKey()
		if err != nil {
			return resume("", err)
		}
		if serialized, present := entry.Bytes(); present {
			return s.signWith(serialized, flow, resume)
		}
		s.bootstrapKey(flow, resume)
		return nil
	})
}

// bootstrapKey generates and persists the holder key, then signs.
func (s *ProofSigner) bootstrapKey(flow Flow, resume func(string, error) Event) {
	s.keyStore.GenerateSecret(ed25519.SeedSize, func(result capability.KeyStoreResult) Event {
		secret, err := result.IntoSecret()
		if err != nil {
			return resume("", err)
		}
		if len(secret) != ed25519.SeedSize {
			return resume("", fmt.Errorf("generated secret has wrong length: %d", len(secret)))
		}
		privateKey := ed25519.NewKeyFromSeed(secret)
		key, err := jwk.FromRaw(privateKey)
		if err != nil {
			return resume("", fmt.Errorf("unable to build holder key JWK: %w", err))
		}
		serialized, err := json.Marshal(key)
		if err != nil {
			return resume("", fmt.Errorf("unable to serialize holder key: %w", err))
		}
		s.keyStore.Set(holderKeyID, holderKeyPurpose, serialized, func(result capability.KeyStoreResult) Event {
			if err := result.IntoSet(); err != nil {
				return resume("", err)
			}
			return s.signWith(serialized, flow, resume)
		})
		return nil
	})
}

// signWith parses the serialized JWK and produces the proof JWT. The kid
// header carries the did:key verification method so the issuer can resolve
// the public key from the header alone.
func (s *ProofSigner) signWith(serialized []byte, flow Flow, resume func(string, error) Event) Event {
	key, err := jwk.ParseKey(serialized)
	if err != nil {
		return resume("", fmt.Errorf("unable to parse holder key: %w", err))
	}
	var privateKey ed25519.PrivateKey
	if err := key.Raw(&privateKey); err != nil {
		return resume("", fmt.Errorf("holder key is not an Ed25519 key: %w", err))
	}
	holderDID, err := didkey.FromPublicKey(privateKey.Public().(ed25519.PublicKey))
	if err != nil {
		return resume("", err)
	}

	token, err := jwt.NewBuilder().
		Issuer(holderDID.String()).
		Audience([]string{flow.Offer.CredentialIssuer}).
		IssuedAt(s.now()).
		Claim("nonce", flow.CNonce).
		Build()
	if err != nil {
		return resume("", err)
	}
	headers := jws.NewHeaders()
	_ = headers.Set(jws.TypeKey, openid4vci.ProofJWTType)
	_ = headers.Set(jws.KeyIDKey, didkey.VerificationMethodID(holderDID))
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.EdDSA, privateKey, jws.WithProtectedHeaders(headers)))
	if err != nil {
		return resume("", fmt.Errorf("unable to sign proof: %w", err))
	}
	return resume(string(signed), nil)
}
