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

// Package vcservice contains a demonstration credential issuer. It serves just
// enough of the OpenID4VCI issuer surface to drive a complete pre-authorized
// issuance against the wallet: offer creation, metadata, token and credential
// endpoints, with hard-coded credential configurations and subjects.
package vcservice

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nuts-foundation/go-did/did"

	"github.com/wallet-foundation/wallet-node/core"
	"github.com/wallet-foundation/wallet-node/didkey"
)

// ModuleName is the name of this module.
const ModuleName = "VCService"

const grantExpiry = 5 * time.Minute
const tokenExpiry = 5 * time.Minute

// Config holds the configuration of the demo issuer.
type Config struct {
	// ExternalURL is the address the issuer advertises in offers and metadata.
	// Wallets must be able to reach the issuer on this address.
	ExternalURL string `koanf:"externalurl"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{}
}

// New creates a demo issuer engine with default configuration.
func New() *Service {
	return &Service{
		config: DefaultConfig(),
		offers: map[string]*offerGrant{},
		tokens: map[string]*tokenGrant{},
	}
}

// Service is the demo issuer engine.
type Service struct {
	config     Config
	signingKey ed25519.PrivateKey
	issuerDID  did.DID

	mu     sync.Mutex
	offers map[string]*offerGrant
	tokens map[string]*tokenGrant
}

// offerGrant is a pre-authorized code waiting to be redeemed.
type offerGrant struct {
	txCode           string
	configurationIDs []string
	subject          map[string]interface{}
	expires          time.Time
}

// tokenGrant is an issued access token.
type tokenGrant struct {
	cNonce           string
	configurationIDs []string
	subject          map[string]interface{}
	expires          time.Time
}

func (s *Service) Name() string {
	return ModuleName
}

func (s *Service) ConfigKey() string {
	return "vcservice"
}

func (s *Service) Config() interface{} {
	return &s.config
}

// Configure generates the issuer's signing key and derives its did:key identity.
func (s *Service) Configure(config core.ServerConfig) error {
	if s.config.ExternalURL == "" {
		s.config.ExternalURL = "http://" + config.HTTP.Address
	}
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("unable to generate issuer key: %w", err)
	}
	issuerDID, err := didkey.FromPublicKey(privateKey.Public().(ed25519.PublicKey))
	if err != nil {
		return fmt.Errorf("unable to derive issuer DID: %w", err)
	}
	s.signingKey = privateKey
	s.issuerDID = issuerDID
	return nil
}

func (s *Service) Routes(router core.EchoRouter) {
	router.POST("/create_offer", s.handleCreateOffer)
	router.GET("/.well-known/openid-credential-issuer", s.handleIssuerMetadata)
	router.GET("/.well-known/oauth-authorization-server", s.handleOAuthMetadata)
	router.POST("/token", s.handleToken)
	router.POST("/credential", s.handleCredential)
	router.GET("/logo.png", s.handleLogo)
}

func (s *Service) handleLogo(ctx echo.Context) error {
	return ctx.Blob(http.StatusOK, "image/png", logoPNG)
}

// prune drops expired offers and tokens. Callers must hold the lock.
func (s *Service) prune() {
	now := time.Now()
	for code, grant := range s.offers {
		if now.After(grant.expires) {
			delete(s.offers, code)
		}
	}
	for token, grant := range s.tokens {
		if now.After(grant.expires) {
			delete(s.tokens, token)
		}
	}
}
