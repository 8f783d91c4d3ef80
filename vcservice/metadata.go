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
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wallet-foundation/wallet-node/openid4vci"
)

// EmployeeIDConfiguration is the credential configuration id of the single
// credential this demo issuer issues.
const EmployeeIDConfiguration = "EmployeeID"

// logoPNG is a 1x1 transparent PNG served as credential artwork.
var logoPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

// subjects holds the hard-coded credential subjects the demo issuer can issue for.
var subjects = map[string]map[string]interface{}{
	"alice": {
		"givenName":      "Alice",
		"familyName":     "Aster",
		"email":          "alice.aster@example.com",
		"employeeNumber": "1234",
		"address": map[string]interface{}{
			"street": "Main Street 1",
			"city":   "Utrecht",
		},
	},
	"bob": {
		"givenName":      "Bob",
		"familyName":     "Briar",
		"email":          "bob.briar@example.com",
		"employeeNumber": "5678",
		"address": map[string]interface{}{
			"street": "Side Street 2",
			"city":   "Groningen",
		},
	},
}

// issuerMetadata renders the Credential Issuer Metadata for the configured
// external address.
func (s *Service) issuerMetadata() openid4vci.CredentialIssuerMetadata {
	return openid4vci.CredentialIssuerMetadata{
		CredentialIssuer:   s.config.ExternalURL,
		CredentialEndpoint: s.config.ExternalURL + "/credential",
		CredentialConfigurationsSupported: map[string]openid4vci.CredentialConfiguration{
			EmployeeIDConfiguration: {
				Format: "jwt_vc_json",
				Scope:  "EmployeeIDCredential",
				CredentialDefinition: openid4vci.CredentialDefinition{
					Type: []string{"VerifiableCredential", "EmployeeIDCredential"},
					CredentialSubject: map[string]openid4vci.ClaimEntry{
						"givenName": {
							Mandatory: true,
							ValueType: "string",
							Display: []openid4vci.Display{
								{Name: "Given name", Locale: "en"},
								{Name: "Voornaam", Locale: "nl"},
							},
						},
						"familyName": {
							Mandatory: true,
							ValueType: "string",
							Display: []openid4vci.Display{
								{Name: "Family name", Locale: "en"},
								{Name: "Achternaam", Locale: "nl"},
							},
						},
						"email": {
							ValueType: "string",
							Display: []openid4vci.Display{
								{Name: "Email", Locale: "en"},
							},
						},
						"employeeNumber": {
							ValueType: "string",
							Display: []openid4vci.Display{
								{Name: "Employee number", Locale: "en"},
							},
						},
						"address": {
							Display: []openid4vci.Display{
								{Name: "Address", Locale: "en"},
							},
							Nested: map[string]openid4vci.ClaimEntry{
								"street": {
									ValueType: "string",
									Display: []openid4vci.Display{
										{Name: "Street", Locale: "en"},
									},
								},
								"city": {
									ValueType: "string",
									Display: []openid4vci.Display{
										{Name: "City", Locale: "en"},
									},
								},
							},
						},
					},
				},
				Display: []openid4vci.Display{
					{
						Name:            "Employee ID",
						Description:     "Example Corp employee pass",
						Locale:          "en",
						Logo:            &openid4vci.Image{URI: s.config.ExternalURL + "/logo.png", AltText: "Example Corp logo"},
						BackgroundColor: "#12107c",
						TextColor:       "#FFFFFF",
					},
					{
						Name:   "Personeelspas",
						Locale: "nl",
					},
				},
			},
		},
		Display: []openid4vci.Display{
			{Name: "Example Corp", Locale: "en"},
		},
	}
}

func (s *Service) handleIssuerMetadata(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, s.issuerMetadata())
}

func (s *Service) handleOAuthMetadata(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, openid4vci.ProviderMetadata{
		Issuer:        s.config.ExternalURL,
		TokenEndpoint: s.config.ExternalURL + "/token",
	})
}
