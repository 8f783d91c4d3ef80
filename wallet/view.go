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
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/wallet-foundation/wallet-node/credential"
	"github.com/wallet-foundation/wallet-node/openid4vci"
)

// DefaultLocale is used when the shell does not select one.
const DefaultLocale = "en"

// DisplayModel is what the shell renders. It is a pure projection of the
// Model: recomputing it never changes state.
type DisplayModel struct {
	ActiveView  Aspect              `json:"active_view"`
	Credentials []CredentialSummary `json:"credentials"`
	Detail      *CredentialDetail   `json:"detail,omitempty"`
	Offer       *OfferView          `json:"offer,omitempty"`
	PIN         *PINView            `json:"pin,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// CredentialSummary is one row in the credential list.
type CredentialSummary struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	IssuerName      string            `json:"issuer_name,omitempty"`
	BackgroundColor string            `json:"background_color,omitempty"`
	TextColor       string            `json:"text_color,omitempty"`
	Logo            *credential.Image `json:"logo,omitempty"`
}

// CredentialDetail is the expanded view of one credential.
type CredentialDetail struct {
	CredentialSummary
	Background   *credential.Image `json:"background,omitempty"`
	Claims       []ClaimView       `json:"claims,omitempty"`
	IssuanceDate string            `json:"issuance_date,omitempty"`
	ValidFrom    string            `json:"valid_from,omitempty"`
	ValidUntil   string            `json:"valid_until,omitempty"`
}

// ClaimView is one rendered claim with its resolved label.
type ClaimView struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// OfferView describes the active offer for the consent screen.
type OfferView struct {
	IssuerName  string        `json:"issuer_name"`
	Credentials []OfferedView `json:"credentials"`
}

// OfferedView is one offered credential on the consent screen, rendered with
// whatever artwork has resolved so far.
type OfferedView struct {
	ConfigurationID string            `json:"configuration_id"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	BackgroundColor string            `json:"background_color,omitempty"`
	TextColor       string            `json:"text_color,omitempty"`
	Logo            *credential.Image `json:"logo,omitempty"`
	Background      *credential.Image `json:"background,omitempty"`
}

// PINView describes what transaction code to ask the user for.
type PINView struct {
	InputMode   string `json:"input_mode"`
	Length      int    `json:"length,omitempty"`
	Description string `json:"description,omitempty"`
}

// Project maps the model onto the display model for the given locale.
func Project(model *Model, locale string) DisplayModel {
	if locale == "" {
		locale = DefaultLocale
	}
	view := DisplayModel{
		ActiveView:  model.ActiveView,
		Credentials: make([]CredentialSummary, 0, len(model.Credentials)),
		Error:       model.Error,
	}
	for _, cred := range model.Credentials {
		view.Credentials = append(view.Credentials, summarize(cred, locale))
	}
	if model.Selected != "" {
		for _, cred := range model.Credentials {
			if cred.ID == model.Selected {
				detail := detailView(cred, locale)
				view.Detail = &detail
				break
			}
		}
	}
	if model.Issuance != nil {
		offer := offerView(model.Issuance, locale)
		view.Offer = &offer
		if txCode := currentFlow(model.Issuance).Grant.TxCode; txCode != nil {
			view.PIN = &PINView{
				InputMode:   txCode.Mode(),
				Length:      txCode.Length,
				Description: txCode.Description,
			}
		}
	}
	return view
}

func summarize(cred credential.Credential, locale string) CredentialSummary {
	summary := CredentialSummary{
		ID:         cred.ID,
		Name:       fallbackName(cred.Type),
		IssuerName: cred.IssuerName,
		Logo:       cred.Logo,
	}
	if display, ok := cred.DisplayFor(locale); ok {
		summary.Name = display.Name
		summary.Description = display.Description
		summary.BackgroundColor = display.BackgroundColor
		summary.TextColor = display.TextColor
	}
	return summary
}

func detailView(cred credential.Credential, locale string) CredentialDetail {
	detail := CredentialDetail{
		CredentialSummary: summarize(cred, locale),
		Background:        cred.Background,
	}
	if !cred.IssuanceDate.IsZero() {
		detail.IssuanceDate = cred.IssuanceDate.Format(time.RFC3339)
	}
	if cred.ValidFrom != nil {
		detail.ValidFrom = cred.ValidFrom.Format(time.RFC3339)
	}
	if cred.ValidUntil != nil {
		detail.ValidUntil = cred.ValidUntil.Format(time.RFC3339)
	}
	for _, claims := range cred.SubjectClaims {
		detail.Claims = append(detail.Claims, ClaimViews(claims, cred.ClaimSchema, locale)...)
	}
	return detail
}

func offerView(state IssuanceState, locale string) OfferView {
	flow := currentFlow(state)
	view := OfferView{IssuerName: flow.IssuerName(locale)}
	offered := offeredMap(state)
	// render in offer order
	for _, configurationID := range flow.Offer.CredentialConfigurationIDs {
		entry, ok := offered[configurationID]
		if !ok {
			// metadata not in yet
			view.Credentials = append(view.Credentials, OfferedView{
				ConfigurationID: configurationID,
				Name:            configurationID,
			})
			continue
		}
		offeredView := OfferedView{
			ConfigurationID: configurationID,
			Name:            fallbackName(entry.Configuration.CredentialDefinition.Type),
			Logo:            entry.Logo,
			Background:      entry.Background,
		}
		if display, ok := displayFor(entry.Configuration.Display, locale); ok {
			offeredView.Name = display.Name
			offeredView.Description = display.Description
			offeredView.BackgroundColor = display.BackgroundColor
			offeredView.TextColor = display.TextColor
		}
		view.Credentials = append(view.Credentials, offeredView)
	}
	return view
}

// ClaimViews renders a claim set against its schema. Each key resolves its
// label through the schema: a display entry for the requested locale first,
// then the definition's first display entry, then the capitalized raw key.
// Nested claim groups recurse with parent-prefixed labels; depth follows the
// schema's actual nesting.
func ClaimViews(claims map[string]any, schema map[string]openid4vci.ClaimEntry, locale string) []ClaimView {
	return claimViews(claims, schema, locale, "")
}

func claimViews(claims map[string]any, schema map[string]openid4vci.ClaimEntry, locale, prefix string) []ClaimView {
	keys := make([]string, 0, len(claims))
	for key := range claims {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	views := make([]ClaimView, 0, len(keys))
	for _, key := range keys {
		entry, known := schema[key]
		label := capitalize(key)
		if known {
			if display, ok := displayFor(entry.Display, locale); ok {
				label = display.Name
			}
		}
		if prefix != "" {
			label = prefix + " / " + label
		}
		if nested, ok := claims[key].(map[string]any); ok {
			views = append(views, claimViews(nested, entry.Nested, locale, label)...)
			continue
		}
		views = append(views, ClaimView{Label: label, Value: formatClaimValue(claims[key])})
	}
	return views
}

func displayFor(displays []openid4vci.Display, locale string) (openid4vci.Display, bool) {
	for _, display := range displays {
		if display.Locale == locale {
			return display, true
		}
	}
	if len(displays) > 0 {
		return displays[0], true
	}
	return openid4vci.Display{}, false
}

func formatClaimValue(value any) string {
	switch concrete := value.(type) {
	case string:
		return concrete
	case []any:
		parts := make([]string, 0, len(concrete))
		for _, element := range concrete {
			parts = append(parts, formatClaimValue(element))
		}
		return strings.Join(parts, ", ")
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", concrete)
	}
}

func capitalize(value string) string {
	runes := []rune(value)
	if len(runes) == 0 {
		return value
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// fallbackName derives a display name from the credential type list when no
// display metadata exists.
func fallbackName(types []string) string {
	for i := len(types) - 1; i >= 0; i-- {
		if types[i] != "VerifiableCredential" {
			return types[i]
		}
	}
	return "Credential"
}
