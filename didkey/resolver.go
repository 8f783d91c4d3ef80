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

// Package didkey implements the did:key method for the key types the wallet
// produces and the demonstration services verify.
package didkey

import (
	"bytes"
	"crypto"
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/multiformats/go-multicodec"
	ssi "github.com/nuts-foundation/go-did"
	"github.com/nuts-foundation/go-did/did"
	"github.com/shengdoushi/base58"
)

// MethodName is the name of this DID method.
const MethodName = "key"

var errInvalidPublicKeyLength = errors.New("invalid did:key: invalid public key length")

// Resolver resolves did:key DIDs without any external lookup: the DID itself is
// the public key.
type Resolver struct {
}

// Resolve derives the DID document from the multibase-encoded public key in the
// DID's method-specific identifier.
func (r Resolver) Resolve(id did.DID) (*did.Document, error) {
	if id.Method != MethodName {
		return nil, fmt.Errorf("unsupported DID method: %s", id.Method)
	}
	encodedKey := id.ID
	if len(encodedKey) == 0 || encodedKey[0] != 'z' {
		return nil, errors.New("did:key does not start with 'z'")
	}
	mcBytes, err := base58.Decode(encodedKey[1:], base58.BitcoinAlphabet)
	if err != nil {
		return nil, fmt.Errorf("did:key: invalid base58btc: %w", err)
	}
	reader := bytes.NewReader(mcBytes)
	keyType, err := binary.ReadUvarint(reader)
	if err != nil {
		return nil, fmt.Errorf("did:key: invalid multicodec value: %w", err)
	}
	var key crypto.PublicKey
	mcBytes, _ = io.ReadAll(reader)

	switch multicodec.Code(keyType) {
	case multicodec.Ed25519Pub:
		if len(mcBytes) != ed25519.PublicKeySize {
			return nil, errInvalidPublicKeyLength
		}
		key = ed25519.PublicKey(mcBytes)
	default:
		return nil, fmt.Errorf("did:key: unsupported public key type: %d", keyType)
	}

	document := did.Document{
		Context: []interface{}{
			ssi.MustParseURI("https://w3c-ccg.github.io/lds-jws2020/contexts/lds-jws2020-v1.json"),
			did.DIDContextV1URI(),
		},
		ID: id,
	}
	keyID := did.DIDURL{DID: id, Fragment: id.ID}
	vm, err := did.NewVerificationMethod(keyID, ssi.JsonWebKey2020, id, key)
	if err != nil {
		return nil, err
	}
	document.AddAssertionMethod(vm)
	document.AddAuthenticationMethod(vm)
	return &document, nil
}

// FromPublicKey derives the did:key DID for an Ed25519 public key.
func FromPublicKey(publicKey ed25519.PublicKey) (did.DID, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return did.DID{}, errInvalidPublicKeyLength
	}
	prefix := binary.AppendUvarint(nil, uint64(multicodec.Ed25519Pub))
	encoded := base58.Encode(append(prefix, publicKey...), base58.BitcoinAlphabet)
	id, err := did.ParseDID(fmt.Sprintf("did:%s:z%s", MethodName, encoded))
	if err != nil {
		return did.DID{}, err
	}
	return *id, nil
}

// VerificationMethodID returns the DID URL of the (single) verification method
// of a did:key DID.
func VerificationMethodID(id did.DID) string {
	return fmt.Sprintf("%s#%s", id.String(), id.ID)
}
