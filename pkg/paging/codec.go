// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package paging turns search_after cursors into opaque, tamper-proof page tokens.
package paging

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/sensorhub/search-proxy/pkg/constants"
	"github.com/sensorhub/search-proxy/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

// DecodePageToken takes a base64-encoded, secretbox-encrypted token and returns
// the search_after sort values it carries.
func DecodePageToken(ctx context.Context, encoded string, secretKey *[32]byte) ([]any, error) {

	slog.DebugContext(ctx, "decoding page token",
		"encoded_token", encoded,
	)

	encrypted, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.NewValidation("invalid encoded page token", err)
	}

	if len(encrypted) < constants.NonceSize+secretbox.Overhead {
		return nil, errors.NewValidation(
			"invalid page token length",
			fmt.Errorf("expected at least %d bytes, got %d", constants.NonceSize+secretbox.Overhead, len(encrypted)),
		)
	}

	var nonce [constants.NonceSize]byte
	copy(nonce[:], encrypted[:constants.NonceSize])
	decrypted, ok := secretbox.Open(nil, encrypted[constants.NonceSize:], &nonce, secretKey)
	if !ok {
		return nil, errors.NewValidation("failed to decrypt page token")
	}

	var searchAfter []any
	if err := json.Unmarshal(decrypted, &searchAfter); err != nil {
		return nil, errors.NewValidation("page token does not carry a search_after cursor", err)
	}
	if len(searchAfter) == 0 {
		return nil, errors.NewValidation("page token carries an empty search_after cursor")
	}

	slog.DebugContext(ctx, "decoded page token successfully",
		"search_after", searchAfter,
	)

	return searchAfter, nil
}

// EncodePageToken encrypts the sort values of the last hit of a page and
// returns them as a URL-safe token.
func EncodePageToken(searchAfter []any, secretKey *[32]byte) (string, error) {
	if len(searchAfter) == 0 {
		return "", errors.NewUnexpected("cannot encode an empty search_after cursor")
	}

	encodedSearchAfter, err := json.Marshal(searchAfter)
	if err != nil {
		return "", errors.NewUnexpected("failed to marshal search_after data", err)
	}

	var nonce [constants.NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", errors.NewUnexpected("failed to generate nonce for page token", err)
	}

	encrypted := secretbox.Seal(nonce[:], encodedSearchAfter, &nonce, secretKey)

	return base64.RawURLEncoding.EncodeToString(encrypted), nil
}
