// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package global

import (
	"context"
	"crypto/rand"
	"log/slog"
	"os"
	"sync"
)

const pageTokenSecretName = "PAGE_TOKEN_SECRET"

var (
	pageTokenSecret       [32]byte
	doOncePageTokenSecret sync.Once
)

// PageTokenSecret retrieves the secret used for encoding and decoding page tokens.
func PageTokenSecret(ctx context.Context) *[32]byte {

	doOncePageTokenSecret.Do(func() {
		pageTokenSecret = loadPageTokenSecret(ctx)
	})

	return &pageTokenSecret
}

// loadPageTokenSecret reads the secret from the environment. Without one, a
// random secret is generated, so tokens do not survive a restart.
func loadPageTokenSecret(ctx context.Context) [32]byte {
	var secret [32]byte

	value := os.Getenv(pageTokenSecretName)
	if value != "" {
		copy(secret[:], []byte(value))
		return secret
	}

	slog.WarnContext(ctx, "page token secret not set, generating an ephemeral one",
		"env", pageTokenSecretName,
	)
	if _, err := rand.Read(secret[:]); err != nil {
		slog.ErrorContext(ctx, "failed to generate page token secret", "error", err)
		os.Exit(1)
	}
	return secret
}
