// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLevel(tc.input))
		})
	}
}

func TestAppendCtxAddsAttributesToRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, "json", &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := AppendCtx(context.Background(), slog.String("request_id", "abc"))
	ctx = AppendCtx(ctx, slog.String("index", "weather"))

	logger.InfoContext(ctx, "hello")

	var record map[string]any
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "abc", record["request_id"])
	assert.Equal(t, "weather", record["index"])
}

func TestAppendCtxDoesNotLeakBetweenSiblings(t *testing.T) {
	parent := AppendCtx(context.Background(), slog.String("a", "1"))
	left := AppendCtx(parent, slog.String("b", "2"))
	right := AppendCtx(parent, slog.String("c", "3"))

	leftAttrs := left.Value(slogFields).([]slog.Attr)
	rightAttrs := right.Value(slogFields).([]slog.Attr)

	assert.Len(t, leftAttrs, 2)
	assert.Len(t, rightAttrs, 2)
	assert.Equal(t, "b", leftAttrs[1].Key)
	assert.Equal(t, "c", rightAttrs[1].Key)
}

func TestAppendCtxNilParent(t *testing.T) {
	//nolint:staticcheck // nil parent is handled explicitly
	ctx := AppendCtx(nil, slog.String("k", "v"))

	attrs, ok := ctx.Value(slogFields).([]slog.Attr)
	assert.True(t, ok)
	assert.Len(t, attrs, 1)
}

func TestNewHandlerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, "text", nil))

	logger.With("component", "proxy").InfoContext(AppendCtx(context.Background(), slog.String("request_id", "xyz")), "started")

	out := buf.String()
	assert.Contains(t, out, "msg=started")
	assert.Contains(t, out, "component=proxy")
	assert.Contains(t, out, "request_id=xyz")
}
