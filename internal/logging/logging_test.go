/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupWithWriterLevels(t *testing.T) {
	tests := []struct {
		env  string
		want zerolog.Level
	}{
		{"development", zerolog.DebugLevel},
		{"production", zerolog.InfoLevel},
		{"test", zerolog.WarnLevel},
	}
	for _, tt := range tests {
		logger := SetupWithWriter(tt.env, &bytes.Buffer{})
		if logger.GetLevel() != tt.want {
			t.Errorf("%s: level = %v, want %v", tt.env, logger.GetLevel(), tt.want)
		}
	}
}

func TestSetupWithWriterCopiesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWithWriter("production", &buf)
	logger.Info().Str("component", "test").Msg("hello")

	if !strings.Contains(buf.String(), `"component":"test"`) {
		t.Fatalf("expected JSON log line, got %q", buf.String())
	}
}
