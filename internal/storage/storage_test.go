/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/friendsincode/nightwatch/internal/config"
)

func TestFilesystemStoragePutGet(t *testing.T) {
	dir := t.TempDir()
	fs := NewFilesystemStorage(dir, zerolog.Nop())
	ctx := context.Background()

	if err := fs.Put(ctx, "timetables/p1.json", []byte(`{"a":1}`), "application/json"); err != nil {
		t.Fatalf("put: %v", err)
	}
	data, err := fs.Get(ctx, "timetables/p1.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Fatalf("data = %q", data)
	}
	if fs.URL("timetables/p1.json") != filepath.Join(dir, "timetables", "p1.json") {
		t.Fatalf("url = %q", fs.URL("timetables/p1.json"))
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "timetables"))
	if len(entries) != 1 {
		t.Fatalf("expected only the stored file, found %d entries", len(entries))
	}
	if err := fs.CheckAccess(ctx); err != nil {
		t.Fatalf("check access: %v", err)
	}
}

func TestFilesystemStorageMissingAndInvalidKeys(t *testing.T) {
	fs := NewFilesystemStorage(t.TempDir(), zerolog.Nop())
	ctx := context.Background()

	if _, err := fs.Get(ctx, "nope.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	for _, key := range []string{"", "../escape.json", "/etc/passwd"} {
		if err := fs.Put(ctx, key, []byte("x"), ""); err == nil {
			t.Errorf("Put(%q) succeeded, want error", key)
		}
	}
}

func TestNewPicksBackend(t *testing.T) {
	store, err := New(context.Background(), &config.Config{OutputDir: t.TempDir()}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if store.Backend() != "filesystem" {
		t.Fatalf("backend = %q", store.Backend())
	}

	s3cfg := &config.Config{S3Bucket: "plans", S3Region: "eu-north-1", S3AccessKeyID: "k", S3SecretAccessKey: "s"}
	store, err = New(context.Background(), s3cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("new s3: %v", err)
	}
	if store.Backend() != "s3" {
		t.Fatalf("backend = %q", store.Backend())
	}
}

func TestObjectURL(t *testing.T) {
	tests := []struct {
		cfg  S3Config
		want string
	}{
		{S3Config{Bucket: "b", Region: "eu-north-1"}, "https://b.s3.eu-north-1.amazonaws.com/k.json"},
		{S3Config{Bucket: "b", Endpoint: "http://minio:9000/", UsePathStyle: true}, "http://minio:9000/b/k.json"},
		{S3Config{Bucket: "b", Endpoint: "https://ams3.digitaloceanspaces.com"}, "https://b.ams3.digitaloceanspaces.com/k.json"},
	}
	for _, tt := range tests {
		if got := objectURL(tt.cfg, "/k.json"); got != tt.want {
			t.Errorf("objectURL(%+v) = %q, want %q", tt.cfg, got, tt.want)
		}
	}
}
