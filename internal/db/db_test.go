package db

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	token, err := database.Token()
	if err != nil {
		t.Fatalf("Token on empty db: %v", err)
	}
	if token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}

	if err := database.SetToken("abc"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := database.SetToken("def"); err != nil {
		t.Fatalf("SetToken overwrite: %v", err)
	}
	if token, _ = database.Token(); token != "def" {
		t.Fatalf("Token = %q, want def", token)
	}

	if err := database.ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if token, _ = database.Token(); token != "" {
		t.Fatalf("Token after clear = %q", token)
	}
}

func TestNewPersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()

	first, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.SetToken("persisted"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	first.Close()

	second, err := New(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	if token, _ := second.Token(); token != "persisted" {
		t.Fatalf("Token after reopen = %q", token)
	}
}
