package config

import (
	"testing"
	"time"
)

func TestPort(t *testing.T) {
	t.Setenv("TEST_PORT", "13778")
	p, err := Port("TEST_PORT", "8080")
	if err != nil {
		t.Fatalf("Port failed: %v", err)
	}
	if p != "13778" {
		t.Fatalf("expected 13778, got %s", p)
	}

	t.Setenv("TEST_PORT", "70000")
	if _, err := Port("TEST_PORT", "8080"); err == nil {
		t.Fatal("expected error for out of range port")
	}
}

func TestInt(t *testing.T) {
	n, err := Int("TEST_MAX_SLICES", 10000, 1, 100000)
	if err != nil || n != 10000 {
		t.Fatalf("expected fallback 10000, got %d (%v)", n, err)
	}

	t.Setenv("TEST_MAX_SLICES", "250")
	n, err = Int("TEST_MAX_SLICES", 10000, 1, 100000)
	if err != nil || n != 250 {
		t.Fatalf("expected 250, got %d (%v)", n, err)
	}

	t.Setenv("TEST_MAX_SLICES", "0")
	if _, err := Int("TEST_MAX_SLICES", 10000, 1, 100000); err == nil {
		t.Fatal("expected error below min")
	}
}

func TestBoolAndSeconds(t *testing.T) {
	t.Setenv("TEST_FLAG", "yes")
	if !Bool("TEST_FLAG", false) {
		t.Fatal("expected yes to be true")
	}
	t.Setenv("TEST_FLAG", "maybe")
	if Bool("TEST_FLAG", false) {
		t.Fatal("expected fallback for unknown value")
	}

	t.Setenv("TEST_TIMEOUT", "7")
	if got := Seconds("TEST_TIMEOUT", time.Second); got != 7*time.Second {
		t.Fatalf("expected 7s, got %s", got)
	}
	t.Setenv("TEST_TIMEOUT", "-1")
	if got := Seconds("TEST_TIMEOUT", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %s", got)
	}
}

func TestList(t *testing.T) {
	t.Setenv("TEST_ORIGINS", " http://a.test, ,http://b.test ")
	got := List("TEST_ORIGINS", "")
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Fatalf("unexpected list: %#v", got)
	}
}
