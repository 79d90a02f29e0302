package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != "5000" {
		t.Errorf("Port = %q, want 5000", c.Port)
	}
	if c.JWTExpire != 720*time.Hour {
		t.Errorf("JWTExpire = %v, want 720h", c.JWTExpire)
	}
	if c.MaxFileUpload != 1000000 {
		t.Errorf("MaxFileUpload = %d", c.MaxFileUpload)
	}
	if !c.SingleBootcampPerPublisher {
		t.Error("SingleBootcampPerPublisher should default to true")
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestCookieTTL(t *testing.T) {
	c := Config{JWTCookieExpire: 2}
	if got := c.CookieTTL(); got != 48*time.Hour {
		t.Errorf("CookieTTL = %v", got)
	}
	if (Config{Env: "production"}).IsProduction() != true {
		t.Error("production env not detected")
	}
}
