package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Port:           "8080",
		Env:            "production",
		DatabaseURL:    "postgres://localhost/bridge",
		HTTPTimeout:    30 * time.Second,
		APITokenSecret: "secret",
		Antrean: ServiceCredentials{
			BaseURL:   "https://apijkn.example/antreanrs",
			ConsID:    "12345",
			SecretKey: "sk",
			UserKey:   "uk",
		},
		VClaim: ServiceCredentials{
			BaseURL:   "https://apijkn.example/vclaim-rest",
			ConsID:    "12345",
			SecretKey: "sk",
			UserKey:   "uk",
		},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_IncompleteCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.VClaim.SecretKey = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for incomplete VCLAIM credentials")
	}
	if !strings.Contains(err.Error(), "VCLAIM") {
		t.Errorf("error should name the incomplete service: %v", err)
	}
}

func TestValidate_UnconfiguredServiceSkipped(t *testing.T) {
	cfg := validConfig()
	// PCare has no base URL: disabled, not misconfigured.
	cfg.PCare = ServiceCredentials{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unconfigured service should not fail validation: %v", err)
	}
}

func TestValidate_TokenSecretRequiredOutsideDev(t *testing.T) {
	cfg := validConfig()
	cfg.APITokenSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing API_TOKEN_SECRET in production")
	}
	cfg.Env = "development"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("development mode should not require a token secret: %v", err)
	}
}

func TestValidate_TimeoutMustBePositive(t *testing.T) {
	cfg := validConfig()
	cfg.HTTPTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero HTTP_TIMEOUT")
	}
}

func TestServiceCredentials_Complete(t *testing.T) {
	creds := ServiceCredentials{ConsID: "a", SecretKey: "b", UserKey: "c"}
	if !creds.Complete() {
		t.Error("expected complete credentials")
	}
	creds.UserKey = ""
	if creds.Complete() {
		t.Error("expected incomplete credentials")
	}
}
