package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServiceCredentials holds the credential triple plus base URL for one of the
// national insurance authority's API families (antrean, vclaim, pcare).
type ServiceCredentials struct {
	BaseURL   string
	ConsID    string
	SecretKey string
	UserKey   string
}

// Configured reports whether the service has been set up at all. A service
// with no base URL is treated as disabled rather than misconfigured.
func (s ServiceCredentials) Configured() bool {
	return s.BaseURL != ""
}

// Complete reports whether all three secrets are present.
func (s ServiceCredentials) Complete() bool {
	return s.ConsID != "" && s.SecretKey != "" && s.UserKey != ""
}

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	// HTTPTimeout bounds every outbound call to the remote authority. A hung
	// remote call would otherwise block the orchestration and its open
	// transaction indefinitely.
	HTTPTimeout time.Duration `mapstructure:"HTTP_TIMEOUT"`

	// APITokenSecret signs and verifies bearer tokens for the bridge API.
	APITokenSecret string `mapstructure:"API_TOKEN_SECRET"`

	// MRNBase is the fixed offset added to the medical-record allocation
	// sequence when formatting new medical-record numbers.
	MRNBase int `mapstructure:"MRN_BASE"`

	// HospitalCode is the facility's provider code (ppkPelayanan) embedded in
	// outgoing eligibility-certificate requests.
	HospitalCode string `mapstructure:"HOSPITAL_CODE"`

	Antrean ServiceCredentials
	VClaim  ServiceCredentials
	PCare   ServiceCredentials
}

// serviceEnvKeys lists the per-service credential environment variables.
var serviceEnvKeys = []string{"BASE_URL", "CONS_ID", "SECRET_KEY", "USER_KEY"}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("MRN_BASE", 100000)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("HTTP_TIMEOUT")
	v.BindEnv("API_TOKEN_SECRET")
	v.BindEnv("MRN_BASE")
	v.BindEnv("HOSPITAL_CODE")
	for _, prefix := range []string{"ANTREAN", "VCLAIM", "PCARE"} {
		for _, key := range serviceEnvKeys {
			v.BindEnv(prefix + "_" + key)
		}
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Antrean = readServiceCredentials(v, "ANTREAN")
	cfg.VClaim = readServiceCredentials(v, "VCLAIM")
	cfg.PCare = readServiceCredentials(v, "PCARE")

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func readServiceCredentials(v *viper.Viper, prefix string) ServiceCredentials {
	return ServiceCredentials{
		BaseURL:   v.GetString(prefix + "_BASE_URL"),
		ConsID:    v.GetString(prefix + "_CONS_ID"),
		SecretKey: v.GetString(prefix + "_SECRET_KEY"),
		UserKey:   v.GetString(prefix + "_USER_KEY"),
	}
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. A service whose base
// URL is set must carry the full credential triple; failing here is cheaper to
// diagnose than the remote 401 a partial header set would produce.
func (c *Config) Validate() error {
	services := []struct {
		name  string
		creds ServiceCredentials
	}{
		{"ANTREAN", c.Antrean},
		{"VCLAIM", c.VClaim},
		{"PCARE", c.PCare},
	}

	var incomplete []string
	for _, s := range services {
		if s.creds.Configured() && !s.creds.Complete() {
			incomplete = append(incomplete, s.name)
		}
	}
	if len(incomplete) > 0 {
		return fmt.Errorf(
			"incomplete credentials for %s: CONS_ID, SECRET_KEY and USER_KEY are all required when BASE_URL is set",
			strings.Join(incomplete, ", "))
	}

	if !c.IsDev() && c.APITokenSecret == "" {
		return fmt.Errorf("API_TOKEN_SECRET is required outside development")
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}

	return nil
}
