// Package bpjs implements the signed-request / encrypted-response protocol
// spoken by the national health-insurance authority's API families: the
// queueing service (antrean), the eligibility/claims service (vclaim) and the
// primary-care visit service (pcare).
//
// Every call derives its authentication headers and its symmetric decryption
// key from the service's shared secrets and a single per-call timestamp. The
// timestamp is threaded explicitly through both signing and decryption:
// letting each side read its own clock would silently diverge under latency
// and produce undecryptable payloads.
package bpjs

import (
	"fmt"

	"github.com/bpjs/bridge/internal/config"
)

// Service identifies one of the remote authority's API families.
type Service string

const (
	ServiceAntrean Service = "antrean"
	ServiceVClaim  Service = "vclaim"
	ServicePCare   Service = "pcare"
)

// ConfigurationError reports missing credentials for a service. It is raised
// before any network I/O: a partial header set would otherwise produce a
// remote 401 that is much harder to diagnose.
type ConfigurationError struct {
	Service Service
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("bpjs: credentials missing for service %q, check the %s_* environment", e.Service, envPrefix(e.Service))
}

func envPrefix(s Service) string {
	switch s {
	case ServiceAntrean:
		return "ANTREAN"
	case ServiceVClaim:
		return "VCLAIM"
	case ServicePCare:
		return "PCARE"
	}
	return "UNKNOWN"
}

// CredentialResolver maps a service identity to its base URL and credential
// triple. Credentials live in the process configuration constructed once at
// startup; nothing in this package reads ambient environment state.
type CredentialResolver struct {
	cfg *config.Config
}

func NewCredentialResolver(cfg *config.Config) *CredentialResolver {
	return &CredentialResolver{cfg: cfg}
}

// Resolve returns the credentials for the given service, or a
// ConfigurationError when the service is disabled or any secret is empty.
func (r *CredentialResolver) Resolve(service Service) (config.ServiceCredentials, error) {
	var creds config.ServiceCredentials
	switch service {
	case ServiceAntrean:
		creds = r.cfg.Antrean
	case ServiceVClaim:
		creds = r.cfg.VClaim
	case ServicePCare:
		creds = r.cfg.PCare
	default:
		return config.ServiceCredentials{}, fmt.Errorf("bpjs: unknown service %q", service)
	}

	if !creds.Configured() || !creds.Complete() {
		return config.ServiceCredentials{}, &ConfigurationError{Service: service}
	}
	return creds, nil
}
