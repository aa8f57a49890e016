// Package referral determines whether a referral document (rujukan) is still
// usable on a target date. The remote authority exposes no direct validity
// endpoint; the only way to observe the status is a side-effecting dry run
// against the queueing service and inspection of the rejection text.
package referral

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bpjs/bridge/internal/platform/bpjs"
)

// Validity is a best-effort heuristic, never an authoritative answer. The
// probe itself can fail independently of the referral's actual status, so the
// result carries the raw message instead of terminating.
type Validity struct {
	IsValid    bool   `json:"is_valid"`
	IsExpired  bool   `json:"is_expired"`
	RawMessage string `json:"raw_message"`
}

// QueueProber is the slice of the remote client the checker needs.
type QueueProber interface {
	AddAntrean(ctx context.Context, payload interface{}) (*bpjs.Envelope, error)
}

// Rejection texts the authority uses for referrals outside their validity
// window. Matched case-insensitively against the probe response.
var expirySubstrings = []string{
	"masa berlaku",
	"habis",
	"kadaluarsa",
	"tidak berlaku",
}

type Checker struct {
	prober QueueProber
	logger zerolog.Logger
}

func NewChecker(prober QueueProber, logger zerolog.Logger) *Checker {
	return &Checker{prober: prober, logger: logger}
}

// CheckValidity probes the queueing service with a disposable submission
// carrying dummy patient identifiers and the referral under test. A remote
// acceptance creates a throwaway queue entry as a side effect.
func (c *Checker) CheckValidity(ctx context.Context, referralNo, date string) Validity {
	probe := map[string]interface{}{
		"nomorkartu": "0000000000000",
		"nik":        "0000000000000000",
		"norujukan":  referralNo,
		"tanggal":    date,
		"keterangan": "validity probe",
	}

	env, err := c.prober.AddAntrean(ctx, probe)
	if err != nil {
		// Configuration failure: the probe never left the bridge.
		c.logger.Error().Err(err).Str("referral", referralNo).Msg("referral probe not sent")
		return Validity{RawMessage: err.Error()}
	}

	if env.OK() {
		return Validity{IsValid: true, RawMessage: env.Message}
	}

	lower := strings.ToLower(env.Message)
	for _, sub := range expirySubstrings {
		if strings.Contains(lower, sub) {
			return Validity{IsExpired: true, RawMessage: env.Message}
		}
	}

	c.logger.Debug().Str("referral", referralNo).Int("code", env.Code).Str("message", env.Message).
		Msg("referral probe rejected for a non-expiry reason")
	return Validity{RawMessage: env.Message}
}
