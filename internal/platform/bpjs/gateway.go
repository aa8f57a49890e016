package bpjs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bpjs/bridge/internal/config"
)

// Gateway composes credential resolution, request signing and response
// decryption into a single "call remote endpoint" operation. Transport and
// decryption failures never propagate as errors: they are normalized into
// Failure envelopes so the upstream HTTP layer never surfaces a generic
// server error for what is really a remote-system failure. The only error
// return is a pre-I/O configuration failure.
type Gateway struct {
	resolver *CredentialResolver
	client   *http.Client
	logger   zerolog.Logger
	now      func() time.Time
}

// GatewayOption customizes a Gateway.
type GatewayOption func(*Gateway)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) GatewayOption {
	return func(g *Gateway) { g.client = c }
}

// WithClock overrides the timestamp source, for deterministic tests.
func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) { g.now = now }
}

func NewGateway(resolver *CredentialResolver, timeout time.Duration, logger zerolog.Logger, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		resolver: resolver,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Call performs one signed request against the given service. A fresh
// timestamp is taken per call (never reused across retries) and threaded
// through both the signature and the payload decryption. payload, when not
// nil, is always JSON-marshaled regardless of contentType: the form content
// type demanded by some submission endpoints applies to the header only.
func (g *Gateway) Call(ctx context.Context, service Service, method, path string, payload interface{}, contentType string) (*Envelope, error) {
	creds, err := g.resolver.Resolve(service)
	if err != nil {
		return nil, err
	}

	timestamp := strconv.FormatInt(g.now().Unix(), 10)
	headers := Headers(creds, timestamp, contentType)
	url := creds.BaseURL + path

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("bpjs: marshal payload for %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("bpjs: build request for %s %s: %w", method, path, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error().Err(err).Str("service", string(service)).Str("path", path).Msg("remote call failed")
		return g.failure(service, path, http.StatusInternalServerError, nil,
			fmt.Sprintf("bridge error calling %s %s: %v", service, path, err)), nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		g.logger.Error().Err(err).Str("service", string(service)).Str("path", path).Msg("read remote response failed")
		return g.failure(service, path, http.StatusInternalServerError, nil,
			fmt.Sprintf("bridge error calling %s %s: read response: %v", service, path, err)), nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Warn().Int("status", resp.StatusCode).Str("service", string(service)).Str("path", path).Msg("remote returned non-2xx")
		return g.failure(service, path, resp.StatusCode, raw,
			fmt.Sprintf("bridge error calling %s %s: remote returned status %d", service, path, resp.StatusCode)), nil
	}

	return g.classify(service, path, timestamp, creds, raw), nil
}

// classify resolves the raw 2xx body into exactly one Envelope kind.
func (g *Gateway) classify(service Service, path, timestamp string, creds config.ServiceCredentials, raw []byte) *Envelope {
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		// Not a JSON object; hand it back untouched.
		return &Envelope{
			Kind:     KindPassThrough,
			Code:     http.StatusOK,
			Response: string(raw),
			Raw:      raw,
		}
	}

	meta, ok := metadataBlock(decoded)
	if !ok {
		// The remote system sometimes omits metadata. Not an error by
		// itself, just not decryptable.
		g.logger.Debug().Str("service", string(service)).Str("path", path).Msg("remote response missing metadata")
		return &Envelope{
			Kind:     KindPassThrough,
			Code:     http.StatusOK,
			Response: decoded,
			Body:     decoded,
			Raw:      raw,
		}
	}

	code, _ := normalizeCode(meta["code"])
	message, _ := meta["message"].(string)

	encrypted, isString := decoded["response"].(string)
	if (code == 200 || code == 1) && isString {
		decrypted, err := DecryptResponse(encrypted, timestamp, creds)
		if err != nil {
			derr := &DecryptionError{Service: service, Err: err}
			g.logger.Error().Err(derr).Str("path", path).Msg("response decryption failed")
			return g.failure(service, path, http.StatusInternalServerError, raw, derr.Error())
		}
		decoded["response"] = decrypted
		return &Envelope{
			Kind:     KindDecrypted,
			Code:     code,
			Message:  message,
			Response: decrypted,
			Body:     decoded,
			Raw:      raw,
		}
	}

	// Any other shape is returned as-is: a non-success code, or a response
	// field the authority chose not to encrypt.
	return &Envelope{
		Kind:     KindPassThrough,
		Code:     code,
		Message:  message,
		Response: decoded["response"],
		Body:     decoded,
		Raw:      raw,
	}
}

func (g *Gateway) failure(service Service, path string, code int, raw []byte, message string) *Envelope {
	env := &Envelope{
		Kind:    KindFailure,
		Code:    code,
		Message: message,
		Raw:     raw,
	}
	// Surface the authority's own rejection text when the error body carries
	// one; "masa berlaku habis" style messages matter to callers.
	var decoded map[string]interface{}
	if len(raw) > 0 && json.Unmarshal(raw, &decoded) == nil {
		env.Body = decoded
		if meta, ok := metadataBlock(decoded); ok {
			if c, ok := normalizeCode(meta["code"]); ok {
				env.Code = c
			}
			if m, ok := meta["message"].(string); ok && m != "" {
				env.Message = message + ": " + m
			}
		}
	}
	return env
}
