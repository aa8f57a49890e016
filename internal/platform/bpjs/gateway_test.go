package bpjs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bpjs/bridge/internal/config"
)

func testGateway(t *testing.T, baseURL string, opts ...GatewayOption) *Gateway {
	t.Helper()
	cfg := &config.Config{
		VClaim: config.ServiceCredentials{
			BaseURL:   baseURL,
			ConsID:    testCreds.ConsID,
			SecretKey: testCreds.SecretKey,
			UserKey:   testCreds.UserKey,
		},
	}
	return NewGateway(NewCredentialResolver(cfg), 2*time.Second, zerolog.Nop(), opts...)
}

func TestCall_DecryptsSuccessfulResponse(t *testing.T) {
	var capturedTS string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The same timestamp drives the signature and the cipher.
		capturedTS = r.Header.Get("X-timestamp")
		if got := r.Header.Get("X-signature"); got != Signature(testCreds.ConsID, capturedTS, testCreds.SecretKey) {
			t.Errorf("signature header mismatch")
		}
		if got := r.Header.Get("user_key"); got != testCreds.UserKey {
			t.Errorf("user_key header = %q", got)
		}

		creds := config.ServiceCredentials{ConsID: testCreds.ConsID, SecretKey: testCreds.SecretKey}
		encrypted := encryptResponse(t, `{"peserta":{"nama":"BUDI"}}`, capturedTS, creds)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"metaData": map[string]interface{}{"code": "200", "message": "OK"},
			"response": encrypted,
		})
	}))
	defer srv.Close()

	env, err := testGateway(t, srv.URL).Call(context.Background(), ServiceVClaim, http.MethodGet, "/Peserta/nokartu/0001/tglSEP/2024-01-30", nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if env.Kind != KindDecrypted {
		t.Fatalf("expected KindDecrypted, got %v (message %q)", env.Kind, env.Message)
	}
	if env.Code != 200 || !env.OK() {
		t.Errorf("code = %d", env.Code)
	}
	payload, ok := env.Response.(map[string]interface{})
	if !ok {
		t.Fatalf("decrypted payload type %T", env.Response)
	}
	peserta := payload["peserta"].(map[string]interface{})
	if peserta["nama"] != "BUDI" {
		t.Errorf("unexpected payload: %#v", payload)
	}
	// The decrypted value is substituted into the body, other fields kept.
	if _, ok := env.Body["metaData"]; !ok {
		t.Error("body should preserve metadata")
	}
}

func TestCall_NumericCodeAndLegacyOne(t *testing.T) {
	for _, code := range []interface{}{float64(1), "1"} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ts := r.Header.Get("X-timestamp")
			creds := config.ServiceCredentials{ConsID: testCreds.ConsID, SecretKey: testCreds.SecretKey}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"metadata": map[string]interface{}{"code": code, "message": "Ok"},
				"response": encryptResponse(t, `[1,2,3]`, ts, creds),
			})
		}))

		env, err := testGateway(t, srv.URL).Call(context.Background(), ServiceVClaim, http.MethodGet, "/x", nil, "")
		srv.Close()
		if err != nil {
			t.Fatal(err)
		}
		if env.Kind != KindDecrypted || env.Code != 1 {
			t.Errorf("code %v: expected decrypted legacy-1 envelope, got kind %v code %d", code, env.Kind, env.Code)
		}
	}
}

func TestCall_MissingMetadataPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "up", "uptime": 42})
	}))
	defer srv.Close()

	env, err := testGateway(t, srv.URL).Call(context.Background(), ServiceVClaim, http.MethodGet, "/x", nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if env.Kind != KindPassThrough {
		t.Fatalf("expected passthrough, got %v", env.Kind)
	}
	body := env.Response.(map[string]interface{})
	if body["status"] != "up" {
		t.Errorf("body not preserved: %#v", body)
	}
}

func TestCall_NonStringResponseNotDecrypted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"metaData": map[string]interface{}{"code": 200, "message": "OK"},
			"response": map[string]interface{}{"already": "plain"},
		})
	}))
	defer srv.Close()

	env, err := testGateway(t, srv.URL).Call(context.Background(), ServiceVClaim, http.MethodGet, "/x", nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if env.Kind != KindPassThrough {
		t.Fatalf("expected passthrough for object response, got %v", env.Kind)
	}
}

func TestCall_RejectionCodePassedThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"metaData": map[string]interface{}{"code": "201", "message": "masa berlaku rujukan habis"},
			"response": nil,
		})
	}))
	defer srv.Close()

	env, err := testGateway(t, srv.URL).Call(context.Background(), ServiceVClaim, http.MethodPost, "/SEP/2.0/insert", map[string]string{}, ContentTypeForm)
	if err != nil {
		t.Fatal(err)
	}
	if env.Kind != KindPassThrough || env.Code != 201 {
		t.Fatalf("expected passthrough 201, got kind %v code %d", env.Kind, env.Code)
	}
	if env.OK() {
		t.Error("201 must not be OK")
	}
	if !strings.Contains(env.Message, "masa berlaku") {
		t.Errorf("rejection message lost: %q", env.Message)
	}
}

func TestCall_TransportFailuresNeverRaise(t *testing.T) {
	cases := []struct {
		name  string
		setup func(t *testing.T) (baseURL string, teardown func())
	}{
		{
			name: "connection refused",
			setup: func(t *testing.T) (string, func()) {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
				srv.Close()
				return srv.URL, func() {}
			},
		},
		{
			name: "timeout",
			setup: func(t *testing.T) (string, func()) {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					time.Sleep(5 * time.Second)
				}))
				return srv.URL, srv.Close
			},
		},
		{
			name: "server error",
			setup: func(t *testing.T) (string, func()) {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					http.Error(w, "upstream exploded", http.StatusBadGateway)
				}))
				return srv.URL, srv.Close
			},
		},
		{
			name: "client error",
			setup: func(t *testing.T) (string, func()) {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					http.Error(w, "no such participant", http.StatusNotFound)
				}))
				return srv.URL, srv.Close
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			baseURL, teardown := tc.setup(t)
			defer teardown()

			gw := testGateway(t, baseURL, WithHTTPClient(&http.Client{Timeout: 200 * time.Millisecond}))
			env, err := gw.Call(context.Background(), ServiceVClaim, http.MethodGet, "/x", nil, "")
			if err != nil {
				t.Fatalf("transport failure must not raise: %v", err)
			}
			if env.Kind != KindFailure {
				t.Fatalf("expected failure envelope, got %v", env.Kind)
			}
			if env.Code == 0 {
				t.Error("failure envelope must carry a numeric code")
			}
			if env.Message == "" || !strings.Contains(env.Message, string(ServiceVClaim)) {
				t.Errorf("failure message must name the service: %q", env.Message)
			}
		})
	}
}

func TestCall_Non2xxWithRemoteEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"metaData": map[string]interface{}{"code": "401", "message": "Signature tidak valid"},
		})
	}))
	defer srv.Close()

	env, err := testGateway(t, srv.URL).Call(context.Background(), ServiceVClaim, http.MethodGet, "/x", nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if env.Kind != KindFailure {
		t.Fatalf("expected failure, got %v", env.Kind)
	}
	if env.Code != 401 {
		t.Errorf("expected remote metadata code 401, got %d", env.Code)
	}
	if !strings.Contains(env.Message, "Signature tidak valid") {
		t.Errorf("remote rejection text lost: %q", env.Message)
	}
}

func TestCall_ConfigurationErrorBeforeIO(t *testing.T) {
	cfg := &config.Config{} // no services configured
	gw := NewGateway(NewCredentialResolver(cfg), time.Second, zerolog.Nop())

	_, err := gw.Call(context.Background(), ServiceVClaim, http.MethodGet, "/x", nil, "")
	if err == nil {
		t.Fatal("expected configuration error")
	}
	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		t.Errorf("expected *ConfigurationError, got %T", err)
	}
}

func TestCall_FreshTimestampPerCall(t *testing.T) {
	var timestamps []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timestamps = append(timestamps, r.Header.Get("X-timestamp"))
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	tick := time.Unix(1700000000, 0)
	gw := testGateway(t, srv.URL, WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))

	for i := 0; i < 3; i++ {
		if _, err := gw.Call(context.Background(), ServiceVClaim, http.MethodGet, "/x", nil, ""); err != nil {
			t.Fatal(err)
		}
	}
	if len(timestamps) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(timestamps))
	}
	if timestamps[0] == timestamps[1] || timestamps[1] == timestamps[2] {
		t.Errorf("timestamps must be taken fresh per call: %v", timestamps)
	}
}

func TestNormalizeCode(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int
		ok   bool
	}{
		{float64(200), 200, true},
		{"200", 200, true},
		{"1", 1, true},
		{json.Number("201"), 201, true},
		{"abc", 0, false},
		{nil, 0, false},
	}
	for _, tc := range cases {
		got, ok := normalizeCode(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("normalizeCode(%#v) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
