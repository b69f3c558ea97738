package membertools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

// newTestTokens builds a token store backed by a temp file so Save works.
func newTestTokens(t *testing.T, refresh, access string) *TokenStore {
	t.Helper()
	return &TokenStore{
		path:         filepath.Join(t.TempDir(), "tokens.json"),
		RefreshToken: refresh,
		AccessToken:  access,
	}
}

func newTokenServer(t *testing.T, accessToken, rolledRefresh string, refreshCount *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("bad token request: %v", err)
		}
		if got := r.PostFormValue("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q, want refresh_token", got)
		}
		*refreshCount++
		resp := map[string]any{
			"access_token":  accessToken,
			"refresh_token": rolledRefresh,
			"expires_in":    3600,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestClientRefreshesWhenNoAccessToken(t *testing.T) {
	refreshCount := 0
	tokenSrv := newTokenServer(t, "fresh-access", "rolled-refresh", &refreshCount)
	defer tokenSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer fresh-access" {
			t.Errorf("Authorization = %q, want the refreshed token", got)
		}
		json.NewEncoder(w).Encode(User{Username: "jbrown", HomeUnits: []int{123456}})
	}))
	defer apiSrv.Close()

	tokens := newTestTokens(t, "initial-refresh", "")
	client := NewClient(tokens, Options{BaseURL: apiSrv.URL, TokenURL: tokenSrv.URL, ClientID: "test"})

	user, err := client.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if user.Username != "jbrown" {
		t.Errorf("Username = %q, want jbrown", user.Username)
	}
	if refreshCount != 1 {
		t.Errorf("refreshed %d times, want 1", refreshCount)
	}
	// Rolling refresh token must replace the stored one and hit disk
	if tokens.RefreshToken != "rolled-refresh" {
		t.Errorf("RefreshToken = %q, want rolled-refresh", tokens.RefreshToken)
	}
	reloaded, err := LoadTokens(tokens.Path())
	if err != nil {
		t.Fatalf("LoadTokens failed: %v", err)
	}
	if reloaded.RefreshToken != "rolled-refresh" {
		t.Errorf("persisted RefreshToken = %q, want rolled-refresh", reloaded.RefreshToken)
	}
}

func TestClientRetriesOnceAfter401(t *testing.T) {
	refreshCount := 0
	tokenSrv := newTokenServer(t, "fresh-access", "", &refreshCount)
	defer tokenSrv.Close()

	requests := 0
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Header.Get("Authorization") == "Bearer stale-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(User{Username: "jbrown"})
	}))
	defer apiSrv.Close()

	tokens := newTestTokens(t, "initial-refresh", "stale-access")
	client := NewClient(tokens, Options{BaseURL: apiSrv.URL, TokenURL: tokenSrv.URL, ClientID: "test"})

	if _, err := client.CurrentUser(context.Background()); err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if requests != 2 {
		t.Errorf("made %d API requests, want 2 (401 then retry)", requests)
	}
	if refreshCount != 1 {
		t.Errorf("refreshed %d times, want 1", refreshCount)
	}
}

func TestClientRejectedRefreshIsFatal(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid_grant"}`))
	}))
	defer tokenSrv.Close()

	tokens := newTestTokens(t, "expired-refresh", "")
	client := NewClient(tokens, Options{BaseURL: "http://localhost:0", TokenURL: tokenSrv.URL, ClientID: "test"})

	if _, err := client.CurrentUser(context.Background()); err == nil {
		t.Fatal("expected error for rejected refresh")
	}
}

func TestFetchSnapshot(t *testing.T) {
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v5/sync" {
			t.Errorf("path = %q, want /api/v5/sync", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if body["timeZone"] != "America/Chicago" {
			t.Errorf("timeZone = %v, want America/Chicago", body["timeZone"])
		}
		json.NewEncoder(w).Encode(Snapshot{
			Households: []Household{{UUID: "hh-1", UnitNumber: 123456}},
		})
	}))
	defer apiSrv.Close()

	tokens := newTestTokens(t, "refresh", "access")
	client := NewClient(tokens, Options{BaseURL: apiSrv.URL, ClientID: "test"})

	snap, err := client.FetchSnapshot(context.Background(), "America/Chicago")
	if err != nil {
		t.Fatalf("FetchSnapshot failed: %v", err)
	}
	if len(snap.Households) != 1 || snap.Households[0].UUID != "hh-1" {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestChurchIDHeuristic(t *testing.T) {
	tests := []struct {
		name string
		rec  MemberRecord
		want *int64
	}{
		{"numeric legacy id", MemberRecord{LegacyCmisID: float64(12345)}, int64p(12345)},
		{"digit string", MemberRecord{LegacyCmisID: "6789"}, int64p(6789)},
		{"falls back to id", MemberRecord{ID: float64(42)}, int64p(42)},
		{"legacy preferred over id", MemberRecord{LegacyCmisID: float64(1), ID: float64(2)}, int64p(1)},
		{"uuid string rejected", MemberRecord{LegacyCmisID: "abc-123"}, nil},
		{"zero rejected", MemberRecord{LegacyCmisID: float64(0)}, nil},
		{"negative rejected", MemberRecord{LegacyCmisID: float64(-5)}, nil},
		{"absent", MemberRecord{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rec.ChurchID()
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ChurchID() = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("ChurchID() = %d, want %d", *got, *tt.want)
			}
		})
	}
}

func int64p(v int64) *int64 { return &v }
