package google

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestCredentialsFromTokenOmitsEmptyFields(t *testing.T) {
	creds := CredentialsFromToken(&oauth2.Token{AccessToken: "tok"})

	if got := creds.AccessToken(); got != "tok" {
		t.Errorf("access token = %q, want %q", got, "tok")
	}
	for _, key := range []string{fieldRefreshToken, fieldTokenType, fieldExpiry} {
		if _, ok := creds[key]; ok {
			t.Errorf("field %q present for empty token value", key)
		}
	}
}

func TestCredentialsTokenRoundTrip(t *testing.T) {
	expiry := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	creds := CredentialsFromToken(&oauth2.Token{
		AccessToken:  "tok",
		RefreshToken: "ref",
		TokenType:    "Bearer",
		Expiry:       expiry,
	})

	tok := creds.Token()
	if tok.AccessToken != "tok" || tok.RefreshToken != "ref" || tok.TokenType != "Bearer" {
		t.Errorf("Token() = %+v, want tok/ref/Bearer", tok)
	}
	if !tok.Expiry.Equal(expiry) {
		t.Errorf("expiry = %v, want %v", tok.Expiry, expiry)
	}
}

func TestCredentialsTokenDefaults(t *testing.T) {
	tok := Credentials{fieldAccessToken: "tok"}.Token()

	if tok.TokenType != "Bearer" {
		t.Errorf("token type = %q, want Bearer", tok.TokenType)
	}
	// Without a stored expiry the token must come back already expired, so
	// the token source refreshes instead of trusting a stale access token.
	if tok.Valid() {
		t.Error("token without stored expiry should not be valid")
	}
}

func TestCredentialsMerge(t *testing.T) {
	tests := []struct {
		name    string
		current Credentials
		update  Credentials
		want    Credentials
	}{
		{
			name:    "refresh response without refresh_token keeps stored one",
			current: Credentials{fieldAccessToken: "a", fieldRefreshToken: "r"},
			update:  Credentials{fieldAccessToken: "b"},
			want:    Credentials{fieldAccessToken: "b", fieldRefreshToken: "r"},
		},
		{
			name:    "empty string in update does not erase",
			current: Credentials{fieldAccessToken: "a", fieldRefreshToken: "r"},
			update:  Credentials{fieldAccessToken: "b", fieldRefreshToken: ""},
			want:    Credentials{fieldAccessToken: "b", fieldRefreshToken: "r"},
		},
		{
			name:    "unknown fields survive",
			current: Credentials{fieldAccessToken: "a", "id_token": "jwt"},
			update:  Credentials{fieldAccessToken: "b"},
			want:    Credentials{fieldAccessToken: "b", "id_token": "jwt"},
		},
		{
			name:    "update adds new fields",
			current: Credentials{fieldAccessToken: "a"},
			update:  Credentials{fieldExpiry: "2026-08-23T12:00:00Z"},
			want:    Credentials{fieldAccessToken: "a", fieldExpiry: "2026-08-23T12:00:00Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.current.Merge(tt.update)
			if len(got) != len(tt.want) {
				t.Fatalf("Merge() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("Merge()[%q] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestCredentialsMergeDoesNotMutateReceiver(t *testing.T) {
	current := Credentials{fieldAccessToken: "a"}
	_ = current.Merge(Credentials{fieldAccessToken: "b"})

	if current.AccessToken() != "a" {
		t.Errorf("receiver mutated: access token = %q, want %q", current.AccessToken(), "a")
	}
}
