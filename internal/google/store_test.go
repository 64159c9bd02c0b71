package google

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStoreAt(filepath.Join(t.TempDir(), "workspacemcp", "credentials.json"))
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	saved := Credentials{
		"access_token":  "tok",
		"refresh_token": "ref",
		"token_type":    "Bearer",
		"scope":         "https://www.googleapis.com/auth/drive",
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, ok := store.Load()
	if !ok {
		t.Fatal("Load() reported absent after Save()")
	}
	if len(loaded) != len(saved) {
		t.Fatalf("Load() returned %d fields, want %d", len(loaded), len(saved))
	}
	for k, v := range saved {
		if loaded[k] != v {
			t.Errorf("Load()[%q] = %v, want %v", k, loaded[k], v)
		}
	}
}

func TestStoreLoadAbsent(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, path string)
	}{
		{"missing file", func(t *testing.T, path string) {}},
		{"empty file", func(t *testing.T, path string) {
			if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, nil, 0600); err != nil {
				t.Fatal(err)
			}
		}},
		{"invalid JSON", func(t *testing.T, path string) {
			if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, []byte("not json{"), 0600); err != nil {
				t.Fatal(err)
			}
		}},
		{"empty object", func(t *testing.T, path string) {
			if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
				t.Fatal(err)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			tt.prepare(t, store.Path())

			creds, ok := store.Load()
			if ok {
				t.Errorf("Load() = %v, want absent", creds)
			}
		})
	}
}

func TestStoreSavePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on Windows")
	}

	store := newTestStore(t)
	if err := store.Save(Credentials{"access_token": "tok"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	if got := info.Mode().Perm(); got != 0600 {
		t.Errorf("credential file mode = %o, want 0600", got)
	}

	dirInfo, err := os.Stat(filepath.Dir(store.Path()))
	if err != nil {
		t.Fatal(err)
	}
	if got := dirInfo.Mode().Perm(); got != 0700 {
		t.Errorf("credential directory mode = %o, want 0700", got)
	}
}

func TestStoreSaveFailurePropagates(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on Windows")
	}
	if os.Getuid() == 0 {
		t.Skip("running as root, write permissions are not enforced")
	}

	dir := t.TempDir()
	if err := os.Chmod(dir, 0500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0700) })

	store := NewStoreAt(filepath.Join(dir, "nested", "credentials.json"))
	if err := store.Save(Credentials{"access_token": "tok"}); err == nil {
		t.Error("Save() into read-only directory should return an error")
	}
}

func TestStoreMergePreservesRefreshToken(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(Credentials{"access_token": "a", "refresh_token": "r"}); err != nil {
		t.Fatal(err)
	}

	// A refresh response typically carries a new access token but no
	// refresh token.
	if err := store.Merge(Credentials{"access_token": "b"}); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	loaded, ok := store.Load()
	if !ok {
		t.Fatal("Load() reported absent after Merge()")
	}
	if got := loaded.AccessToken(); got != "b" {
		t.Errorf("access token = %q, want %q", got, "b")
	}
	if got := loaded.RefreshToken(); got != "r" {
		t.Errorf("refresh token = %q, want %q", got, "r")
	}
}

func TestStoreMergeWithoutExistingRecord(t *testing.T) {
	store := newTestStore(t)

	if err := store.Merge(Credentials{"access_token": "b", "refresh_token": "r"}); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	loaded, ok := store.Load()
	if !ok {
		t.Fatal("Load() reported absent after Merge() onto empty store")
	}
	if loaded.AccessToken() != "b" || loaded.RefreshToken() != "r" {
		t.Errorf("merged record = %v, want access b / refresh r", loaded)
	}
}
