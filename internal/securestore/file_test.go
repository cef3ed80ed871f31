package securestore

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "secure.store"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return st
}

func TestFileStore_RoundTrip(t *testing.T) {
	st := newTestStore(t)

	if err := st.Set("API_TOKEN", "tok-123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, found, err := st.Get("API_TOKEN")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected key to be found")
	}
	if val != "tok-123" {
		t.Errorf("expected 'tok-123', got %q", val)
	}
}

func TestFileStore_GetAbsent(t *testing.T) {
	st := newTestStore(t)

	// A never-set key reports absence, not an error
	val, found, err := st.Get("NEVER_SET")
	if err != nil {
		t.Fatalf("Get on absent key returned error: %v", err)
	}
	if found {
		t.Error("expected found=false for absent key")
	}
	if val != "" {
		t.Errorf("expected empty value, got %q", val)
	}
}

func TestFileStore_Overwrite(t *testing.T) {
	st := newTestStore(t)

	st.Set("KEY", "value1")
	st.Set("KEY", "value2")

	val, _, _ := st.Get("KEY")
	if val != "value2" {
		t.Errorf("expected 'value2' after overwrite, got %q", val)
	}

	keys, _ := st.List()
	if len(keys) != 1 {
		t.Errorf("expected 1 key (no duplicate), got %d", len(keys))
	}
}

func TestFileStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secure.store")

	// Write with one instance
	st1, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := st1.Set("PERSIST_KEY", "persist-value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Read with another instance, as a second process would
	st2, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	val, found, err := st2.Get("PERSIST_KEY")
	if err != nil {
		t.Fatalf("Get from second instance failed: %v", err)
	}
	if !found || val != "persist-value" {
		t.Errorf("expected 'persist-value', got %q (found=%v)", val, found)
	}
}

func TestFileStore_SeesExternalWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secure.store")
	st1, _ := Open(path)
	st2, _ := Open(path)

	st1.Set("SHARED", "from-st1")

	// st2 was opened before the write; it must still see it
	val, found, err := st2.Get("SHARED")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found || val != "from-st1" {
		t.Errorf("expected 'from-st1', got %q (found=%v)", val, found)
	}
}

func TestFileStore_DeleteAndList(t *testing.T) {
	st := newTestStore(t)

	st.Set("A", "1")
	st.Set("B", "2")

	keys, err := st.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "A" || keys[1] != "B" {
		t.Errorf("expected sorted [A B], got %v", keys)
	}

	if err := st.Delete("A"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	keys, _ = st.List()
	if len(keys) != 1 {
		t.Errorf("expected 1 key after delete, got %d", len(keys))
	}

	if err := st.Delete("NONEXISTENT"); err == nil {
		t.Error("expected error when deleting nonexistent key")
	}
}

func TestFileStore_EncryptedOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secure.store")
	st, _ := Open(path)
	st.Set("SECRET", "plainly-visible-if-broken")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) == "" {
		t.Fatal("store file is empty")
	}
	if bytes.Contains(data, []byte("plainly-visible-if-broken")) {
		t.Error("value stored in cleartext")
	}
	if bytes.Contains(data, []byte("SECRET")) {
		t.Error("key stored in cleartext")
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secure.store")
	os.WriteFile(path, []byte("not a valid ciphertext"), 0o600)

	st, _ := Open(path)
	if _, _, err := st.Get("ANY"); err == nil {
		t.Error("expected error reading a corrupt store")
	}
	if err := st.Set("ANY", "value"); err == nil {
		t.Error("expected error writing through a corrupt store")
	}
}

func TestDeriveKey(t *testing.T) {
	key1, err := deriveKey()
	if err != nil {
		t.Fatalf("deriveKey failed: %v", err)
	}
	if len(key1) != 32 {
		t.Errorf("expected 32-byte key, got %d", len(key1))
	}

	key2, _ := deriveKey()
	for i := range key1 {
		if key1[i] != key2[i] {
			t.Error("deriveKey should be deterministic")
			break
		}
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"short", "****"},
		{"12345678", "****"},
		{"sk-1234567890abcdef", "sk-1...cdef"},
		{"HOST_SECRET_VALUE_LONG_ENOUGH", "HOST...OUGH"},
	}

	for _, tt := range tests {
		result := Mask(tt.input)
		if result != tt.expected {
			t.Errorf("Mask(%q): expected %q, got %q", tt.input, tt.expected, result)
		}
	}
}
