package securestore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/crypto/scrypt"
)

// FileStore keeps host values in an AES-256-GCM encrypted JSON file.
// Every operation re-reads the file, so writes made by another process
// to the same store become visible on the next call. Concurrent writers
// race whole-file last-write-wins; no cross-process locking is provided.
type FileStore struct {
	path string
	key  []byte
}

// Open creates a store backed by the encrypted file at path. The file
// does not need to exist yet; it is created on the first Set.
func Open(path string) (*FileStore, error) {
	key, err := deriveKey()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &FileStore{path: path, key: key}, nil
}

func deriveKey() ([]byte, error) {
	hostname, _ := os.Hostname()
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}

	seed := fmt.Sprintf("noodle-bridge:%s:%s", hostname, username)
	return scrypt.Key([]byte(seed), []byte("secure.store"), 1<<15, 8, 1, 32)
}

func (f *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("open store: %w", err)
	}

	plaintext, err := f.decrypt(data)
	if err != nil {
		return nil, fmt.Errorf("open store: decrypt: %w", err)
	}

	var values map[string]string
	if err := json.Unmarshal(plaintext, &values); err != nil {
		return nil, fmt.Errorf("open store: parse: %w", err)
	}
	return values, nil
}

func (f *FileStore) save(values map[string]string) error {
	plaintext, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("persist store: %w", err)
	}

	ciphertext, err := f.encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("persist store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("persist store: %w", err)
	}
	if err := os.WriteFile(f.path, ciphertext, 0o600); err != nil {
		return fmt.Errorf("persist store: %w", err)
	}
	return nil
}

func (f *FileStore) encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(f.key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (f *FileStore) decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(f.key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// Set writes key to value, creating the store file if needed.
// Last write wins.
func (f *FileStore) Set(key, value string) error {
	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

// Get returns the current value for key. A key that was never set
// reports found=false with a nil error.
func (f *FileStore) Get(key string) (string, bool, error) {
	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	val, ok := values[key]
	return val, ok, nil
}

// Delete removes key from the store.
func (f *FileStore) Delete(key string) error {
	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return fmt.Errorf("key not found: %s", key)
	}
	delete(values, key)
	return f.save(values)
}

// List returns all stored key names, sorted.
func (f *FileStore) List() ([]string, error) {
	values, err := f.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Mask returns a masked version of a value for display.
func Mask(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "..." + value[len(value)-4:]
}
