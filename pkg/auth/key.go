package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/bcrypt"
)

const (
	keyBytes = 24

	keyringService = "tmscan"
	keyringUser    = "access_key_hash"
	keyFileName    = "access_key_hash"
	fileMode       = 0600
)

// ErrNoKey is returned when no access key has been provisioned.
var ErrNoKey = errors.New("access key not provisioned")

// NewAccessKey returns a random hex key shown to the user once.
func NewAccessKey() (string, error) {
	b := make([]byte, keyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashKey returns the bcrypt hash of the key.
func HashKey(key string) (string, error) {
	if key == "" {
		return "", errors.New("key required")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}
	return string(h), nil
}

// VerifyKey reports whether key matches the stored hash.
func VerifyKey(hash, key string) bool {
	if hash == "" || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

// KeyStore keeps the key hash in the OS keychain, falling back to a
// file in Dir when the keychain is unavailable.
type KeyStore struct {
	Dir string
}

func NewKeyStore(dir string) *KeyStore {
	return &KeyStore{Dir: dir}
}

func (s *KeyStore) filePath() string {
	return filepath.Join(s.Dir, keyFileName)
}

// Save stores the hash.
func (s *KeyStore) Save(hash string) error {
	if hash == "" {
		return errors.New("hash required")
	}
	if err := keyring.Set(keyringService, keyringUser, hash); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return s.saveFile(hash)
	}

	// keychain copy wins, drop any file left by an earlier fallback
	if err := os.Remove(s.filePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Debug("error removing key file", "path", s.filePath(), "error", err)
	}
	return nil
}

// Load returns the stored hash or ErrNoKey.
func (s *KeyStore) Load() (string, error) {
	h, err := keyring.Get(keyringService, keyringUser)
	if err == nil && h != "" {
		return h, nil
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		slog.Debug("keychain read failed, trying file", "error", err)
	}

	h, err = s.loadFile()
	if err != nil {
		return "", err
	}

	if migrateErr := keyring.Set(keyringService, keyringUser, h); migrateErr == nil {
		slog.Info("migrated access key from file to OS keychain")
		os.Remove(s.filePath())
	}
	return h, nil
}

// Clear removes the hash from both locations.
func (s *KeyStore) Clear() error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		slog.Debug("keychain delete failed", "error", err)
	}
	if s.Dir == "" {
		return nil
	}
	if err := os.Remove(s.filePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing key file %s: %w", s.filePath(), err)
	}
	return nil
}

// Provision generates a new key, stores its hash and returns the key.
func (s *KeyStore) Provision() (string, error) {
	key, err := NewAccessKey()
	if err != nil {
		return "", err
	}
	h, err := HashKey(key)
	if err != nil {
		return "", err
	}
	if err := s.Save(h); err != nil {
		return "", fmt.Errorf("saving key hash: %w", err)
	}
	return key, nil
}

func (s *KeyStore) saveFile(hash string) error {
	if s.Dir == "" {
		return errors.New("key directory required")
	}
	return os.WriteFile(s.filePath(), []byte(hash), fileMode)
}

func (s *KeyStore) loadFile() (string, error) {
	if s.Dir == "" {
		return "", ErrNoKey
	}
	b, err := os.ReadFile(s.filePath())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoKey
	}
	if err != nil {
		return "", fmt.Errorf("reading key file %s: %w", s.filePath(), err)
	}
	h := strings.TrimSpace(string(b))
	if h == "" {
		return "", ErrNoKey
	}
	return h, nil
}
