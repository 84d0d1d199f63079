package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const pepperSize = 32

// LoadPepper reads the server pepper from path, generating and persisting a
// new one (mode 0600) when the file does not exist yet.
//
// The pepper is returned to the caller rather than held in package state; it
// must be passed explicitly to Derive and Verify.
func LoadPepper(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("cryptox: pepper path is empty")
	}

	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", fmt.Errorf("failed to create pepper directory: %w", err)
	}

	data, err := os.ReadFile(path)
	if err == nil {
		pepper := strings.TrimSpace(string(data))
		if pepper == "" {
			return "", fmt.Errorf("cryptox: pepper file %s is empty", path)
		}
		return pepper, nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read pepper: %w", err)
	}

	// Generate a new pepper and save it to the file
	buf := make([]byte, pepperSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate pepper: %w", err)
	}
	pepper := base64.RawURLEncoding.EncodeToString(buf)

	if err := os.WriteFile(path, []byte(pepper), 0600); err != nil {
		return "", fmt.Errorf("failed to write pepper: %w", err)
	}
	return pepper, nil
}
