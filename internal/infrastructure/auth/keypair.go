package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/healthintel/snowbridge/pkg/errors"
)

// LoadPrivateKey reads and parses an unencrypted RSA private key in PEM
// form (PKCS#8 or PKCS#1) from path. A leading "~" is expanded to the
// user's home directory.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	expanded, err := ExpandHome(path)
	if err != nil {
		return nil, apperrors.NewConfigurationError("could not resolve private key path", err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("private key file not found: %s", expanded), err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, apperrors.NewConfigurationError("private key file is not valid PEM", nil)
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, apperrors.NewConfigurationError("private key is not an RSA key", nil)
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, apperrors.NewConfigurationError("could not parse private key", err)
	}
	return rsaKey, nil
}

// ExpandHome expands a leading ~ in path.
func ExpandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/")), nil
	}
	return path, nil
}
