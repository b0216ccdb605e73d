package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "jenky"
	apiKeyAccount  = "jenkins_api_key"
)

// ErrSecretNotFound is returned by a SecretStore when no secret is stored.
var ErrSecretNotFound = errors.New("secret not found")

// ErrIncomplete reports that one or more credentials are missing.
var ErrIncomplete = errors.New("jenkins credentials incomplete: set username, api key and hostname")

// SecretStore stores secrets by account name.
type SecretStore interface {
	Get(account string) (string, error)
	Set(account, secret string) error
}

// Keyring is a SecretStore backed by the OS keyring.
type Keyring struct {
	Service string
}

// NewKeyring returns a Keyring using the jenky service name.
func NewKeyring() Keyring {
	return Keyring{Service: keyringService}
}

// Get returns the secret for account, or ErrSecretNotFound.
func (k Keyring) Get(account string) (string, error) {
	secret, err := keyring.Get(k.service(), account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrSecretNotFound
		}
		return "", fmt.Errorf("keyring get %s: %w", account, err)
	}
	return secret, nil
}

// Set stores secret for account.
func (k Keyring) Set(account, secret string) error {
	if err := keyring.Set(k.service(), account, secret); err != nil {
		return fmt.Errorf("keyring set %s: %w", account, err)
	}
	return nil
}

func (k Keyring) service() string {
	if k.Service == "" {
		return keyringService
	}
	return k.Service
}

// SaveAPIKey stores the Jenkins API key in secrets.
func SaveAPIKey(secrets SecretStore, apiKey string) error {
	return secrets.Set(apiKeyAccount, strings.TrimSpace(apiKey))
}

// Credentials are everything needed to talk to Jenkins.
type Credentials struct {
	Username string
	APIKey   string
	Hostname string
}

// Complete reports whether all three credentials are set.
func (c Credentials) Complete() bool {
	return c.Username != "" && c.APIKey != "" && c.Hostname != ""
}

// Missing lists the names of unset credentials.
func (c Credentials) Missing() []string {
	var missing []string
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.APIKey == "" {
		missing = append(missing, "api key")
	}
	if c.Hostname == "" {
		missing = append(missing, "hostname")
	}
	return missing
}

// LoadCredentials combines plain settings with the API key from secrets.
// A missing API key is not an error; use Complete to check readiness.
func LoadCredentials(s Settings, secrets SecretStore) (Credentials, error) {
	creds := Credentials{
		Username: strings.TrimSpace(s.Username),
		Hostname: strings.TrimSpace(s.Hostname),
	}
	if secrets == nil {
		return creds, nil
	}
	apiKey, err := secrets.Get(apiKeyAccount)
	if err != nil && !errors.Is(err, ErrSecretNotFound) {
		return creds, err
	}
	creds.APIKey = strings.TrimSpace(apiKey)
	return creds, nil
}

// MaskSecret hides all but the last four characters of secret.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	runes := []rune(secret)
	if len(runes) <= 4 {
		return strings.Repeat("•", len(runes))
	}
	return strings.Repeat("•", len(runes)-4) + string(runes[len(runes)-4:])
}
