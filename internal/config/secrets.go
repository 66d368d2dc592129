package config

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups Upfolio's secrets in the OS keychain.
const KeyringService = "upfolio"

func aiKeyAccount(provider string) string {
	return "ai-api-key:" + strings.ToLower(strings.TrimSpace(provider))
}

func GetAIKey(provider string) (string, error) {
	if strings.TrimSpace(provider) == "" {
		return "", errors.New("ai provider is empty")
	}
	key, err := keyring.Get(KeyringService, aiKeyAccount(provider))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(key) == "" {
		return "", keyring.ErrNotFound
	}
	return key, nil
}

func SetAIKey(provider, key string) error {
	if strings.TrimSpace(provider) == "" {
		return errors.New("ai provider is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, aiKeyAccount(provider), key)
}

func DeleteAIKey(provider string) error {
	if strings.TrimSpace(provider) == "" {
		return errors.New("ai provider is empty")
	}
	return keyring.Delete(KeyringService, aiKeyAccount(provider))
}
