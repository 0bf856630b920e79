package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"salon-admin-cli/model"
)

const (
	appDir          = "salon-admin-cli"
	catalogCacheTTL = 12 * time.Hour
	maxRecentClient = 8
)

type cacheEnvelope[T any] struct {
	UpdatedAt time.Time `json:"updated_at"`
	Data      T         `json:"data"`
}

type authState struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// RecentClient is a contact used in a previous booking.
type RecentClient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type clientHistory struct {
	Clients []RecentClient `json:"clients"`
}

// LoadAuthToken returns the cached API token, or "" when nobody is logged in.
func LoadAuthToken() (string, error) {
	path, err := configPath("auth.json")
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	var state authState
	if err := json.Unmarshal(data, &state); err != nil {
		return "", errors.New("invalid auth token format")
	}
	return state.Token, nil
}

func SaveAuthToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is required")
	}
	path, err := configPath("auth.json")
	if err != nil {
		return err
	}
	return writeJSON(path, authState{Token: token, SavedAt: time.Now()}, 0o600)
}

func ClearAuthToken() error {
	path, err := configPath("auth.json")
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func LoadCatalogCache() (model.CatalogPayload, bool, error) {
	path, err := cachePath("catalog.json")
	if err != nil {
		return model.CatalogPayload{}, false, err
	}
	cache, err := loadCache[model.CatalogPayload](path)
	if err != nil {
		return model.CatalogPayload{}, false, err
	}
	return cache.Data, time.Since(cache.UpdatedAt) <= catalogCacheTTL, nil
}

func SaveCatalogCache(payload model.CatalogPayload) error {
	path, err := cachePath("catalog.json")
	if err != nil {
		return err
	}
	return saveCache(path, payload)
}

func LoadRecentClients() ([]RecentClient, error) {
	path, err := configPath("clients.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var history clientHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, errors.New("invalid client history format")
	}
	return history.Clients, nil
}

// RememberClient moves client to the front of the history, dropping older
// entries with the same email.
func RememberClient(client RecentClient) error {
	client.Name = strings.TrimSpace(client.Name)
	client.Email = strings.TrimSpace(client.Email)
	client.Phone = strings.TrimSpace(client.Phone)
	if client.Email == "" {
		return errors.New("client email is required")
	}

	history, _ := LoadRecentClients()
	next := []RecentClient{client}
	for _, existing := range history {
		if strings.EqualFold(existing.Email, client.Email) {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentClient {
			break
		}
	}

	path, err := configPath("clients.json")
	if err != nil {
		return err
	}
	// Contact details stay private to the user.
	return writeJSON(path, clientHistory{Clients: next}, 0o600)
}

// LogFilePath is where the interactive UI writes its log.
func LogFilePath() (string, error) {
	return cachePath("salon-admin.log")
}

func loadCache[T any](path string) (cacheEnvelope[T], error) {
	var cache cacheEnvelope[T]
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return cache, err
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		return cache, err
	}
	return cache, nil
}

func saveCache[T any](path string, data T) error {
	cache := cacheEnvelope[T]{
		UpdatedAt: time.Now(),
		Data:      data,
	}
	return writeJSON(path, cache, 0o644)
}

func writeJSON(path string, value any, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, payload, perm); err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, perm)
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, name), nil
}

func cachePath(name string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(dir, appDir), 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, name), nil
}
