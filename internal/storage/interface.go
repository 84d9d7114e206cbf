package storage

import (
	"errors"

	"github.com/julianstephens/habitual/internal/models"
)

var (
	// ErrNotFound is returned by Get when no value is stored under a key.
	ErrNotFound = errors.New("not found")
	// ErrNotInitialized is returned by Load when the backing store was never created.
	ErrNotInitialized = errors.New("storage not initialized, run 'habitual init' first")
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Session state (cached user, offline snapshot)
	Get(key string) (string, error)
	Put(key, value string) error
	Delete(key string) error
	// Clear removes all session state. Settings are kept.
	Clear() error

	// Utils
	GetConfigPath() string
}
