// Package prefs persists the console's user preferences and theme in the
// settings database.
package prefs

import (
	"errors"
	"fmt"

	"cadenza/internal/database"
	"cadenza/pkg/models"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// Storage keys
const (
	KeyPreferences = "userPreferences"
	KeyTheme       = "theme"
)

// Themes
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Defaults applied when nothing is stored
const (
	DefaultAlgorithm = "hybrid"
	DefaultCount     = 10
	DefaultDiversity = 5
	DefaultTheme     = ThemeLight
	MaxCount         = 50
	MaxDiversity     = 10
)

// Algorithms the recommendation API understands
var Algorithms = []string{"hybrid", "usercf", "itemcf", "content", "popular"}

// ErrInvalid is returned when preferences fail validation
var ErrInvalid = errors.New("invalid preferences")

// KV is the durable key/value storage the store writes to
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Store reads and writes preferences
type Store struct {
	kv     KV
	logger *logrus.Logger
}

// NewStore creates a store on kv
func NewStore(kv KV, logger *logrus.Logger) *Store {
	return &Store{kv: kv, logger: logger}
}

// Defaults returns the preferences used when nothing has been saved
func Defaults() models.Preferences {
	return models.Preferences{
		DefaultAlgorithm: DefaultAlgorithm,
		DefaultCount:     DefaultCount,
		DiversityValue:   DefaultDiversity,
	}
}

// Validate checks p against the allowed ranges
func Validate(p models.Preferences) error {
	if !IsAlgorithm(p.DefaultAlgorithm) {
		return fmt.Errorf("%w: unknown algorithm %q", ErrInvalid, p.DefaultAlgorithm)
	}
	if p.DefaultCount < 1 || p.DefaultCount > MaxCount {
		return fmt.Errorf("%w: count must be between 1 and %d", ErrInvalid, MaxCount)
	}
	if p.DiversityValue < 0 || p.DiversityValue > MaxDiversity {
		return fmt.Errorf("%w: diversity must be between 0 and %d", ErrInvalid, MaxDiversity)
	}
	return nil
}

// IsAlgorithm reports whether name is a known algorithm
func IsAlgorithm(name string) bool {
	for _, a := range Algorithms {
		if a == name {
			return true
		}
	}
	return false
}

// Save validates and stores p as a single JSON value
func (s *Store) Save(p models.Preferences) error {
	if err := Validate(p); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	return s.kv.Set(KeyPreferences, string(data))
}

// Load returns the stored preferences, or the defaults when none are stored.
// Missing fields in the stored value take their default.
func (s *Store) Load() (models.Preferences, error) {
	raw, err := s.kv.Get(KeyPreferences)
	if errors.Is(err, database.ErrNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return models.Preferences{}, err
	}

	p := Defaults()
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.WithError(err).Warn("Stored preferences are unreadable, using defaults")
		return Defaults(), nil
	}
	if err := Validate(p); err != nil {
		s.logger.WithError(err).Warn("Stored preferences are out of range, using defaults")
		return Defaults(), nil
	}
	return p, nil
}

// Reset forgets the saved preferences so the defaults apply again. The
// theme is kept.
func (s *Store) Reset() (models.Preferences, error) {
	if err := s.kv.Delete(KeyPreferences); err != nil {
		return models.Preferences{}, err
	}
	return Defaults(), nil
}

// Theme returns the stored theme, light when none is stored
func (s *Store) Theme() (string, error) {
	theme, err := s.kv.Get(KeyTheme)
	if errors.Is(err, database.ErrNotFound) {
		return DefaultTheme, nil
	}
	if err != nil {
		return "", err
	}
	if theme != ThemeLight && theme != ThemeDark {
		return DefaultTheme, nil
	}
	return theme, nil
}

// SetTheme stores theme, which must be light or dark
func (s *Store) SetTheme(theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("%w: unknown theme %q", ErrInvalid, theme)
	}
	return s.kv.Set(KeyTheme, theme)
}

// ToggleTheme flips between light and dark and returns the new theme
func (s *Store) ToggleTheme() (string, error) {
	current, err := s.Theme()
	if err != nil {
		return "", err
	}
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	if err := s.SetTheme(next); err != nil {
		return "", err
	}
	return next, nil
}
