package console

import (
	"errors"
	"fmt"

	"cadenza/internal/notify"
	"cadenza/internal/prefs"
	"cadenza/pkg/models"

	"github.com/sirupsen/logrus"
)

// ApplyStoredPreferences loads the saved preferences and theme. Storage
// errors are returned unchanged.
func (c *Console) ApplyStoredPreferences() error {
	p, err := c.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}
	theme, err := c.store.Theme()
	if err != nil {
		return fmt.Errorf("failed to load theme: %w", err)
	}

	c.mu.Lock()
	c.preferences = p
	c.theme = theme
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"algorithm": p.DefaultAlgorithm,
		"count":     p.DefaultCount,
		"diversity": p.DiversityValue,
		"theme":     theme,
	}).Info("Preferences applied")
	return nil
}

// Preferences returns the preferences currently in effect
func (c *Console) Preferences() models.Preferences {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.preferences
}

// SavePreferences validates, stores and applies p
func (c *Console) SavePreferences(p models.Preferences) error {
	if err := c.store.Save(p); err != nil {
		if errors.Is(err, prefs.ErrInvalid) {
			return c.invalid(err.Error())
		}
		return err
	}

	c.mu.Lock()
	c.preferences = p
	c.mu.Unlock()

	c.notifier.Notify("Preferences saved", notify.Success)
	return nil
}

// ResetPreferences drops the saved preferences and applies the defaults
func (c *Console) ResetPreferences() (models.Preferences, error) {
	p, err := c.store.Reset()
	if err != nil {
		return models.Preferences{}, err
	}

	c.mu.Lock()
	c.preferences = p
	c.mu.Unlock()

	c.notifier.Notify("Preferences reset to defaults", notify.Info)
	return p, nil
}

// Theme returns the theme in effect
func (c *Console) Theme() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.theme
}

// ToggleTheme switches between light and dark and stores the result
func (c *Console) ToggleTheme() (string, error) {
	theme, err := c.store.ToggleTheme()
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.theme = theme
	c.mu.Unlock()
	return theme, nil
}
