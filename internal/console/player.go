package console

import (
	"strings"

	"cadenza/internal/notify"
	"cadenza/internal/player"
)

// PlayerState returns the simulated player state
func (c *Console) PlayerState() *player.State {
	return c.player.State().GetState()
}

// TogglePlayback flips play/pause and reports whether it is now playing
func (c *Console) TogglePlayback() bool {
	return c.player.Toggle()
}

// Next skips to the next track
func (c *Console) Next() {
	c.player.Next()
}

// Previous goes back a track
func (c *Console) Previous() {
	c.player.Previous()
}

// SetVolume sets the player volume (0..1, clamped) and mute flag
func (c *Console) SetVolume(volume float64, muted bool) {
	c.player.SetVolume(volume, muted)
}

// PlaySong loads a song shown on one of the panels into the player and
// starts it
func (c *Console) PlaySong(songID string) (*player.State, error) {
	songID = strings.TrimSpace(songID)
	if songID == "" {
		return nil, c.invalid("Please choose a song")
	}

	c.mu.RLock()
	song, ok := c.playable[songID]
	c.mu.RUnlock()
	if !ok {
		return nil, c.invalid("That song is not on any panel")
	}

	c.player.Load(&song)
	c.notifier.Notify("Now playing: "+displayName(song.Name), notify.Info)
	return c.player.State().GetState(), nil
}

func displayName(name string) string {
	if name == "" {
		return "unknown song"
	}
	return name
}

// PlayerStates subscribes to player state changes
func (c *Console) PlayerStates() <-chan *player.State {
	return c.player.State().Subscribe()
}

// StopPlayerStates ends a PlayerStates subscription
func (c *Console) StopPlayerStates(ch <-chan *player.State) {
	c.player.State().Unsubscribe(ch)
}
