package view

import "cadenza/pkg/models"

// Fixed datasets shown when the recommendation API cannot be used. They are
// built fresh on each call and never stored.

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int { return &v }

func mockFeatures(d, e, v, t float64) *models.AudioFeatures {
	return &models.AudioFeatures{Danceability: floatPtr(d), Energy: floatPtr(e), Valence: floatPtr(v), Tempo: floatPtr(t)}
}

// MockRecommendations is the three-song fallback for the recommendations panel
func MockRecommendations(userID, algorithm string, requested int) models.RecommendationResult {
	return models.RecommendationResult{
		UserID:    userID,
		Algorithm: algorithm,
		Count:     requested,
		Songs: []models.Song{
			{ID: "S1001", Name: "Midnight Drive", Artist: "Neon Coast", Genre: "Synthwave",
				Popularity: floatPtr(87), Score: floatPtr(0.92), AudioFeatures: mockFeatures(0.71, 0.82, 0.55, 118)},
			{ID: "S1002", Name: "Paper Lanterns", Artist: "Hollow Pines", Genre: "Indie Folk",
				Popularity: floatPtr(74), Score: floatPtr(0.86), AudioFeatures: mockFeatures(0.48, 0.39, 0.62, 96)},
			{ID: "S1003", Name: "Static Bloom", Artist: "Velvet Arcade", Genre: "Dream Pop",
				Popularity: floatPtr(65), Score: floatPtr(0.79), IsColdStart: true, AudioFeatures: mockFeatures(0.56, 0.61, 0.47, 124)},
		},
	}
}

// MockHotSongs is the five-song fallback for the hot songs panel
func MockHotSongs() []models.Song {
	return []models.Song{
		{ID: "S2001", Name: "Golden Hour", Artist: "Sunlit Avenue", Genre: "Pop", Popularity: floatPtr(98)},
		{ID: "S2002", Name: "Undertow", Artist: "Grey Harbor", Genre: "Rock", Popularity: floatPtr(95)},
		{ID: "S2003", Name: "Low Orbit", Artist: "Kites & Comets", Genre: "Electronic", Popularity: floatPtr(93)},
		{ID: "S2004", Name: "Brass Heart", Artist: "The Quiet Parade", Genre: "Jazz", Popularity: floatPtr(90)},
		{ID: "S2005", Name: "City Rain", Artist: "Mara Lune", Genre: "R&B", Popularity: floatPtr(88)},
	}
}

// MockGenreSongs is the three-song fallback for a genre listing
func MockGenreSongs(genre string) []models.Song {
	return []models.Song{
		{ID: "S3001", Name: "First Light", Artist: "Cobalt Fields", Genre: genre, Popularity: floatPtr(82)},
		{ID: "S3002", Name: "Slow Current", Artist: "Amber Reach", Genre: genre, Popularity: floatPtr(76)},
		{ID: "S3003", Name: "Far Signal", Artist: "North Relay", Genre: genre, Popularity: floatPtr(69)},
	}
}

// MockGenres is the eight-genre fallback for the genre picker
func MockGenres() []string {
	return []string{"Pop", "Rock", "Jazz", "Electronic", "Hip-Hop", "Classical", "R&B", "Country"}
}

// MockHistory is the three-entry fallback for the history panel
func MockHistory() []models.HistoryEntry {
	return []models.HistoryEntry{
		{SongID: "S1001", SongName: "Midnight Drive", Artist: "Neon Coast", Behavior: models.BehaviorPlay, TimeAgo: "2 hours ago"},
		{SongID: "S2002", SongName: "Undertow", Artist: "Grey Harbor", Behavior: models.BehaviorLike, TimeAgo: "yesterday"},
		{SongID: "S1002", SongName: "Paper Lanterns", Artist: "Hollow Pines", Behavior: models.BehaviorFavorite, TimeAgo: "3 days ago"},
	}
}

// MockProfile is the fallback profile for userID
func MockProfile(userID string) models.UserProfile {
	return models.UserProfile{
		UserID:        userID,
		SongCount:     intPtr(156),
		TopGenres:     []string{"Pop", "Rock", "Electronic"},
		AvgPopularity: floatPtr(72.5),
	}
}

// MockSongDetail is the fallback detail for songID
func MockSongDetail(songID string) models.Song {
	return models.Song{
		ID:            songID,
		Name:          "Midnight Drive",
		Artist:        "Neon Coast",
		Genre:         "Synthwave",
		Popularity:    floatPtr(87),
		AudioFeatures: mockFeatures(0.71, 0.82, 0.55, 118),
	}
}
