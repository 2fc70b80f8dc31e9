// Package view turns API payloads into the descriptors the console page and
// the JSON view API render. Renderers are pure and tolerate any missing field.
package view

import (
	"fmt"
	"strconv"

	"cadenza/pkg/models"
)

// Placeholders used when a payload omits a field
const (
	UnknownSong   = "unknown song"
	UnknownArtist = "unknown artist"
	UnknownGenre  = "unknown"
	UnknownUser   = "unknown"
	JustNow       = "just now"

	DefaultPopularity   = 50.0
	DefaultScore        = 0.5
	DefaultDanceability = 0.5
	DefaultEnergy       = 0.5
	DefaultValence      = 0.5
	DefaultTempo        = 120.0
)

// EmptyState replaces a list that has nothing to show
type EmptyState struct {
	Icon    string `json:"icon"`
	Message string `json:"message"`
}

// Features is an audio feature record with every value filled in
type Features struct {
	Danceability float64 `json:"danceability"`
	Energy       float64 `json:"energy"`
	Valence      float64 `json:"valence"`
	Tempo        float64 `json:"tempo"`
}

// SongCard is one song in a ranked list
type SongCard struct {
	Rank       int      `json:"rank"`
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artist     string   `json:"artist"`
	Genre      string   `json:"genre"`
	Popularity float64  `json:"popularity"`
	Score      float64  `json:"score"`
	ScoreText  string   `json:"scoreText"`
	ColdStart  bool     `json:"coldStart"`
	Features   Features `json:"features"`
}

// RecommendationsView is the recommendations panel
type RecommendationsView struct {
	UserID    string      `json:"userId"`
	Algorithm string      `json:"algorithm"`
	Requested int         `json:"requested"`
	Count     string      `json:"count"`
	Cards     []SongCard  `json:"cards"`
	Empty     *EmptyState `json:"empty,omitempty"`
}

// SongListView is a titled list of songs (hot songs, songs of a genre)
type SongListView struct {
	Title string      `json:"title"`
	Cards []SongCard  `json:"cards"`
	Empty *EmptyState `json:"empty,omitempty"`
}

// HistoryRow is one history entry
type HistoryRow struct {
	SongID   string `json:"songId"`
	SongName string `json:"songName"`
	Artist   string `json:"artist"`
	Behavior string `json:"behavior"`
	Icon     string `json:"icon"`
	TimeAgo  string `json:"timeAgo"`
}

// HistoryView is the history panel
type HistoryView struct {
	UserID string       `json:"userId"`
	Rows   []HistoryRow `json:"rows"`
	Empty  *EmptyState  `json:"empty,omitempty"`
}

// ProfileView is the profile panel
type ProfileView struct {
	UserID         string   `json:"userId"`
	SongCount      int      `json:"songCount"`
	TopGenres      []string `json:"topGenres"`
	AvgPopularity  float64  `json:"avgPopularity"`
	PopularityText string   `json:"popularityText"`
}

// GenreChip is one selectable genre
type GenreChip struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// GenresView is the genre picker
type GenresView struct {
	Chips []GenreChip `json:"chips"`
	Empty *EmptyState `json:"empty,omitempty"`
}

// SongDetailView is the song detail panel
type SongDetailView struct {
	Card          SongCard `json:"card"`
	PopularityBar int      `json:"popularityBar"` // percent width
	FeatureBars   []Bar    `json:"featureBars"`
}

// Bar is a labelled 0-100 meter
type Bar struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Percent int     `json:"percent"`
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// FormatScore renders a 0..1 score as a percentage with one decimal
func FormatScore(score float64) string {
	return strconv.FormatFloat(score*100, 'f', 1, 64) + "%"
}

// Card builds the card for song at zero-based position index
func Card(index int, song models.Song) SongCard {
	score := floatOr(song.Score, DefaultScore)
	card := SongCard{
		Rank:       index + 1,
		ID:         song.ID,
		Name:       orDefault(song.Name, UnknownSong),
		Artist:     orDefault(song.Artist, UnknownArtist),
		Genre:      orDefault(song.Genre, UnknownGenre),
		Popularity: floatOr(song.Popularity, DefaultPopularity),
		Score:      score,
		ScoreText:  FormatScore(score),
		ColdStart:  song.IsColdStart,
		Features: Features{
			Danceability: DefaultDanceability,
			Energy:       DefaultEnergy,
			Valence:      DefaultValence,
			Tempo:        DefaultTempo,
		},
	}
	if af := song.AudioFeatures; af != nil {
		card.Features.Danceability = floatOr(af.Danceability, DefaultDanceability)
		card.Features.Energy = floatOr(af.Energy, DefaultEnergy)
		card.Features.Valence = floatOr(af.Valence, DefaultValence)
		card.Features.Tempo = floatOr(af.Tempo, DefaultTempo)
	}
	return card
}

// Cards builds ranked cards in server order
func Cards(songs []models.Song) []SongCard {
	cards := make([]SongCard, len(songs))
	for i, song := range songs {
		cards[i] = Card(i, song)
	}
	return cards
}

// Recommendations renders a recommendation result
func Recommendations(result models.RecommendationResult) RecommendationsView {
	v := RecommendationsView{
		UserID:    orDefault(result.UserID, UnknownUser),
		Algorithm: result.Algorithm,
		Requested: result.Count,
		Cards:     Cards(result.Songs),
	}
	v.Count = strconv.Itoa(len(v.Cards))
	if len(v.Cards) == 0 {
		v.Empty = &EmptyState{Icon: "music", Message: "No recommendations yet"}
	}
	return v
}

// SongList renders a titled song listing
func SongList(title string, songs []models.Song) SongListView {
	v := SongListView{Title: title, Cards: Cards(songs)}
	if len(v.Cards) == 0 {
		v.Empty = &EmptyState{Icon: "music", Message: "No songs found"}
	}
	return v
}

// HotSongs renders the hot songs listing for tier
func HotSongs(tier string, songs []models.Song) SongListView {
	return SongList(fmt.Sprintf("Hot songs (%s)", tier), songs)
}

// GenreSongs renders the songs of one genre
func GenreSongs(genre string, songs []models.Song) SongListView {
	return SongList(fmt.Sprintf("Genre: %s", genre), songs)
}

// BehaviorIcon returns the icon for a history behavior
func BehaviorIcon(b models.Behavior) string {
	switch b {
	case models.BehaviorLike:
		return "thumbs-up"
	case models.BehaviorFavorite:
		return "heart"
	default:
		return "play"
	}
}

// History renders a user's history
func History(userID string, entries []models.HistoryEntry) HistoryView {
	v := HistoryView{
		UserID: orDefault(userID, UnknownUser),
		Rows:   make([]HistoryRow, len(entries)),
	}
	for i, e := range entries {
		behavior := e.Behavior
		if behavior == "" {
			behavior = models.BehaviorPlay
		}
		v.Rows[i] = HistoryRow{
			SongID:   e.SongID,
			SongName: orDefault(e.SongName, UnknownSong),
			Artist:   orDefault(e.Artist, UnknownArtist),
			Behavior: string(behavior),
			Icon:     BehaviorIcon(behavior),
			TimeAgo:  orDefault(e.TimeAgo, JustNow),
		}
	}
	if len(v.Rows) == 0 {
		v.Empty = &EmptyState{Icon: "history", Message: "No listening history"}
	}
	return v
}

// Profile renders a user profile
func Profile(p models.UserProfile) ProfileView {
	v := ProfileView{
		UserID:        orDefault(p.UserID, UnknownUser),
		TopGenres:     p.TopGenres,
		AvgPopularity: floatOr(p.AvgPopularity, DefaultPopularity),
	}
	if p.SongCount != nil {
		v.SongCount = *p.SongCount
	}
	if v.TopGenres == nil {
		v.TopGenres = []string{}
	}
	v.PopularityText = strconv.FormatFloat(v.AvgPopularity, 'f', 1, 64)
	return v
}

// Genres renders the genre picker
func Genres(genres []string) GenresView {
	v := GenresView{Chips: make([]GenreChip, 0, len(genres))}
	for _, g := range genres {
		if g == "" {
			continue
		}
		v.Chips = append(v.Chips, GenreChip{Name: g, Label: g})
	}
	if len(v.Chips) == 0 {
		v.Empty = &EmptyState{Icon: "tags", Message: "No genres available"}
	}
	return v
}

// SongDetail renders a single song
func SongDetail(song models.Song) SongDetailView {
	card := Card(0, song)
	return SongDetailView{
		Card:          card,
		PopularityBar: percent(card.Popularity / 100),
		FeatureBars: []Bar{
			{Label: "Danceability", Value: card.Features.Danceability, Percent: percent(card.Features.Danceability)},
			{Label: "Energy", Value: card.Features.Energy, Percent: percent(card.Features.Energy)},
			{Label: "Valence", Value: card.Features.Valence, Percent: percent(card.Features.Valence)},
			{Label: "Tempo", Value: card.Features.Tempo, Percent: percent(card.Features.Tempo / 200)},
		},
	}
}

// percent converts a 0..1 fraction to a clamped whole percentage
func percent(f float64) int {
	p := int(f*100 + 0.5)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
