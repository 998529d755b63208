package notification

import (
	"testing"

	"github.com/jaki95/lyrics-relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	parser := NewParser(false)

	state, err := parser.Parse("artist=Air\ntrack=Sexy Boy\nplaying=true")
	require.NoError(t, err)

	assert.Equal(t, domain.PlayerState{Artist: "Air", Track: "Sexy Boy", Playing: true}, state)
}

func TestParsePlayingFlag(t *testing.T) {
	parser := NewParser(false)

	tests := []struct {
		name    string
		value   string
		playing bool
	}{
		{"literal true", "playing=true", true},
		{"false", "playing=false", false},
		{"capitalised", "playing=True", false},
		{"one", "playing=1", false},
		{"trailing space", "playing=true ", false},
		{"empty value", "playing=", false},
		{"no separator", "playing", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := parser.Parse("artist=Air\ntrack=Playground Love\n" + tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.playing, state.Playing)
		})
	}
}

func TestParseValueKeepsLaterSeparators(t *testing.T) {
	parser := NewParser(false)

	state, err := parser.Parse("artist=A=B\ntrack=x=y=z\nplaying=true\n")
	require.NoError(t, err)

	assert.Equal(t, "A=B", state.Artist)
	assert.Equal(t, "x=y=z", state.Track)
}

func TestParseRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name         string
		requireAlbum bool
		body         string
	}{
		{"empty body", false, ""},
		{"missing artist", false, "track=Sexy Boy\nplaying=true"},
		{"missing track", false, "artist=Air\nplaying=true"},
		{"missing playing", false, "artist=Air\ntrack=Sexy Boy"},
		{"empty artist", false, "artist=\ntrack=Sexy Boy\nplaying=true"},
		{"artist without separator", false, "artist\ntrack=Sexy Boy\nplaying=true"},
		{"missing album when required", true, "artist=Air\ntrack=Sexy Boy\nplaying=true"},
		{"garbage", false, "\x00\x01==\n\n="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := NewParser(tt.requireAlbum).Parse(tt.body)
			assert.ErrorIs(t, err, domain.ErrMalformedNotification)
			assert.Equal(t, domain.PlayerState{}, state)
		})
	}
}

func TestParseAlbum(t *testing.T) {
	body := "artist=Air\ntrack=Sexy Boy\nalbum=Moon Safari\nplaying=false"

	state, err := NewParser(true).Parse(body)
	require.NoError(t, err)
	assert.Equal(t, "Moon Safari", state.Album)
	assert.False(t, state.Playing)

	state, err = NewParser(false).Parse(body)
	require.NoError(t, err)
	assert.Equal(t, "Moon Safari", state.Album)
}

func TestParseLastDuplicateWins(t *testing.T) {
	state, err := NewParser(false).Parse("artist=Air\nartist=Daft Punk\ntrack=Da Funk\nplaying=true")
	require.NoError(t, err)
	assert.Equal(t, "Daft Punk", state.Artist)
}
