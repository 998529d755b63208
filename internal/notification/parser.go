package notification

import (
	"fmt"
	"strings"

	"github.com/jaki95/lyrics-relay/internal/domain"
)

// Keys recognised in a notification body.
const (
	KeyArtist  = "artist"
	KeyTrack   = "track"
	KeyAlbum   = "album"
	KeyPlaying = "playing"
)

// Parser turns "key=value" notification bodies into player states.
//
// Which keys are mandatory differs between player protocol versions, so the
// set is configurable. Artist and track must also be non-empty.
type Parser struct {
	Required []string
}

// NewParser returns a parser requiring artist, track and playing, plus album
// when requireAlbum is set.
func NewParser(requireAlbum bool) *Parser {
	required := []string{KeyArtist, KeyTrack, KeyPlaying}
	if requireAlbum {
		required = append(required, KeyAlbum)
	}
	return &Parser{Required: required}
}

// Parse reads a notification body. Malformed input is reported as an error
// wrapping domain.ErrMalformedNotification, never a partial state.
func (p *Parser) Parse(body string) (domain.PlayerState, error) {
	fields := parseFields(body)

	for _, key := range p.Required {
		if _, ok := fields[key]; !ok {
			return domain.PlayerState{}, fmt.Errorf("%w: missing %q", domain.ErrMalformedNotification, key)
		}
	}
	for _, key := range []string{KeyArtist, KeyTrack} {
		if fields[key] == "" {
			return domain.PlayerState{}, fmt.Errorf("%w: empty %q", domain.ErrMalformedNotification, key)
		}
	}

	return domain.PlayerState{
		Artist:  fields[KeyArtist],
		Track:   fields[KeyTrack],
		Album:   fields[KeyAlbum],
		Playing: fields[KeyPlaying] == "true",
	}, nil
}

// parseFields splits on "\n" and then on the first "=" of each line. A line
// without "=" still declares its key, with an empty value.
func parseFields(body string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(body, "\n") {
		key, value, _ := strings.Cut(line, "=")
		if key == "" {
			continue
		}
		fields[key] = value
	}
	return fields
}
