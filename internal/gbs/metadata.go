package gbs

import (
	"fmt"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MetadataFieldSize is the size of each of the title, author and
	// copyright fields.
	MetadataFieldSize = 32
	// MetadataSize is the size of all metadata fields.
	MetadataSize = 3 * MetadataFieldSize

	placeholder = "<?>"
)

// Metadata contains the text fields of a GBS image.
type Metadata struct {
	Title  string
	Author string
	Game   string
}

// PlaceholderMetadata returns the metadata used for songs without
// any track information.
func PlaceholderMetadata() Metadata {
	return Metadata{
		Title:  placeholder,
		Author: placeholder,
		Game:   placeholder,
	}
}

// MarshalBinary encodes the three ASCII fields. Every field is null padded
// or truncated to its fixed size.
func (m Metadata) MarshalBinary() ([]byte, error) {
	data := make([]byte, 0, MetadataSize)
	for _, s := range []string{m.Title, m.Author, m.Game} {
		field, err := asciiField(s)
		if err != nil {
			return nil, err
		}
		data = append(data, field...)
	}
	return data, nil
}

// asciiField converts s to ASCII by removing diacritics and replacing other
// non ASCII characters with a question mark.
func asciiField(s string) ([]byte, error) {
	folder := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			if r > unicode.MaxASCII {
				return '?'
			}
			return r
		}),
	)

	text, _, err := transform.String(folder, s)
	if err != nil {
		return nil, fmt.Errorf("converting %q to ASCII: %w", s, err)
	}

	field := make([]byte, MetadataFieldSize)
	copy(field, text)
	return field, nil
}
