// Package interaction defines the closed set of production-floor
// interactions and their stable, externally visible URL identifiers.
package interaction

import "strings"

// Interaction is one of the eight services a Producer (or, for Transport, a
// Mover) can perform.
type Interaction int

const (
	PlaceHousing Interaction = iota
	PlaceTrimmerElement
	PlaceLever
	PlaceCard
	PersonalizeCard
	RemoveAssy
	SpecialTrick
	Transport
)

// All enumerates every Interaction value, in the order recipes reference
// them most often.
var All = []Interaction{
	PlaceHousing, PlaceTrimmerElement, PlaceLever, PlaceCard,
	PersonalizeCard, RemoveAssy, SpecialTrick, Transport,
}

var urls = map[Interaction]string{
	PlaceHousing:        "https://aas.2propel.com/ids/sm/7445_9011_6042_2805",
	PlaceTrimmerElement: "https://aas.2propel.com/ids/sm/1555_1111_6042_0142",
	PlaceLever:          "https://aas.2propel.com/ids/sm/6362_2111_6042_2233",
	PlaceCard:           "https://aas.2propel.com/ids/sm/3555_1111_6042_9999",
	PersonalizeCard:     "https://aas.2propel.com/ids/sm/4485_9011_6042_0610",
	RemoveAssy:          "https://aas.2propel.com/ids/sm/0065_1111_6042_4666",
	SpecialTrick:        "https://aas.2propel.com/ids/sm/5555_1111_6042_8699",
	Transport:           "https://aas.2propel.com/ids/sm/0065_1111_6042_46253",
}

var byURL map[string]Interaction

func init() {
	byURL = make(map[string]Interaction, len(urls))
	for i, u := range urls {
		byURL[strings.ToLower(u)] = i
	}
}

// ToURL returns the stable URL identifier for i.
func (i Interaction) ToURL() string { return urls[i] }

// FromURL decodes a URL identifier back into an Interaction, case-insensitive,
// returning ok=false for an unknown URL so the caller can reject the
// referencing message instead of crashing.
func FromURL(url string) (Interaction, bool) {
	i, ok := byURL[strings.ToLower(url)]
	return i, ok
}

func (i Interaction) String() string {
	switch i {
	case PlaceHousing:
		return "PlaceHousing"
	case PlaceTrimmerElement:
		return "PlaceTrimmerElement"
	case PlaceLever:
		return "PlaceLever"
	case PlaceCard:
		return "PlaceCard"
	case PersonalizeCard:
		return "PersonalizeCard"
	case RemoveAssy:
		return "RemoveAssy"
	case SpecialTrick:
		return "SpecialTrick"
	case Transport:
		return "Transport"
	default:
		return "Unknown"
	}
}
