package domain

import "time"

// Entry represents a single item of the bulletin syndication feed
type Entry struct {
	ID      string
	Title   string
	Author  string
	Content string
	Link    string
	Updated time.Time
}

// Kind identifies the bulletin type declared by the entry title
type Kind int

// bulletin kinds known to the parser
const (
	KindUnknown Kind = iota
	KindHypocenter
	KindIntensity
	KindCombined
)

// titles used by the feed for each known bulletin kind
const (
	TitleHypocenter = "震源に関する情報"
	TitleIntensity  = "震度速報"
	TitleCombined   = "震源・震度に関する情報"
)

// KindOf classifies an entry title, only exact matches count
func KindOf(title string) Kind {
	switch title {
	case TitleHypocenter:
		return KindHypocenter
	case TitleIntensity:
		return KindIntensity
	case TitleCombined:
		return KindCombined
	default:
		return KindUnknown
	}
}

// String returns short name of the kind, used in logs and storage
func (k Kind) String() string {
	switch k {
	case KindHypocenter:
		return "hypocenter"
	case KindIntensity:
		return "intensity"
	case KindCombined:
		return "combined"
	default:
		return "unknown"
	}
}
