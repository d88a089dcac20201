package domain

import "time"

// Bulletin is a normalized earthquake report. Kind tells which of the optional
// parts are set: Hypocenter for KindHypocenter, Intensity for KindIntensity and both
// for KindCombined. Intensity of a combined bulletin can be nil for corrections and
// cancellations which carry no observation data.
type Bulletin struct {
	Kind       Kind
	Head       Head
	Hypocenter *Hypocenter
	Intensity  *Intensity
}

// Head holds fields shared by all bulletin kinds
type Head struct {
	Title           string
	ReportTime      time.Time
	EventID         string
	InfoKind        string
	InfoType        string
	Headline        string
	ForecastComment string
	FreeFormComment string
}

// Hypocenter describes where and when the earthquake happened
type Hypocenter struct {
	OriginTime     time.Time
	EpicenterName  string
	EpicenterCode  string
	Coordinate     Coordinate
	CoordinateText string
	Magnitude      float64
	MagnitudeText  string
}

// Coordinate is a decoded hypocenter position
type Coordinate struct {
	Latitude  float64
	Longitude float64
	DepthKm   float64
}

// Intensity holds observed seismic intensities, all values are display labels
type Intensity struct {
	MaxIntensity string
	Prefectures  []Prefecture
}

// Prefecture is per-prefecture intensity breakdown
type Prefecture struct {
	Name         string
	Code         string
	MaxIntensity string
	Areas        []Area
}

// Area is a single observation area inside prefecture
type Area struct {
	Name         string
	Code         string
	MaxIntensity string
}

// MentionsAny reports whether any prefecture or area name of the intensity breakdown
// matches one of the given locations
func (b *Bulletin) MentionsAny(locations []string) bool {
	if b == nil || b.Intensity == nil || len(locations) == 0 {
		return false
	}
	wanted := make(map[string]struct{}, len(locations))
	for _, l := range locations {
		wanted[l] = struct{}{}
	}
	for _, p := range b.Intensity.Prefectures {
		if _, ok := wanted[p.Name]; ok {
			return true
		}
		for _, a := range p.Areas {
			if _, ok := wanted[a.Name]; ok {
				return true
			}
		}
	}
	return false
}
