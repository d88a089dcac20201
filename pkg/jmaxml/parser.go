// Package jmaxml decodes JMA seismology XML bulletins into domain records.
package jmaxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/umputun/quakewatch/pkg/domain"
)

// info types from the head which may come without observation data
const (
	InfoTypeIssue      = "発表"
	InfoTypeCorrection = "訂正"
	InfoTypeCancel     = "取消"
)

// ISO 6709 with depth in meters, i.e. +35.6+139.7-10000/
var coordinateRe = regexp.MustCompile(`^([+-]\d+(?:\.\d+)?)([+-]\d+(?:\.\d+)?)([+-]\d+(?:\.\d+)?)/$`)

var intensityReplacer = strings.NewReplacer("-", "弱", "+", "強")

// Parse decodes a bulletin document for the given kind. Fields required by the kind
// must be present, otherwise *ParseError wrapping ErrMissingField is returned.
func Parse(data []byte, kind domain.Kind) (*domain.Bulletin, error) {
	if kind == domain.KindUnknown {
		return nil, &ParseError{Err: ErrUnsupportedKind}
	}

	var doc report
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Err: fmt.Errorf("%w: decode xml: %v", ErrMalformed, err)}
	}

	h, err := parseHead(&doc)
	if err != nil {
		return nil, err
	}
	res := &domain.Bulletin{Kind: kind, Head: h}

	if kind == domain.KindHypocenter || kind == domain.KindCombined {
		if res.Hypocenter, err = parseHypocenter(doc.Body); err != nil {
			return nil, err
		}
	}

	switch kind {
	case domain.KindIntensity:
		if res.Intensity, err = parseIntensity(doc.Body); err != nil {
			return nil, err
		}
	case domain.KindCombined:
		// corrections and cancellations of combined reports drop the Intensity element
		if doc.Body.Intensity != nil {
			if res.Intensity, err = parseIntensity(doc.Body); err != nil {
				return nil, err
			}
		}
	}

	return res, nil
}

// parseHead extracts fields common for all kinds, including body comments
func parseHead(doc *report) (domain.Head, error) {
	if doc.Head == nil {
		return domain.Head{}, missing("Head")
	}
	if doc.Body == nil {
		return domain.Head{}, missing("Body")
	}

	h := doc.Head
	res := domain.Head{
		Title:    strings.TrimSpace(h.Title),
		EventID:  strings.TrimSpace(h.EventID),
		InfoKind: strings.TrimSpace(h.InfoKind),
		InfoType: strings.TrimSpace(h.InfoType),
	}

	required := []struct {
		path string
		val  string
	}{
		{"Head/Title", res.Title},
		{"Head/ReportDateTime", strings.TrimSpace(h.ReportDateTime)},
		{"Head/EventID", res.EventID},
		{"Head/InfoKind", res.InfoKind},
	}
	for _, r := range required {
		if r.val == "" {
			return domain.Head{}, missing(r.path)
		}
	}

	reportTime, err := parseTime("Head/ReportDateTime", h.ReportDateTime)
	if err != nil {
		return domain.Head{}, err
	}
	res.ReportTime = reportTime

	if h.Headline == nil || strings.TrimSpace(h.Headline.Text) == "" {
		return domain.Head{}, missing("Head/Headline/Text")
	}
	res.Headline = strings.TrimSpace(h.Headline.Text)

	c := doc.Body.Comments
	if c == nil || c.ForecastComment == nil || strings.TrimSpace(c.ForecastComment.Text) == "" {
		return domain.Head{}, missing("Body/Comments/ForecastComment/Text")
	}
	res.ForecastComment = strings.TrimSpace(c.ForecastComment.Text)
	if c.FreeFormComment != nil {
		res.FreeFormComment = c.FreeFormComment.value()
	}
	return res, nil
}

func parseHypocenter(b *body) (*domain.Hypocenter, error) {
	eq := b.Earthquake
	if eq == nil {
		return nil, missing("Body/Earthquake")
	}
	if strings.TrimSpace(eq.OriginTime) == "" {
		return nil, missing("Body/Earthquake/OriginTime")
	}
	originTime, err := parseTime("Body/Earthquake/OriginTime", eq.OriginTime)
	if err != nil {
		return nil, err
	}

	if eq.Hypocenter == nil || eq.Hypocenter.Area == nil {
		return nil, missing("Body/Earthquake/Hypocenter/Area")
	}
	a := eq.Hypocenter.Area
	res := &domain.Hypocenter{
		OriginTime:    originTime,
		EpicenterName: strings.TrimSpace(a.Name),
		EpicenterCode: strings.TrimSpace(a.Code),
	}
	if res.EpicenterName == "" {
		return nil, missing("Body/Earthquake/Hypocenter/Area/Name")
	}
	if res.EpicenterCode == "" {
		return nil, missing("Body/Earthquake/Hypocenter/Area/Code")
	}

	if len(a.Coordinate) == 0 || strings.TrimSpace(a.Coordinate[0].Value) == "" {
		return nil, missing("Body/Earthquake/Hypocenter/Area/Coordinate")
	}
	if res.Coordinate, err = ParseCoordinate(a.Coordinate[0].Value); err != nil {
		return nil, err
	}
	res.CoordinateText = strings.TrimSpace(a.Coordinate[0].Description)

	if len(eq.Magnitude) == 0 || strings.TrimSpace(eq.Magnitude[0].Value) == "" {
		return nil, missing("Body/Earthquake/Magnitude")
	}
	mag := eq.Magnitude[0]
	if res.Magnitude, err = strconv.ParseFloat(strings.TrimSpace(mag.Value), 64); err != nil {
		return nil, malformed("Body/Earthquake/Magnitude", err)
	}
	res.MagnitudeText = strings.TrimSpace(mag.Description)
	return res, nil
}

func parseIntensity(b *body) (*domain.Intensity, error) {
	if b.Intensity == nil || b.Intensity.Observation == nil {
		return nil, missing("Body/Intensity/Observation")
	}
	obs := b.Intensity.Observation
	if strings.TrimSpace(obs.MaxInt) == "" {
		return nil, missing("Body/Intensity/Observation/MaxInt")
	}

	res := &domain.Intensity{
		MaxIntensity: IntensityDisplay(strings.TrimSpace(obs.MaxInt)),
		Prefectures:  make([]domain.Prefecture, 0, len(obs.Pref)),
	}
	for i, p := range obs.Pref {
		path := fmt.Sprintf("Body/Intensity/Observation/Pref[%d]", i)
		name, code, maxInt, err := nameCodeInt(path, p.Name, p.Code, p.MaxInt)
		if err != nil {
			return nil, err
		}
		dp := domain.Prefecture{Name: name, Code: code, MaxIntensity: maxInt, Areas: make([]domain.Area, 0, len(p.Area))}
		for j, a := range p.Area {
			aName, aCode, aInt, err := nameCodeInt(fmt.Sprintf("%s/Area[%d]", path, j), a.Name, a.Code, a.MaxInt)
			if err != nil {
				return nil, err
			}
			dp.Areas = append(dp.Areas, domain.Area{Name: aName, Code: aCode, MaxIntensity: aInt})
		}
		res.Prefectures = append(res.Prefectures, dp)
	}
	return res, nil
}

// nameCodeInt validates Name, Code and MaxInt triple shared by prefectures and areas
func nameCodeInt(path, name, code, maxInt string) (n, c, mi string, err error) {
	n, c, mi = strings.TrimSpace(name), strings.TrimSpace(code), strings.TrimSpace(maxInt)
	switch {
	case n == "":
		return "", "", "", missing(path + "/Name")
	case c == "":
		return "", "", "", missing(path + "/Code")
	case mi == "":
		return "", "", "", missing(path + "/MaxInt")
	}
	return n, c, IntensityDisplay(mi), nil
}

// ParseCoordinate decodes ISO 6709 hypocenter position like "+35.6+139.7-10000/".
// Depth is given in meters below the surface and returned in kilometers.
func ParseCoordinate(raw string) (domain.Coordinate, error) {
	const field = "Body/Earthquake/Hypocenter/Area/Coordinate"
	m := coordinateRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return domain.Coordinate{}, malformed(field, fmt.Errorf("unexpected coordinate %q", raw))
	}

	vals := make([]float64, 3)
	for i := range vals {
		v, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return domain.Coordinate{}, malformed(field, err)
		}
		vals[i] = v
	}

	depth := 0.0
	if vals[2] != 0 {
		depth = -vals[2] / 1000
	}
	return domain.Coordinate{Latitude: vals[0], Longitude: vals[1], DepthKm: depth}, nil
}

// IntensityDisplay converts raw seismic intensity code to the display label, i.e. 5- to 5弱
func IntensityDisplay(code string) string {
	return intensityReplacer.Replace(code)
}

func parseTime(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	// local form without offset
	if tl, errl := time.Parse("2006-01-02T15:04:05", s); errl == nil {
		return tl, nil
	}
	return time.Time{}, malformed(field, err)
}

func (t *textBlock) value() string {
	if s := strings.TrimSpace(t.Text); s != "" {
		return s
	}
	return strings.TrimSpace(t.Inner)
}
