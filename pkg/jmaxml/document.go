package jmaxml

// xml layout of JMA seismology bulletins. Only elements used by the parser are declared,
// everything else is skipped by the decoder. Namespaces:
//   - envelope: http://xml.kishou.go.jp/jmaxml1/
//   - head:     http://xml.kishou.go.jp/jmaxml1/informationBasis1/
//   - body:     http://xml.kishou.go.jp/jmaxml1/body/seismology1/
//   - elements: http://xml.kishou.go.jp/jmaxml1/elementBasis1/ (coordinate and magnitude)

type report struct {
	Head *head `xml:"http://xml.kishou.go.jp/jmaxml1/informationBasis1/ Head"`
	Body *body `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ Body"`
}

type head struct {
	Title          string    `xml:"http://xml.kishou.go.jp/jmaxml1/informationBasis1/ Title"`
	ReportDateTime string    `xml:"http://xml.kishou.go.jp/jmaxml1/informationBasis1/ ReportDateTime"`
	EventID        string    `xml:"http://xml.kishou.go.jp/jmaxml1/informationBasis1/ EventID"`
	InfoType       string    `xml:"http://xml.kishou.go.jp/jmaxml1/informationBasis1/ InfoType"`
	InfoKind       string    `xml:"http://xml.kishou.go.jp/jmaxml1/informationBasis1/ InfoKind"`
	Headline       *headline `xml:"http://xml.kishou.go.jp/jmaxml1/informationBasis1/ Headline"`
}

type headline struct {
	Text string `xml:"http://xml.kishou.go.jp/jmaxml1/informationBasis1/ Text"`
}

type body struct {
	Earthquake *earthquake `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ Earthquake"`
	Intensity  *intensity  `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ Intensity"`
	Comments   *comments   `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ Comments"`
}

type earthquake struct {
	OriginTime string         `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ OriginTime"`
	Hypocenter *hypocenter    `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ Hypocenter"`
	Magnitude  []describedVal `xml:"http://xml.kishou.go.jp/jmaxml1/elementBasis1/ Magnitude"`
}

type hypocenter struct {
	Area *hypocenterArea `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ Area"`
}

type hypocenterArea struct {
	Name       string         `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ Name"`
	Code       string         `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ Code"`
	Coordinate []describedVal `xml:"http://xml.kishou.go.jp/jmaxml1/elementBasis1/ Coordinate"`
}

// describedVal is an element basis value with its human readable description attribute
type describedVal struct {
	Value       string `xml:",chardata"`
	Description string `xml:"description,attr"`
}

type intensity struct {
	Observation *observation `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ Observation"`
}

type observation struct {
	MaxInt string `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ MaxInt"`
	Pref   []pref `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ Pref"`
}

type pref struct {
	Name   string `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ Name"`
	Code   string `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ Code"`
	MaxInt string `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ MaxInt"`
	Area   []area `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ Area"`
}

type area struct {
	Name   string `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ Name"`
	Code   string `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ Code"`
	MaxInt string `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ MaxInt"`
}

type comments struct {
	ForecastComment *textBlock `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ ForecastComment"`
	FreeFormComment *textBlock `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ FreeFormComment"`
}

// textBlock accepts both <X><Text>..</Text></X> and plain <X>..</X> forms
type textBlock struct {
	Text  string `xml:"http://xml.kishou.go.jp/jmaxml1/body/seismology1/ Text"`
	Inner string `xml:",chardata"`
}
