package coros

import "encoding/json"

// Session is the authenticated context returned by Login. It is an
// explicit value threaded through every call rather than state held on
// the client; its lifetime is one extractor run and there is no
// refresh. Repeated authorization failures downstream mean the caller
// must log in again.
type Session struct {
	AccessToken string
	UserID      string
}

// ActivityRef identifies one activity in a listing page. It carries
// just enough to fetch detail and to name export files.
type ActivityRef struct {
	LabelID        string    `json:"labelId"`
	SportType      SportType `json:"sportType"`
	Name           string    `json:"name"`
	StartTime      int64     `json:"startTime"`
	StartTimestamp int64     `json:"startTimestamp"`
}

// Filter narrows a listing query.
type Filter struct {
	// Types restricts the listing to the given sport types; empty
	// means no filter.
	Types []SportType
	// Limit caps how many activities to request. Zero means discover
	// the total and page through everything. A non-zero limit is a
	// request budget, not an authoritative count.
	Limit int
}

// Detail is the raw per-activity payload from the detail endpoint.
// Summary stays raw because translation validates it strictly;
// frequency items decode loosely with zero defaults for absent fields.
type Detail struct {
	Summary       json.RawMessage `json:"summary"`
	FrequencyList []SamplePoint   `json:"frequencyList"`
	LapList       []LapGroup      `json:"lapList"`
}

// SamplePoint is one entry of the in-activity time series. Fields the
// server omits stay zero.
type SamplePoint struct {
	Cadence    int64 `json:"cadence"`
	Distance   int64 `json:"distance"`
	Heart      int64 `json:"heart"`
	HeartLevel int64 `json:"heartLevel"`
	Timestamp  int64 `json:"timestamp"`
}

// LapGroup is one lap container from the detail payload. The API
// groups lap items under a kind discriminator; only running-kind
// groups are translated today.
type LapGroup struct {
	Kind        LapKind           `json:"type"`
	LapItemList []json.RawMessage `json:"lapItemList"`
}

// Response envelopes. The data key is absent in some degenerate
// responses (notably unsupported download combinations), so it stays a
// pointer throughout.

type loginResponse struct {
	Data *struct {
		AccessToken string `json:"accessToken"`
		UserID      string `json:"userId"`
	} `json:"data"`
}

type listResponse struct {
	Data *struct {
		Count    int           `json:"count"`
		DataList []ActivityRef `json:"dataList"`
	} `json:"data"`
}

type detailResponse struct {
	Data *Detail `json:"data"`
}

type downloadResponse struct {
	Data *struct {
		FileURL string `json:"fileUrl"`
	} `json:"data"`
}

// Valid reports whether a detail payload is usable: the server
// intermittently returns well-formed but semantically empty responses
// whose summary is null, indistinguishable from success at the
// transport layer.
func (r *detailResponse) Valid() bool {
	return r != nil && r.Data != nil && len(r.Data.Summary) > 0 && string(r.Data.Summary) != "null"
}
