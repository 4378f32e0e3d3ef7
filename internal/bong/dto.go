package bong

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// The provider's JSON is loosely typed: numeric fields show up as numbers or
// strings depending on endpoint and API revision, booleans occasionally as
// 0/1. flexInt/flexFloat/flexBool absorb that at the decode boundary so the
// mapper only sees Go values.

type flexInt int

func (v *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*v = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*v = 0
			return nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("flexInt: invalid string %q", s)
		}
		*v = flexInt(i)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("flexInt: invalid value %s", string(b))
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("flexInt: not numeric: %s", n.String())
	}
	*v = flexInt(int(f))
	return nil
}

type flexFloat float64

func (v *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*v = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*v = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("flexFloat: invalid string %q", s)
		}
		*v = flexFloat(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("flexFloat: invalid value %s", string(b))
	}
	*v = flexFloat(f)
	return nil
}

type flexBool bool

func (v *flexBool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "null", `""`, "false", "0", `"false"`, `"0"`:
		*v = false
	case "true", "1", `"true"`, `"1"`:
		*v = true
	default:
		// any other non-empty value is truthy, mirroring the provider's
		// loose encoding
		*v = true
	}
	return nil
}

type channelDTO struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Recordable flexBool `json:"recordable"`
	Position   flexInt  `json:"position"`
	HD         flexBool `json:"hd"`
}

type imageDTO struct {
	Href string `json:"href"`
}

type serieDTO struct {
	Season        flexInt `json:"season"`
	Episode       flexInt `json:"episode"`
	TotalEpisodes flexInt `json:"total_episodes"`
}

type categoryDTO struct {
	Name string `json:"name"`
}

type broadcastDTO struct {
	ID             int           `json:"id"`
	Title          string        `json:"title"`
	Subtitle       string        `json:"subtitle"`
	ProductionYear flexInt       `json:"production_year"`
	StartsAtMS     int64         `json:"starts_at_ms"`
	EndsAtMS       int64         `json:"ends_at_ms"`
	Country        string        `json:"country"`
	Image          *imageDTO     `json:"image"`
	ChannelID      int           `json:"channel_id"`
	ChannelName    string        `json:"channel_name"`
	Serie          *serieDTO     `json:"serie"`
	Categories     []categoryDTO `json:"categories"`
	ShortText      string        `json:"short_text"`
	HD             flexBool      `json:"hd"`
}

type personDTO struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type roleDTO struct {
	Name   string      `json:"name"`
	People []personDTO `json:"people"`
}

// broadcastDetailDTO is the payload of the per-broadcast detail endpoint.
// Role groups carry the provider's German labels; the mapper translates them
// into directors/authors/composers/actors.
type broadcastDetailDTO struct {
	Rating   flexFloat `json:"rating"`
	Votes    flexInt   `json:"votes"`
	LongText string    `json:"long_text"`
	HintText string    `json:"hint_text"`
	Roles    []roleDTO `json:"roles"`
}

type fileDTO struct {
	Quality string `json:"quality"`
	Href    string `json:"href"`
}

type recordingDTO struct {
	ID        int          `json:"id"`
	Status    string       `json:"status"`
	Quality   flexInt      `json:"quality"`
	Files     []fileDTO    `json:"files"`
	Broadcast broadcastDTO `json:"broadcast"`
}

type subscriptionDTO struct {
	UsedCap          flexFloat `json:"usedcap"`
	MaxCap           flexFloat `json:"maxcap"`
	UsedSpacePercent flexInt   `json:"used_space_percent"`
}

type loginDTO struct {
	Subscription *subscriptionDTO `json:"subscription"`
}
