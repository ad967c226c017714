// Package audnexus provides a client for the Audnexus catalog API, a
// read-only REST lookup of Audible-sourced audiobook metadata by ASIN.
package audnexus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Person is an author or narrator entry carrying the catalog's own ASIN
// when it has one.
type Person struct {
	ASIN string `json:"asin,omitempty"`
	Name string `json:"name"`
}

// Genre is a tagged genre entry; Type distinguishes primary genres
// ("genre") from secondary tags ("tag").
type Genre struct {
	ASIN string `json:"asin,omitempty"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Series references a series with the catalog's textual position
// ("1", "1.5", "Book 3").
type Series struct {
	ASIN     string `json:"asin,omitempty"`
	Name     string `json:"name"`
	Position string `json:"position"`
}

// Book is the catalog payload for a single title. Summary carries HTML.
type Book struct {
	ASIN             string   `json:"asin"`
	Title            string   `json:"title"`
	Subtitle         string   `json:"subtitle"`
	Authors          []Person `json:"authors"`
	Narrators        []Person `json:"narrators"`
	Genres           []Genre  `json:"genres"`
	SeriesPrimary    *Series  `json:"seriesPrimary"`
	SeriesSecondary  *Series  `json:"seriesSecondary"`
	PublisherName    string   `json:"publisherName"`
	ReleaseDate      string   `json:"releaseDate"`
	Language         string   `json:"language"`
	RuntimeLengthMin int      `json:"runtimeLengthMin"`
	Summary          string   `json:"summary"`
	Description      string   `json:"description"`
	Image            string   `json:"image"`
	ISBN             string   `json:"isbn"`
	FormatType       string   `json:"formatType"`
	IsAdult          FlexBool `json:"isAdult"`
}

// Chapter is a single chapter with offsets in milliseconds, as the
// chapters endpoint reports them.
type Chapter struct {
	Title         string `json:"title"`
	StartOffsetMs int64  `json:"startOffsetMs"`
	LengthMs      int64  `json:"lengthMs"`
}

// ChapterList is the chapters endpoint payload for one ASIN.
type ChapterList struct {
	ASIN            string    `json:"asin"`
	Chapters        []Chapter `json:"chapters"`
	RuntimeLengthMs int64     `json:"runtimeLengthMs"`
	IsAccurate      FlexBool  `json:"isAccurate"`
}

// apiError is the conventional non-2xx error envelope.
type apiError struct {
	StatusCode int    `json:"statusCode"`
	ErrorName  string `json:"error"`
	Message    string `json:"message"`
}

// FlexBool tolerates the catalog's inconsistent flag encoding: some
// endpoints send numeric 0/1, others string "0"/"1" or real booleans.
// The inconsistency is normalized here so it never reaches callers.
type FlexBool bool

// UnmarshalJSON accepts bool, number, and string renditions of a flag.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*b = false
		return nil
	case bytes.Equal(data, []byte("true")):
		*b = true
		return nil
	case bytes.Equal(data, []byte("false")):
		*b = false
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "", "0", "false":
			*b = false
		case "1", "true":
			*b = true
		default:
			return fmt.Errorf("audnexus: cannot parse %q as flag", s)
		}
		return nil
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("audnexus: cannot parse %s as flag", data)
	}
	*b = n != 0
	return nil
}

// MarshalJSON always emits a real boolean.
func (b FlexBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}
