// Package listing holds the extracted rental offer and its output encoding.
package listing

import (
	"bytes"
	"encoding/json"
)

// Unknown marks a numeric field that was not present on the listing page.
const Unknown = -1

// Listing is a single extracted rental offer. URL is its identity.
// Values are built once by New and never modified afterwards.
type Listing struct {
	URL         string
	Name        string
	District    string
	Description string

	Rent      int
	Utilities int
	Rooms     int

	Area float64
}

// New creates a Listing. Utilities, rooms and area take Unknown when absent.
func New(url, name, district, description string, rent, utilities, rooms int, area float64) *Listing {
	return &Listing{
		URL:         url,
		Name:        name,
		District:    district,
		Description: description,
		Rent:        rent,
		Utilities:   utilities,
		Rooms:       rooms,
		Area:        area,
	}
}

// Key returns the identity used for equality and deduplication.
func (l *Listing) Key() string { return l.URL }

// Equal reports whether both listings describe the same offer.
func (l *Listing) Equal(other *Listing) bool {
	if l == nil || other == nil {
		return l == other
	}
	return l.URL == other.URL
}

// TotalRent is the base rent plus the utilities charge, as listed.
// An Unknown utilities charge is added as-is.
func (l *Listing) TotalRent() int {
	return l.Rent + l.Utilities
}

// TotalRentPerArea returns the total rent per square meter.
// It reports false when the area is unknown or zero.
func (l *Listing) TotalRentPerArea() (float64, bool) {
	if l.Area <= 0 {
		return 0, false
	}
	return float64(l.TotalRent()) / l.Area, true
}

// record is the serialized form. Fields are declared in key order so the
// encoder emits them sorted.
type record struct {
	Area        float64 `json:"area"`
	Description string  `json:"description"`
	District    string  `json:"district"`
	Name        string  `json:"name"`
	Rent        int     `json:"rent"`
	Rooms       int     `json:"rooms"`
	URL         string  `json:"url"`
	Utilities   int     `json:"utilities"`
}

// MarshalJSON encodes the listing as a pretty-printed object with sorted keys.
// Non-ASCII and HTML characters are written literally.
func (l *Listing) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(record{
		Area:        l.Area,
		Description: l.Description,
		District:    l.District,
		Name:        l.Name,
		Rent:        l.Rent,
		Rooms:       l.Rooms,
		URL:         l.URL,
		Utilities:   l.Utilities,
	}); err != nil {
		return nil, err
	}
	return literalLineSeparators(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// literalLineSeparators undoes the \u2028 and \u2029 escapes the encoder
// always applies. Escape pairs are consumed whole so an escaped backslash
// followed by "u2028" is left alone.
func literalLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 == len(b) {
			out = append(out, b[i])
			continue
		}
		if i+5 < len(b) && string(b[i+1:i+5]) == "u202" && (b[i+5] == '8' || b[i+5] == '9') {
			if b[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}

// UnmarshalJSON decodes an object produced by MarshalJSON.
func (l *Listing) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*l = Listing{
		URL:         r.URL,
		Name:        r.Name,
		District:    r.District,
		Description: r.Description,
		Rent:        r.Rent,
		Utilities:   r.Utilities,
		Rooms:       r.Rooms,
		Area:        r.Area,
	}
	return nil
}

func (l *Listing) String() string {
	b, err := l.MarshalJSON()
	if err != nil {
		return l.URL
	}
	return string(b)
}

// Unique drops listings whose URL was already seen, keeping the first one.
func Unique(listings []*Listing) []*Listing {
	seen := make(map[string]struct{}, len(listings))
	out := make([]*Listing, 0, len(listings))
	for _, l := range listings {
		if l == nil {
			continue
		}
		if _, ok := seen[l.Key()]; ok {
			continue
		}
		seen[l.Key()] = struct{}{}
		out = append(out, l)
	}
	return out
}
