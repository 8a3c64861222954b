package trip

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"tripplanner/internal/crew"
)

// NoContent replaces an empty task output.
const NoContent = "No content available."

// Section keys produced by the planning pipeline.
const (
	KeyCitySelection     = "city_selection"
	KeyCityResearch      = "city_research"
	KeyItineraryCreation = "itinerary_creation"
	KeyBudgetPlanning    = "budget_planning"
)

// TripResult maps section keys to cleaned task output, keeping the order in
// which keys were first set. The zero value is empty and ready to use.
type TripResult struct {
	keys   []string
	values map[string]string
}

// Section is one rendered part of a trip plan.
type Section struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Set stores value under key. An existing key keeps its position.
func (r *TripResult) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r TripResult) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r TripResult) Len() int { return len(r.keys) }

// Keys returns the section keys in order.
func (r TripResult) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Sections returns the result in order with display titles.
func (r TripResult) Sections() []Section {
	out := make([]Section, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, Section{Key: k, Title: SectionTitle(k), Content: r.values[k]})
	}
	return out
}

// MarshalJSON writes an object whose members follow the result order.
func (r TripResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat string object, keeping member order.
func (r *TripResult) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("trip result: expected object")
	}
	*r = TripResult{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("trip result: expected string key")
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("trip result: %s: %w", key, err)
		}
		r.Set(key, value)
	}
	_, err = dec.Token()
	return err
}

// NormalizeResults turns ordered task outputs into a TripResult. Keys are
// the task names lower-cased with spaces replaced by underscores. Values
// have surrounding backticks trimmed; an empty output becomes NoContent.
func NormalizeResults(outputs []crew.TaskOutput) TripResult {
	var r TripResult
	for _, o := range outputs {
		key := strings.ReplaceAll(strings.ToLower(o.Name), " ", "_")
		value := NoContent
		if o.Raw != "" {
			value = strings.Trim(o.Raw, "`")
		}
		r.Set(key, value)
	}
	return r
}

// SectionTitle turns a section key into a heading: "city_selection"
// becomes "City Selection". Each run of letters is capitalized and the
// rest of the run lower-cased.
func SectionTitle(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = true
			continue
		}
		prevLetter = false
		b.WriteRune(r)
	}
	return b.String()
}
