package catalog

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

const (
	// CategoryAll selects every item when filtering. It is never stored on an item.
	CategoryAll = "all"
	// CategoryInvalid is the value the admin form's category select is reset to.
	CategoryInvalid = "invalid"
)

// DefaultCategories are always offered by the admin form.
var DefaultCategories = []string{"coffee", "burger"}

// ---------- Data model: Menu items ----------

type MenuItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Desc string `json:"desc"`
	Type string `json:"type"` // category tag
	URL  string `json:"url"`  // image location
}

// UnmarshalJSON accepts ids as numbers or numeric strings; mockapi serves strings.
func (m *MenuItem) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
		Desc string          `json:"desc"`
		Type string          `json:"type"`
		URL  string          `json:"url"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*m = MenuItem{
		ID:   parseID(raw.ID),
		Name: raw.Name,
		Desc: raw.Desc,
		Type: raw.Type,
		URL:  raw.URL,
	}
	return nil
}

func parseID(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// ErrInvalidItem is wrapped by every ValidationError.
var ErrInvalidItem = errors.New("enter all the required data")

// ValidationError lists the fields of a candidate item that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return ErrInvalidItem.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidItem }

// Validate checks that name, url and desc are set and type is a real category.
func (m MenuItem) Validate() error {
	var bad []string
	if strings.TrimSpace(m.Name) == "" {
		bad = append(bad, "name")
	}
	if strings.TrimSpace(m.URL) == "" {
		bad = append(bad, "url")
	}
	if strings.TrimSpace(m.Desc) == "" {
		bad = append(bad, "desc")
	}
	if t := strings.TrimSpace(m.Type); t == "" || t == CategoryInvalid || t == CategoryAll {
		bad = append(bad, "type")
	}
	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}
