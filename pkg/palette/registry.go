package palette

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Registry holds builtin and custom palettes keyed by sanitized identifier.
// It is safe for concurrent use; the server shares one registry across
// requests. Builtins cannot be removed.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Palette
	builtin map[string]bool
}

// NewRegistry returns a registry populated with the builtin palettes.
func NewRegistry() *Registry {
	entries := builtins()
	builtin := make(map[string]bool, len(entries))
	for id := range entries {
		builtin[id] = true
	}
	return &Registry{entries: entries, builtin: builtin}
}

// SanitizeID derives a registry identifier from a palette name: lowercased,
// with every non-alphanumeric rune replaced by '_'.
func SanitizeID(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Get returns the palette with the given identifier. Unknown identifiers
// fall back to the default builtin palette rather than failing: a stale
// palette reference in a preset degrades the art, not the run. The boolean
// reports whether the lookup was exact.
func (r *Registry) Get(id string) (Palette, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.entries[id]; ok {
		return p, true
	}
	return r.entries[DefaultID], false
}

// Add registers a custom palette under the sanitized form of its name and
// returns the identifier. Invalid palettes are rejected with ok=false.
// Adding over an existing identifier replaces it, builtins included.
func (r *Registry) Add(p Palette) (string, bool) {
	if !p.Valid() {
		return "", false
	}
	id := SanitizeID(p.Name)
	if id == "" {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = p
	r.builtin[id] = false
	return id, true
}

// Remove deletes a custom palette. Builtins and unknown identifiers return
// false.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.builtin[id] {
		return false
	}
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	delete(r.builtin, id)
	return true
}

// IDs returns all registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsBuiltin reports whether id names a shipped palette.
func (r *Registry) IsBuiltin(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.builtin[id]
}

// Record is the serialized form of a palette, the wire format for custom
// palette import/export.
type Record struct {
	Name      string          `json:"name"`
	Colors    json.RawMessage `json:"colors"`
	MaxColors int             `json:"maxColors"`
}

// ExportCustom serializes all custom palettes as a map from identifier to
// Record, colors as a plain numeric sequence.
func (r *Registry) ExportCustom() (map[string]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Record)
	for id, p := range r.entries {
		if r.builtin[id] {
			continue
		}
		colors, err := json.Marshal(p.Colors)
		if err != nil {
			return nil, err
		}
		out[id] = Record{Name: p.Name, Colors: colors, MaxColors: p.MaxColors}
	}
	return out, nil
}

// ImportCustom registers palettes from a serialized map. Malformed records
// are skipped rather than failing the batch; the returned count is the
// number of palettes accepted, and ok is true only if at least one record
// was accepted.
//
// The colors field tolerates three encodings: a plain JSON array of numbers,
// an already-typed fixed-width array (which marshals to the same thing), or
// an object with numeric string keys, sorted ascending before conversion.
func (r *Registry) ImportCustom(records map[string]Record) (int, bool) {
	accepted := 0
	for _, rec := range records {
		colors, err := decodeColors(rec.Colors)
		if err != nil {
			continue
		}
		p := New(rec.Name, colors, rec.MaxColors)
		// New backfills MaxColors; a non-positive stored value still counts
		// as malformed per the acceptance rule.
		if rec.MaxColors <= 0 || !p.Valid() {
			continue
		}
		if _, ok := r.Add(p); ok {
			accepted++
		}
	}
	return accepted, accepted > 0
}

// decodeColors parses the tolerated color list encodings.
func decodeColors(raw json.RawMessage) ([]uint32, error) {
	if len(raw) == 0 {
		return nil, errEmptyColors
	}

	// Plain sequence (covers typed fixed-width arrays too).
	var seq []uint32
	if err := json.Unmarshal(raw, &seq); err == nil {
		return seq, nil
	}

	// Object with numeric string keys: {"0": 4278190080, "1": ...}.
	var obj map[string]uint32
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	type kv struct {
		idx int
		c   uint32
	}
	pairs := make([]kv, 0, len(obj))
	for k, c := range obj {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, kv{idx: idx, c: c})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].idx < pairs[j].idx })

	colors := make([]uint32, len(pairs))
	for i, p := range pairs {
		colors[i] = p.c
	}
	return colors, nil
}

type colorsError string

func (e colorsError) Error() string { return string(e) }

const errEmptyColors = colorsError("empty colors field")
