// Package hydration extracts the JSON hydration payload embedded in SoundCloud
// page markup.
//
// SoundCloud pages assign a JSON array to window.__sc_hydration inside a script
// tag. The array mirrors server-rendered state and typically includes the page's
// user object. The assignment format drifts over time, so extraction tries a
// strict single-line pattern first and falls back to a multi-line tolerant one;
// anything that fails to match or parse yields an empty result rather than an
// error, and callers treat empty as "hydration unavailable, use next fallback."
package hydration

import (
	"encoding/json"
	"regexp"
)

var (
	// Strict pattern: array literal bounded to a single line, up to the
	// closing bracket before the statement terminator.
	hydrationPattern = regexp.MustCompile(`window\.__sc_hydration\s*=\s*(\[[^\n]+?\]);`)

	// Loose pattern for payloads that span multiple lines.
	hydrationPatternLoose = regexp.MustCompile(`(?s)window\.__sc_hydration\s*=\s*(\[.*?\]);`)
)

// Block is one entry of the hydration array. Entries are usually envelopes of
// the form {"hydratable": "...", "data": {...}}, but some payload variants are
// flat objects carrying their own "kind" discriminator.
type Block struct {
	Hydratable string          `json:"hydratable"`
	Data       json.RawMessage `json:"data"`
	Kind       string          `json:"kind"`

	raw json.RawMessage
}

// Raw returns the block's original JSON bytes.
func (b Block) Raw() json.RawMessage {
	return b.raw
}

// IsUser reports whether the block holds a user entity, either as a
// "user"-hydratable envelope or as a flat object with kind "user".
func (b Block) IsUser() bool {
	return b.Hydratable == "user" || b.Kind == "user"
}

// UserPayload returns the JSON bytes of the user object carried by the block:
// the envelope data when present, otherwise the block itself.
func (b Block) UserPayload() json.RawMessage {
	if b.Hydratable != "" && len(b.Data) > 0 {
		return b.Data
	}
	return b.raw
}

// Extract locates the hydration array in page markup and parses it into
// blocks. It returns an empty slice when no assignment matches either pattern
// or the matched text is not valid JSON; it never returns an error.
func Extract(html string) []Block {
	match := hydrationPattern.FindStringSubmatch(html)
	if match == nil {
		match = hydrationPatternLoose.FindStringSubmatch(html)
	}
	if match == nil {
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(match[1]), &entries); err != nil {
		return nil
	}

	blocks := make([]Block, 0, len(entries))
	for _, raw := range entries {
		var b Block
		if err := json.Unmarshal(raw, &b); err != nil {
			// Non-object entries (numbers, strings) carry no usable data.
			continue
		}
		b.raw = raw
		blocks = append(blocks, b)
	}
	return blocks
}

// FindUserBlock returns the payload of the first user block, or nil when the
// page's hydration carries no identifiable user entity.
func FindUserBlock(blocks []Block) json.RawMessage {
	for _, b := range blocks {
		if b.IsUser() {
			return b.UserPayload()
		}
	}
	return nil
}

// collection is the envelope shape used by search-style hydration data.
type collection struct {
	Collection []json.RawMessage `json:"collection"`
}

// UserEntries collects all embedded user-list entries from search-page
// hydration. Entries may appear as a {"collection": [...]} envelope, as a bare
// array of objects, or as flat user blocks; entries that are not user objects
// are skipped.
func UserEntries(blocks []Block) []json.RawMessage {
	var entries []json.RawMessage

	appendUsers := func(candidates []json.RawMessage) {
		for _, raw := range candidates {
			var probe struct {
				Kind string `json:"kind"`
			}
			if err := json.Unmarshal(raw, &probe); err != nil {
				continue
			}
			if probe.Kind == "user" {
				entries = append(entries, raw)
			}
		}
	}

	for _, b := range blocks {
		if b.IsUser() && b.Kind == "user" {
			// Flat user block: the block itself is the entry.
			entries = append(entries, b.raw)
			continue
		}
		if len(b.Data) == 0 {
			continue
		}

		var env collection
		if err := json.Unmarshal(b.Data, &env); err == nil && len(env.Collection) > 0 {
			appendUsers(env.Collection)
			continue
		}

		var list []json.RawMessage
		if err := json.Unmarshal(b.Data, &list); err == nil {
			appendUsers(list)
			continue
		}

		if b.Hydratable == "user" {
			entries = append(entries, b.Data)
		}
	}

	return entries
}
