// Package artist defines the canonical artist record and the normalization of
// heterogeneous scraped payload shapes into it.
//
// Records come from two sources: JSON user objects embedded in page hydration
// (full profile objects or partial search-result entries) and the meta-tag
// fallback used when hydration is unavailable. Both sources normalize to the
// same Artist shape so downstream code is source-agnostic. Missing fields stay
// null rather than becoming errors.
package artist

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Artist is the canonical output record. Every field is optional; absent
// values serialize as JSON null.
type Artist struct {
	ID              *UserID `json:"id"`
	PermalinkURL    *string `json:"permalink_url"`
	Username        *string `json:"username"`
	FullName        *string `json:"full_name"`
	FollowersCount  *int64  `json:"followers_count"`
	FollowingsCount *int64  `json:"followings_count"`
	TrackCount      *int64  `json:"track_count"`
	City            *string `json:"city"`
	CountryCode     *string `json:"country_code"`
	AvatarURL       *string `json:"avatar_url"`
	Description     *string `json:"description"`
	Verified        *bool   `json:"verified"`
}

// UserID is a platform-assigned identifier. SoundCloud assigns numeric ids,
// but some payload variants carry them as strings; both forms round-trip
// through JSON unchanged.
type UserID struct {
	num   int64
	str   string
	isStr bool
	valid bool
}

// NumericID builds a numeric UserID.
func NumericID(n int64) UserID {
	return UserID{num: n, valid: true}
}

// StringID builds a textual UserID.
func StringID(s string) UserID {
	return UserID{str: s, isStr: true, valid: true}
}

// String returns the identifier in textual form.
func (id UserID) String() string {
	if !id.valid {
		return ""
	}
	if id.isStr {
		return id.str
	}
	return strconv.FormatInt(id.num, 10)
}

// Equal reports whether two identifiers are the same value in the same form.
func (id UserID) Equal(other UserID) bool {
	return id.valid && other.valid &&
		id.isStr == other.isStr && id.num == other.num && id.str == other.str
}

// UnmarshalJSON accepts numbers and strings. Payloads with an unparseable id
// yield an empty identifier rather than an error, keeping the surrounding
// record decodable.
func (id *UserID) UnmarshalJSON(data []byte) error {
	*id = UserID{}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*id = StringID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return nil
	}
	i, err := n.Int64()
	if err != nil {
		return nil
	}
	*id = NumericID(i)
	return nil
}

// MarshalJSON writes the identifier back in its original form.
func (id UserID) MarshalJSON() ([]byte, error) {
	if !id.valid {
		return []byte("null"), nil
	}
	if id.isStr {
		return json.Marshal(id.str)
	}
	return json.Marshal(id.num)
}

// identityKey returns the dedup key for a record: id if present, else
// permalink URL, else "" meaning the record is unmergeable and always kept.
func (a *Artist) identityKey() string {
	if a.ID != nil && a.ID.valid {
		if a.ID.isStr {
			return "id:s:" + a.ID.str
		}
		return fmt.Sprintf("id:n:%d", a.ID.num)
	}
	if a.PermalinkURL != nil && *a.PermalinkURL != "" {
		return "url:" + *a.PermalinkURL
	}
	return ""
}

// Deduplicate removes records whose identity key was already seen, preserving
// first-seen order. Records lacking both id and permalink URL have no key and
// are always retained, even duplicates of each other. The operation is
// idempotent.
func Deduplicate(artists []*Artist) []*Artist {
	seen := make(map[string]bool)
	unique := make([]*Artist, 0, len(artists))

	for _, a := range artists {
		if a == nil {
			continue
		}
		key := a.identityKey()
		if key == "" {
			unique = append(unique, a)
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, a)
	}

	return unique
}
