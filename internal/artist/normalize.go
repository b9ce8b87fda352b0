package artist

import (
	"encoding/json"
	"strings"
)

// HydratedUser is the decoded shape of a user payload found in page
// hydration, covering both full profile objects and the partial entries that
// appear in search-result collections. Unknown fields are ignored; known
// fields missing from the payload stay nil.
type HydratedUser struct {
	Kind            string  `json:"kind"`
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

// identified reports whether the payload can be taken for a user entity at
// all. Payloads tagged with a foreign kind (playlists, tracks) are rejected;
// untagged payloads qualify only when they carry some identifying field.
func (u *HydratedUser) identified() bool {
	if u.Kind != "" && u.Kind != "user" {
		return false
	}
	if u.Kind == "user" {
		return true
	}
	return u.ID != nil || hasValue(u.PermalinkURL) || hasValue(u.Username)
}

// Normalize maps the payload onto the canonical record. The fallback URL
// fills permalink_url when the payload carries none. Returns nil when the
// payload is not identifiable as a user entity.
func (u *HydratedUser) Normalize(fallbackURL string) *Artist {
	if u == nil || !u.identified() {
		return nil
	}

	a := &Artist{
		ID:              u.ID,
		PermalinkURL:    u.PermalinkURL,
		Username:        u.Username,
		FullName:        u.FullName,
		FollowersCount:  u.FollowersCount,
		FollowingsCount: u.FollowingsCount,
		TrackCount:      u.TrackCount,
		City:            u.City,
		CountryCode:     u.CountryCode,
		AvatarURL:       u.AvatarURL,
		Description:     u.Description,
		Verified:        u.Verified,
	}
	if !hasValue(a.PermalinkURL) && fallbackURL != "" {
		a.PermalinkURL = &fallbackURL
	}
	return a
}

// NormalizeHydrated decodes a raw hydration payload and normalizes it.
// Malformed JSON and non-user payloads both yield nil, never an error.
func NormalizeHydrated(raw json.RawMessage, fallbackURL string) *Artist {
	var u HydratedUser
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil
	}
	return u.Normalize(fallbackURL)
}

// MetaProfile holds the descriptive fields recoverable from Open Graph and
// Twitter-card meta tags when no hydration data is available.
type MetaProfile struct {
	Title       string
	URL         string
	Image       string
	Description string
}

// Normalize maps meta-tag fields onto the canonical record: the page title
// stands in for the username and the og:url for the permalink. Returns nil
// when the tags carried no identifiable data at all.
func (m MetaProfile) Normalize(fallbackURL string) *Artist {
	title := strings.TrimSpace(m.Title)
	pageURL := strings.TrimSpace(m.URL)
	image := strings.TrimSpace(m.Image)
	description := strings.TrimSpace(m.Description)

	if title == "" && pageURL == "" && image == "" && description == "" {
		return nil
	}

	a := &Artist{}
	if title != "" {
		a.Username = &title
	}
	if pageURL != "" {
		a.PermalinkURL = &pageURL
	} else if fallbackURL != "" {
		a.PermalinkURL = &fallbackURL
	}
	if image != "" {
		a.AvatarURL = &image
	}
	if description != "" {
		a.Description = &description
	}
	return a
}

func hasValue(s *string) bool {
	return s != nil && *s != ""
}
