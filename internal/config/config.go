// Package config loads and validates the user-supplied input job file and the
// optional runtime settings file.
//
// The input file names profile URLs and search keywords and is validated
// strictly before any network activity. The settings file is an external
// collaborator: when it is missing or unreadable the built-in defaults apply
// and a warning is logged, never an error.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Robinson-45/soundcloud-artists-scraper/internal/fetch"
	"github.com/Robinson-45/soundcloud-artists-scraper/internal/logger"
)

// DefaultMaxItemsPerKeyword applies when the input file omits the limit.
const DefaultMaxItemsPerKeyword = 20

// Input is the validated job description: which profiles to fetch, which keywords to
// search, and how many results to keep per keyword.
type Input struct {
	Profiles           []string
	Keywords           []string
	MaxItemsPerKeyword int
}

// rawInput defers field decoding so shape violations can be reported
// precisely instead of surfacing as generic unmarshal errors.
type rawInput struct {
	Profiles           json.RawMessage `json:"profiles"`
	Keywords           json.RawMessage `json:"keywords"`
	MaxItemsPerKeyword json.RawMessage `json:"maxItemsPerKeyword"`
}

// LoadInput reads and validates the input job file. Non-list profiles or
// keywords are rejected; non-string and blank entries are silently filtered
// out; a missing maxItemsPerKeyword defaults to 20 and a non-integer or
// non-positive one is rejected.
func LoadInput(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input file: %w", err)
	}

	var raw rawInput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing input file: %w", err)
	}

	profiles, err := stringList(raw.Profiles, "profiles", "SoundCloud profile URLs")
	if err != nil {
		return nil, err
	}
	keywords, err := stringList(raw.Keywords, "keywords", "search keywords")
	if err != nil {
		return nil, err
	}

	maxItems, err := maxItemsValue(raw.MaxItemsPerKeyword)
	if err != nil {
		return nil, err
	}

	return &Input{
		Profiles:           profiles,
		Keywords:           keywords,
		MaxItemsPerKeyword: maxItems,
	}, nil
}

// stringList decodes a JSON value that must be a list, keeping only its
// non-blank string entries.
func stringList(raw json.RawMessage, field, describe string) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var entries []interface{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("`%s` must be a list of %s", field, describe)
	}

	var out []string
	for _, entry := range entries {
		s, ok := entry.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// maxItemsValue coerces maxItemsPerKeyword to a positive integer. Numeric
// strings are accepted and floats truncate toward zero; anything else is
// rejected.
func maxItemsValue(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return DefaultMaxItemsPerKeyword, nil
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, fmt.Errorf("`maxItemsPerKeyword` must be an integer")
	}

	var n int
	switch v := value.(type) {
	case float64:
		n = int(math.Trunc(v))
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("`maxItemsPerKeyword` must be an integer")
		}
		n = parsed
	default:
		return 0, fmt.Errorf("`maxItemsPerKeyword` must be an integer")
	}

	if n <= 0 {
		return 0, fmt.Errorf("`maxItemsPerKeyword` must be > 0")
	}
	return n, nil
}

// settingsFile is the on-disk shape of the runtime settings overrides.
// Timeout is in seconds and backoff_factor in seconds as a float, matching
// the documented settings format.
type settingsFile struct {
	BaseURL       *string  `json:"base_url"`
	Timeout       *float64 `json:"timeout"`
	MaxRetries    *int     `json:"max_retries"`
	BackoffFactor *float64 `json:"backoff_factor"`
	UserAgent     *string  `json:"user_agent"`
	Proxy         *string  `json:"proxy"`
}

// LoadSettings builds a fetch.Config from the optional settings file layered
// over the built-in defaults. A missing or unreadable file falls back to the
// defaults with a warning.
func LoadSettings(path string, log *logger.Logger) fetch.Config {
	cfg := fetch.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("Failed to load settings, using defaults", logger.Fields{
				"path":   path,
				"reason": err.Error(),
			})
		}
		return cfg
	}

	var sf settingsFile
	if err := json.Unmarshal(data, &sf); err != nil {
		log.Warn("Failed to parse settings, using defaults", logger.Fields{
			"path":   path,
			"reason": err.Error(),
		})
		return cfg
	}

	if sf.BaseURL != nil && *sf.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(*sf.BaseURL, "/")
	}
	if sf.Timeout != nil && *sf.Timeout > 0 {
		cfg.Timeout = time.Duration(*sf.Timeout * float64(time.Second))
	}
	if sf.MaxRetries != nil && *sf.MaxRetries > 0 {
		cfg.MaxRetries = *sf.MaxRetries
	}
	if sf.BackoffFactor != nil && *sf.BackoffFactor > 0 {
		cfg.BackoffFactor = time.Duration(*sf.BackoffFactor * float64(time.Second))
	}
	if sf.UserAgent != nil && *sf.UserAgent != "" {
		cfg.UserAgent = *sf.UserAgent
	}
	if sf.Proxy != nil {
		cfg.Proxy = *sf.Proxy
	}

	return cfg
}
