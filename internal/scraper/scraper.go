// Package scraper orchestrates fetching SoundCloud pages and extracting
// artist records from them.
//
// Profile pages are resolved through a fallback chain: the embedded hydration
// JSON is preferred, and when the page carries no usable hydration the scraper
// degrades to Open Graph / Twitter-card meta tags. Keyword searches read the
// search page's hydration first and fall back to scraping profile links out of
// the result HTML, fetching each linked profile individually. Each strategy
// reports its outcome as an explicit empty/nil result; only exhausted HTTP
// retries surface as errors.
package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Robinson-45/soundcloud-artists-scraper/internal/artist"
	"github.com/Robinson-45/soundcloud-artists-scraper/internal/fetch"
	"github.com/Robinson-45/soundcloud-artists-scraper/internal/hydration"
	"github.com/Robinson-45/soundcloud-artists-scraper/internal/logger"
)

// Scraper fetches artist profiles and keyword search results.
type Scraper struct {
	client  *fetch.Client
	baseURL string
	log     *logger.Logger
	metrics *logger.Metrics
}

// New creates a Scraper on top of a fetch client. The client's base URL
// anchors relative profile paths and search URLs.
func New(client *fetch.Client, log *logger.Logger, metrics *logger.Metrics) *Scraper {
	return &Scraper{
		client:  client,
		baseURL: strings.TrimRight(client.Config().BaseURL, "/"),
		log:     log,
		metrics: metrics,
	}
}

// FetchArtistProfile fetches a single artist profile page and extracts a
// record from it. A network failure after retries is returned as an error;
// a page with no extractable artist data yields (nil, nil).
func (s *Scraper) FetchArtistProfile(profileURL string) (*artist.Artist, error) {
	normalized := s.normalizeProfileURL(profileURL)
	s.log.Info("Fetching artist profile", logger.Fields{"url": normalized})

	body, err := s.client.Get(normalized)
	if err != nil {
		return nil, err
	}
	html := string(body)

	blocks := hydration.Extract(html)
	if payload := hydration.FindUserBlock(blocks); payload != nil {
		if a := artist.NormalizeHydrated(payload, normalized); a != nil {
			s.metrics.IncrCounter("scrape.hydration_hits")
			s.log.Debug("Extracted artist from hydration", logger.Fields{"url": normalized})
			return a, nil
		}
	}

	s.log.Warn("No hydration user block found, using meta tag fallback", logger.Fields{
		"url": normalized,
	})
	s.metrics.IncrCounter("scrape.meta_fallbacks")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Unparseable markup ends the fallback chain for this page.
		s.log.Debug("Failed to parse profile HTML", logger.Fields{
			"url":    normalized,
			"reason": err.Error(),
		})
		return nil, nil
	}

	return extractMetaProfile(doc).Normalize(normalized), nil
}

// SearchArtists searches for artists by keyword, returning at most maxItems
// records. An empty keyword is a validation error raised before any request.
func (s *Scraper) SearchArtists(keyword string, maxItems int) ([]*artist.Artist, error) {
	q := strings.TrimSpace(keyword)
	if q == "" {
		return nil, fmt.Errorf("keyword cannot be empty")
	}

	s.log.Info("Searching artists", logger.Fields{
		"keyword":   q,
		"max_items": maxItems,
	})
	searchURL := fmt.Sprintf("%s/search/people?q=%s", s.baseURL, url.QueryEscape(q))

	body, err := s.client.Get(searchURL)
	if err != nil {
		return nil, err
	}
	html := string(body)

	artists := make([]*artist.Artist, 0, maxItems)

	// Primary attempt: users embedded in the search page hydration.
	for _, raw := range hydration.UserEntries(hydration.Extract(html)) {
		if len(artists) >= maxItems {
			break
		}
		if a := artist.NormalizeHydrated(raw, ""); a != nil {
			artists = append(artists, a)
		}
	}
	if len(artists) >= maxItems {
		return artists[:maxItems], nil
	}

	// Secondary attempt: scrape profile links out of the result HTML and
	// fetch each profile individually. Failures here are logged and skipped
	// so one bad profile cannot abort the whole search.
	s.log.Debug("Hydration-based search fell short, using HTML link fallback", logger.Fields{
		"keyword": q,
		"found":   len(artists),
	})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return artists, nil
	}

	for _, link := range s.profileLinks(doc) {
		if len(artists) >= maxItems {
			break
		}
		a, err := s.FetchArtistProfile(link)
		if err != nil {
			s.metrics.IncrCounter("scrape.fallback_failures")
			s.log.Warn("Failed to fetch artist from search fallback", logger.Fields{
				"url":    link,
				"reason": err.Error(),
			})
			continue
		}
		if a != nil {
			artists = append(artists, a)
		}
	}

	if len(artists) > maxItems {
		artists = artists[:maxItems]
	}
	return artists, nil
}

// normalizeProfileURL resolves bare or relative profile paths against the
// base URL so every downstream request uses an absolute form.
func (s *Scraper) normalizeProfileURL(profileURL string) string {
	u := strings.TrimSpace(profileURL)
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return s.baseURL + "/" + strings.TrimLeft(u, "/")
}

// extractMetaProfile pulls descriptive fields from meta tags. Open Graph
// properties win over their Twitter-card equivalents.
func extractMetaProfile(doc *goquery.Document) artist.MetaProfile {
	var m artist.MetaProfile

	doc.Find("meta").Each(func(i int, sel *goquery.Selection) {
		key, ok := sel.Attr("property")
		if !ok || key == "" {
			key, _ = sel.Attr("name")
		}
		content, _ := sel.Attr("content")
		if key == "" || content == "" {
			return
		}

		switch key {
		case "og:title":
			m.Title = content
		case "twitter:title":
			if m.Title == "" {
				m.Title = content
			}
		case "og:url":
			m.URL = content
		case "og:image":
			m.Image = content
		case "twitter:image":
			if m.Image == "" {
				m.Image = content
			}
		case "og:description":
			m.Description = content
		case "description":
			if m.Description == "" {
				m.Description = content
			}
		}
	})

	return m
}

// reservedPaths are single-segment SoundCloud paths that are never profiles.
var reservedPaths = map[string]bool{
	"charts":        true,
	"discover":      true,
	"imprint":       true,
	"jobs":          true,
	"logout":        true,
	"messages":      true,
	"mobile":        true,
	"notifications": true,
	"pages":         true,
	"people":        true,
	"popular":       true,
	"pro":           true,
	"search":        true,
	"settings":      true,
	"signin":        true,
	"stream":        true,
	"tags":          true,
	"terms-of-use":  true,
	"upload":        true,
	"you":           true,
}

// profileLinks collects candidate profile URLs from anchors on a search
// result page: single-segment paths that are not reserved platform pages,
// absolutized against the base URL, order-preserving and deduplicated.
func (s *Scraper) profileLinks(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	links := make([]string, 0)

	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		path := profilePath(href, s.baseURL)
		if path == "" || reservedPaths[path] {
			return
		}

		full := s.baseURL + "/" + path
		if seen[full] {
			return
		}
		seen[full] = true
		links = append(links, full)
	})

	return links
}

// profilePath reduces an href to a bare single-segment profile path, or ""
// when the href points elsewhere (multi-segment paths, foreign hosts,
// fragments, javascript links).
func profilePath(href, baseURL string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		if !strings.HasPrefix(href, baseURL+"/") {
			return ""
		}
		href = strings.TrimPrefix(href, baseURL)
	} else if !strings.HasPrefix(href, "/") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	path := strings.Trim(u.Path, "/")
	if path == "" || strings.Contains(path, "/") {
		return ""
	}
	return path
}
