// Package cli wires the scraper components together behind the command-line
// interface.
//
// The run is fully sequential: profiles are fetched one by one, then each
// keyword is searched, results are deduplicated once at the end and exported
// as a single JSON array. Input validation failures abort before any network
// call; per-item network failures are logged and skipped.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Robinson-45/soundcloud-artists-scraper/internal/artist"
	"github.com/Robinson-45/soundcloud-artists-scraper/internal/config"
	"github.com/Robinson-45/soundcloud-artists-scraper/internal/fetch"
	"github.com/Robinson-45/soundcloud-artists-scraper/internal/logger"
	"github.com/Robinson-45/soundcloud-artists-scraper/internal/scraper"
	"github.com/Robinson-45/soundcloud-artists-scraper/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagInput    string
	flagOutput   string
	flagLogLevel string
	flagSettings string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "soundcloud-artists",
		Short: "Fetch SoundCloud artist metadata from profiles and keyword searches",
		Long: `A CLI tool that scrapes public SoundCloud artist profile data.
Profiles and search keywords are read from an input JSON file; scraped
artist records are deduplicated and written to an output JSON array.`,
		RunE: runScrape,
	}

	cmd.Flags().StringVarP(&flagInput, "input", "i", "data/input.sample.json", "Path to input JSON file describing profiles/keywords")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "data/results.json", "Path to output JSON file for scraped artists")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "INFO", "Logging level: DEBUG, INFO, WARNING or ERROR")
	cmd.Flags().StringVar(&flagSettings, "settings", "config/settings.example.json", "Path to optional runtime settings JSON file")

	cmd.SilenceUsage = true

	return cmd
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, args []string) error {
	log := logger.New(logger.ParseLevel(flagLogLevel), os.Stderr)
	metrics := logger.NewMetrics()

	log.Info("Loading input configuration", logger.Fields{"path": flagInput})
	input, err := config.LoadInput(flagInput)
	if err != nil {
		return fmt.Errorf("loading input configuration: %w", err)
	}

	cfg := config.LoadSettings(flagSettings, log)
	client, err := fetch.New(cfg, log, metrics)
	if err != nil {
		return fmt.Errorf("initializing HTTP client: %w", err)
	}
	sc := scraper.New(client, log, metrics)

	var all []*artist.Artist

	if len(input.Profiles) > 0 {
		log.Info("Fetching direct profiles", logger.Fields{"count": len(input.Profiles)})
		for _, profileURL := range input.Profiles {
			a, err := sc.FetchArtistProfile(profileURL)
			if err != nil {
				log.Error("Failed to fetch profile", logger.Fields{"url": profileURL}, err)
				continue
			}
			if a == nil {
				log.Warn("No artist data extracted for profile", logger.Fields{"url": profileURL})
				continue
			}
			all = append(all, a)
		}
	}

	if len(input.Keywords) > 0 {
		log.Info("Searching artists by keyword", logger.Fields{
			"keywords":  len(input.Keywords),
			"max_items": input.MaxItemsPerKeyword,
		})
		for _, keyword := range input.Keywords {
			found, err := sc.SearchArtists(keyword, input.MaxItemsPerKeyword)
			if err != nil {
				log.Error("Keyword search failed", logger.Fields{"keyword": keyword}, err)
				continue
			}
			log.Info("Keyword search finished", logger.Fields{
				"keyword": keyword,
				"found":   len(found),
			})
			all = append(all, found...)
		}
	}

	if len(all) == 0 {
		log.Warn("No artists scraped, nothing to export", nil)
		log.Debug("Metrics snapshot", logger.Fields{"metrics": metrics.GetSnapshot()})
		return nil
	}

	deduped := artist.Deduplicate(all)
	log.Info("Collected artists", logger.Fields{
		"unique": len(deduped),
		"raw":    len(all),
	})
	metrics.SetGauge("export.artists", float64(len(deduped)))

	if err := storage.ExportArtists(deduped, flagOutput); err != nil {
		return fmt.Errorf("exporting artists: %w", err)
	}
	log.Info("Exported artist data", logger.Fields{"path": flagOutput})
	log.Debug("Metrics snapshot", logger.Fields{"metrics": metrics.GetSnapshot()})

	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
