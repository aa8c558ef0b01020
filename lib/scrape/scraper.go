package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/carlmjohnson/requests"
	"github.com/fiffu/dropwatch/config"
	"github.com/fiffu/dropwatch/lib/models"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ReleaseSink persists scraped releases.
type ReleaseSink interface {
	Sync(ctx context.Context, releases models.Releases) error
}

type Scraper struct {
	cfg       *config.Config
	log       *zap.Logger
	transport http.RoundTripper
	sink      ReleaseSink
}

func NewScraper(cfg *config.Config, log *zap.Logger, transport http.RoundTripper, sink ReleaseSink) *Scraper {
	return &Scraper{cfg, log, transport, sink}
}

// Run scrapes the release calendar once and syncs the result into the sink.
func (s *Scraper) Run(ctx context.Context) error {
	releases, err := s.Scrape(ctx)
	if err != nil {
		return err
	}
	if len(releases) == 0 {
		s.log.Sugar().Warn("No releases scraped, site structure may have changed")
		return nil
	}
	return s.sink.Sync(ctx, releases)
}

// Scrape fetches the release calendar and extracts upcoming drops. A card
// that cannot be parsed is skipped, never fatal for the whole scrape.
func (s *Scraper) Scrape(ctx context.Context) (models.Releases, error) {
	var page string
	err := requests.URL(s.cfg.ScrapeURL).
		Transport(s.transport).
		ToString(&page).
		Fetch(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := htmlquery.Parse(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	cards := htmlquery.Find(doc, "//article[contains(@class, 'release')] | //div[contains(@class, 'release-item')]")
	releases := make(models.Releases, 0, len(cards))
	for _, card := range cards {
		release, err := s.parseCard(card)
		if err != nil {
			s.log.Sugar().Warnw("Skipping release card", "err", err)
			continue
		}
		releases = append(releases, release)
	}

	s.log.Sugar().Infof("Scraped %d releases", len(releases))
	return releases, nil
}

func (s *Scraper) parseCard(card *html.Node) (*models.Release, error) {
	name := SelectText(card, ".//h2 | .//h3")
	if name == "" {
		return nil, errors.New("card has no name")
	}

	dateText := SelectText(card, ".//time | .//span[contains(@class, 'date')]")
	dropAt, err := ParseDropDate(dateText, s.cfg.Location())
	if err != nil {
		return nil, fmt.Errorf("card '%s': %w", name, err)
	}

	url := ""
	if link := htmlquery.FindOne(card, ".//a[@href]"); link != nil {
		url = htmlquery.SelectAttr(link, "href")
	}

	return &models.Release{
		Slug:     Slugify(name) + "-" + dropAt.Format("2006-01-02"),
		Name:     name,
		Brand:    InferBrand(name),
		DropAt:   dropAt,
		URL:      url,
		ImageURL: ExtractImageURL(card),
	}, nil
}
