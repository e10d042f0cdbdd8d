package datasource

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/rfef/internal/logger"
	"github.com/richard-senior/rfef/pkg/league"
	"github.com/richard-senior/rfef/pkg/transport"
)

const BDFutbolURL = "https://www.bdfutbol.com/es/t/t2025-261rf1.html?tab=results"

var datePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

// ScrapedMatch is one row of the BDFutbol results table. Ids are 0 when the
// name could not be resolved.
type ScrapedMatch struct {
	HomeTeam   string `json:"homeTeam"`
	AwayTeam   string `json:"awayTeam"`
	HomeGoals  int    `json:"homeGoals"`
	AwayGoals  int    `json:"awayGoals"`
	HomeTeamID int    `json:"homeTeamId"`
	AwayTeamID int    `json:"awayTeamId"`
}

type ScrapedMatchday struct {
	Matchday  int            `json:"matchday"`
	Matches   []ScrapedMatch `json:"matches"`
	ScrapedAt time.Time      `json:"scrapedAt"`
}

// BDFutbolScraper reads results from the BDFutbol season page
type BDFutbolScraper struct {
	http   *transport.Client
	url    string
	roster *league.Roster
	now    func() time.Time
}

func NewBDFutbolScraper(client *transport.Client, roster *league.Roster) *BDFutbolScraper {
	return &BDFutbolScraper{http: client, url: BDFutbolURL, roster: roster, now: time.Now}
}

// WithURL points the scraper at another page
func (s *BDFutbolScraper) WithURL(u string) *BDFutbolScraper {
	s.url = u
	return s
}

// ScrapeMatchday fetches the season page and parses one matchday from it
func (s *BDFutbolScraper) ScrapeMatchday(ctx context.Context, matchday int) (ScrapedMatchday, error) {
	page, err := s.http.GetHtml(ctx, s.url)
	if err != nil {
		return ScrapedMatchday{}, fmt.Errorf("failed to fetch BDFutbol: %w", err)
	}
	matches, err := s.ParseMatchday(page, matchday)
	if err != nil {
		return ScrapedMatchday{}, err
	}
	return ScrapedMatchday{Matchday: matchday, Matches: matches, ScrapedAt: s.now().UTC()}, nil
}

// FinishedFixtures returns the scraped matches whose teams both resolved
func (s *BDFutbolScraper) FinishedFixtures(ctx context.Context, round int) ([]FinishedFixture, error) {
	md, err := s.ScrapeMatchday(ctx, round)
	if err != nil {
		return nil, err
	}
	var out []FinishedFixture
	for _, m := range md.Matches {
		if m.HomeTeamID == 0 || m.AwayTeamID == 0 {
			logger.Warn("No mapping for scraped teams", m.HomeTeam, m.AwayTeam)
			continue
		}
		out = append(out, FinishedFixture{
			HomeTeamID: m.HomeTeamID,
			AwayTeamID: m.AwayTeamID,
			HomeGoals:  m.HomeGoals,
			AwayGoals:  m.AwayGoals,
			HomeName:   m.HomeTeam,
			AwayName:   m.AwayTeam,
		})
	}
	return out, nil
}

// ParseMatchday walks the page in document order. An element carrying
// data-jornada starts a matchday; every row after it that has two
// .resultat-gols cells belongs to that matchday until the next marker.
func (s *BDFutbolScraper) ParseMatchday(page []byte, matchday int) ([]ScrapedMatch, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse BDFutbol page: %w", err)
	}

	want := strconv.Itoa(matchday)
	current := ""
	var matches []ScrapedMatch
	doc.Find("[data-jornada], tr").Each(func(i int, sel *goquery.Selection) {
		if j, ok := sel.Attr("data-jornada"); ok {
			current = strings.TrimSpace(j)
		}
		if current != want || goquery.NodeName(sel) != "tr" {
			return
		}
		if m, ok := s.parseRow(sel); ok {
			matches = append(matches, m)
		}
	})

	if len(matches) == 0 {
		logger.Info("No data found for matchday", matchday)
	}
	return matches, nil
}

func (s *BDFutbolScraper) parseRow(row *goquery.Selection) (ScrapedMatch, bool) {
	var goals []int
	row.Find(".resultat-gols").Each(func(i int, g *goquery.Selection) {
		if n, err := strconv.Atoi(strings.TrimSpace(g.Text())); err == nil {
			goals = append(goals, n)
		}
	})
	if len(goals) < 2 {
		return ScrapedMatch{}, false
	}

	var teams []string
	row.Find("a").Each(func(i int, a *goquery.Selection) {
		if a.Find(".resultat-gols").Length() > 0 {
			return
		}
		name := strings.TrimSpace(a.Text())
		if name == "" || datePattern.MatchString(name) {
			return
		}
		teams = append(teams, name)
	})
	if len(teams) < 2 {
		return ScrapedMatch{}, false
	}

	m := ScrapedMatch{
		HomeTeam:  teams[0],
		AwayTeam:  teams[len(teams)-1],
		HomeGoals: goals[0],
		AwayGoals: goals[1],
	}
	m.HomeTeamID, _ = s.roster.Resolve(m.HomeTeam)
	m.AwayTeamID, _ = s.roster.Resolve(m.AwayTeam)
	return m, true
}
