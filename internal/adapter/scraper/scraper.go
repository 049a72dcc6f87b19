package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"harvest/config"
	"harvest/internal/adapter/cache"
	"harvest/internal/adapter/fetch"
	"harvest/internal/domain"
	"harvest/internal/port"
)

// Scraper reads one configured faculty directory site.
type Scraper struct {
	client *resty.Client
	pages  *cache.PageCache
	site   config.SiteConfig
	rules  *Rules
}

var _ port.FacultyScraper = (*Scraper)(nil)

func New(client *resty.Client, pages *cache.PageCache, site config.SiteConfig) (*Scraper, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}
	rules, err := NewRules(site.Rules)
	if err != nil {
		return nil, err
	}
	return &Scraper{
		client: client,
		pages:  pages,
		site:   site,
		rules:  rules,
	}, nil
}

// DirectoryURL is the page listing every profile.
func (s *Scraper) DirectoryURL() (string, error) {
	root, err := url.Parse(s.site.RootURL)
	if err != nil {
		return "", fmt.Errorf("invalid root url: %w", err)
	}
	return root.JoinPath(s.site.DirectoryPath).String(), nil
}

func (s *Scraper) document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, ok := s.pages.Get(pageURL)
	if !ok {
		var err error
		body, err = fetch.Get(ctx, s.client, pageURL)
		if err != nil {
			return nil, err
		}
		s.pages.Put(pageURL, body)
		slog.DebugContext(ctx, "fetched page", "url", pageURL, "bytes", len(body))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}
	return doc, nil
}

func (s *Scraper) ProfileLinks(ctx context.Context) ([]string, error) {
	dirURL, err := s.DirectoryURL()
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(dirURL)
	if err != nil {
		return nil, err
	}

	doc, err := s.document(ctx, dirURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load directory: %w", err)
	}

	var links []string
	doc.Find(s.site.Selectors.ProfileLinks).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			slog.WarnContext(ctx, "skipping malformed profile link", "href", href, "err", err)
			return
		}
		links = append(links, base.ResolveReference(ref).String())
	})

	if len(links) == 0 {
		return nil, fmt.Errorf("%w: profile links %q on %s", domain.ErrSelectorNoMatch, s.site.Selectors.ProfileLinks, dirURL)
	}
	return links, nil
}

func (s *Scraper) Profile(ctx context.Context, profileURL string) (domain.Faculty, error) {
	doc, err := s.document(ctx, profileURL)
	if err != nil {
		return domain.Faculty{}, err
	}
	sel := s.site.Selectors

	title := firstOwnText(doc.Find(sel.Title))
	if title == "" {
		return domain.Faculty{}, fmt.Errorf("%w: title %q on %s", domain.ErrSelectorNoMatch, sel.Title, profileURL)
	}
	first, last, titleDegree, err := ParseTitle(title)
	if err != nil {
		return domain.Faculty{}, fmt.Errorf("%s: %w", profileURL, err)
	}

	var fallback []string
	if sel.DepartmentFallback != "" {
		fallback = ownText(doc.Find(sel.DepartmentFallback))
	}
	var deptTexts []string
	if sel.Department != "" {
		deptTexts = ownText(doc.Find(sel.Department))
	}

	faculty := domain.Faculty{
		FirstName:  first,
		LastName:   last,
		University: s.site.University,
		Department: s.rules.Department(deptTexts, fallback),
		GradDegree: titleDegree,
		ProfileURL: profileURL,
	}

	if sel.Education == "" {
		return faculty, nil
	}
	items := doc.Find(sel.Education)
	if items.Length() == 0 {
		return faculty, nil
	}

	firstItem := items.First()
	firstLine := firstOwnText(firstItem)
	if firstLine == "" {
		// No education text of its own; keep the degree from the title.
		return faculty, nil
	}
	lastItem := firstItem.Parent().ChildrenFiltered("li").Last()
	if lastItem.Length() == 0 {
		lastItem = firstItem
	}

	line := s.rules.HighestEducation(firstLine, firstOwnText(lastItem))
	faculty.GradDegree, faculty.GradSchool = s.rules.ParseEducation(line)

	return faculty, nil
}
