package sources

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pulsefeed/pulsefeed/internal/common"
	"github.com/pulsefeed/pulsefeed/internal/models"
	"github.com/ternarybob/arbor"
)

// DefaultFrontPageTimeout is the default HTTP timeout for the front-page fetch.
const DefaultFrontPageTimeout = 10 * time.Second

// FrontPageClient scrapes repeating item blocks from an HTML front page.
// One malformed block is skipped and logged; it never aborts the whole fetch.
type FrontPageClient struct {
	pageURL    string
	userAgent  string
	httpClient *http.Client
	logger     arbor.ILogger
}

// FrontPageOption configures the FrontPageClient.
type FrontPageOption func(*FrontPageClient)

// WithFrontPageHTTPClient sets a custom HTTP client.
func WithFrontPageHTTPClient(httpClient *http.Client) FrontPageOption {
	return func(c *FrontPageClient) {
		c.httpClient = httpClient
	}
}

// NewFrontPageClient creates a front-page scraper from configuration.
func NewFrontPageClient(config common.FrontPageSourceConfig, logger arbor.ILogger, opts ...FrontPageOption) *FrontPageClient {
	c := &FrontPageClient{
		pageURL:   config.URL,
		userAgent: config.UserAgent,
		httpClient: &http.Client{
			Timeout: common.ParseDurationOr(config.RequestTimeout, DefaultFrontPageTimeout),
		},
		logger: logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch retrieves the front page and extracts articles in page order.
func (c *FrontPageClient) Fetch(ctx context.Context) ([]*models.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL, nil)
	if err != nil {
		return nil, &FetchError{Source: "frontpage", Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug().
		Str("url", c.pageURL).
		Msg("Front page request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Source: "frontpage", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Source: "frontpage", StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: "frontpage", Err: err}
	}

	baseURL, err := url.Parse(c.pageURL)
	if err != nil {
		baseURL = nil
	}

	now := time.Now().UTC()
	var articles []*models.Article
	skipped := 0

	doc.Find("tr.athing").Each(func(i int, row *goquery.Selection) {
		article, ok := c.extractItem(row, baseURL, i+1)
		if !ok {
			skipped++
			return
		}
		article.CapturedAt = now
		articles = append(articles, article)
	})

	if skipped > 0 {
		c.logger.Warn().
			Int("skipped", skipped).
			Msg("Malformed item blocks skipped during front page extraction")
	}

	c.logger.Debug().
		Int("count", len(articles)).
		Msg("Front page articles normalized")

	return articles, nil
}

// extractItem pulls title/link/author/score from one item row and its sibling
// metadata row. Returns ok=false for blocks missing the required title link.
func (c *FrontPageClient) extractItem(row *goquery.Selection, baseURL *url.URL, position int) (*models.Article, bool) {
	titleLink := row.Find("span.titleline > a").First()
	title := strings.TrimSpace(titleLink.Text())
	href, hasHref := titleLink.Attr("href")
	if title == "" || !hasHref || href == "" {
		c.logger.Debug().
			Int("position", position).
			Msg("Skipping item block without title link")
		return nil, false
	}

	link := resolveLink(baseURL, href)

	article := &models.Article{
		Title:    title,
		Link:     link,
		Site:     strings.TrimSpace(row.Find("span.sitebit a span.sitestr").First().Text()),
		Position: position,
	}
	if article.Site == "" {
		if u, err := url.Parse(link); err == nil {
			article.Site = u.Host
		}
	}

	// Score, author, and comment count live in the sibling subtext row.
	subtext := row.Next().Find("td.subtext")
	article.Author = strings.TrimSpace(subtext.Find("a.hnuser").First().Text())
	article.Score = leadingInt(subtext.Find("span.score").First().Text())

	subtext.Find("a").Each(func(_ int, a *goquery.Selection) {
		text := strings.TrimSpace(a.Text())
		if strings.HasSuffix(text, "comments") || strings.HasSuffix(text, "comment") {
			article.Comments = leadingInt(text)
		}
	})

	return article, true
}

// resolveLink resolves href against the page origin when it is relative.
func resolveLink(baseURL *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() || baseURL == nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// leadingInt parses the integer prefix of strings like "142 points".
func leadingInt(s string) int {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}
