// Package contact recovers contact details from a company's landing page.
package contact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/ucformula/sponsor-scout/internal/logger"
	"github.com/ucformula/sponsor-scout/internal/sponsor"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	maxBodyBytes     = 5 << 20
)

var (
	contactLinkText = regexp.MustCompile(`(?i)contact|reach|get in touch`)
	aboutLinkText   = regexp.MustCompile(`(?i)about|about us|our story`)
	careersLinkText = regexp.MustCompile(`(?i)careers|jobs|join us|work with us`)

	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

	// Order matters: matches are appended platform by platform.
	socialPatterns = []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?facebook\.com/[a-zA-Z0-9.]+`),
		regexp.MustCompile(`https?://(?:www\.)?twitter\.com/[a-zA-Z0-9.]+`),
		regexp.MustCompile(`https?://(?:www\.)?linkedin\.com/(?:company|in)/[a-zA-Z0-9-]+`),
		regexp.MustCompile(`https?://(?:www\.)?instagram\.com/[a-zA-Z0-9.]+`),
	}
)

type Extractor struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
}

func New(log *zap.Logger) *Extractor {
	return &Extractor{
		logger:     logger.WithFields(log),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		UserAgent:  DefaultUserAgent,
	}
}

// Extract fetches pageURL and scans it for contact details. It never fails:
// a page that cannot be fetched yields an empty ContactInfo.
func (e *Extractor) Extract(ctx context.Context, pageURL string) sponsor.ContactInfo {
	body, err := e.fetch(ctx, pageURL)
	if err != nil {
		e.logger.Warn("fetching sponsor page failed", zap.String("url", pageURL), zap.Error(err))
		return sponsor.ContactInfo{}
	}

	info, err := Parse(pageURL, body)
	if err != nil {
		e.logger.Warn("parsing sponsor page failed", zap.String("url", pageURL), zap.Error(err))
		return sponsor.ContactInfo{}
	}

	e.logger.Debug("extracted contact info",
		zap.String("url", pageURL),
		zap.Bool("email", info.Email != ""),
		zap.Bool("phone", info.Phone != ""),
		zap.Int("social_media", len(info.SocialMedia)),
	)

	return info
}

func (e *Extractor) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", e.UserAgent)

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

// Parse extracts contact details from an already fetched page.
func Parse(pageURL string, body []byte) (sponsor.ContactInfo, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return sponsor.ContactInfo{}, err
	}

	base := baseURL(pageURL)
	raw := string(body)

	info := sponsor.ContactInfo{
		ContactPage: firstLink(doc, contactLinkText, base),
		AboutPage:   firstLink(doc, aboutLinkText, base),
		CareersPage: firstLink(doc, careersLinkText, base),
		Email:       emailPattern.FindString(raw),
		Phone:       phonePattern.FindString(raw),
		SocialMedia: []string{},
	}

	for _, pattern := range socialPatterns {
		info.SocialMedia = append(info.SocialMedia, pattern.FindAllString(raw, -1)...)
	}

	return info, nil
}

// firstLink returns the href of the first anchor whose text matches pattern.
func firstLink(doc *goquery.Document, pattern *regexp.Regexp, base string) string {
	var link string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !pattern.MatchString(strings.TrimSpace(s.Text())) {
			return true
		}
		href, _ := s.Attr("href")
		link = resolve(href, base)
		return false
	})
	return link
}

func resolve(href, base string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return base + href
	}
	return base + "/" + href
}

// baseURL keeps only scheme and host of the page URL.
func baseURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host)
}
