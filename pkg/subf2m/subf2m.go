// Package subf2m downloads English subtitles from subf2m.
package subf2m

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/samber/lo"
	"github.com/texttheater/golang-levenshtein/levenshtein"
	"go.uber.org/zap"

	"movie-recap/log"
	apperrors "movie-recap/pkg/errors"
	"movie-recap/pkg/scrape"
)

const (
	DefaultBaseURL = "https://subf2m.co"

	maxProfilePages = 12
	// slugs further apart than this are different movies
	maxSlugDistance = 2
)

// Client implements types.SubtitleSource.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, proxy *url.URL) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: scrape.NewClient(baseURL, proxy)}
}

// Slug turns a title into the site's URL slug: lowercase, spaces to dashes,
// apostrophes and parentheses removed, and roman sequel suffixes ii/iii/iv
// followed by -2/-3/-4.
func Slug(title string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(title) {
		switch r {
		case '\'', '(', ')':
			continue
		case ' ':
			sb.WriteRune('-')
		default:
			sb.WriteRune(r)
		}
	}
	slug := sb.String()

	switch {
	case strings.HasSuffix(slug, "iii"):
		slug += "-3"
	case strings.HasSuffix(slug, "ii"):
		slug += "-2"
	case strings.HasSuffix(slug, "iv"):
		slug += "-4"
	}
	return slug
}

// FetchSubtitles returns the raw .srt bytes for title.
func (c *Client) FetchSubtitles(ctx context.Context, title string) ([]byte, error) {
	logger := log.GetLogger().With(zap.String("title", title))
	slug := Slug(title)
	listPath := "/subtitles/" + slug + "/english"

	page, err := scrape.Get(ctx, c.http, listPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeScrapeFailed, "subtitle list page failed", err)
	}

	detail, ok := c.findDetailPage(ctx, slug, page, logger)
	if !ok {
		return nil, apperrors.WrapWithDetail(apperrors.CodeSubtitleNotFound, "no subtitle detail page", "slug="+slug, nil)
	}
	logger.Debug("subtitle detail page", zap.String("path", detail))

	detailPage, err := scrape.Get(ctx, c.http, detail)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeScrapeFailed, "subtitle detail page failed", err)
	}
	download, ok := lo.Find(scrape.Links(detailPage), func(href string) bool {
		return strings.HasSuffix(href, "download")
	})
	if !ok {
		return nil, apperrors.WrapWithDetail(apperrors.CodeSubtitleNotFound, "no download link", detail, nil)
	}

	archive, err := scrape.Get(ctx, c.http, download)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeScrapeFailed, "subtitle download failed", err)
	}
	srt, err := FirstSrt(archive)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSubtitleNotFound, "subtitle archive unusable", err)
	}
	logger.Info("subtitles downloaded", zap.Int("bytes", len(srt)))
	return srt, nil
}

// findDetailPage picks the first English detail link for slug on the list
// page, excluding english-german pages. Without one it walks up to
// maxProfilePages uploader profiles, then falls back to the closest slug on
// the list page.
func (c *Client) findDetailPage(ctx context.Context, slug string, page []byte, logger *zap.Logger) (string, bool) {
	prefix := "/subtitles/" + slug + "/english/"
	links := scrape.Links(page)

	if href, ok := lo.Find(links, func(href string) bool {
		return strings.HasPrefix(href, prefix) && !strings.Contains(href, "english-german")
	}); ok {
		return href, true
	}

	profiles := lo.Filter(links, func(href string, _ int) bool { return strings.HasPrefix(href, "/u/") })
	for i, profile := range profiles {
		if i >= maxProfilePages {
			break
		}
		body, err := scrape.Get(ctx, c.http, profile)
		if err != nil {
			logger.Debug("profile page failed", zap.String("path", profile), zap.Error(err))
			continue
		}
		if href, ok := lo.Find(scrape.Links(body), func(href string) bool { return strings.HasPrefix(href, prefix) }); ok {
			return href, true
		}
	}

	return closestDetail(slug, links)
}

// closestDetail ranks /subtitles/<other>/english/... links by edit distance
// between <other> and slug.
func closestDetail(slug string, links []string) (string, bool) {
	best, bestDist := "", maxSlugDistance+1
	for _, href := range links {
		parts := strings.Split(strings.Trim(href, "/"), "/")
		if len(parts) < 4 || parts[0] != "subtitles" || parts[2] != "english" || strings.Contains(href, "english-german") {
			continue
		}
		d := levenshtein.DistanceForStrings([]rune(parts[1]), []rune(slug), levenshtein.DefaultOptions)
		if d < bestDist {
			best, bestDist = href, d
		}
	}
	return best, best != ""
}

// FirstSrt returns the contents of the first .srt entry in a zip archive.
func FirstSrt(archive []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(path.Ext(f.Name), ".srt") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		if len(data) == 0 {
			continue
		}
		return data, nil
	}
	return nil, fmt.Errorf("archive has no .srt file")
}
