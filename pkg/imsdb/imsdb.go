// Package imsdb fetches screenplay text from IMSDb.
package imsdb

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"unicode"

	"github.com/go-resty/resty/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"movie-recap/log"
	apperrors "movie-recap/pkg/errors"
	"movie-recap/pkg/scrape"
)

const (
	DefaultBaseURL = "https://imsdb.com"
	MinScriptChars = 1000
)

// Client implements types.ScriptSource.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, proxy *url.URL) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: scrape.NewClient(baseURL, proxy)}
}

// CandidatePaths lists the URL paths tried for title, in order, without
// duplicates.
func CandidatePaths(title string) []string {
	dashed := strings.ReplaceAll(title, " ", "-")
	noParens := strings.NewReplacer("(", "", ")", "").Replace(dashed)
	loose := looseTitle(title)

	paths := []string{
		"/scripts/" + dashed + ".html",
		"/scripts/" + noParens + ".html",
		"/scripts/" + loose + ".html",
		"/scripts/" + strings.ToLower(dashed) + ".html",
		"/scripts/" + strings.ToLower(noParens) + ".html",
		"/scripts/" + strings.ToLower(loose) + ".html",
		"/Movie%20Scripts/" + url.PathEscape(title) + "%20Script.html",
	}
	return lo.Uniq(paths)
}

// looseTitle keeps ASCII letters, digits, '-' and '_' after turning spaces
// into dashes.
func looseTitle(title string) string {
	var sb strings.Builder
	for _, r := range title {
		if r == ' ' {
			r = '-'
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// FetchScript tries every candidate page and returns the first script text
// of at least MinScriptChars bytes.
func (c *Client) FetchScript(ctx context.Context, title string) (string, error) {
	logger := log.GetLogger().With(zap.String("title", title))
	tooShort := false

	for _, p := range CandidatePaths(title) {
		page, err := scrape.Get(ctx, c.http, p)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			logger.Debug("imsdb attempt failed", zap.String("path", p), zap.Error(err))
			continue
		}

		block, ok := ScriptBlock(page)
		if !ok {
			logger.Debug("imsdb attempt failed", zap.String("path", p), zap.String("reason", "script block not found"))
			continue
		}
		text := scrape.Text(block)
		if len(text) < MinScriptChars {
			tooShort = true
			logger.Debug("imsdb attempt failed", zap.String("path", p), zap.Int("chars", len(text)))
			continue
		}

		logger.Info("script downloaded", zap.String("path", p), zap.Int("chars", len(text)))
		return text, nil
	}

	if tooShort {
		return "", apperrors.ErrScriptTooShort
	}
	return "", apperrors.ErrScriptNotFound
}

// ScriptBlock returns the raw HTML inside the first <pre> element, or else
// inside the element with class "scrtext" up to the first closing td or div.
func ScriptBlock(page []byte) ([]byte, bool) {
	if block, ok := collect(page, isTag("pre"), "pre"); ok {
		return block, true
	}
	return collect(page, hasClass("scrtext"), "td", "div")
}

type startMatcher func(z *html.Tokenizer) bool

func isTag(name string) startMatcher {
	return func(z *html.Tokenizer) bool {
		tag, _ := z.TagName()
		return string(tag) == name
	}
}

func hasClass(class string) startMatcher {
	return func(z *html.Tokenizer) bool {
		_, hasAttr := z.TagName()
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			if string(key) == "class" && lo.Contains(strings.Fields(string(val)), class) {
				return true
			}
		}
		return false
	}
}

// collect gathers raw tokens after the first start tag accepted by match
// until an end tag named in stops.
func collect(page []byte, match startMatcher, stops ...string) ([]byte, bool) {
	z := html.NewTokenizer(bytes.NewReader(page))
	inside := false
	var out bytes.Buffer
	for {
		tt := z.Next()
		switch {
		case tt == html.ErrorToken:
			return nil, false
		case !inside:
			if tt == html.StartTagToken && match(z) {
				inside = true
			}
		case tt == html.EndTagToken:
			raw := append([]byte(nil), z.Raw()...)
			if name, _ := z.TagName(); lo.Contains(stops, string(name)) {
				return out.Bytes(), out.Len() > 0
			}
			out.Write(raw)
		default:
			out.Write(z.Raw())
		}
	}
}
