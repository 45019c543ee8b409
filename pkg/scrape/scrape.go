// Package scrape holds the HTTP client and HTML helpers shared by the
// subtitle and script scrapers.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

const (
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15"

	ConnectTimeout = 30 * time.Second
	RequestTimeout = 120 * time.Second
)

// NewClient returns a resty client with a browser user agent, a cookie jar
// and redirect following.
func NewClient(baseURL string, proxy *url.URL) *resty.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: ConnectTimeout}).DialContext,
	}
	if proxy != nil {
		transport.Proxy = http.ProxyURL(proxy)
	}
	return resty.New().
		SetBaseURL(baseURL).
		SetTransport(transport).
		SetTimeout(RequestTimeout).
		SetHeader("User-Agent", UserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
}

// StatusError reports a non-2xx page.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Status)
}

// Get fetches path and returns the body of a 2xx response.
func Get(ctx context.Context, c *resty.Client, path string) ([]byte, error) {
	resp, err := c.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &StatusError{URL: resp.Request.URL, Status: resp.StatusCode()}
	}
	return resp.Body(), nil
}

// Links returns every href attribute in document order.
func Links(page []byte) []string {
	var links []string
	z := html.NewTokenizer(bytes.NewReader(page))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return links
		case html.StartTagToken, html.SelfClosingTagToken:
			if _, hasAttr := z.TagName(); !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "href" {
					links = append(links, string(val))
				}
				if !more {
					break
				}
			}
		}
	}
}

// Text converts an HTML fragment to plain text. Tags are dropped, <br>
// becomes a newline and entities are decoded.
func Text(fragment []byte) string {
	var sb strings.Builder
	z := html.NewTokenizer(bytes.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.ReplaceAll(sb.String(), "\u00a0", " ")
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				sb.WriteByte('\n')
			}
		}
	}
}
