package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultEndpoint serves the Hanover menu as a JSON array.
const DefaultEndpoint = "https://64b2e33138e74e386d55b072.mockapi.io/api/hanover"

// Source produces the full remote item set.
type Source interface {
	Fetch(ctx context.Context) ([]MenuItem, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]MenuItem, error)

func (f SourceFunc) Fetch(ctx context.Context) ([]MenuItem, error) { return f(ctx) }

// HTTPSource fetches the menu with a single GET. Backoffs enables bounded
// retry on network errors, 5xx and 429; it is empty by default.
type HTTPSource struct {
	URL      string
	Client   *http.Client
	Backoffs []time.Duration
}

// RetryBackoffs is the bounded retry schedule used by batch tools.
var RetryBackoffs = []time.Duration{0, 500 * time.Millisecond, 1 * time.Second, 2 * time.Second}

// ---------- HTTP ----------

func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]MenuItem, error) {
	if s.URL == "" {
		return nil, fmt.Errorf("menu endpoint empty")
	}
	client := s.Client
	if client == nil {
		client = NewHTTPClient(25 * time.Second)
	}
	backoffs := s.Backoffs
	if len(backoffs) == 0 {
		backoffs = []time.Duration{0}
	}

	var resp *http.Response
	for i, d := range backoffs {
		if d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json, text/html;q=0.8")

		resp, err = client.Do(req)
		if err != nil {
			if i < len(backoffs)-1 {
				continue
			}
			return nil, fmt.Errorf("fetch menu: %w", err)
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			_ = resp.Body.Close()
			if i < len(backoffs)-1 {
				continue
			}
			return nil, fmt.Errorf("fetch menu: server error: %s", resp.Status)
		}
		break
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch menu: bad status %d: %s", resp.StatusCode, string(b))
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "text/html" {
		return ParseCards(resp.Body, resp.Request.URL)
	}
	return DecodeJSON(resp.Body)
}

// ---------- Decoding ----------

// DecodeJSON reads a JSON array of menu records.
func DecodeJSON(r io.Reader) ([]MenuItem, error) {
	var items []MenuItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}
	return items, nil
}

var spaceRe = regexp.MustCompile(`\s+`)

func textCondense(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func resolve(base *url.URL, ref string) string {
	if ref == "" || base == nil {
		return ref
	}
	ru, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(ru).String()
}

// ParseCards scrapes a rendered menu page: every ".item" card contributes
// one item. The category comes from data-category, falling back to the
// category pill. Image sources are resolved against base.
func ParseCards(r io.Reader, base *url.URL) ([]MenuItem, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse menu page: %w", err)
	}

	var out []MenuItem
	doc.Find(".item").Each(func(_ int, card *goquery.Selection) {
		it := MenuItem{
			Name: textCondense(card.Find(".card-title").First().Text()),
			Desc: textCondense(card.Find(".card-text").First().Text()),
		}
		if t, ok := card.Attr("data-category"); ok {
			it.Type = strings.TrimSpace(t)
		}
		if it.Type == "" {
			it.Type = textCondense(card.Find(".category-pill").First().Text())
		}
		if id, ok := card.Attr("data-id"); ok {
			it.ID, _ = strconv.Atoi(strings.TrimSpace(id))
		}
		if img := card.Find("img").First(); img.Length() != 0 {
			if src, ok := img.Attr("src"); ok {
				it.URL = resolve(base, src)
			}
			if it.Name == "" {
				it.Name, _ = img.Attr("alt")
			}
		}
		if it.Name == "" {
			return
		}
		out = append(out, it)
	})
	return out, nil
}
