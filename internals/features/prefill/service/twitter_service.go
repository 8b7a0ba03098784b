// Package service extracts prefill data for submission forms from public
// social-post embeds.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/antonholmquist/jason"
	"github.com/gofiber/fiber/v2"
	"github.com/k3a/html2text"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"archive_backend/internals/metrics"
)

const (
	SourceTweet   = "tweet"
	SourceProfile = "profile"

	cacheTTL        = 10 * time.Minute
	maxResponseBody = 4 << 20
	userAgent       = "archive-prefill/1.0"
)

var (
	ErrInvalidPostURL = errors.New("invalid post url")
	ErrInvalidHandle  = errors.New("invalid handle")
	ErrNotFound       = errors.New("not found upstream")
)

var (
	postURLPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.|mobile\.)?(?:twitter\.com|x\.com)/([A-Za-z0-9_]{1,15})/status(?:es)?/(\d{1,25})`)
	postIDPattern  = regexp.MustCompile(`^\d{1,25}$`)
	handlePattern  = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)
	hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
)

// Prefill is whatever could be extracted; missing fields stay empty.
type Prefill struct {
	Source       string   `json:"source"`
	URL          string   `json:"url,omitempty"`
	AuthorName   string   `json:"author_name,omitempty"`
	Handle       string   `json:"handle,omitempty"`
	Bio          string   `json:"bio,omitempty"`
	ProfileImage string   `json:"profile_image,omitempty"`
	Text         string   `json:"text,omitempty"`
	Hashtags     []string `json:"hashtags"`
	Images       []string `json:"images"`
	Videos       []string `json:"videos"`
}

func newPrefill(source string) *Prefill {
	return &Prefill{Source: source, Hashtags: []string{}, Images: []string{}, Videos: []string{}}
}

type Options struct {
	SyndicationBaseURL string
	ProfileBaseURL     string
	Client             *http.Client
	// Requests per second towards the upstream; burst is 3.
	RatePerSecond float64
}

type TwitterService struct {
	syndicationBase string
	profileBase     string
	client          *http.Client
	limiter         *rate.Limiter
	cache           *cache.Cache
	metrics         *metrics.Metrics
	log             *zap.Logger
}

func NewTwitterService(opts Options, m *metrics.Metrics, log *zap.Logger) *TwitterService {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	rps := opts.RatePerSecond
	if rps <= 0 {
		rps = 1
	}
	return &TwitterService{
		syndicationBase: strings.TrimRight(opts.SyndicationBaseURL, "/"),
		profileBase:     strings.TrimRight(opts.ProfileBaseURL, "/"),
		client:          client,
		limiter:         rate.NewLimiter(rate.Limit(rps), 3),
		cache:           cache.New(cacheTTL, 2*cacheTTL),
		metrics:         m,
		log:             log.Named("prefill"),
	}
}

// ParsePostURL returns the handle (possibly empty) and numeric id of a post link.
func ParsePostURL(raw string) (handle, id string, err error) {
	raw = strings.TrimSpace(raw)
	if postIDPattern.MatchString(raw) {
		return "", raw, nil
	}
	m := postURLPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", "", ErrInvalidPostURL
	}
	return m[1], m[2], nil
}

// NormalizeHandle strips a leading @ or profile URL.
func NormalizeHandle(raw string) (string, error) {
	h := strings.TrimSpace(raw)
	if u, err := url.Parse(h); err == nil && u.Host != "" {
		h = strings.Trim(u.Path, "/")
		if i := strings.IndexByte(h, '/'); i >= 0 {
			h = h[:i]
		}
	}
	h = strings.TrimPrefix(h, "@")
	if !handlePattern.MatchString(h) {
		return "", ErrInvalidHandle
	}
	return h, nil
}

// syndicationToken is the token the embed widget sends with tweet-result:
// (id / 1e15 * pi) in base 36 with zeros and the point removed.
func syndicationToken(id string) string {
	n, err := strconv.ParseFloat(id, 64)
	if err != nil {
		return "0"
	}
	v := n / 1e15 * math.Pi
	whole := math.Floor(v)
	frac := v - whole

	var b strings.Builder
	b.WriteString(strconv.FormatInt(int64(whole), 36))
	for i := 0; i < 11 && frac > 0; i++ {
		frac *= 36
		d := int64(frac)
		b.WriteString(strconv.FormatInt(d, 36))
		frac -= float64(d)
	}
	tok := strings.ReplaceAll(b.String(), "0", "")
	if tok == "" {
		return "0"
	}
	return tok
}

// Tweet returns prefill data for a post link.
func (s *TwitterService) Tweet(ctx context.Context, rawURL string) (*Prefill, error) {
	handle, id, err := ParsePostURL(rawURL)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid post url")
	}
	key := "tweet:" + id
	if v, ok := s.cache.Get(key); ok {
		return v.(*Prefill), nil
	}

	q := url.Values{}
	q.Set("id", id)
	q.Set("lang", "en")
	q.Set("token", syndicationToken(id))
	body, err := s.fetch(ctx, s.syndicationBase+"/tweet-result?"+q.Encode())
	if err != nil {
		return nil, s.upstreamError(SourceTweet, id, err)
	}

	obj, err := jason.NewObjectFromBytes(body)
	if err != nil {
		return nil, s.upstreamError(SourceTweet, id, fmt.Errorf("decode tweet: %w", err))
	}
	p := parseTweet(obj)
	if p.Handle == "" {
		p.Handle = handle
	}
	if p.Handle != "" {
		p.URL = "https://x.com/" + p.Handle + "/status/" + id
	}

	s.metrics.ObservePrefill(SourceTweet, true)
	s.cache.Set(key, p, cache.DefaultExpiration)
	return p, nil
}

func parseTweet(obj *jason.Object) *Prefill {
	p := newPrefill(SourceTweet)

	if text, err := obj.GetString("text"); err == nil {
		p.Text = cleanText(text)
	}
	if user, err := obj.GetObject("user"); err == nil {
		p.AuthorName, _ = user.GetString("name")
		p.Handle, _ = user.GetString("screen_name")
		p.ProfileImage, _ = user.GetString("profile_image_url_https")
		if bio, err := user.GetString("description"); err == nil {
			p.Bio = cleanText(bio)
		}
	}

	if tags, err := obj.GetObjectArray("entities", "hashtags"); err == nil {
		for _, t := range tags {
			if s, err := t.GetString("text"); err == nil && s != "" {
				p.Hashtags = appendUnique(p.Hashtags, s)
			}
		}
	}
	if len(p.Hashtags) == 0 {
		p.Hashtags = extractHashtags(p.Text)
	}

	if media, err := obj.GetObjectArray("mediaDetails"); err == nil {
		for _, m := range media {
			typ, _ := m.GetString("type")
			switch typ {
			case "photo":
				if u, err := m.GetString("media_url_https"); err == nil {
					p.Images = appendUnique(p.Images, u)
				}
			case "video", "animated_gif":
				if u := bestVideoVariant(m); u != "" {
					p.Videos = appendUnique(p.Videos, u)
				}
			}
		}
	}
	if len(p.Images) == 0 {
		if photos, err := obj.GetObjectArray("photos"); err == nil {
			for _, ph := range photos {
				if u, err := ph.GetString("url"); err == nil {
					p.Images = appendUnique(p.Images, u)
				}
			}
		}
	}
	return p
}

// bestVideoVariant picks the highest-bitrate mp4.
func bestVideoVariant(m *jason.Object) string {
	variants, err := m.GetObjectArray("video_info", "variants")
	if err != nil {
		return ""
	}
	best, bestRate := "", int64(-1)
	for _, v := range variants {
		ct, _ := v.GetString("content_type")
		if ct != "video/mp4" {
			continue
		}
		u, err := v.GetString("url")
		if err != nil {
			continue
		}
		br, _ := v.GetInt64("bitrate")
		if br > bestRate {
			best, bestRate = u, br
		}
	}
	return best
}

// Profile returns prefill data for an account handle.
func (s *TwitterService) Profile(ctx context.Context, rawHandle string) (*Prefill, error) {
	handle, err := NormalizeHandle(rawHandle)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid handle")
	}
	key := "profile:" + strings.ToLower(handle)
	if v, ok := s.cache.Get(key); ok {
		return v.(*Prefill), nil
	}

	body, err := s.fetch(ctx, s.profileBase+"/srv/timeline-profile/screen-name/"+url.PathEscape(handle))
	if err != nil {
		return nil, s.upstreamError(SourceProfile, handle, err)
	}

	p := newPrefill(SourceProfile)
	p.Handle = handle
	p.URL = "https://x.com/" + handle
	if raw := findNextData(body); raw != nil {
		if obj, err := jason.NewObjectFromBytes(raw); err == nil {
			fillProfile(p, obj)
		} else {
			s.log.Debug("profile payload not JSON", zap.String("handle", handle), zap.Error(err))
		}
	}

	s.metrics.ObservePrefill(SourceProfile, true)
	s.cache.Set(key, p, cache.DefaultExpiration)
	return p, nil
}

func fillProfile(p *Prefill, obj *jason.Object) {
	entries, err := obj.GetObjectArray("props", "pageProps", "timeline", "entries")
	if err != nil {
		return
	}
	for _, e := range entries {
		tweet, err := e.GetObject("content", "tweet")
		if err != nil {
			continue
		}
		user, err := tweet.GetObject("user")
		if err != nil {
			continue
		}
		screen, _ := user.GetString("screen_name")
		if !strings.EqualFold(screen, p.Handle) {
			continue
		}
		p.AuthorName, _ = user.GetString("name")
		p.ProfileImage, _ = user.GetString("profile_image_url_https")
		if bio, err := user.GetString("description"); err == nil {
			p.Bio = cleanText(bio)
			p.Hashtags = extractHashtags(p.Bio)
		}
		return
	}
}

// findNextData returns the contents of <script id="__NEXT_DATA__">, or nil.
func findNextData(page []byte) []byte {
	doc, err := html.Parse(strings.NewReader(string(page)))
	if err != nil {
		return nil
	}
	var found []byte
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" && attr(n, "id") == "__NEXT_DATA__" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				found = []byte(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func (s *TwitterService) fetch(ctx context.Context, target string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/html;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	return body, nil
}

func (s *TwitterService) upstreamError(source, ref string, err error) error {
	s.metrics.ObservePrefill(source, false)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, source+" not found")
	}
	s.log.Warn("prefill upstream failed", zap.String("source", source), zap.String("ref", ref), zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, "prefill failed")
}

// cleanText decodes entities, drops markup and collapses whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(html2text.HTML2Text(s)), " ")
}

func extractHashtags(text string) []string {
	out := []string{}
	for _, m := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		out = appendUnique(out, m[1])
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, e := range list {
		if e == v {
			return list
		}
	}
	return append(list, v)
}
