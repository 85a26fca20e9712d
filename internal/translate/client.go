package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"

	"substream/internal/logging"
	"substream/internal/services"
	"substream/internal/subtitles"
)

// Options configures a translation client.
type Options struct {
	// Endpoint is the translation service URL.
	Endpoint string
	// Source and Target are language codes; Source may be "auto".
	Source string
	Target string
	// ChunkBytes is the per-request text budget.
	ChunkBytes int
	// RequestDelay is the fixed pause enforced between network calls.
	RequestDelay time.Duration
	// Timeout bounds one HTTP round trip.
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.ChunkBytes <= 0 {
		o.ChunkBytes = 1000
	}
	if o.RequestDelay <= 0 {
		o.RequestDelay = 1200 * time.Millisecond
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Source == "" {
		o.Source = "auto"
	}
	return o
}

// NormalizeLanguage canonicalizes a language code ("auto" passes through).
func NormalizeLanguage(code string) (string, error) {
	if code == "" || code == "auto" {
		return "auto", nil
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "translate", "parse language",
			fmt.Sprintf("unknown language code %q", code), err)
	}
	base, _ := tag.Base()
	return base.String(), nil
}

// Client translates subtitle files. One client serves one language pair.
type Client struct {
	opts        Options
	http        *http.Client
	cache       *Cache
	log         *slog.Logger
	lastRequest time.Time

	// sleep is swapped in tests to observe pacing without waiting.
	sleep func(context.Context, time.Duration) error
}

// NewClient validates the language pair and builds a client.
func NewClient(opts Options, cache *Cache, logger *slog.Logger) (*Client, error) {
	opts = opts.withDefaults()
	if opts.Endpoint == "" {
		return nil, services.Wrap(services.ErrConfiguration, "translate", "create client",
			"translation endpoint not configured", nil)
	}
	source, err := NormalizeLanguage(opts.Source)
	if err != nil {
		return nil, err
	}
	target, err := NormalizeLanguage(opts.Target)
	if err != nil {
		return nil, err
	}
	if target == "auto" {
		return nil, services.Wrap(services.ErrConfiguration, "translate", "create client",
			"target language is required", nil)
	}
	opts.Source = source
	opts.Target = target

	if logger == nil {
		logger = logging.NewNop()
	}
	if cache == nil {
		cache = NewCache("", nil)
	}
	return &Client{
		opts:  opts,
		http:  &http.Client{Timeout: opts.Timeout},
		cache: cache,
		log:   logging.NewComponentLogger(logger, "translate"),
		sleep: sleepCtx,
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TranslateFile reads an SRT file, translates its cue text, and writes the
// result to outPath. Chunks that fail to translate keep their original
// text; only read and write failures return an error. report, when non-nil,
// receives completion percent after each chunk.
func (c *Client) TranslateFile(ctx context.Context, inPath, outPath string, report func(percent float64)) error {
	cues, err := subtitles.ParseFile(inPath)
	if err != nil {
		return services.Wrap(services.ErrFileSystem, "translate", "read subtitle", inPath, err)
	}

	chunks := chunkCues(cues, c.opts.ChunkBytes)
	failed := 0
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.translateChunk(ctx, cues, chunk); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed++
			c.log.Warn("chunk translation failed, keeping original text",
				logging.Error(err),
				logging.Int("chunk", i))
		}
		if report != nil {
			report(float64(i+1) / float64(len(chunks)) * 100)
		}
	}
	if failed > 0 {
		c.log.Warn("translation finished with untranslated chunks",
			logging.Int("failed_chunks", failed),
			logging.Int("total_chunks", len(chunks)))
	}

	if err := subtitles.WriteFile(outPath, cues); err != nil {
		return services.Wrap(services.ErrFileSystem, "translate", "write subtitle", outPath, err)
	}
	return nil
}

// chunk is a run of consecutive cue indices translated in one request.
type chunk struct {
	first, last int // inclusive cue index range
}

// chunkCues groups consecutive cues so the newline-joined text of each
// group stays within the byte budget. A single oversized cue still forms
// its own chunk.
func chunkCues(cues []subtitles.Cue, budget int) []chunk {
	var chunks []chunk
	start := -1
	size := 0
	for i, cue := range cues {
		n := len(cue.Text)
		if start >= 0 && size+1+n > budget {
			chunks = append(chunks, chunk{first: start, last: i - 1})
			start = -1
		}
		if start < 0 {
			start = i
			size = n
			continue
		}
		size += 1 + n
	}
	if start >= 0 {
		chunks = append(chunks, chunk{first: start, last: len(cues) - 1})
	}
	return chunks
}

// translateChunk resolves one chunk from cache or network and writes the
// translated lines back onto the cues by position.
func (c *Client) translateChunk(ctx context.Context, cues []subtitles.Cue, ch chunk) error {
	lines := make([]string, 0, ch.last-ch.first+1)
	for i := ch.first; i <= ch.last; i++ {
		lines = append(lines, flattenText(cues[i].Text))
	}
	text := strings.Join(lines, "\n")

	translated, found := c.cache.Lookup(text, c.opts.Source, c.opts.Target)
	if !found {
		var err error
		translated, err = c.request(ctx, text)
		if err != nil {
			return err
		}
		if err := c.cache.Store(text, c.opts.Source, c.opts.Target, translated); err != nil {
			c.log.Warn("failed to persist translation cache", logging.Error(err))
		}
	}

	outLines := strings.Split(translated, "\n")
	if len(outLines) != len(lines) {
		return fmt.Errorf("line count mismatch: sent %d, received %d", len(lines), len(outLines))
	}
	for i := ch.first; i <= ch.last; i++ {
		cues[i].Text = strings.TrimSpace(outLines[i-ch.first])
	}
	return nil
}

// flattenText joins multi-line cue text so line positions inside a chunk
// stay one-per-cue.
func flattenText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// request performs one paced endpoint call.
func (c *Client) request(ctx context.Context, text string) (string, error) {
	if !c.lastRequest.IsZero() {
		if wait := c.opts.RequestDelay - time.Since(c.lastRequest); wait > 0 {
			if err := c.sleep(ctx, wait); err != nil {
				return "", err
			}
		}
	}
	c.lastRequest = time.Now()

	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("dt", "t")
	query.Set("ie", "UTF-8")
	query.Set("oe", "UTF-8")
	query.Set("sl", c.opts.Source)
	query.Set("tl", c.opts.Target)
	query.Set("tk", Token(text))
	query.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.Endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "translate", "build request", "", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "translate", "request", "endpoint unreachable", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrTransient, "translate", "request",
			fmt.Sprintf("endpoint returned %s", resp.Status), nil)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "translate", "read response", "", err)
	}
	return parseResponse(body)
}

// parseResponse extracts the translated text from the endpoint's nested
// array payload: the first element holds segment pairs whose first entry is
// the translated fragment; fragments concatenate to the full text.
func parseResponse(body []byte) (string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(outer) == 0 {
		return "", fmt.Errorf("empty response payload")
	}
	var segments [][]json.RawMessage
	if err := json.Unmarshal(outer[0], &segments); err != nil {
		return "", fmt.Errorf("parse segments: %w", err)
	}
	var sb strings.Builder
	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		var fragment string
		if err := json.Unmarshal(segment[0], &fragment); err != nil {
			continue
		}
		sb.WriteString(fragment)
	}
	return sb.String(), nil
}
