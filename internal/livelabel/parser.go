package livelabel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zjrosen/cutoff/internal/cachemanager"
	"github.com/zjrosen/cutoff/internal/log"
)

// ErrEmptyCutoff is wrapped by a ParseError for blank input.
var ErrEmptyCutoff = errors.New("cut-off is empty")

// ParseError reports a cut-off string that is not a valid ISO-8601 instant.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse cut-off %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// zonedLayouts carry their own offset.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

// localLayouts are interpreted in the parser's location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// dateOnlyLayout is midnight UTC, matching ISO-8601 date-only semantics.
const dateOnlyLayout = "2006-01-02"

// DefaultParseCacheTTL is how long a parsed cut-off stays cached.
const DefaultParseCacheTTL = 10 * time.Minute

// ParserConfig configures a Parser.
type ParserConfig struct {
	// Location for date-times without an offset. Defaults to time.Local.
	Location *time.Location
	// CacheTTL for parsed instants. Zero uses DefaultParseCacheTTL, negative disables caching.
	CacheTTL time.Duration
}

// Parser turns ISO-8601 strings into instants, memoising successes.
type Parser struct {
	loc   *time.Location
	ttl   time.Duration
	store *cachemanager.InMemoryCacheManager[string, time.Time]
	cache *cachemanager.ReadThroughCache[string, time.Time, string]
}

// NewParser creates a Parser.
func NewParser(cfg ParserConfig) *Parser {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = DefaultParseCacheTTL
	}

	p := &Parser{loc: loc, ttl: ttl}
	p.store = cachemanager.NewInMemoryCacheManager[string, time.Time]("cutoffs", ttl, cachemanager.DefaultCleanupInterval)
	p.cache = cachemanager.NewReadThroughCache[string, time.Time, string](p.store, p.parse, ttl < 0)
	return p
}

// Parse returns the instant named by raw or a *ParseError.
func (p *Parser) Parse(raw string) (time.Time, error) {
	key := strings.TrimSpace(raw)
	return p.cache.Get(context.Background(), key, key, p.ttl)
}

func (p *Parser) parse(_ context.Context, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, &ParseError{Input: s, Err: ErrEmptyCutoff}
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return t, nil
		}
	}

	t, err := time.Parse(dateOnlyLayout, s)
	if err != nil {
		// Report the RFC 3339 error; it names the offending element best.
		_, rfcErr := time.Parse(time.RFC3339, s)
		log.Debug(log.CatParse, "no layout matched", "input", s)
		return time.Time{}, &ParseError{Input: s, Err: rfcErr}
	}
	return t, nil
}
