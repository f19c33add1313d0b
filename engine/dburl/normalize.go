package dburl

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/compozy/dbprobe/pkg/logger"
)

// Scheme is the driver family a connection string belongs to.
type Scheme string

const (
	SchemePostgresAsync Scheme = "postgres-async"
	SchemePostgresSync  Scheme = "postgres-sync"
	SchemeSQLite        Scheme = "sqlite"
	SchemeOther         Scheme = "other"
)

// IsPostgres reports whether s belongs to the PostgreSQL family.
func (s Scheme) IsPostgres() bool {
	return s == SchemePostgresAsync || s == SchemePostgresSync
}

const (
	AsyncMarker = "postgresql+asyncpg://"
	SyncMarker  = "postgresql+psycopg2://"

	genericMarker      = "postgresql://"
	shortGenericPrefix = "postgres://"
	driverPrefix       = "postgresql+"
	sqliteMarker       = "sqlite"

	// ChannelBindingParam is accepted by the asynchronous driver but rejected
	// by the synchronous one.
	ChannelBindingParam = "channel_binding"
)

// Result is the outcome of Normalize.
type Result struct {
	// Original is the raw input.
	Original string
	// Intermediate is the input after the driver marker rewrite and before
	// query filtering. Equal to Original outside the PostgreSQL family.
	Intermediate string
	// URL is the normalized connection string.
	URL    string
	Scheme Scheme
	// Params holds the filtered query parameters (PostgreSQL family only).
	Params Params
	// Dropped lists query parameters removed by filtering.
	Dropped []string
	// DisableSameThreadCheck is set for SQLite connection strings. It is
	// informational only: modernc.org/sqlite has no same-thread check, and
	// the store serializes access with a single connection instead.
	DisableSameThreadCheck bool
	// Fallback carries an *UnsupportedSchemeError when the input matched no
	// known family and was passed through unchanged.
	Fallback error
}

// Normalize rewrites raw into a connection string suitable for the
// synchronous driver path.
func Normalize(raw string) (*Result, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, newParseError(raw, errors.New("empty connection string"))
	}
	res := &Result{Original: raw, Intermediate: raw, URL: raw}
	switch {
	case strings.Contains(raw, AsyncMarker):
		res.Scheme = SchemePostgresAsync
		res.Intermediate = strings.ReplaceAll(raw, AsyncMarker, SyncMarker)
	case strings.Contains(raw, genericMarker):
		res.Scheme = SchemePostgresSync
		res.Intermediate = strings.ReplaceAll(raw, genericMarker, SyncMarker)
	case strings.HasPrefix(raw, shortGenericPrefix):
		res.Scheme = SchemePostgresSync
		res.Intermediate = SyncMarker + strings.TrimPrefix(raw, shortGenericPrefix)
	case strings.HasPrefix(raw, driverPrefix) && strings.Contains(raw, "://"):
		// Already carries a synchronous driver marker, psycopg2 or otherwise.
		res.Scheme = SchemePostgresSync
	case strings.Contains(raw, sqliteMarker):
		res.Scheme = SchemeSQLite
		res.DisableSameThreadCheck = true
		return res, nil
	default:
		res.Scheme = SchemeOther
		scheme, _, _ := strings.Cut(raw, "://")
		if scheme == raw {
			scheme = ""
		}
		res.Fallback = &UnsupportedSchemeError{Scheme: scheme}
		return res, nil
	}
	if err := res.filterQuery(); err != nil {
		return nil, err
	}
	return res, nil
}

// NormalizeContext is Normalize plus debug diagnostics on the context logger.
// Diagnostics never affect the result.
func NormalizeContext(ctx context.Context, raw string) (*Result, error) {
	log := logger.FromContext(ctx)
	res, err := Normalize(raw)
	if err != nil {
		log.Debug("Connection string rejected", "original", Redact(raw), "error", err)
		return nil, err
	}
	log.Debug("Connection string normalized",
		"original", Redact(res.Original),
		"intermediate", Redact(res.Intermediate),
		"normalized", Redact(res.URL),
		"scheme", res.Scheme,
		"params", strings.Join(res.Params.Keys(), ","),
		"dropped", strings.Join(res.Dropped, ","),
	)
	if res.Fallback != nil {
		log.Warn("Unrecognized connection scheme, using it unchanged", "reason", res.Fallback)
	}
	return res, nil
}

// filterQuery parses Intermediate, filters its query and reassembles URL.
func (r *Result) filterQuery() error {
	u, err := url.Parse(r.Intermediate)
	if err != nil {
		return newParseError(r.Original, err)
	}
	all, err := parseQuery(u.RawQuery)
	if err != nil {
		return newParseError(r.Original, err)
	}
	r.Params, r.Dropped = filterParams(all, ChannelBindingParam)
	r.URL = reassemble(u, authority(r.Intermediate), r.Params.Encode())
	return nil
}

// authority returns the raw network location of s, exactly as written.
func authority(s string) string {
	_, rest, ok := strings.Cut(s, "://")
	if !ok {
		return ""
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		return rest[:i]
	}
	return rest
}

func reassemble(u *url.URL, netloc, query string) string {
	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	b.WriteString(netloc)
	b.WriteString(u.EscapedPath())
	if query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	if u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.EscapedFragment())
	}
	return b.String()
}
