package dburl

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPort is used when a PostgreSQL URL names no port.
	DefaultPort = 5432
	// HostedProviderSuffix identifies hosts of the hosted PostgreSQL provider,
	// which only accepts TLS connections.
	HostedProviderSuffix = ".neon.tech"

	sslModeParam   = "sslmode"
	sslModeRequire = "require"
	memoryPath     = ":memory:"
)

// Descriptor is the parsed form of a normalized connection string.
type Descriptor struct {
	Scheme   Scheme
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Params   Params
	// Path is the database file for SQLite descriptors.
	Path string
	// DisableSameThreadCheck mirrors Result.DisableSameThreadCheck.
	DisableSameThreadCheck bool
}

// Parse normalizes raw and returns its descriptor.
func Parse(raw string) (*Descriptor, error) {
	res, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	return res.Descriptor()
}

// Descriptor builds the connection descriptor for r. It fails with the
// *UnsupportedSchemeError from r.Fallback for pass-through strings.
func (r *Result) Descriptor() (*Descriptor, error) {
	switch {
	case r.Scheme.IsPostgres():
		return postgresDescriptor(r)
	case r.Scheme == SchemeSQLite:
		return sqliteDescriptor(r)
	default:
		if r.Fallback != nil {
			return nil, r.Fallback
		}
		return nil, &UnsupportedSchemeError{}
	}
}

func postgresDescriptor(r *Result) (*Descriptor, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, newParseError(r.Original, err)
	}
	d := &Descriptor{
		Scheme:   r.Scheme,
		Host:     u.Hostname(),
		Port:     DefaultPort,
		Database: strings.TrimPrefix(u.Path, "/"),
		Params:   append(Params(nil), r.Params...),
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return nil, newParseError(r.Original, fmt.Errorf("invalid port %q", p))
		}
		d.Port = port
	}
	if u.User != nil {
		d.Username = u.User.Username()
		d.Password, _ = u.User.Password()
	}
	return d, nil
}

func sqliteDescriptor(r *Result) (*Descriptor, error) {
	d := &Descriptor{Scheme: SchemeSQLite, DisableSameThreadCheck: r.DisableSameThreadCheck}
	rest := r.URL
	if _, after, ok := strings.Cut(rest, "://"); ok {
		rest = after
	} else if _, after, ok := strings.Cut(rest, ":"); ok {
		rest = after
	}
	rest, rawQuery, _ := strings.Cut(rest, "?")
	if rawQuery != "" {
		params, err := parseQuery(rawQuery)
		if err != nil {
			return nil, newParseError(r.Original, err)
		}
		d.Params = params
	}
	// sqlite:///relative.db and sqlite:////abs/path.db
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" || rest == memoryPath {
		rest = memoryPath
	}
	d.Path = rest
	return d, nil
}

// RequiresTLS reports whether the host belongs to the hosted provider.
func (d *Descriptor) RequiresTLS() bool {
	return strings.HasSuffix(strings.ToLower(d.Host), HostedProviderSuffix)
}

// SSLMode returns the effective sslmode, forcing "require" for the hosted
// provider when none was given.
func (d *Descriptor) SSLMode() string {
	if mode, ok := d.Params.Get(sslModeParam); ok {
		return mode
	}
	if d.RequiresTLS() {
		return sslModeRequire
	}
	return ""
}

// DriverDSN renders d for the Go driver that serves its family: a pgx
// postgres:// URL or a modernc file: DSN. The synchronous driver marker is
// never part of the result.
func (d *Descriptor) DriverDSN() (string, error) {
	switch {
	case d.Scheme.IsPostgres():
		return d.postgresDSN(), nil
	case d.Scheme == SchemeSQLite:
		if d.Path == memoryPath {
			return memoryPath, nil
		}
		return "file:" + d.Path, nil
	default:
		return "", &UnsupportedSchemeError{Scheme: string(d.Scheme)}
	}
}

func (d *Descriptor) postgresDSN() string {
	u := &url.URL{Scheme: "postgres", Path: "/" + d.Database}
	if d.Host != "" {
		u.Host = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	}
	switch {
	case d.Username != "" && d.Password != "":
		u.User = url.UserPassword(d.Username, d.Password)
	case d.Username != "":
		u.User = url.User(d.Username)
	}
	params := d.Params
	if mode := d.SSLMode(); mode != "" {
		params = params.With(sslModeParam, mode)
	}
	u.RawQuery = params.Encode()
	return u.String()
}

// IsMemory reports whether d names an in-memory SQLite database.
func (d *Descriptor) IsMemory() bool {
	return d.Scheme == SchemeSQLite && d.Path == memoryPath
}

// Redacted returns a log-safe rendering of d.
func (d *Descriptor) Redacted() string {
	if d.Scheme == SchemeSQLite {
		return "sqlite:" + d.Path
	}
	if !d.Scheme.IsPostgres() {
		return string(d.Scheme)
	}
	return Redact(d.postgresDSN())
}
