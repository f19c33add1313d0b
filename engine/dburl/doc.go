// Package dburl normalizes database connection strings for the synchronous
// drivers used by dbprobe.
//
// Asynchronous PostgreSQL URLs (postgresql+asyncpg://) and generic ones
// (postgresql://, postgres://) are rewritten to the synchronous marker
// postgresql+psycopg2://. The channel_binding query parameter is always
// removed and multi-valued parameters collapse to their first value. SQLite
// URLs pass through unchanged but are flagged so the connector disables any
// same-thread checks. Anything else passes through unchanged as a degraded
// default.
package dburl
