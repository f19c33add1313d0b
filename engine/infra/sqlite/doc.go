// Package sqlite provides the modernc.org/sqlite backed infrastructure driver.
//
// The package mirrors the postgres driver layout: a single-connection Store,
// a Repository implementing user.Repository and a WithTx helper.
package sqlite
