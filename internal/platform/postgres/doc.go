// Package postgres provides PostgreSQL implementations of the store
// interfaces. All implementations accept a store.DBTX, so they run
// unchanged against a *sql.DB or inside a *sql.Tx.
package postgres
