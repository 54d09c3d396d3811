package model

import "database/sql"

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Model functions take it so the import service can run every read and write
// of one import on a single explicit transaction handle.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
