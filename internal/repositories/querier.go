package repositories

import "database/sql"

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repositories hold a Querier so the same methods work inside and outside a
// transaction.
type Querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}
