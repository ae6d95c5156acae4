package datasource

import "database/sql"

func openWritable(path string) (*sql.DB, error) {
	return sql.Open("sqlite", path)
}
