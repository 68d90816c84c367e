package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const EvidenceReportsSchema = `
	CREATE TABLE IF NOT EXISTS evidence_reports (
		group_name VARCHAR NOT NULL,
		check_name VARCHAR NOT NULL,
		position INTEGER NOT NULL,
		control VARCHAR NOT NULL,
		description VARCHAR,
		passed BOOLEAN NOT NULL,
		note VARCHAR,
		summary VARCHAR,
		collected_at TIMESTAMP NOT NULL
	);
`

// evidence is stored as serialized JSON text; resource_id is NULL for check-level findings.
const EvidenceFindingsSchema = `
	CREATE TABLE IF NOT EXISTS evidence_findings (
		group_name VARCHAR NOT NULL,
		check_name VARCHAR NOT NULL,
		position INTEGER NOT NULL,
		resource_id VARCHAR,
		compliant BOOLEAN NOT NULL,
		resource_exists BOOLEAN NOT NULL,
		evidence VARCHAR
	);
`

var bootQueries = []string{
	EvidenceReportsSchema,
	EvidenceFindingsSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
