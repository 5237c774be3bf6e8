package storage

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biter777/countries"

	"github.com/valyzer/valyzer/internal/common"
	"github.com/valyzer/valyzer/internal/model"
)

// ImportCSV loads an OpenFlights-format airports file
// (id,name,city,country,iata,icao,...). Rows without a 3-letter IATA code
// are skipped. Returns the number of imported airports.
func (s *SQLiteStore) ImportCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open airports file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO airports (id, name, city, country, iata)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	imported := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read airports file: %w", err)
		}
		if len(row) < 5 {
			continue
		}

		iata := strings.TrimSpace(row[4])
		if len(iata) != 3 || iata == `\N` {
			continue
		}

		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}

		if _, err := stmt.ExecContext(ctx, id, row[1], row[2], row[3], strings.ToUpper(iata)); err != nil {
			return 0, fmt.Errorf("failed to insert airport %s: %w", iata, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	return imported, nil
}

// Lookup returns the airport with the given IATA code.
func (s *SQLiteStore) Lookup(ctx context.Context, iata string) (*model.Airport, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, city, country, iata FROM airports WHERE iata = ?`,
		strings.ToUpper(iata))

	var a model.Airport
	err := row.Scan(&a.ID, &a.Name, &a.City, &a.Country, &a.IATA)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: airport %s", common.ErrNotFound, iata)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up airport: %w", err)
	}

	return &a, nil
}

// Search finds airports whose city, name or IATA code starts with the query,
// ordered by display name.
func (s *SQLiteStore) Search(ctx context.Context, query string) ([]model.Airport, error) {
	pattern := query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, city, country, iata FROM airports
		WHERE city LIKE ? OR name LIKE ? OR iata LIKE ?
		ORDER BY city, name`,
		pattern, pattern, strings.ToUpper(pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to search airports: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var airports []model.Airport
	for rows.Next() {
		var a model.Airport
		if err := rows.Scan(&a.ID, &a.Name, &a.City, &a.Country, &a.IATA); err != nil {
			return nil, fmt.Errorf("failed to scan airport: %w", err)
		}
		airports = append(airports, a)
	}

	return airports, rows.Err()
}

// CountryCode resolves an IATA code to the 2-letter ISO code of the
// airport's country. Unresolvable codes yield "XX" rather than an error, so
// callers degrade to empty holiday lists.
func (s *SQLiteStore) CountryCode(ctx context.Context, iata string) string {
	airport, err := s.Lookup(ctx, iata)
	if err != nil {
		return "XX"
	}

	country := countries.ByName(airport.Country)
	if country == countries.Unknown {
		return "XX"
	}

	return country.Alpha2()
}
