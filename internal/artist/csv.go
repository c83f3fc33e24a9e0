package artist

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Creator is the slice of the store the CSV importer needs.
type Creator interface {
	Create(a Artist) (int64, error)
}

// ImportCSV reads artist rows with a header line and creates one artist per
// row. Columns are matched by header name; unknown columns are ignored and
// empty cells are treated as absent. Returns the number of artists created.
func ImportCSV(store Creator, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	if _, ok := col["name"]; !ok {
		return 0, fmt.Errorf("csv header missing name column")
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	created := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return created, fmt.Errorf("read csv row: %w", err)
		}

		a := Artist{
			Name:    field(record, "name"),
			DOB:     field(record, "dob"),
			Gender:  field(record, "gender"),
			Address: field(record, "address"),
		}
		if raw := field(record, "first_release_year"); raw != "" {
			year, err := strconv.Atoi(raw)
			if err != nil {
				return created, fmt.Errorf("row %d: invalid first_release_year %q", created+1, raw)
			}
			a.FirstReleaseYear = year
		}
		if raw := field(record, "no_of_albums_released"); raw != "" {
			albums, err := strconv.Atoi(raw)
			if err != nil {
				return created, fmt.Errorf("row %d: invalid no_of_albums_released %q", created+1, raw)
			}
			a.AlbumsReleased = albums
		}

		if _, err := store.Create(a); err != nil {
			return created, fmt.Errorf("row %d: %w", created+1, err)
		}
		created++
	}

	return created, nil
}

// WriteCSV renders artists in the same column layout the importer accepts,
// plus the server-assigned id and timestamps.
func WriteCSV(w io.Writer, artists []Artist) error {
	writer := csv.NewWriter(w)

	header := []string{"id", "name", "dob", "gender", "address", "first_release_year", "no_of_albums_released", "created_at", "updated_at"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, a := range artists {
		year := ""
		if a.FirstReleaseYear != 0 {
			year = strconv.Itoa(a.FirstReleaseYear)
		}
		record := []string{
			strconv.FormatInt(a.ID, 10),
			a.Name,
			a.DOB,
			a.Gender,
			a.Address,
			year,
			strconv.Itoa(a.AlbumsReleased),
			a.CreatedAt.UTC().Format(time.RFC3339),
			a.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
