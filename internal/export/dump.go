// Package export produces the dashboard's spreadsheet download and
// the one-shot backup artifacts written by cmd/export: idempotent
// MySQL-style upsert SQL plus JSON snapshots.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tourdesk/internal/model"
)

// Dump is one full snapshot of both tables.
type Dump struct {
	Suppliers []model.Supplier
	Tours     []model.Tour
}

// WriteFiles writes the SQL migration file and the two JSON backups
// into dir, returning the created paths.
func (d *Dump) WriteFiles(dir string, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	stamp := now.Format("2006-01-02")
	outputs := []struct {
		name string
		data []byte
	}{
		{fmt.Sprintf("migration_%s.sql", stamp), []byte(d.SQL())},
	}

	supplierJSON, err := json.MarshalIndent(d.Suppliers, "", "  ")
	if err != nil {
		return nil, err
	}
	outputs = append(outputs, struct {
		name string
		data []byte
	}{fmt.Sprintf("backup_suppliers_%s.json", stamp), supplierJSON})

	tourJSON, err := json.MarshalIndent(d.Tours, "", "  ")
	if err != nil {
		return nil, err
	}
	outputs = append(outputs, struct {
		name string
		data []byte
	}{fmt.Sprintf("backup_tours_%s.json", stamp), tourJSON})

	paths := make([]string, 0, len(outputs))
	for _, out := range outputs {
		path := filepath.Join(dir, out.name)
		if err := os.WriteFile(path, out.data, 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// SQL renders the whole dump as upsert statements, suppliers first so
// the tour foreign keys resolve.
func (d *Dump) SQL() string {
	var b strings.Builder
	b.WriteString("-- tourdesk data export\n")
	b.WriteString("-- suppliers then tours; statements are idempotent\n\n")
	for _, s := range d.Suppliers {
		b.WriteString(SupplierUpsert(s))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	for _, t := range d.Tours {
		b.WriteString(TourUpsert(t))
		b.WriteByte('\n')
	}
	return b.String()
}

var supplierColumns = []string{
	"id", "name", "address", "phone", "phone_2", "phone_3", "phone_4", "phone_5",
	"line", "facebook", "whatsapp", "website", "created_at", "updated_at",
}

// SupplierUpsert renders one supplier as an idempotent insert.
func SupplierUpsert(s model.Supplier) string {
	values := []string{
		strconv.FormatUint(uint64(s.ID), 10),
		sqlString(s.Name),
		sqlString(s.Address),
		sqlString(s.Phone),
		sqlString(s.Phone2),
		sqlString(s.Phone3),
		sqlString(s.Phone4),
		sqlString(s.Phone5),
		sqlString(s.Line),
		sqlString(s.Facebook),
		sqlString(s.Whatsapp),
		sqlString(s.Website),
		sqlTimestamp(s.CreatedAt),
		sqlTimestamp(s.UpdatedAt),
	}
	return upsert("suppliers", supplierColumns, values)
}

var tourColumns = []string{
	"id", "tour_name", "supplier_id", "departure_from", "pier",
	"adult_price", "child_price", "start_date", "end_date", "notes",
	"park_fee_included", "map_url", "updated_by", "created_at", "updated_at",
}

// TourUpsert renders one tour as an idempotent insert.
func TourUpsert(t model.Tour) string {
	values := []string{
		strconv.FormatUint(uint64(t.ID), 10),
		sqlString(t.TourName),
		sqlOptUint(t.SupplierID),
		sqlString(t.DepartureFrom),
		sqlString(t.Pier),
		strconv.FormatFloat(t.AdultPrice, 'f', 2, 64),
		strconv.FormatFloat(t.ChildPrice, 'f', 2, 64),
		sqlOptDate(t.StartDate),
		sqlOptDate(t.EndDate),
		sqlString(t.Notes),
		sqlBool(t.ParkFeeIncluded),
		sqlString(t.MapURL),
		sqlString(t.UpdatedBy),
		sqlTimestamp(t.CreatedAt),
		sqlTimestamp(t.UpdatedAt),
	}
	return upsert("tours", tourColumns, values)
}

// upsert builds INSERT ... ON DUPLICATE KEY UPDATE over every
// non-key column.
func upsert(table string, columns, values []string) string {
	var updates []string
	for _, col := range columns {
		if col == "id" {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", col, col))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s;",
		table,
		strings.Join(columns, ", "),
		strings.Join(values, ", "),
		strings.Join(updates, ", "))
}

// sqlString quotes and escapes a string literal.
func sqlString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `''`)
	return "'" + s + "'"
}

func sqlOptUint(v *uint) string {
	if v == nil {
		return "NULL"
	}
	return strconv.FormatUint(uint64(*v), 10)
}

func sqlOptDate(t *time.Time) string {
	if t == nil {
		return "NULL"
	}
	return "'" + t.Format("2006-01-02") + "'"
}

func sqlTimestamp(t time.Time) string {
	return "'" + t.UTC().Format("2006-01-02 15:04:05") + "'"
}

func sqlBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
