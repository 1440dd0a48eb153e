package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"basket-dashboard/internal/mining"
	"basket-dashboard/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

const (
	ColumnInvoice     = "InvoiceNo"
	ColumnDescription = "Description"
	ColumnQuantity    = "Quantity"
)

var requiredColumns = []string{ColumnInvoice, ColumnDescription, ColumnQuantity}

type LoadStats struct {
	Rows    int `json:"rows"`
	Skipped int `json:"skipped"`
}

type columnIndex struct {
	invoice     int
	description int
	quantity    int
}

func (c columnIndex) width() int {
	return max(c.invoice, c.description, c.quantity) + 1
}

type csvRow struct {
	line   int
	fields []string
}

type parsedRow struct {
	tx      models.Transaction
	skipped bool
	err     error
}

// ReadTransactions parses a CSV with at least the InvoiceNo, Description and
// Quantity columns, in any order. Rows with a blank invoice or description are
// skipped and counted. A missing column or a quantity that is not a
// non-negative integer fails the whole read with mining.ErrDataFormat.
func ReadTransactions(ctx context.Context, r io.Reader) ([]models.Transaction, LoadStats, error) {
	var stats LoadStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, fmt.Errorf("%w: empty file, expected columns %s",
			mining.ErrDataFormat, strings.Join(requiredColumns, ", "))
	}
	if err != nil {
		return nil, stats, readError("read header", err)
	}

	cols, err := locateColumns(header)
	if err != nil {
		return nil, stats, err
	}

	records := make([]models.Transaction, 0)
	batch := make([]csvRow, 0, batchSize)

	flush := func() error {
		parsed, err := parseBatch(ctx, batch, cols)
		if err != nil {
			return err
		}
		for _, p := range parsed {
			stats.Rows++
			if p.skipped {
				stats.Skipped++
				continue
			}
			records = append(records, p.tx)
		}
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, readError("read row", err)
		}
		line, _ := reader.FieldPos(0)

		batch = append(batch, csvRow{line: line, fields: fields})
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, stats, err
			}
		}
	}

	if len(batch) > 0 {
		if err := flush(); err != nil {
			return nil, stats, err
		}
	}

	return records, stats, nil
}

// readError classifies malformed CSV as a data format error. Failures of the
// underlying reader are returned wrapped.
func readError(op string, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Errorf("%w: %v", mining.ErrDataFormat, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func locateColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := positions[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return columnIndex{}, fmt.Errorf("%w: missing required columns: %s",
			mining.ErrDataFormat, strings.Join(missing, ", "))
	}

	return columnIndex{
		invoice:     positions[ColumnInvoice],
		description: positions[ColumnDescription],
		quantity:    positions[ColumnQuantity],
	}, nil
}

// parseBatch splits the batch across maxWorkers goroutines. Results keep the
// batch order and the error reported is the one on the earliest line.
func parseBatch(ctx context.Context, batch []csvRow, cols columnIndex) ([]parsedRow, error) {
	results := make([]parsedRow, len(batch))

	var g errgroup.Group
	g.SetLimit(maxWorkers)

	chunk := max((len(batch)+maxWorkers-1)/maxWorkers, 1)
	for start := 0; start < len(batch); start += chunk {
		end := min(start+chunk, len(batch))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				results[i] = parseRow(batch[i], cols)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if i := slices.IndexFunc(results, func(p parsedRow) bool { return p.err != nil }); i >= 0 {
		return nil, results[i].err
	}
	return results, nil
}

func parseRow(row csvRow, cols columnIndex) parsedRow {
	if len(row.fields) < cols.width() {
		return parsedRow{err: fmt.Errorf("%w: line %d: expected at least %d fields, got %d",
			mining.ErrDataFormat, row.line, cols.width(), len(row.fields))}
	}

	invoice := strings.TrimSpace(row.fields[cols.invoice])
	description := strings.TrimSpace(row.fields[cols.description])
	if invoice == "" || description == "" {
		return parsedRow{skipped: true}
	}

	raw := row.fields[cols.quantity]
	quantity, err := parseQuantity(raw)
	if err != nil {
		return parsedRow{err: fmt.Errorf("%w: line %d: quantity %q: %v",
			mining.ErrDataFormat, row.line, raw, err)}
	}

	return parsedRow{tx: models.Transaction{
		TransactionID: invoice,
		ItemName:      description,
		Quantity:      quantity,
	}}
}

// parseQuantity accepts integer text and float text with no fractional part,
// such as "6.0".
func parseQuantity(raw string) (int, error) {
	s := strings.TrimSpace(raw)

	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return 0, errors.New("not an integer")
		}
		n = int(f)
	}

	if n < 0 {
		return 0, errors.New("negative")
	}
	return n, nil
}
