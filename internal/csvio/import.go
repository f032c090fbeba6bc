// Package csvio reads and writes the ledger's CSV interchange format.
//
// The canonical layout is one transaction per row:
//
//	date;type;paymentMethod;person;category;description;value;competency
//
// Both ";" and "," separators are accepted on import, dates may be
// DD/MM/YYYY or YYYY-MM-DD, and decimal values may use a comma or a
// dot. The competency column is optional and defaults to the month of
// the date.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"contas/internal/core"
)

const minImportColumns = 7

// ImportResult is the outcome of a parse: the well-formed rows plus
// the count of rows skipped as malformed.
type ImportResult struct {
	Drafts  []core.PurchaseDraft
	Skipped int
}

// ParseTransactions reads CSV rows into single-installment purchase
// drafts. Malformed rows are skipped and counted, never fatal; only a
// broken stream fails the import.
func ParseTransactions(r io.Reader) (ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read csv: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = detectSeparator(string(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var result ImportResult
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ImportResult{}, fmt.Errorf("read csv: %w", err)
		}

		draft, ok := parseRow(row)
		if !ok {
			// The header row fails date parsing and lands here too.
			if !first {
				result.Skipped++
			}
			first = false
			continue
		}
		first = false
		result.Drafts = append(result.Drafts, draft)
	}
	return result, nil
}

func detectSeparator(data string) rune {
	line := data
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.Count(line, ";") >= strings.Count(line, ",") {
		return ';'
	}
	return ','
}

func parseRow(row []string) (core.PurchaseDraft, bool) {
	if len(row) < minImportColumns {
		return core.PurchaseDraft{}, false
	}
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	date, err := parseDate(row[0])
	if err != nil {
		return core.PurchaseDraft{}, false
	}
	cents, err := core.ParseDecimalToCents(row[6])
	if err != nil {
		return core.PurchaseDraft{}, false
	}

	draft := core.PurchaseDraft{
		Date:          date,
		Type:          core.TransactionType(strings.ToLower(row[1])),
		PaymentMethod: core.PaymentMethod(strings.ToLower(row[2])),
		Person:        core.Person(strings.ToLower(row[3])),
		Category:      row[4],
		Description:   row[5],
		Value:         core.Money{Cents: cents},
		Competency:    core.CompetencyOf(date.Time),
		Installments:  1,
	}
	if len(row) > 7 && row[7] != "" {
		c, err := core.ParseCompetency(row[7])
		if err != nil {
			return core.PurchaseDraft{}, false
		}
		draft.Competency = c
	}

	if !draft.Type.Valid() || !draft.PaymentMethod.Valid() || !draft.Person.Valid() {
		return core.PurchaseDraft{}, false
	}
	if draft.Category == "" || draft.Description == "" {
		return core.PurchaseDraft{}, false
	}
	return draft, true
}

func parseDate(s string) (core.Date, error) {
	for _, layout := range []string{"02/01/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return core.Date{Time: t}, nil
		}
	}
	return core.Date{}, fmt.Errorf("unrecognized date %q", s)
}
