package csvio

import (
	"encoding/csv"
	"fmt"
	"io"

	"contas/internal/core"
)

// exportHeader is the canonical column order written on export. The
// importer accepts the same layout back.
var exportHeader = []string{"date", "type", "paymentMethod", "person", "category", "description", "value", "competency"}

// WriteTransactions writes the canonical CSV rendition of a
// transaction list, header included.
func WriteTransactions(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range txs {
		row := []string{
			tx.Date.Format("02/01/2006"),
			string(tx.Type),
			string(tx.PaymentMethod),
			string(tx.Person),
			tx.Category,
			tx.Description,
			tx.Value.String(),
			string(tx.Competency),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
