package tracker

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// PaymentsCSVHeader — заголовок выгрузки предстоящих платежей.
var PaymentsCSVHeader = []string{
	"Service Name", "Amount", "Currency", "Next Payment Date", "Billing Cycle", "Category", "Status",
}

// WritePaymentsCSV пишет платежи в w в формате CSV с заголовком.
// Дата выводится как 2006-01-02, статус — срочность платежа.
func WritePaymentsCSV(w io.Writer, payments []models.Payment, currency string) error {
	const op = "tracker.WritePaymentsCSV"

	cw := csv.NewWriter(w)
	if err := cw.Write(PaymentsCSVHeader); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, p := range payments {
		if err := cw.Write([]string{
			p.ServiceName,
			p.Amount.StringFixed(2),
			currency,
			p.DueDate.Format(models.DateLayout),
			p.BillingCycle,
			p.Category,
			string(p.Urgency),
		}); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
