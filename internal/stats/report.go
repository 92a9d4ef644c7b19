package stats

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/ShaduMan201/symbiosis/internal/model"
)

var batchReportHeader = []string{"Strategy", "Average Final Population", "Min Pop", "Max Pop"}

// WriteBatchReportCSV renders the ranked batch rows as CSV, one row per
// strategy, averages formatted to two decimals.
func WriteBatchReportCSV(path string, rows []model.BatchRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(batchReportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Strategy,
			fmt.Sprintf("%.2f", row.Mean),
			strconv.Itoa(row.Min),
			strconv.Itoa(row.Max),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
