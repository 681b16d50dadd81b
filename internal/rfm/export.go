package rfm

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/BerylCAtieno/rfm-workbench/internal/models"
	"github.com/xuri/excelize/v2"
)

// Header is the column order of every export.
var Header = []string{"customer_id", "recency", "frequency", "monetary", "R_score", "F_score", "M_score", "RFM_Segment", "RFM_Score"}

const sheetName = "RFM"

func row(r models.CustomerRFM) []string {
	return []string{
		r.CustomerID,
		strconv.Itoa(r.Recency),
		strconv.Itoa(r.Frequency),
		strconv.FormatFloat(r.Monetary, 'f', -1, 64),
		strconv.Itoa(r.RScore),
		strconv.Itoa(r.FScore),
		strconv.Itoa(r.MScore),
		r.Segment,
		strconv.Itoa(r.Score),
	}
}

// WriteCSV writes records as UTF-8 CSV prefixed with a byte-order mark so spreadsheets detect the encoding.
func WriteCSV(w io.Writer, records []models.CustomerRFM) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("write row %s: %w", r.CustomerID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes records as a single-sheet workbook.
func WriteXLSX(w io.Writer, records []models.CustomerRFM) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			r.CustomerID, r.Recency, r.Frequency, r.Monetary,
			r.RScore, r.FScore, r.MScore, r.Segment, r.Score,
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %s: %w", r.CustomerID, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
