// Package export writes catalog snapshots to spreadsheet formats.
package export

import (
	"encoding/csv"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/poku-e/hanover/internal/catalog"
)

var header = []string{"id", "name", "desc", "type", "url"}

func record(it catalog.MenuItem) []string {
	return []string{strconv.Itoa(it.ID), it.Name, it.Desc, it.Type, it.URL}
}

// Write picks the format from the file extension (.csv or .xlsx).
func Write(path string, items []catalog.MenuItem) error {
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".csv"):
		return WriteCSV(path, items)
	case strings.HasSuffix(strings.ToLower(path), ".xlsx"):
		return WriteXLSX(path, items)
	default:
		return errors.New("out must end with .csv or .xlsx")
	}
}

// WriteCSV writes a header row and one record per item.
func WriteCSV(path string, items []catalog.MenuItem) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, it := range items {
		if err := w.Write(record(it)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// Sheet is the worksheet XLSX exports are written to.
const Sheet = "Sheet1"

// WriteXLSX writes the same layout as WriteCSV to Sheet.
func WriteXLSX(path string, items []catalog.MenuItem) error {
	f := excelize.NewFile()
	defer f.Close()

	// StreamWriter keeps memory flat for large menus
	sw, err := f.NewStreamWriter(Sheet)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := sw.SetRow("A1", row); err != nil {
		return err
	}
	for i, it := range items {
		cells := []interface{}{it.ID, it.Name, it.Desc, it.Type, it.URL}
		cellAddr, _ := excelize.CoordinatesToCellName(1, i+2) // A2, A3, ...
		if err := sw.SetRow(cellAddr, cells); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}
