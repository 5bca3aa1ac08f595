package excel

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"sampahkita/internal/domain/cluster"
	"sampahkita/internal/domain/region"
)

const summarySheet = "Ringkasan"

// WriteYear writes a workbook with one data sheet holding every assignment of
// year and a summary sheet with cluster sizes and narratives.
func WriteYear(w io.Writer, year region.Year, rows []cluster.Assignment, narratives cluster.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	dataSheet := fmt.Sprintf("Data %d", year)
	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeAssignments(f, dataSheet, rows, narratives); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeSummary(f, rows, narratives); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeAssignments(f *excelize.File, sheet string, rows []cluster.Assignment, narratives cluster.Table) error {
	header := []interface{}{region.RegionColumn, region.YearColumn}
	for _, name := range region.FeatureNames {
		header = append(header, name)
	}
	header = append(header, "pc1", "pc2", "cluster", "keterangan")
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, a := range cluster.SortByCluster(rows) {
		row := []interface{}{a.Region, int(a.Year)}
		for _, v := range a.Features.Vector() {
			row = append(row, v)
		}
		row = append(row, a.PC1, a.PC2, a.Cluster, narratives.Lookup(a.Cluster).Title)
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(header))
	return f.SetColWidth(sheet, "B", last, 16)
}

func writeSummary(f *excelize.File, rows []cluster.Assignment, narratives cluster.Table) error {
	if err := setRow(f, summarySheet, 1, []interface{}{"cluster", "judul", "jumlah wilayah", "deskripsi"}); err != nil {
		return err
	}

	sizes := cluster.Sizes(rows)
	seen := make(map[int]bool, len(sizes)+len(narratives))
	var ids []int
	for _, m := range []map[int]int{sizes, narrativeIDs(narratives)} {
		for id := range m {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Ints(ids)

	for i, id := range ids {
		n := narratives.Lookup(id)
		if err := setRow(f, summarySheet, i+2, []interface{}{id, n.Title, sizes[id], n.Description}); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(summarySheet, "B", "B", 22); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "D", "D", 80)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func narrativeIDs(t cluster.Table) map[int]int {
	out := make(map[int]int, len(t))
	for id := range t {
		out[id] = 0
	}
	return out
}
