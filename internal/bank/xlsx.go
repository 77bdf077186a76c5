package bank

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// skipSheetMarkers identify bookkeeping sheets that carry no questions:
// change logs, blank templates and appendices.
var skipSheetMarkers = []string{"修改紀錄", "空白", "附錄"}

// ReadWorkbook opens an .xlsx workbook from a reader and returns the raw
// rows of every question sheet. A workbook that cannot be opened or
// enumerated at all is a hard error; individual odd rows are left for the
// normalizer to reject.
func ReadWorkbook(r io.Reader) ([]RecordSet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return readSheets(f)
}

// ReadWorkbookFile opens an .xlsx workbook from disk.
func ReadWorkbookFile(path string) ([]RecordSet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	return readSheets(f)
}

func readSheets(f *excelize.File) ([]RecordSet, error) {
	var sets []RecordSet

	for _, sheet := range f.GetSheetList() {
		if skipSheet(sheet) {
			continue
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue // header only, or empty
		}

		headers := make([]string, len(rows[0]))
		for i, h := range rows[0] {
			headers[i] = CanonKey(h)
		}

		set := RecordSet{Sheet: sheet, Records: make([]Record, 0, len(rows)-1)}
		for _, row := range rows[1:] {
			rec := make(Record, len(headers))
			empty := true
			for i, h := range headers {
				if h == "" || i >= len(row) {
					continue
				}
				rec[h] = row[i]
				if !cellEmpty(row[i]) {
					empty = false
				}
			}
			if !empty {
				set.Records = append(set.Records, rec)
			}
		}
		if len(set.Records) > 0 {
			sets = append(sets, set)
		}
	}

	if len(sets) == 0 {
		return nil, fmt.Errorf("workbook has no question sheets")
	}
	return sets, nil
}

func skipSheet(name string) bool {
	for _, m := range skipSheetMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}
