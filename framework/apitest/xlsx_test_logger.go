package apitest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/commeator/api-test-harness/framework"

	"github.com/xuri/excelize/v2"
)

const (
	xlsxSheetName     = "Results"
	xlsxSlowThreshold = 300 * time.Millisecond
	xlsxFailColor     = "FF5900"
	xlsxSlowColor     = "FFEB9C"
	xlsxSkipColor     = "D9D9D9"
)

var xlsxHeaders = []string{"#", "Test", "Result", "Duration (ms)", "Errors", "Debug output"} //nolint:gochecknoglobals

// XLSXTestLogger writes a spreadsheet report when the run ends: one row per test in the order
// the tests ran, followed by summary rows. Failed rows are highlighted, as are passed tests
// slower than 300ms.
type XLSXTestLogger struct {
	filePath string
	rows     []xlsxRow
	index    map[string]int
	lock     sync.Mutex
}

type xlsxRow struct {
	id         TestID
	result     string
	duration   time.Duration
	errors     []string
	output     string
	skipReason string
}

func NewXLSXTestLogger(filePath string) *XLSXTestLogger {
	return &XLSXTestLogger{filePath: filePath, index: make(map[string]int)}
}

// FilePath returns the destination of the report.
func (x *XLSXTestLogger) FilePath() string {
	return x.filePath
}

func (x *XLSXTestLogger) TestStarted(id TestID) {
	x.lock.Lock()
	defer x.lock.Unlock()
	x.index[id.String()] = len(x.rows)
	x.rows = append(x.rows, xlsxRow{id: id, result: "RUNNING"})
}

func (x *XLSXTestLogger) TestError(id TestID, err error) {
	x.update(id, func(r *xlsxRow) { r.errors = append(r.errors, err.Error()) })
}

func (x *XLSXTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	x.update(id, func(r *xlsxRow) {
		r.result = "PASS"
		if !result.Passed() {
			r.result = "FAIL"
		}
		r.duration = result.Duration
		r.output = debugOutput.ToString("")
	})
}

func (x *XLSXTestLogger) TestSkipped(id TestID, reason string) {
	x.update(id, func(r *xlsxRow) {
		r.result = "SKIP"
		r.skipReason = reason
	})
}

func (x *XLSXTestLogger) update(id TestID, fn func(*xlsxRow)) {
	x.lock.Lock()
	defer x.lock.Unlock()
	if i, ok := x.index[id.String()]; ok {
		fn(&x.rows[i])
	}
}

func (x *XLSXTestLogger) EndLog(results Results) error {
	x.lock.Lock()
	defer x.lock.Unlock()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", xlsxSheetName); err != nil {
		return err
	}
	if err := x.writeSheet(f, results); err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := f.SaveAs(x.filePath); err != nil {
		return fmt.Errorf("failed to save report to %s: %w", x.filePath, err)
	}
	return nil
}

func (x *XLSXTestLogger) writeSheet(f *excelize.File, results Results) error {
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	failStyle, err := fillStyle(f, xlsxFailColor)
	if err != nil {
		return err
	}
	slowStyle, err := fillStyle(f, xlsxSlowColor)
	if err != nil {
		return err
	}
	skipStyle, err := fillStyle(f, xlsxSkipColor)
	if err != nil {
		return err
	}

	if err := f.SetColWidth(xlsxSheetName, "B", "B", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(xlsxSheetName, "E", "F", 80); err != nil {
		return err
	}
	for i, header := range xlsxHeaders {
		if err := setCell(f, i+1, 1, header, headerStyle); err != nil {
			return err
		}
	}

	for i, row := range x.rows {
		rowNum := i + 2
		style := 0
		switch {
		case row.result == "FAIL":
			style = failStyle
		case row.result == "SKIP":
			style = skipStyle
		case row.duration > xlsxSlowThreshold:
			style = slowStyle
		}
		details := strings.Join(row.errors, "\n")
		if row.result == "SKIP" {
			details = row.skipReason
		}
		cells := []interface{}{
			i + 1,
			row.id.String(),
			row.result,
			row.duration.Milliseconds(),
			details,
			row.output,
		}
		for col, value := range cells {
			if err := setCell(f, col+1, rowNum, value, style); err != nil {
				return err
			}
		}
	}

	summaryRow := len(x.rows) + 3
	summary := [][]interface{}{
		{"Total", len(results.Tests)},
		{"Passed", len(results.Tests) - len(results.Failures)},
		{"Failed", len(results.Failures)},
	}
	for i, line := range summary {
		for col, value := range line {
			if err := setCell(f, col+1, summaryRow+i, value, headerStyle); err != nil {
				return err
			}
		}
	}
	return nil
}

func fillStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
	})
}

func setCell(f *excelize.File, col, row int, value interface{}, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(xlsxSheetName, cell, value); err != nil {
		return err
	}
	if style != 0 {
		return f.SetCellStyle(xlsxSheetName, cell, cell, style)
	}
	return nil
}
