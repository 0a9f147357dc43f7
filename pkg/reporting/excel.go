package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/haruquant/swingrisk/internal/recorder"
	"github.com/haruquant/swingrisk/pkg/types"
)

// ExcelStyles holds the style IDs reused across sheets.
type ExcelStyles struct {
	HeaderStyle   int
	CurrencyStyle int
	NumberStyle   int
	RedStyle      int
	GreenStyle    int
	BaseStyle     int
}

// ExcelReporter writes a session workbook with decisions and cycle summaries.
type ExcelReporter struct{}

// NewExcelReporter creates a new Excel reporter
func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

// WriteSessionXLSX writes the decision log and per-cycle risk summaries to
// an Excel workbook at path.
func (r *ExcelReporter) WriteSessionXLSX(decisions []types.Decision, cycles []recorder.CycleRecord, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const decisionsSheet = "Decisions"
	const cyclesSheet = "Cycles"

	fx.SetSheetName(fx.GetSheetName(0), decisionsSheet)
	fx.NewSheet(cyclesSheet)

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeDecisionsSheet(fx, decisionsSheet, decisions, styles); err != nil {
		return err
	}
	if err := r.writeCyclesSheet(fx, cyclesSheet, cycles, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *ExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	// Header style - Dark blue background with white text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 7, // Currency format with $ symbol
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
		Border: lightBorders(),
	})
	if err != nil {
		return styles, err
	}

	styles.NumberStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 2, // Two decimal places
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
		Border: lightBorders(),
	})
	if err != nil {
		return styles, err
	}

	// Red for rejections
	styles.RedStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Color: "FF0000",
		},
		Border: lightBorders(),
	})
	if err != nil {
		return styles, err
	}

	// Green for accepted trades
	styles.GreenStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Color: "008000",
		},
		Border: lightBorders(),
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{
		Border: lightBorders(),
	})
	return styles, err
}

func lightBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}
}

func (r *ExcelReporter) writeDecisionsSheet(fx *excelize.File, sheet string, decisions []types.Decision, styles ExcelStyles) error {
	headers := []string{
		"Timestamp", "Symbol", "Direction", "Lots", "Stop (pips)", "ADR",
		"Range %", "Current VaR", "Proposed VaR", "ΔVaR %", "Verdict", "Reason",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	for row, d := range decisions {
		rowNum := row + 2
		verdict := "REJECTED"
		verdictStyle := styles.RedStyle
		if d.Accepted {
			verdict = "ACCEPTED"
			verdictStyle = styles.GreenStyle
		}

		values := []interface{}{
			d.Timestamp.Format("2006-01-02 15:04:05"),
			d.Symbol,
			d.Direction.String(),
			d.Lots,
			d.StopPips,
			d.ADR,
			d.RangePct,
			d.CurrentVaR,
			d.ProposedVaR,
			d.DeltaVaRPct,
			verdict,
			string(d.Reason),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			fx.SetCellValue(sheet, cell, v)
			switch col {
			case 3, 4, 5, 6, 9:
				fx.SetCellStyle(sheet, cell, cell, styles.NumberStyle)
			case 7, 8:
				fx.SetCellStyle(sheet, cell, cell, styles.CurrencyStyle)
			case 10:
				fx.SetCellStyle(sheet, cell, cell, verdictStyle)
			default:
				fx.SetCellStyle(sheet, cell, cell, styles.BaseStyle)
			}
		}
	}

	fx.SetColWidth(sheet, "A", "A", 20)
	fx.SetColWidth(sheet, "B", "L", 13)
	return nil
}

func (r *ExcelReporter) writeCyclesSheet(fx *excelize.File, sheet string, cycles []recorder.CycleRecord, styles ExcelStyles) error {
	headers := []string{
		"Timestamp", "Positions", "Nominal Value", "StdDev", "VaR", "Skipped", "Elapsed (ms)",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	for row, c := range cycles {
		rowNum := row + 2
		values := []interface{}{
			c.Timestamp.Format("2006-01-02 15:04:05"),
			c.Positions,
			c.NominalValue,
			c.StdDev,
			c.VaR,
			c.Skipped,
			c.Elapsed.Milliseconds(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			fx.SetCellValue(sheet, cell, v)
			switch col {
			case 2, 4:
				fx.SetCellStyle(sheet, cell, cell, styles.CurrencyStyle)
			case 3:
				fx.SetCellStyle(sheet, cell, cell, styles.NumberStyle)
			default:
				fx.SetCellStyle(sheet, cell, cell, styles.BaseStyle)
			}
		}
	}

	fx.SetColWidth(sheet, "A", "A", 20)
	fx.SetColWidth(sheet, "B", "G", 14)
	return nil
}
