package reporting

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/haruquant/swingrisk/internal/risk"
	"github.com/haruquant/swingrisk/pkg/types"
)

// ConsoleReporter renders cycle output as terminal tables.
type ConsoleReporter struct{}

// NewConsoleReporter creates a new console reporter
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// PrintDecisions renders one cycle's decisions.
func (r *ConsoleReporter) PrintDecisions(decisions []types.Decision) {
	if len(decisions) == 0 {
		fmt.Println("No decisions this cycle")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("CYCLE DECISIONS")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Symbol", "Direction", "Lots", "Stop (pips)", "ADR", "ΔVaR %", "Verdict"})
	for _, d := range decisions {
		verdict := "❌ " + string(d.Reason)
		if d.Accepted {
			verdict = "✅ ACCEPTED"
		}
		t.AppendRow(table.Row{
			d.Symbol,
			d.Direction.String(),
			fmt.Sprintf("%.2f", d.Lots),
			fmt.Sprintf("%.0f", d.StopPips),
			fmt.Sprintf("%.1f", d.ADR),
			fmt.Sprintf("%+.2f", d.DeltaVaRPct),
			verdict,
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	t.Render()
	fmt.Println()
}

// PrintSnapshot renders the portfolio risk snapshot after the cycle.
func (r *ConsoleReporter) PrintSnapshot(snap risk.Snapshot) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("PORTFOLIO RISK")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"📊 Positions", fmt.Sprintf("%d", len(snap.Positions))},
		{"💰 Nominal Value", fmt.Sprintf("$%.2f", snap.NominalValue)},
		{"📉 Portfolio StdDev", fmt.Sprintf("%.4f%%", snap.StdDev*100)},
		{"📉 Value at Risk", fmt.Sprintf("$%.2f", snap.VaR)},
	})

	if len(snap.Positions) > 0 {
		t.AppendSeparator()
		for _, pos := range snap.Positions {
			t.AppendRow(table.Row{
				pos.Symbol,
				fmt.Sprintf("%.2f lots  w=%+.3f  σ=%.4f",
					pos.Lots, snap.Weights[pos.Symbol], snap.Volatility[pos.Symbol]),
			})
		}
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 40, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// PrintStartupInfo shows the configured universe and risk parameters at boot.
func (r *ConsoleReporter) PrintStartupInfo(symbols []string, timeframe string, riskPct, threshold, confidence float64) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("ENGINE INITIALIZATION")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"📊 Symbols", fmt.Sprintf("%v", symbols)},
		{"⏰ Timeframe", timeframe},
		{"🎯 Risk per Trade", fmt.Sprintf("%.2f%%", riskPct)},
		{"🚨 VaR Threshold", fmt.Sprintf("%.1f%%", threshold)},
		{"📈 VaR Confidence", fmt.Sprintf("%.0f%%", confidence*100)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 45, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}
