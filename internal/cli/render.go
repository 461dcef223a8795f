package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/shelfsync/shelfsync/internal/model"
	"github.com/shelfsync/shelfsync/internal/service"
)

// RenderComparison formats reconciliation rows as a side-by-side table.
// Every input item appears exactly once; missing partner data is rendered
// as an explicit placeholder rather than omitted.
func RenderComparison(rows []model.ReconciliationRow) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Stock comparison"))
	b.WriteString("\n")
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%-40s %10s %10s %-40s %10s %-12s",
		"Warehouse item", "Qty", "Price", "Partner listing", "Qty", "Status")))
	b.WriteString("\n")

	for _, row := range rows {
		name := truncate(row.Item.Name, 40)

		partnerName := "—"
		partnerQty := "—"
		if row.Listing != nil {
			partnerName = truncate(row.Listing.Title, 40)
			if row.Listing.AvailableQuantity != nil {
				partnerQty = formatQty(*row.Listing.AvailableQuantity)
			}
		}

		line := fmt.Sprintf("%-40s %10s %10s %-40s %10s %-12s",
			name,
			formatQty(row.Item.Quantity),
			formatPrice(row.Item.UnitPrice),
			partnerName,
			partnerQty,
			row.Flag)

		b.WriteString(styleFor(row.Flag).Render(line))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderStats formats a run summary line.
func RenderStats(stats service.RunStats) string {
	return SubtleStyle.Render(fmt.Sprintf(
		"%d items: %d matched, %d unmatched, %d unpredicted (%s)",
		stats.TotalItems,
		stats.Matched,
		stats.Unmatched,
		stats.Unpredicted,
		stats.Duration.Round(time.Millisecond)))
}

// RenderDemandResult formats a demand creation summary.
func RenderDemandResult(result model.DemandResult) string {
	var b strings.Builder

	b.WriteString(SuccessStyle.Render(fmt.Sprintf("Demand %s created with %d positions",
		result.Demand.ID, len(result.Processed))))
	b.WriteString("\n")

	writeRowSection(&b, "Invalid rows", result.Invalid, ErrorStyle)
	writeRowSection(&b, "Not found in warehouse", result.NotFound, WarningStyle)
	writeRowSection(&b, "Serial number unmatched", result.Unmatched, WarningStyle)

	return b.String()
}

func writeRowSection(b *strings.Builder, title string, rows []model.CSVRow, style interface{ Render(...string) string }) {
	if len(rows) == 0 {
		return
	}
	b.WriteString(style.Render(fmt.Sprintf("%s (%d):", title, len(rows))))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(SubtleStyle.Render(fmt.Sprintf("  row %d: %s [%s]",
			row.Index, row.ProductName, row.SerialNumber)))
		b.WriteString("\n")
	}
}

func styleFor(flag model.DiscrepancyFlag) interface{ Render(...string) string } {
	switch flag {
	case model.FlagMatch:
		return SuccessStyle
	case model.FlagShortage, model.FlagSurplus:
		return WarningStyle
	default:
		return ErrorStyle
	}
}

func formatQty(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func formatPrice(v *float64) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%.2f", *v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
