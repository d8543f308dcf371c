package output

import (
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/jgoldverg/canopy/backend/metrics"
)

// PrintCallSummary renders the per-operation remote call counts collected
// during a command.
func PrintCallSummary(snap metrics.Snapshot) {
	if snap.TotalCalls() == 0 {
		return
	}

	ops := make([]string, 0, len(snap.RemoteCalls))
	for op := range snap.RemoteCalls {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	tableData := [][]string{
		{"Operation", "Calls", "Errors"},
	}
	for _, op := range ops {
		tableData = append(tableData, []string{
			op,
			fmt.Sprintf("%d", snap.RemoteCalls[op]),
			fmt.Sprintf("%d", snap.RemoteErrors[op]),
		})
	}

	pterm.DefaultSection.Println("Remote calls")
	_ = pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

// PrintTransferSummary renders bytes moved and effective throughput on top
// of the call summary.
func PrintTransferSummary(snap metrics.Snapshot, elapsed time.Duration) {
	moved := snap.BytesUp + snap.BytesDown

	pterm.DefaultSection.Println("Transfer summary")
	pterm.DefaultBasicText.Println("  bytes up:", humanize.Bytes(snap.BytesUp))
	pterm.DefaultBasicText.Println("  bytes down:", humanize.Bytes(snap.BytesDown))
	pterm.DefaultBasicText.Println("  elapsed:", elapsed.Round(time.Millisecond))
	if elapsed > 0 && moved > 0 {
		rate := float64(moved) / elapsed.Seconds()
		pterm.DefaultBasicText.Println("  throughput:", humanize.Bytes(uint64(rate))+"/s")
	}

	PrintCallSummary(snap)
}
