package output

import (
	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/jgoldverg/canopy/backend"
)

// PrintEntryTable renders a recursive listing. With info the table carries
// type, access, size and mtime columns; entries whose stat was skipped by a
// callback render with blanks.
func PrintEntryTable(entries []backend.ListEntry, withInfo bool) error {
	if !withInfo {
		for _, e := range entries {
			pterm.Println(e.Path)
		}
		pterm.Printfln("%d entries", len(entries))
		return nil
	}

	tableData := [][]string{
		{"Path", "Type", "Access", "Size", "Modified"},
	}
	for _, e := range entries {
		row := []string{e.Path, "", "", "", ""}
		if e.Info != nil {
			row[1] = e.Info.Type.String()
			row[2] = e.Info.Access.String()
			row[3] = humanize.Bytes(uint64(e.Info.Size))
			row[4] = humanize.Time(e.Info.ModTime)
		}
		tableData = append(tableData, row)
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
		return err
	}
	pterm.Printfln("%d entries", len(entries))
	return nil
}
