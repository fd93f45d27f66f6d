package cmd

import (
	"bytes"
	"fmt"

	"github.com/Carmen-Shannon/echolocation/engine/echolocation"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Print the byte layout of every struct shared with the WGSL kernels.
func PrintLayout(ctx *cli.Context) error {
	setupLogging(ctx)

	logger.Noticef("GPU struct layout\n%s", layoutTable(echolocation.Layouts()))
	return nil
}

func layoutTable(layouts []echolocation.StructLayout) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAutoMergeCells(true)
	table.SetRowLine(true)
	table.SetHeader([]string{"Struct", "Size", "Field", "Offset", "Width"})
	for _, layout := range layouts {
		for _, field := range layout.Fields {
			table.Append([]string{
				layout.Name,
				fmt.Sprintf("%d", layout.Size),
				field.Name,
				fmt.Sprintf("%d", field.Offset),
				fmt.Sprintf("%d", field.Size),
			})
		}
	}
	table.Render()
	return buf.String()
}
