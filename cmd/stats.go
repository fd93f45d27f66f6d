package cmd

import (
	"bytes"
	"fmt"

	"github.com/Carmen-Shannon/echolocation/engine/echolocation"
	"github.com/olekukonko/tablewriter"
)

func displayWaveStats(stats echolocation.Stats, slots []echolocation.SlotState, ticks uint64, dropped int) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Slot", "Last wave", "State", "Points"})
	totalHits := 0
	for _, slot := range slots {
		table.Append([]string{
			fmt.Sprintf("%d", slot.Index),
			fmt.Sprintf("%d", slot.WaveID),
			slotStateName(slot),
			fmt.Sprintf("%d", slot.Hits),
		})
		totalHits += slot.Hits
	}
	table.SetFooter([]string{"", "", "TOTAL", fmt.Sprintf("%d", totalHits)})
	table.Render()

	counters := tablewriter.NewWriter(&buf)
	counters.SetAutoFormatHeaders(false)
	counters.SetHeader([]string{"Ticks", "Triggered", "Dropped", "Reaped", "Forced", "Stalled", "Pending"})
	counters.Append([]string{
		fmt.Sprintf("%d", ticks),
		fmt.Sprintf("%d", stats.Triggered),
		fmt.Sprintf("%d", dropped),
		fmt.Sprintf("%d", stats.Reaped),
		fmt.Sprintf("%d", stats.Forced),
		fmt.Sprintf("%d", stats.Stalled),
		fmt.Sprintf("%d", stats.Pending),
	})
	counters.Render()

	logger.Noticef("wave statistics\n%s", buf.String())
}

func slotStateName(slot echolocation.SlotState) string {
	switch {
	case slot.Quarantined:
		return "quarantined"
	case slot.InFlight:
		return "in flight"
	case slot.WaveID == 0:
		return "unused"
	default:
		return "drawing"
	}
}
