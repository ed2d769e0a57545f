package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dep2p/go-uorb"
)

// printSnapshot 输出节点状态
func printSnapshot(w io.Writer, snap []uorb.Stats, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOPIC\tINST\tDEPTH\tGENERATION\tADV\tSUBS\tCBS\tBUFFER")
	for _, s := range snap {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%d\t%d\t%s\n",
			s.Topic, s.Instance, s.QueueDepth, s.Generation,
			yesNo(s.Advertised), s.Subscribers, s.Callbacks, formatBytes(s.BufferBytes))
	}
	return tw.Flush()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// formatBytes 格式化字节数
func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
