package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"flowtrace/internal/trace"
)

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	summaryOkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	summaryFailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	summaryDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	summaryBoxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// printSummary renders per-callee call counts from the ring sink, when the
// selected mode keeps one.
func printSummary(cmd *cobra.Command, sink trace.Sink) {
	ring := ringOf(sink)
	if ring == nil {
		fmt.Fprintln(os.Stderr, "summary needs --trace-mode=ring or both")
		return
	}

	events := ring.Snapshot()
	calls := 0
	fails := 0
	atomic := 0
	perCallee := map[string]int{}
	for _, ev := range events {
		switch ev.Kind {
		case trace.KindCall:
			calls++
			perCallee[ev.Callee]++
			if ev.Atomic {
				atomic++
			}
		case trace.KindFail:
			fails++
		}
	}

	names := make([]string, 0, len(perCallee))
	for name := range perCallee {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if perCallee[names[i]] != perCallee[names[j]] {
			return perCallee[names[i]] > perCallee[names[j]]
		}
		return names[i] < names[j]
	})

	var sb strings.Builder
	sb.WriteString(summaryTitleStyle.Render("trace summary"))
	sb.WriteString("\n")
	line := fmt.Sprintf("%d calls, %d atomic", calls, atomic)
	if fails > 0 {
		line += ", " + summaryFailStyle.Render(fmt.Sprintf("%d failed", fails))
	} else {
		line += ", " + summaryOkStyle.Render("all returned")
	}
	sb.WriteString(line)
	for _, name := range names {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%-24s %s", name,
			summaryDimStyle.Render(fmt.Sprintf("%d", perCallee[name]))))
	}

	out := sb.String()
	if isTerminal(os.Stderr) {
		out = summaryBoxStyle.Render(out)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), out)
}
