package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/backmassage/pal2nal/internal/config"
	"github.com/backmassage/pal2nal/internal/pairing"
	"github.com/backmassage/pal2nal/internal/term"
)

// pairRow holds the per-pair data for the analysis table.
type pairRow struct {
	Stem   string
	AA     int
	NT     int
	Status string
	Failed bool
}

// AnalyzeSummary counts the outcome of an analysis pass.
type AnalyzeSummary struct {
	Pairs       int
	OK          int
	Errors      int
	Interrupted bool
}

// Analyze reads every discovered pair and prints a table of record counts
// and correspondence status to out. Nothing is reconstructed or written.
func Analyze(ctx context.Context, cfg *config.Config, deps Deps, out io.Writer) AnalyzeSummary {
	log := deps.Log
	total := deps.Discovery.Count()
	var sum AnalyzeSummary
	if total == 0 {
		log.Warn("No file pairs found in %s", cfg.InputDir)
		return sum
	}

	log.Info("Analyzing %d pairs in %s …", total, cfg.InputDir)

	f, _ := out.(*os.File)
	isTTY := f != nil && term.IsTerminal(f)
	var rows []pairRow

	i := 0
	for p := range deps.Discovery.Pairs() {
		if ctx.Err() != nil {
			if isTTY {
				clearProgress(out)
			}
			log.Warn("Interrupted")
			sum.Interrupted = true
			break
		}
		i++
		printProgress(out, isTTY, i, total, sum.Errors, p.Stem)

		row := pairRow{Stem: p.Stem, Status: "ok"}
		tbl, err := pairing.Read(ctx, p.AA, p.NT)
		if err != nil {
			row.Failed = true
			row.AA, row.NT = -1, -1
			row.Status = err.Error()
			sum.Errors++
		} else {
			row.AA = len(tbl.Entries)
			row.NT = len(tbl.Entries) + tbl.UnusedNT
			if tbl.UnusedNT > 0 {
				row.Status = fmt.Sprintf("ok (%d unused)", tbl.UnusedNT)
			}
			sum.OK++
		}
		sum.Pairs++
		rows = append(rows, row)
	}

	if isTTY {
		clearProgress(out)
	}
	if len(rows) == 0 {
		return sum
	}

	printAnalysisTable(out, rows)
	if sum.Errors > 0 {
		log.Error("Analyzed %d pairs: %d ok, %d with errors", sum.Pairs, sum.OK, sum.Errors)
	} else {
		log.Success("Analyzed %d pairs: all ok", sum.Pairs)
	}
	return sum
}

func printAnalysisTable(out io.Writer, rows []pairRow) {
	stemW := utf8.RuneCountInString("Pair")
	aaW := len("AA")
	ntW := len("NT")
	for _, r := range rows {
		stemW = max(stemW, utf8.RuneCountInString(r.Stem))
		aaW = max(aaW, len(countCell(r.AA)))
		ntW = max(ntW, len(countCell(r.NT)))
	}
	if stemW > 50 {
		stemW = 50
	}

	header := fmt.Sprintf("  %-*s  %*s  %*s  %s", stemW, "Pair", aaW, "AA", ntW, "NT", "Status")
	fmt.Fprintln(out, header)
	fmt.Fprintln(out, "  "+strings.Repeat("─", len(header)+4))

	bad := color.New(color.FgHiRed)
	for _, r := range rows {
		stem := truncate(r.Stem, stemW)
		status := r.Status
		if r.Failed {
			status = bad.Sprint(status)
		}
		fmt.Fprintf(out, "  %-*s  %*s  %*s  %s\n", stemW, stem, aaW, countCell(r.AA), ntW, countCell(r.NT), status)
	}
	fmt.Fprintln(out)
}

func countCell(n int) string {
	if n < 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

// printProgress shows a live read counter. On a TTY it writes an inline
// \r-overwritten line; otherwise it is a no-op.
func printProgress(out io.Writer, isTTY bool, current, total, failed int, name string) {
	if !isTTY {
		return
	}
	pct := current * 100 / total
	status := fmt.Sprintf("  Reading [%d/%d] %d%% ", current, total, pct)
	if failed > 0 {
		status += fmt.Sprintf("(%d failed) ", failed)
	}
	status += truncate(name, 40)
	if n := utf8.RuneCountInString(status); n < 80 {
		status += strings.Repeat(" ", 80-n)
	}
	fmt.Fprintf(out, "\r%s", status)
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// clearProgress erases the inline progress line on a TTY.
func clearProgress(out io.Writer) {
	fmt.Fprintf(out, "\r%s\r", strings.Repeat(" ", 80))
}
