package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"reflect"

	"github.com/mkastner/vigil/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to tick fixture JSON")
	jsonOut := flag.Bool("json", false, "output summary as JSON instead of text")
	verify := flag.Bool("verify", true, "replay twice and require identical outcomes")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/ticks.json [--json] [--verify=false]")
		os.Exit(2)
	}

	fix, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	config := replay.DefaultConfig()
	summary := replay.Replay(fix, config)

	if *verify {
		second := replay.Replay(fix, config)
		if !reflect.DeepEqual(summary, second) {
			fmt.Fprintln(os.Stderr, "REPLAY MISMATCH: two runs of the same fixture diverged")
			os.Exit(1)
		}
	}

	exitCode := 0
	if fix.Expected != nil {
		if fix.Expected.FinalScore != nil && summary.FinalScore != *fix.Expected.FinalScore {
			fmt.Fprintf(os.Stderr, "expected final score %d, got %d\n",
				*fix.Expected.FinalScore, summary.FinalScore)
			exitCode = 1
		}
		if fix.Expected.TotalViolations != nil && summary.TotalViolations != *fix.Expected.TotalViolations {
			fmt.Fprintf(os.Stderr, "expected %d violations, got %d\n",
				*fix.Expected.TotalViolations, summary.TotalViolations)
			exitCode = 1
		}
	}

	if *jsonOut {
		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	} else {
		printSummary(fix, summary)
	}

	os.Exit(exitCode)
}

// #endregion main

// #region output

func printSummary(fix *replay.Fixture, s replay.Summary) {
	fmt.Printf("Replayed %d ticks for %s (%s)\n", s.TotalTicks, fix.ParticipantName, fix.Position)
	fmt.Printf("  final score:      %d\n", s.FinalScore)
	fmt.Printf("  violations:       %d (focus=%d object=%d presence=%d other=%d)\n",
		s.TotalViolations, s.Breakdown.Focus, s.Breakdown.Object,
		s.Breakdown.Presence, s.Breakdown.Other)
	fmt.Printf("  absence duration: %.1fs\n", s.AbsenceSeconds)
	fmt.Printf("  events retained:  %d (info=%d warning=%d danger=%d)\n",
		s.LogStats.Total, s.LogStats.Info, s.LogStats.Warning, s.LogStats.Danger)

	for _, v := range s.Violations {
		fmt.Printf("  [%s] %s -%d %s\n",
			v.Timestamp.Format("15:04:05"), v.Category, v.PointsDeducted, v.Detail)
	}
}

// #endregion output
