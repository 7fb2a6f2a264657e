package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/mkastner/vigil/internal/report"
	"github.com/mkastner/vigil/internal/scoring"
	"github.com/mkastner/vigil/internal/store"
	"github.com/mkastner/vigil/internal/violation"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to vigil.db")
	last := flag.Int("last", 20, "show N most recent sessions")
	sessionID := flag.String("session", "", "show single session report")
	csvOut := flag.Bool("csv", false, "render the session report as CSV")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/vigil.db [--last N] [--session id] [--csv] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *sessionID != "" {
		err = runDetailMode(st, *sessionID, *csvOut, *jsonOut)
	} else {
		err = runListMode(st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

func runListMode(st *store.Store, last int, jsonOut bool) error {
	sessions, err := st.ListSessions(last)
	if err != nil {
		return err
	}

	if jsonOut {
		out, err := json.MarshalIndent(sessions, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("%-36s  %-20s  %-16s  %5s  %s\n",
		"SESSION", "PARTICIPANT", "POSITION", "SCORE", "STATUS")
	for _, s := range sessions {
		status := "in progress"
		if s.ReportGenerated {
			status = "finalized"
		}
		fmt.Printf("%-36s  %-20s  %-16s  %5d  %s\n",
			s.SessionID, s.ParticipantName, s.Position, s.FinalScore, status)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(st *store.Store, sessionID string, csvOut, jsonOut bool) error {
	sess, err := st.GetSession(sessionID)
	if err != nil {
		return err
	}

	scorer := scoring.Fold(scoring.DefaultWeights(), sess.Violations)
	r := report.Build(report.BuildInput{
		SessionID:       sess.SessionID,
		ParticipantName: sess.ParticipantName,
		Position:        sess.Position,
		StartTime:       sess.StartTime,
		EndTime:         sess.EndTime,
		Score:           scorer.Score(),
		Breakdown:       scorer.Breakdown(),
		Absence:         scorer.AbsenceDuration(),
		Violations:      scorer.Violations(),
		Events:          sess.Events,
	})

	switch {
	case csvOut:
		return r.WriteCSV(os.Stdout)
	case jsonOut:
		out, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	default:
		printReport(r, scorer.Summary())
		return nil
	}
}

func printReport(r report.Report, summary map[violation.Category]scoring.CategorySummary) {
	fmt.Printf("Session %s\n", r.SessionID)
	fmt.Printf("  participant: %s (%s)\n", r.ParticipantName, r.Position)
	fmt.Printf("  duration:    %s\n", r.Duration)
	fmt.Printf("  score:       %d/%d\n", r.FinalScore, r.InitialScore)
	fmt.Printf("  violations:  %d (focus=%d object=%d presence=%d other=%d)\n",
		r.TotalViolations, r.FocusViolations, r.ObjectViolations,
		r.PresenceViolations, r.OtherViolations)
	fmt.Printf("  absence:     %.1fs\n", r.AbsenceDuration)
	fmt.Printf("  recommendation: %s\n", r.Recommendation)

	if len(summary) > 0 {
		fmt.Println("  by category:")
		categories := make([]string, 0, len(summary))
		for cat := range summary {
			categories = append(categories, string(cat))
		}
		sort.Strings(categories)
		for _, cat := range categories {
			s := summary[violation.Category(cat)]
			fmt.Printf("    %-16s x%d -%d\n", cat, s.Count, s.TotalPoints)
		}
	}

	if len(r.Violations) > 0 {
		fmt.Println("  violation log:")
		for _, v := range r.Violations {
			fmt.Printf("    [%s] %s -%d %s\n",
				v.Timestamp.Format("15:04:05"), v.Category, v.PointsDeducted, v.Detail)
		}
	}
}

// #endregion detail-mode
