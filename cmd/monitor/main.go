package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mkastner/vigil/internal/replay"
	"github.com/mkastner/vigil/internal/session"
	"github.com/mkastner/vigil/internal/store"
)

// #region main
func main() {
	fixturePath := flag.String("fixture", "", "path to tick fixture JSON (default: built-in demo scenario)")
	dbPath := flag.String("db", envOr("VIGIL_DB", ""), "record the session into this SQLite database")
	name := flag.String("name", "", "participant name (overrides fixture)")
	position := flag.String("position", "", "participant position (overrides fixture)")
	csvOut := flag.Bool("csv", false, "print the final report as CSV")
	flag.Parse()

	fix := demoFixture()
	if *fixturePath != "" {
		loaded, err := replay.LoadFixture(*fixturePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fix = loaded
	}
	if *name != "" {
		fix.ParticipantName = *name
	}
	if *position != "" {
		fix.Position = *position
	}
	if fix.ParticipantName == "" {
		fix.ParticipantName = "Demo Participant"
	}
	if fix.Position == "" {
		fix.Position = "Candidate"
	}

	config := session.DefaultMonitorConfig()

	// The session clock follows the fixture timeline, not the wall clock,
	// so grace periods measure against tick timestamps and the reported
	// duration matches the recorded stream.
	clock := fix.Start
	config.Now = func() time.Time { return clock }

	if *dbPath != "" {
		st, err := store.NewStore(*dbPath)
		if err != nil {
			log.Printf("[MON] store unavailable, running in-memory: %v", err)
		} else {
			defer st.Close()
			config.Recorder = st
		}
	}

	monitor := session.NewMonitor(config)

	sessionID, err := monitor.StartSession(fix.ParticipantName, fix.Position)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Session %s started (%d ticks queued)\n", sessionID, len(fix.Ticks))
	drain(monitor)

	for _, rec := range fix.Ticks {
		in := rec.ToInput(fix.Start)
		if err := monitor.Tick(in); err != nil {
			log.Printf("[MON] tick rejected: %v", err)
		}
		clock = in.Timestamp
		drain(monitor)
	}

	r, err := monitor.StopSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	drain(monitor)

	fmt.Printf("\nFinal score: %d/%d - %s\n", r.FinalScore, r.InitialScore, r.Recommendation)
	fmt.Printf("Violations: %d  Absence: %.1fs  Duration: %s\n",
		r.TotalViolations, r.AbsenceDuration, r.Duration)

	if *csvOut {
		fmt.Println()
		if err := r.WriteCSV(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// #endregion main

// #region helpers

// drain prints whatever the monitor published since the last call. Sends are
// non-blocking on the monitor side, so this is lossless as long as the buffer
// is drained at tick cadence.
func drain(m *session.Monitor) {
	for {
		select {
		case n := <-m.Notifications():
			switch {
			case n.Violation != nil:
				fmt.Printf("!! %-16s score=%-3d %s\n", n.Violation.Category, n.Score, n.Violation.Detail)
			case n.Event != nil:
				fmt.Printf("   %-8s %s\n", n.Event.Severity, n.Event.Message)
			}
		default:
			return
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
