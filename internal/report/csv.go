package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// #region write-csv
// WriteCSV renders the report as a flat tabular document: metadata header
// rows, then a violations table, then an events table. Output is fully
// deterministic for a given report.
func (r Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	meta := [][]string{
		{"sessionId", r.SessionID},
		{"participantName", r.ParticipantName},
		{"position", r.Position},
		{"startTime", formatTime(r.StartTime)},
		{"endTime", formatTime(r.EndTime)},
		{"duration", r.Duration},
		{"initialScore", strconv.Itoa(r.InitialScore)},
		{"finalScore", strconv.Itoa(r.FinalScore)},
		{"totalViolations", strconv.Itoa(r.TotalViolations)},
		{"focusViolations", strconv.Itoa(r.FocusViolations)},
		{"objectViolations", strconv.Itoa(r.ObjectViolations)},
		{"presenceViolations", strconv.Itoa(r.PresenceViolations)},
		{"absenceDurationSeconds", fmt.Sprintf("%.1f", r.AbsenceDuration)},
		{"recommendation", r.Recommendation},
	}
	for _, row := range meta {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write metadata row: %w", err)
		}
	}

	if err := cw.Write([]string{"type", "timestamp", "pointsDeducted", "details"}); err != nil {
		return fmt.Errorf("write violations header: %w", err)
	}
	for _, v := range r.Violations {
		row := []string{
			string(v.Category),
			formatTime(v.Timestamp),
			strconv.Itoa(v.PointsDeducted),
			v.Detail,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write violation row: %w", err)
		}
	}

	if err := cw.Write([]string{"type", "timestamp", "message"}); err != nil {
		return fmt.Errorf("write events header: %w", err)
	}
	for _, e := range r.Events {
		row := []string{
			string(e.Severity),
			formatTime(e.Timestamp),
			e.Message,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write event row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// CSV returns the tabular rendering as bytes.
func (r Report) CSV() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// #endregion write-csv
