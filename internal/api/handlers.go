package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mkastner/vigil/internal/report"
	"github.com/mkastner/vigil/internal/scoring"
	"github.com/mkastner/vigil/internal/store"
	"github.com/mkastner/vigil/internal/violation"
)

// #region requests

// StartSessionRequest opens a new persisted session.
type StartSessionRequest struct {
	ParticipantName string `json:"participantName"`
	Position        string `json:"position"`
}

// EndSessionRequest finalizes a session. Batch-syncing clients may carry
// their full violation and event arrays; streaming clients send only the
// closing fields.
type EndSessionRequest struct {
	FinalScore int                   `json:"finalScore"`
	Duration   string                `json:"duration"`
	Violations []violation.Violation `json:"violations"`
	Events     []violation.Event     `json:"events"`
}

// #endregion requests

// #region health

// HealthCheck reports service and database status.
func HealthCheck(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		database := "disconnected"
		if st != nil && st.Health() == nil {
			database = "connected"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"database":  database,
		})
	}
}

// #endregion health

// #region start-session

// StartSession creates a session record and returns its identifier. Store
// failures degrade to in-memory operation: the session id is still issued.
func StartSession(st *store.Store, m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartSessionRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.ParticipantName == "" || req.Position == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "participant name and position are required",
			})
			return
		}

		sessionID := uuid.New().String()
		start := time.Now().UTC()

		if st != nil {
			if err := st.CreateSession(sessionID, req.ParticipantName, req.Position, start); err != nil {
				log.Printf("[API] create session failed, continuing without store: %v", err)
			} else {
				startedEvent := violation.Event{
					Timestamp: start,
					Severity:  violation.SeverityInfo,
					Message:   "Session started for " + req.ParticipantName + " - " + req.Position,
				}
				if err := st.AppendEvent(sessionID, startedEvent); err != nil {
					log.Printf("[API] append start event failed: %v", err)
				}
			}
		}

		m.SessionsStarted.Inc()
		m.ActiveSessions.Inc()
		c.JSON(http.StatusOK, gin.H{
			"sessionId": sessionID,
			"message":   "Session started successfully",
			"timestamp": start.Format(time.RFC3339),
		})
	}
}

// #endregion start-session

// #region append

// AppendEvent records one event for a session.
func AppendEvent(st *store.Store, m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")
		var e violation.Event
		if err := c.BindJSON(&e); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		switch e.Severity {
		case violation.SeverityInfo, violation.SeverityWarning, violation.SeverityDanger:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown severity"})
			return
		}
		if e.Timestamp.IsZero() {
			e.Timestamp = time.Now().UTC()
		}

		if st != nil {
			if err := st.AppendEvent(sessionID, e); err != nil {
				log.Printf("[API] append event failed: %v", err)
			}
		}
		m.EventsTotal.WithLabelValues(string(e.Severity)).Inc()
		c.JSON(http.StatusOK, gin.H{"message": "Event logged"})
	}
}

// AppendViolation records one violation for a session.
func AppendViolation(st *store.Store, m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")
		var v violation.Violation
		if err := c.BindJSON(&v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if v.Category == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "violation type is required"})
			return
		}
		if v.Timestamp.IsZero() {
			v.Timestamp = time.Now().UTC()
		}

		if st != nil {
			if err := st.AppendViolation(sessionID, v); err != nil {
				log.Printf("[API] append violation failed: %v", err)
			}
		}
		m.ViolationsTotal.WithLabelValues(string(v.Category)).Inc()
		c.JSON(http.StatusOK, gin.H{"message": "Violation logged"})
	}
}

// #endregion append

// #region end-session

// EndSession finalizes a session record.
func EndSession(st *store.Store, m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")
		var req EndSessionRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		end := time.Now().UTC()

		if st != nil {
			for _, v := range req.Violations {
				if err := st.AppendViolation(sessionID, v); err != nil {
					log.Printf("[API] append final violation failed: %v", err)
				}
			}
			for _, e := range req.Events {
				if err := st.AppendEvent(sessionID, e); err != nil {
					log.Printf("[API] append final event failed: %v", err)
				}
			}
			endedEvent := violation.Event{
				Timestamp: end,
				Severity:  violation.SeverityInfo,
				Message:   "Session ended",
			}
			if err := st.AppendEvent(sessionID, endedEvent); err != nil {
				log.Printf("[API] append end event failed: %v", err)
			}
			if err := st.FinalizeSession(sessionID, end, req.Duration, req.FinalScore); err != nil {
				log.Printf("[API] finalize failed: %v", err)
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
		}

		m.SessionsFinalized.Inc()
		m.ActiveSessions.Dec()
		c.JSON(http.StatusOK, gin.H{
			"message": "Session ended successfully",
			"endTime": end.Format(time.RFC3339),
		})
	}
}

// #endregion end-session

// #region report

// GetReport rebuilds the report for a stored session. Unfinalized sessions
// come back marked in progress rather than erroring.
func GetReport(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := loadReport(st, c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

// GetReportCSV renders the stored session report as the flat tabular form.
func GetReportCSV(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := loadReport(st, c)
		if !ok {
			return
		}
		data, err := r.CSV()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=report-"+r.SessionID+".csv")
		c.Data(http.StatusOK, "text/csv", data)
	}
}

func loadReport(st *store.Store, c *gin.Context) (report.Report, bool) {
	if st == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return report.Report{}, false
	}
	sess, err := st.GetSession(c.Param("sessionId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return report.Report{}, false
	}
	return buildStoredReport(sess), true
}

// buildStoredReport folds the persisted violation sequence back through the
// scorer to reconstruct counters deterministically.
func buildStoredReport(sess store.StoredSession) report.Report {
	scorer := scoring.Fold(scoring.DefaultWeights(), sess.Violations)
	return report.Build(report.BuildInput{
		SessionID:       sess.SessionID,
		ParticipantName: sess.ParticipantName,
		Position:        sess.Position,
		StartTime:       sess.StartTime,
		EndTime:         sess.EndTime,
		Now:             time.Now().UTC(),
		Score:           scorer.Score(),
		Breakdown:       scorer.Breakdown(),
		Absence:         scorer.AbsenceDuration(),
		Violations:      scorer.Violations(),
		Events:          sess.Events,
	})
}

// #endregion report

// #region list-sessions

// ListSessions returns the most recent session summaries.
func ListSessions(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if st == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
			return
		}
		limit := 20
		sessions, err := st.ListSessions(limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
	}
}

// #endregion list-sessions
