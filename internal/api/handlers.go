package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/brainsait/drg-suite/internal/domain"
	"github.com/brainsait/drg-suite/internal/feedback"
)

// CodeRequest is the body of POST /api/v1/code.
type CodeRequest struct {
	ClinicalNote string               `json:"clinical_note" binding:"required"`
	Encounter    domain.EncounterMeta `json:"encounter"`
	Patient      domain.PatientMeta   `json:"patient"`
}

func (s *Server) handleCode(c *gin.Context) {
	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.engine.RunCodingJob(c.Request.Context(), req.ClinicalNote, req.Patient, req.Encounter)
	if err != nil {
		status := http.StatusBadGateway
		if domain.IsFailureKind(err, domain.ValidationFailure) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// AnalyzeDraftRequest is the body of POST /api/v1/analyze-draft.
type AnalyzeDraftRequest struct {
	EncounterID  string `json:"encounter_id,omitempty"`
	ClinicalNote string `json:"clinical_note" binding:"required"`
}

func (s *Server) handleAnalyzeDraft(c *gin.Context) {
	var req AnalyzeDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.nudges.AnalyzeDraft(req.ClinicalNote))
}

func (s *Server) handleClaimStatus(c *gin.Context) {
	status, err := s.gateway.CheckStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		code := http.StatusBadGateway
		if domain.IsFailureKind(err, domain.ValidationFailure) {
			code = http.StatusBadRequest
		}
		c.JSON(code, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleGatewayMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.gateway.Metrics())
}

func (s *Server) handleSaveFeedback(c *gin.Context) {
	var fb feedback.Feedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if fb.EncounterID == "" || fb.SuggestedCode == "" || fb.CoderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "encounter_id, suggested_code and coder_id are required"})
		return
	}

	if err := s.feedback.Save(c.Request.Context(), &fb); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, fb)
}

func (s *Server) handleListFeedback(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.feedback.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	total, err := s.feedback.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feedback": entries,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

func (s *Server) handleDeleteFeedback(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feedback ID"})
		return
	}
	if err := s.feedback.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleExportFeedback(c *gin.Context) {
	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", `attachment; filename="feedback-export.json"`)
	if err := s.feedback.ExportJSON(c.Request.Context(), c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) handleImportFeedback(c *gin.Context) {
	imported, skipped, err := s.feedback.ImportJSON(c.Request.Context(), c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": imported, "skipped": skipped})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The suite sits behind the hospital gateway, which enforces origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// draftMessage is what the client sends on every keystroke batch.
type draftMessage struct {
	NoteText string `json:"note_text"`
}

// handleDocumentationSocket upgrades to a websocket and streams nudges back
// as the physician types.
func (s *Server) handleDocumentationSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	session, err := s.sessions.Connect(conn, c.Query("encounter_id"), c.Query("physician_id"))
	if err != nil {
		s.logger.WithError(err).Warn("documentation session setup failed")
		return
	}
	defer s.sessions.Disconnect(session.ID)

	for {
		var msg draftMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		s.sessions.Push(session.ID, s.nudges.AnalyzeDraft(msg.NoteText))
	}
}
