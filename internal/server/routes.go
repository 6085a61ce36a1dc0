package server

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/raheva/mirror/internal/capture"
	"github.com/raheva/mirror/internal/models"
	"github.com/raheva/mirror/internal/session"
)

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")

	// Mirror display surface.
	api.GET("/mirror", s.handleMirrorState)
	api.POST("/update-text", s.handleUpdateText)
	api.POST("/reset", s.handleReset)
	api.POST("/play-audio", s.handlePlayAudio)
	api.GET("/events", s.handleSSE)
	api.GET("/ws", s.handleWS)

	// Dialogue runtime callbacks.
	api.POST("/transcript", s.handleTranscript)
	api.POST("/welcome", s.handleWelcome)
	api.POST("/guest/search", s.handleGuestSearch)
	api.POST("/livekit/token", s.handleRoomToken)

	// Admin surface.
	api.POST("/login", s.handleLogin)
	api.POST("/logout", s.handleLogout)
	admin := api.Group("/", s.requireAuth)
	admin.GET("/videos", s.handleListVideos)
	admin.POST("/videos/simple", s.handleCreateVideo)
	admin.PUT("/videos/:id/complete", s.handleCompleteVideo)
}

func (s *Server) handleMirrorState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"text":          s.hub.CurrentText(),
		"original_text": s.hub.OriginalText(),
		"viewers":       s.hub.ViewerCount(),
		"activated":     s.session.Activated(),
		"guest_name":    s.session.GuestName(),
	})
}

func (s *Server) handleUpdateText(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	s.hub.SetText(req.Text)
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (s *Server) handleReset(c *gin.Context) {
	s.hub.Reset()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func (s *Server) handlePlayAudio(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	c.ShouldBindJSON(&req)
	s.hub.PlayAudio(req.Message)
	c.JSON(http.StatusOK, gin.H{"status": "playing"})
}

func (s *Server) handleTranscript(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	if req.Role == "" {
		req.Role = session.RoleGuest
	}
	s.session.OnTranscript(c.Request.Context(), req.Text, req.Role)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "activated": s.session.Activated()})
}

func (s *Server) handleWelcome(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	s.session.OnGuestName(c.Request.Context(), req.Name)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "guest_name": s.session.GuestName()})
}

func (s *Server) handleGuestSearch(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	match, err := s.resolver.Resolve(c.Request.Context(), req.Name)
	if err != nil {
		log.Printf("server: guest search failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "guest lookup failed"})
		return
	}
	if match == nil {
		c.JSON(http.StatusOK, gin.H{"found": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"found":        true,
		"strategy":     match.Strategy,
		"name":         match.Record.FullName(),
		"relation":     match.Record.Relation,
		"table_number": match.Record.TableNumber,
		"message":      match.Record.Message,
	})
}

func (s *Server) handleRoomToken(c *gin.Context) {
	var req struct {
		Identity string `json:"identity" binding:"required"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity is required"})
		return
	}
	token, err := capture.RoomToken(s.cfg.LiveKit, req.Identity, req.Name)
	if err != nil {
		log.Printf("server: minting room token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "room": s.cfg.LiveKit.Room, "url": s.cfg.LiveKit.URL})
}

func (s *Server) handleListVideos(c *gin.Context) {
	var recs []models.VideoRecording
	q := s.db.WithContext(c.Request.Context()).Order("id DESC")
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&recs).Error; err != nil {
		log.Printf("server: listing videos: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing videos failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": recs, "count": len(recs)})
}

func (s *Server) handleCreateVideo(c *gin.Context) {
	rec, err := s.ledger.CreateRecord(c.Request.Context(), s.cfg.LiveKit.Room)
	if err != nil {
		log.Printf("server: creating video record: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creating video record failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":        rec.ID,
		"filename":  rec.OutputKey,
		"video_url": rec.DirectURL,
	})
}

func (s *Server) handleCompleteVideo(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video id"})
		return
	}
	if err := s.ledger.MarkCompleted(c.Request.Context(), uint(id)); err != nil {
		log.Printf("server: completing video %d: %v", id, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}
