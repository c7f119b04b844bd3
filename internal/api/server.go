package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/casperlundberg/court-scheduling-algorithm/internal/database"
)

// Server represents the analytics API server
type Server struct {
	router *gin.Engine
	repo   *database.Repository
	port   string
}

// NewServer creates a new API server
func NewServer(repo *database.Repository, port string) *Server {
	router := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(config))

	server := &Server{
		router: router,
		repo:   repo,
		port:   port,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")

	// Run endpoints
	api.GET("/runs", s.listRuns)
	api.GET("/runs/:id", s.getRun)
	api.GET("/runs/:id/summary", s.getRunSummary)

	// Daily metrics endpoints (isolated by run)
	api.GET("/runs/:id/days", s.getDailySnapshots)

	// Cause list endpoints
	api.GET("/runs/:id/causelist", s.getCauseList)
	api.GET("/runs/:id/cases/:caseId", s.getCaseHistory)

	// Event log endpoints
	api.GET("/runs/:id/events", s.getEvents)

	// Override audit endpoints
	api.GET("/runs/:id/overrides", s.getOverrideAudits)

	// Health check
	api.GET("/health", s.healthCheck)
}

// Start starts the server
func (s *Server) Start() error {
	return s.router.Run(":" + s.port)
}

// Handler implementations

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now(),
	})
}

func (s *Server) listRuns(c *gin.Context) {
	runs, err := s.repo.ListRuns()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, runs)
}

func (s *Server) getRun(c *gin.Context) {
	id := c.Param("id")

	run, err := s.repo.GetRun(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	c.JSON(http.StatusOK, run)
}

func (s *Server) getRunSummary(c *gin.Context) {
	id := c.Param("id")

	run, err := s.repo.GetRun(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	disposals, err := s.repo.CountDisposals(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":            run.ID,
		"status":            run.Status,
		"policy_name":       run.PolicyName,
		"days_completed":    run.DaysCompleted,
		"disposal_rate":     run.DisposalRate,
		"adjournment_rate":  run.AdjournmentRate,
		"utilization":       run.Utilization,
		"load_balance_gini": run.LoadBalanceGini,
		"case_coverage":     run.CaseCoverage,
		"total_disposed":    run.TotalDisposed,
		"total_inflow":      run.TotalInflow,
		"disposal_events":   disposals,
	})
}

func (s *Server) getDailySnapshots(c *gin.Context) {
	runID := c.Param("id")

	// Parse query parameters
	limit := 1000 // Default limit
	if l := c.Query("limit"); l != "" {
		fmt.Sscanf(l, "%d", &limit)
	}

	snapshots, err := s.repo.GetDailySnapshots(runID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshots)
}

func (s *Server) getCauseList(c *gin.Context) {
	runID := c.Param("id")

	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter required"})
		return
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	rows, err := s.repo.GetCauseList(runID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rows)
}

func (s *Server) getCaseHistory(c *gin.Context) {
	runID := c.Param("id")
	caseID := c.Param("caseId")

	rows, err := s.repo.GetCaseHistory(runID, caseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rows)
}

func (s *Server) getEvents(c *gin.Context) {
	runID := c.Param("id")
	eventType := c.Query("type")

	limit := 0
	if l := c.Query("limit"); l != "" {
		fmt.Sscanf(l, "%d", &limit)
	}

	events, err := s.repo.GetEvents(runID, eventType, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, events)
}

func (s *Server) getOverrideAudits(c *gin.Context) {
	runID := c.Param("id")

	audits, err := s.repo.GetOverrideAudits(runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, audits)
}
