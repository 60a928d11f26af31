package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Joseda-hg/distributor/internal/db"
	"github.com/Joseda-hg/distributor/internal/journal"
	"github.com/Joseda-hg/distributor/internal/model"
	"github.com/Joseda-hg/distributor/internal/status"
	"github.com/Joseda-hg/distributor/internal/workflow"
)

// Journal is the submission record the API writes to and lists.
type Journal interface {
	workflow.Recorder
	List(ctx context.Context, limit int) ([]journal.Entry, error)
}

type Server struct {
	refs    workflow.ReferenceLoader
	store   workflow.Upserter
	journal Journal
}

type taskRequest struct {
	Name     string `json:"name"`
	Copies   int    `json:"copies"`
	Type     string `json:"type"`
	Magazine string `json:"magazine"`
	Release  string `json:"release"`
	Business string `json:"business"`
	Worker   string `json:"worker"`
	Job      string `json:"job"`
	JobDate  string `json:"job_date" binding:"required"`
}

type outcomeResponse struct {
	OK        bool   `json:"ok"`
	Code      *int   `json:"code,omitempty"`
	Category  string `json:"category"`
	Reason    string `json:"reason"`
	Reference string `json:"reference,omitempty"`
	Message   string `json:"message"`
	Raw       string `json:"raw,omitempty"`
}

// NewServer wires the API. journal may be nil, in which case submissions are
// not recorded and the journal route reports it as unavailable.
func NewServer(refs workflow.ReferenceLoader, store workflow.Upserter, journal Journal) *Server {
	return &Server{refs: refs, store: store, journal: journal}
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		ref := api.Group("/reference")
		ref.GET("/task-types", s.tableHandler(s.refs.TaskTypes, db.Table.Values))
		ref.GET("/magazines", s.tableHandler(s.refs.Magazines, db.Table.Values))
		ref.GET("/businesses", s.tableHandler(s.refs.Businesses, db.Table.Values))
		ref.GET("/workers", s.tableHandler(s.refs.Owners, db.Table.Pairs))
		ref.GET("/releases", s.releasesHandler)
		ref.GET("/jobs", s.jobsHandler)

		api.POST("/tasks", s.createTaskHandler)
		api.PUT("/tasks/:id", s.updateTaskHandler)
		api.GET("/journal", s.journalHandler)
	}
	return router
}

func (s *Server) tableHandler(load func(context.Context) (db.Table, error), project func(db.Table) []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		table, err := load(c.Request.Context())
		if err != nil {
			writeError(c, dbStatus(err), err)
			return
		}
		writeValues(c, project(table))
	}
}

func (s *Server) releasesHandler(c *gin.Context) {
	magazine := strings.TrimSpace(c.Query("magazine"))
	if magazine == "" {
		writeError(c, http.StatusBadRequest, errors.New("magazine query parameter is required"))
		return
	}
	table, err := s.refs.Releases(c.Request.Context(), magazine)
	if err != nil {
		writeError(c, dbStatus(err), err)
		return
	}
	writeValues(c, table.Values())
}

func (s *Server) jobsHandler(c *gin.Context) {
	date, err := model.ParseDate(c.Query("date"))
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	table, err := s.refs.Jobs(c.Request.Context(), date)
	if err != nil {
		writeError(c, dbStatus(err), err)
		return
	}
	writeValues(c, table.Values())
}

func (s *Server) createTaskHandler(c *gin.Context) {
	s.submit(c, model.Insert())
}

func (s *Server) updateTaskHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, errors.New("task id must be a positive integer"))
		return
	}
	s.submit(c, model.Update(id))
}

func (s *Server) submit(c *gin.Context, mode model.Mode) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	task, err := req.task()
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	var opts []workflow.Option
	if s.journal != nil {
		opts = append(opts, workflow.WithJournal(s.journal))
	}
	submitter, err := workflow.NewSubmitter(s.store, mode, opts...)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	outcome, err := submitter.Submit(c.Request.Context(), task)
	if err != nil && outcome.Reason == "" {
		writeError(c, dbStatus(err), err)
		return
	}
	if outcome.Category == status.CategoryError {
		c.JSON(http.StatusBadGateway, newOutcomeResponse(outcome))
		return
	}
	c.JSON(http.StatusOK, newOutcomeResponse(outcome))
}

func (s *Server) journalHandler(c *gin.Context) {
	if s.journal == nil {
		writeError(c, http.StatusServiceUnavailable, errors.New("journal is not configured"))
		return
	}
	limit := 0
	if value := strings.TrimSpace(c.Query("limit")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			writeError(c, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}
	entries, err := s.journal.List(c.Request.Context(), limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (r taskRequest) task() (model.Task, error) {
	if r.Copies < 0 {
		return model.Task{}, errors.New("copies must not be negative")
	}
	date, err := model.ParseDate(r.JobDate)
	if err != nil {
		return model.Task{}, err
	}
	return model.Task{
		Name:     strings.TrimSpace(r.Name),
		Copies:   r.Copies,
		Type:     r.Type,
		Magazine: r.Magazine,
		Release:  r.Release,
		Business: r.Business,
		Worker:   strings.TrimSpace(r.Worker),
		Job:      r.Job,
		JobDate:  date,
	}, nil
}

func newOutcomeResponse(o status.Outcome) outcomeResponse {
	resp := outcomeResponse{
		OK:        o.OK(),
		Category:  o.Category.String(),
		Reason:    string(o.Reason),
		Reference: string(o.Reference),
		Message:   o.Message(),
		Raw:       o.Raw,
	}
	if o.Known() {
		code := int(o.Code)
		resp.Code = &code
	}
	return resp
}

// dbStatus maps data layer failures: the database is upstream of this API.
func dbStatus(err error) int {
	if db.IsInvalid(err) {
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}

func writeValues(c *gin.Context, values []string) {
	if values == nil {
		values = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"values": values})
}

func writeError(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{"error": err.Error()})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start),
		}).Info("http request")
	}
}
