// Package server is the bundled task service: a REST calendar backend
// with task storage and an AI schedule/chat advisor behind it. The TUI
// client speaks to this service or to any other deployment of the same
// contract.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/agrimitra/farmcal/internal/agent"
	"github.com/agrimitra/farmcal/internal/task"
)

const maxBodySize = 1 << 20

// Advisor produces AI schedules and chat replies. *agent.Agent is the
// production implementation.
type Advisor interface {
	Active() bool
	GenerateSchedule(ctx context.Context, crop, location, plantingDate string) ([]task.Task, error)
	ChatReply(ctx context.Context, message string, contextData map[string]any, history []agent.HistoryMessage) string
}

// Server hosts the REST endpoints over a Repository and an Advisor.
type Server struct {
	echo *echo.Echo
	repo Repository
	ai   Advisor
}

// New wires up routes and middleware.
func New(repo Repository, ai Advisor) *Server {
	s := &Server{echo: echo.New(), repo: repo, ai: ai}
	s.echo.HideBanner = true
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	s.echo.GET("/tasks", s.getTasks)
	s.echo.POST("/add_task", s.addTask)
	s.echo.PUT("/update_task/:id", s.updateTask)
	s.echo.DELETE("/delete_task/:id", s.deleteTask)
	s.echo.GET("/ai_status", s.aiStatus)
	s.echo.POST("/generate_schedule", s.generateSchedule)
	s.echo.POST("/chat", s.chat)
	s.echo.GET("/healthz", s.healthz)
	return s
}

// Handler exposes the routed mux, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving on addr.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// detail mirrors the error body the client extracts failure text from.
func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"detail": msg})
}

func decodeBody(c echo.Context, out any) error {
	lr := io.LimitReader(c.Request().Body, maxBodySize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func validDay(s string) bool {
	_, err := task.ParseDay(s)
	return err == nil
}

func (s *Server) healthz(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (s *Server) getTasks(c echo.Context) error {
	ctx := c.Request().Context()
	tasks, err := s.repo.List(ctx)
	if err != nil {
		log.Errorf("list tasks: %v", err)
		return detail(c, http.StatusInternalServerError, err.Error())
	}

	if start := c.QueryParam("start_date"); start != "" {
		if !validDay(start) {
			return detail(c, http.StatusBadRequest, "Invalid start_date format. Use YYYY-MM-DD")
		}
		kept := tasks[:0]
		for _, t := range tasks {
			if t.Date >= start {
				kept = append(kept, t)
			}
		}
		tasks = kept
	}
	if end := c.QueryParam("end_date"); end != "" {
		if !validDay(end) {
			return detail(c, http.StatusBadRequest, "Invalid end_date format. Use YYYY-MM-DD")
		}
		kept := tasks[:0]
		for _, t := range tasks {
			if t.Date <= end {
				kept = append(kept, t)
			}
		}
		tasks = kept
	}

	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Date < tasks[j].Date })
	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (s *Server) addTask(c echo.Context) error {
	var t task.Task
	if err := decodeBody(c, &t); err != nil {
		return detail(c, http.StatusBadRequest, "invalid body")
	}
	if t.Title == "" {
		return detail(c, http.StatusBadRequest, "Title cannot be empty")
	}
	if !validDay(t.Date) {
		return detail(c, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
	}

	t.ID = uuid.NewString()
	t.Completed = false
	t = t.Normalized()

	if err := s.repo.Add(c.Request().Context(), t); err != nil {
		log.Errorf("add task: %v", err)
		return detail(c, http.StatusInternalServerError, err.Error())
	}
	log.Infof("added task %q on %s", t.Title, t.Date)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Task added successfully",
		"task":    t,
	})
}

func (s *Server) updateTask(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	t, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return detail(c, http.StatusNotFound, "Task not found")
	}
	if err != nil {
		log.Errorf("update task: %v", err)
		return detail(c, http.StatusInternalServerError, err.Error())
	}

	var patch task.Patch
	if err := decodeBody(c, &patch); err != nil {
		return detail(c, http.StatusBadRequest, "invalid body")
	}
	if patch.Date != nil && !validDay(*patch.Date) {
		return detail(c, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
	}

	t = patch.Apply(t)
	if err := s.repo.Put(ctx, t); err != nil {
		log.Errorf("update task: %v", err)
		return detail(c, http.StatusInternalServerError, err.Error())
	}
	log.Infof("updated task %s", id)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Task updated successfully",
		"task":    t,
	})
}

func (s *Server) deleteTask(c echo.Context) error {
	id := c.Param("id")
	err := s.repo.Remove(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return detail(c, http.StatusNotFound, "Task not found")
	}
	if err != nil {
		log.Errorf("delete task: %v", err)
		return detail(c, http.StatusInternalServerError, err.Error())
	}
	log.Infof("deleted task %s", id)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Task deleted successfully",
		"task_id": id,
	})
}

func (s *Server) aiStatus(c echo.Context) error {
	if s.ai.Active() {
		return c.JSON(http.StatusOK, echo.Map{
			"status":  "active",
			"message": "AI is ready",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "inactive",
		"message": "AI is disabled. Please check API keys in .env file.",
	})
}

type scheduleInput struct {
	Crop         string `json:"crop"`
	Location     string `json:"location"`
	PlantingDate string `json:"planting_date"`
}

func (s *Server) generateSchedule(c echo.Context) error {
	if !s.ai.Active() {
		return detail(c, http.StatusServiceUnavailable, "AI service is currently unavailable. Please check server logs/keys.")
	}

	var in scheduleInput
	if err := decodeBody(c, &in); err != nil {
		return detail(c, http.StatusBadRequest, "invalid body")
	}
	if !validDay(in.PlantingDate) {
		return detail(c, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
	}

	ctx := c.Request().Context()
	log.Infof("generating schedule for %s in %s, planting on %s", in.Crop, in.Location, in.PlantingDate)
	batch, err := s.ai.GenerateSchedule(ctx, in.Crop, in.Location, in.PlantingDate)
	if err != nil {
		log.Errorf("schedule generation: %v", err)
		return detail(c, http.StatusInternalServerError, err.Error())
	}
	if len(batch) == 0 {
		return detail(c, http.StatusInternalServerError, "Failed to generate schedule. User may need to retry.")
	}

	for i := range batch {
		batch[i].ID = uuid.NewString()
		batch[i].Completed = false
		batch[i].Crop = in.Crop
		batch[i].Location = in.Location
		if batch[i].Date == "" {
			batch[i].Date = in.PlantingDate
		}
		batch[i] = batch[i].Normalized()
	}
	if err := s.repo.Add(ctx, batch...); err != nil {
		log.Errorf("store schedule: %v", err)
		return detail(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  fmt.Sprintf("Successfully generated %d tasks for %s", len(batch), in.Crop),
		"tasks":    batch,
		"crop":     in.Crop,
		"location": in.Location,
	})
}

type chatInput struct {
	Message string                 `json:"message"`
	Context map[string]any         `json:"context"`
	History []agent.HistoryMessage `json:"history"`
}

func (s *Server) chat(c echo.Context) error {
	var in chatInput
	if err := decodeBody(c, &in); err != nil {
		return detail(c, http.StatusBadRequest, "invalid body")
	}
	if in.Message == "" {
		return detail(c, http.StatusBadRequest, "Message cannot be empty")
	}
	reply := s.ai.ChatReply(c.Request().Context(), in.Message, in.Context, in.History)
	return c.JSON(http.StatusOK, echo.Map{"reply": reply})
}
