// Package server exposes the MDP agent over HTTP. Every game registers its
// maze once and then asks for one action per tick.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zeu5/maze-mdp/maze"
	"github.com/zeu5/maze-mdp/mdp"
)

// Config of the decision server
type Config struct {
	Profiles    *mdp.ProfileTable
	Convergence mdp.Convergence
	WarmStart   bool
	Logger      *log.Logger
}

type session struct {
	mu    sync.Mutex
	agent *mdp.Agent
}

// Server keeps one agent per game
type Server struct {
	config Config
	logger *log.Logger
	engine *gin.Engine

	mu    sync.Mutex
	games map[string]*session
}

func New(config Config) *Server {
	if config.Profiles == nil {
		config.Profiles = mdp.DefaultProfiles()
	}
	if config.Convergence == "" {
		config.Convergence = mdp.SupNorm
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("server")
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		config: config,
		logger: logger,
		engine: gin.New(),
		games:  make(map[string]*session),
	}
	s.engine.Use(gin.Recovery(), s.logRequests())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/profiles", s.profiles)
	s.engine.GET("/layouts", s.layouts)
	games := s.engine.Group("/games")
	{
		games.POST("", s.createGame)
		games.POST("/:id/action", s.action)
		games.DELETE("/:id", s.deleteGame)
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request", "method", c.Request.Method, "path", c.FullPath(),
			"status", c.Writer.Status(), "latency", time.Since(start))
	}
}

// Handler serves the API
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve listens on addr until ctx is done
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Games currently registered
func (s *Server) Games() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

func (s *Server) session(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	return g, ok
}

func (s *Server) profiles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"profiles": s.config.Profiles.Profiles()})
}

func (s *Server) layouts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"layouts": maze.BuiltinLayouts()})
}

func (s *Server) createGame(c *gin.Context) {
	var request CreateGameRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	layout, err := request.layout()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	opts := []mdp.Option{
		mdp.WithProfiles(s.config.Profiles),
		mdp.WithConvergence(s.config.Convergence),
		mdp.WithLogger(s.logger),
	}
	if s.config.WarmStart {
		opts = append(opts, mdp.WithWarmStart())
	}
	if request.Profile != "" {
		opts = append(opts, mdp.WithProfileName(request.Profile))
	}
	agent := mdp.NewAgent(opts...)
	if err := agent.RegisterInitialState(layout); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.games[id] = &session{agent: agent}
	s.mu.Unlock()

	s.logger.Info("game created", "id", id, "profile", agent.Profile().Name)
	c.JSON(http.StatusCreated, CreateGameResponse{ID: id, Profile: agent.Profile()})
}

func (s *Server) action(c *gin.Context) {
	g, ok := s.session(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown game"})
		return
	}
	var obs mdp.Observation
	if err := c.ShouldBindJSON(&obs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, d := range obs.Legal {
		if _, err := maze.ParseDirection(string(d)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	g.mu.Lock()
	decision, err := g.agent.Decide(obs)
	g.mu.Unlock()
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, mdp.ErrNotConverged) {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ActionResponse{
		Action:   decision.Action,
		Sweeps:   decision.Stats.Sweeps,
		Residual: decision.Stats.Residual,
	})
}

func (s *Server) deleteGame(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	_, ok := s.games[id]
	delete(s.games, id)
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown game"})
		return
	}
	c.Status(http.StatusNoContent)
}
