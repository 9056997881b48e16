// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apitest provides an in-process fake of the Wayne Security API for
// tests. It is a gin engine behind an httptest.Server that issues HS256
// tokens, enforces the server-side role checks, and can be told to fail or
// stall specific routes.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jeranaias/wayne-tui/internal/dashboard"
	"github.com/jeranaias/wayne-tui/internal/model"
)

// Secret signs every token the fake issues.
const Secret = "wayne-test-secret"

// User is an account known to the fake.
type User struct {
	ID       int
	Username string
	Password string
	Role     string
}

// DefaultUsers mirrors the dashboard's demo accounts.
func DefaultUsers() []User {
	return []User{
		{ID: 1, Username: "funcionario", Password: "1234", Role: "funcionario"},
		{ID: 2, Username: "gerente", Password: "4321", Role: "gerente"},
		{ID: 3, Username: "admin", Password: "batman", Role: "admin"},
	}
}

// Request records one request the fake received.
type Request struct {
	Method    string
	Path      string
	Bearer    string
	RequestID string
}

type override struct {
	status int
	delay  time.Duration
	once   bool
}

// Server is the fake API.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	users      map[string]User
	resources  []model.Resource
	incidents  []model.Incident
	nextID     int
	roleClaim  bool
	tokenTTL   time.Duration
	overrides  map[string]*override
	requests   []Request
	adminSetup bool
}

// Option configures a Server.
type Option func(*Server)

// WithoutRoleClaim issues tokens carrying only sub and exp, like the
// original backend.
func WithoutRoleClaim() Option {
	return func(s *Server) { s.roleClaim = false }
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

// WithUsers replaces the account list.
func WithUsers(users ...User) Option {
	return func(s *Server) {
		s.users = make(map[string]User, len(users))
		for _, u := range users {
			s.users[u.Username] = u
		}
	}
}

// New starts a fake server that is closed when t finishes.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		nextID:    1,
		roleClaim: true,
		tokenTTL:  30 * time.Minute,
		overrides: map[string]*override{},
	}
	WithUsers(DefaultUsers()...)(s)
	for _, opt := range opts {
		opt(s)
	}

	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.record, s.applyOverrides)

	r.POST("/token", s.login)
	r.POST("/cadastro", s.register)
	r.POST("/setup-admin", s.setupAdmin)
	r.GET("/health", s.health)

	auth := r.Group("/", s.requireAuth)
	auth.GET("/recursos/", s.listResources)
	auth.POST("/recursos/", requireRole("gerente", "admin"), s.createResource)
	auth.DELETE("/recursos/:id", requireRole("gerente", "admin"), s.deleteResource)
	auth.GET("/incidentes/", s.listIncidents)
	auth.POST("/incidentes/", s.createIncident)
	auth.DELETE("/incidentes/:id", requireRole("gerente", "admin"), s.deleteIncident)
	auth.GET("/dashboard/stats", s.stats)
	return r
}

// =============================================================================
// TEST CONTROLS
// =============================================================================

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// Fail makes every request to method+path answer status.
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[routeKey(method, path)] = &override{status: status}
}

// FailOnce makes the next request to method+path answer status.
func (s *Server) FailOnce(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[routeKey(method, path)] = &override{status: status, once: true}
}

// FailOnceAfter makes the next request to method+path answer status after
// stalling for d.
func (s *Server) FailOnceAfter(method, path string, status int, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[routeKey(method, path)] = &override{status: status, delay: d, once: true}
}

// DelayOnce stalls the next request to method+path by d before handling it.
func (s *Server) DelayOnce(method, path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[routeKey(method, path)] = &override{delay: d, once: true}
}

// Clear removes every failure and delay.
func (s *Server) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = map[string]*override{}
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Token issues a token for username as if it had logged in.
func (s *Server) Token(username string) string {
	s.mu.Lock()
	u := s.users[username]
	s.mu.Unlock()
	tok, err := s.issue(u)
	if err != nil {
		panic(err)
	}
	return tok
}

// SeedResource stores r with a fresh id and returns it.
func (s *Server) SeedResource(r model.Resource) model.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextID
	s.nextID++
	r.CreatedAt = model.Timestamp{Time: time.Now().UTC()}
	s.resources = append(s.resources, r)
	return r
}

// SeedIncident stores i with a fresh id and returns it.
func (s *Server) SeedIncident(i model.Incident) model.Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	i.ID = s.nextID
	s.nextID++
	i.CreatedAt = model.Timestamp{Time: time.Now().UTC()}
	s.incidents = append(s.incidents, i)
	return i
}

// Resources returns the server-side resources.
func (s *Server) Resources() []model.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Resource(nil), s.resources...)
}

// Incidents returns the server-side incidents.
func (s *Server) Incidents() []model.Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Incident(nil), s.incidents...)
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		Bearer:    strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "),
		RequestID: c.GetHeader("X-Request-ID"),
	})
	s.mu.Unlock()
	c.Next()
}

func (s *Server) applyOverrides(c *gin.Context) {
	key := routeKey(c.Request.Method, c.Request.URL.Path)
	s.mu.Lock()
	o := s.overrides[key]
	if o != nil && o.once {
		delete(s.overrides, key)
	}
	s.mu.Unlock()

	if o == nil {
		c.Next()
		return
	}
	if o.delay > 0 {
		select {
		case <-time.After(o.delay):
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}
	if o.status != 0 {
		c.AbortWithStatusJSON(o.status, gin.H{"detail": fmt.Sprintf("forced %d", o.status)})
		return
	}
	c.Next()
}

func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(Secret), nil
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Credenciais inválidas"})
		return
	}

	sub, _ := claims.GetSubject()
	s.mu.Lock()
	u, ok := s.users[sub]
	s.mu.Unlock()
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Credenciais inválidas"})
		return
	}
	c.Set("user", u)
	c.Next()
}

func requireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet("user").(User)
		for _, r := range roles {
			if u.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Sem permissão"})
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) issue(u User) (string, error) {
	claims := jwt.MapClaims{
		"sub": u.Username,
		"exp": time.Now().Add(s.tokenTTL).Unix(),
	}
	if s.roleClaim {
		claims["role"] = u.Role
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(Secret))
}

func (s *Server) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	s.mu.Lock()
	u, ok := s.users[username]
	s.mu.Unlock()
	if !ok || u.Password != password {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Usuário ou senha incorretos"})
		return
	}

	tok, err := s.issue(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.TokenResponse{AccessToken: tok, TokenType: "bearer"})
}

func (s *Server) register(c *gin.Context) {
	var reg model.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": err.Error()}}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[reg.Username]; exists {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Usuário já existe"})
		return
	}
	id := len(s.users) + 100
	s.users[reg.Username] = User{ID: id, Username: reg.Username, Password: reg.Senha, Role: reg.Role}
	c.JSON(http.StatusOK, gin.H{"id": id, "username": reg.Username, "nome": reg.Nome, "email": reg.Email, "role": reg.Role})
}

func (s *Server) setupAdmin(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adminSetup {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Já existe um usuário admin"})
		return
	}
	s.adminSetup = true
	c.JSON(http.StatusOK, model.MessageResponse{Message: "Usuário admin criado com sucesso"})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, model.Health{Status: "healthy", Timestamp: time.Now().UTC().Format(time.RFC3339), Database: "connected"})
}

func (s *Server) listResources(c *gin.Context) {
	c.JSON(http.StatusOK, s.Resources())
}

func (s *Server) createResource(c *gin.Context) {
	var in model.ResourceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": err.Error()}}})
		return
	}
	u := c.MustGet("user").(User)
	r := s.SeedResource(model.Resource{Tipo: in.Tipo, Nome: in.Nome, Status: in.Status, Localizacao: in.Localizacao, CriadoPor: u.ID})
	c.JSON(http.StatusOK, r)
}

func (s *Server) deleteResource(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "id inválido"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.resources {
		if r.ID == id {
			s.resources = append(s.resources[:i], s.resources[i+1:]...)
			c.JSON(http.StatusOK, model.MessageResponse{Message: "Recurso removido com sucesso"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Recurso não encontrado"})
}

func (s *Server) listIncidents(c *gin.Context) {
	c.JSON(http.StatusOK, s.Incidents())
}

func (s *Server) createIncident(c *gin.Context) {
	var in model.IncidentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": err.Error()}}})
		return
	}
	u := c.MustGet("user").(User)
	i := s.SeedIncident(model.Incident{
		Titulo:    in.Titulo,
		Gravidade: in.Gravidade,
		Status:    in.Status,
		Descricao: in.Descricao,
		RecursoID: in.RecursoID,
		CriadoPor: u.ID,
	})
	c.JSON(http.StatusOK, i)
}

func (s *Server) deleteIncident(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "id inválido"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, inc := range s.incidents {
		if inc.ID == id {
			s.incidents = append(s.incidents[:i], s.incidents[i+1:]...)
			c.JSON(http.StatusOK, model.MessageResponse{Message: "Incidente removido com sucesso"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Incidente não encontrado"})
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, dashboard.ComputeStats(s.Resources(), s.Incidents()))
}
