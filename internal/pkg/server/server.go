// Package server provides the generic HTTP API server shell the gateway's
// Gin engine runs inside: bind address and graceful listen/close,
// following the same Config → Complete → New lifecycle used by every other
// module in this codebase.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Config is the unvalidated server configuration.
type Config struct {
	Mode            string // gin.DebugMode | gin.ReleaseMode | gin.TestMode
	BindAddress     string
	BindPort        int
	ShutdownTimeout time.Duration
}

func NewConfig() *Config {
	return &Config{
		Mode:            gin.ReleaseMode,
		BindAddress:     "0.0.0.0",
		BindPort:        8080,
		ShutdownTimeout: 15 * time.Second,
	}
}

type CompletedConfig struct {
	*Config
}

func (c *Config) Complete() CompletedConfig {
	if c.BindAddress == "" {
		c.BindAddress = "0.0.0.0"
	}
	if c.BindPort == 0 {
		c.BindPort = 8080
	}
	if c.Mode == "" {
		c.Mode = gin.ReleaseMode
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 15 * time.Second
	}
	return CompletedConfig{c}
}

// GenericAPIServer wraps a *gin.Engine with a graceful http.Server.
type GenericAPIServer struct {
	Engine          *gin.Engine
	addr            string
	shutdownTimeout time.Duration
	httpServer      *http.Server
}

func (c CompletedConfig) New() (*GenericAPIServer, error) {
	gin.SetMode(c.Mode)
	engine := gin.New()
	return &GenericAPIServer{
		Engine:          engine,
		addr:            fmt.Sprintf("%s:%d", c.BindAddress, c.BindPort),
		shutdownTimeout: c.ShutdownTimeout,
	}, nil
}

// Run starts serving and blocks until the server is closed.
func (s *GenericAPIServer) Run() error {
	s.httpServer = &http.Server{Addr: s.addr, Handler: s.Engine}
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close performs a graceful shutdown bounded by the configured timeout.
func (s *GenericAPIServer) Close() {
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	_ = s.httpServer.Shutdown(ctx)
}

// Addr returns the bound address, useful for admin/health reporting.
func (s *GenericAPIServer) Addr() string { return s.addr }
