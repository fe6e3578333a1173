package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// rootFiles are served verbatim from the web client's build directory.
var rootFiles = []string{"favicon.ico", "manifest.webmanifest", "robots.txt", "sw.js"}

// mountStatic serves the built mobile web client from the configured directory.
// Unknown /api paths always get a JSON 404; other unknown paths fall back to
// index.html so client-side routes such as /pedalboard/:id resolve.
func (s *Server) mountStatic() {
	indexPath := s.clientIndex()

	s.engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || indexPath == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
			return
		}
		c.File(indexPath)
	})
	if indexPath == "" {
		return
	}

	s.engine.GET("/", func(c *gin.Context) {
		c.File(indexPath)
	})

	assetsDir := filepath.Join(s.staticDir, "assets")
	if _, err := os.Stat(assetsDir); err == nil {
		s.engine.StaticFS("/assets", gin.Dir(assetsDir, false))
	}

	for _, name := range rootFiles {
		path := filepath.Join(s.staticDir, name)
		if _, err := os.Stat(path); err == nil {
			s.engine.StaticFile("/"+name, path)
		}
	}
}

// clientIndex returns the path of index.html, or "" in API only mode.
func (s *Server) clientIndex() string {
	if s.staticDir == "" {
		s.logger.Warn("static directory not configured; API only mode")
		return ""
	}

	info, err := os.Stat(s.staticDir)
	if err != nil || !info.IsDir() {
		s.logger.Warn("static directory missing; API only mode", "path", s.staticDir, "error", err)
		return ""
	}

	indexPath := filepath.Join(s.staticDir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		s.logger.Warn("index.html not found; API only mode", "path", indexPath, "error", err)
		return ""
	}
	return indexPath
}
