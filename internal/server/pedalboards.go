package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pedalboard/internal/models"
	"pedalboard/internal/search"
)

// handleListPedalboards returns pedalboards, optionally filtered by ?q= and ?favorite=true.
func (s *Server) handleListPedalboards(c *gin.Context) {
	boards, err := s.store.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	boards = search.Search(boards, c.Query("q"))
	if raw := c.Query("favorite"); raw != "" {
		only, err := strconv.ParseBool(raw)
		if err != nil {
			s.respondError(c, models.NewValidationError("favorite", "must be a boolean"))
			return
		}
		if only {
			boards = search.Favorites(boards)
		}
	}
	respondSuccess(c, http.StatusOK, gin.H{"pedalboards": boards})
}

// handleCreatePedalboard saves a new pedalboard, optionally with its pedals.
func (s *Server) handleCreatePedalboard(c *gin.Context) {
	var req models.CreatePedalboardInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	board, err := s.store.Create(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"pedalboard": board})
}

// handleGetPedalboard fetches one pedalboard.
func (s *Server) handleGetPedalboard(c *gin.Context) {
	board, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"pedalboard": board})
}

// handleUpdatePedalboard renames a pedalboard or changes its description.
func (s *Server) handleUpdatePedalboard(c *gin.Context) {
	var req models.UpdatePedalboardInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	board, err := s.store.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"pedalboard": board})
}

// handleDeletePedalboard removes a pedalboard and all of its pedals.
func (s *Server) handleDeletePedalboard(c *gin.Context) {
	if err := s.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleToggleFavorite flips the favorite flag.
func (s *Server) handleToggleFavorite(c *gin.Context) {
	board, err := s.store.ToggleFavorite(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"pedalboard": board})
}
