package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pedalboard/internal/models"
	"pedalboard/internal/pedals"
)

type setPedalsRequest struct {
	Pedals []models.Pedal `json:"pedals"`
}

type moveRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// handleSetPedals commits a pedal sequence edited on the client.
func (s *Server) handleSetPedals(c *gin.Context) {
	var req setPedalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	board, err := s.store.SetPedals(c.Request.Context(), c.Param("id"), req.Pedals)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"pedalboard": board})
}

// handleAddPedal appends a new pedal at the end of the chain.
func (s *Server) handleAddPedal(c *gin.Context) {
	var req models.NewPedalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	var added models.Pedal
	board, err := s.store.EditPedals(c.Request.Context(), c.Param("id"), func(seq []models.Pedal) ([]models.Pedal, error) {
		next, pedal, err := pedals.Add(seq, req)
		added = pedal
		return next, err
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	// The store renumbers on commit; report the pedal as stored.
	if i := pedals.Index(board.Pedals, added.ID); i >= 0 {
		added = board.Pedals[i]
	}
	respondSuccess(c, http.StatusCreated, gin.H{"pedalboard": board, "pedal": added})
}

// handleRemovePedal drops a pedal and renumbers the rest.
func (s *Server) handleRemovePedal(c *gin.Context) {
	pedalID := c.Param("pedalId")
	board, err := s.store.EditPedals(c.Request.Context(), c.Param("id"), func(seq []models.Pedal) ([]models.Pedal, error) {
		if pedals.Index(seq, pedalID) < 0 {
			return nil, models.PedalNotFound(pedalID)
		}
		return pedals.Remove(seq, pedalID), nil
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"pedalboard": board})
}

// handleMovePedal swaps a pedal with its neighbour.
func (s *Server) handleMovePedal(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}
	dir, err := pedals.ParseDirection(req.Direction)
	if err != nil {
		s.respondError(c, err)
		return
	}

	pedalID := c.Param("pedalId")
	board, err := s.store.EditPedals(c.Request.Context(), c.Param("id"), func(seq []models.Pedal) ([]models.Pedal, error) {
		if pedals.Index(seq, pedalID) < 0 {
			return nil, models.PedalNotFound(pedalID)
		}
		return pedals.Move(seq, pedalID, dir), nil
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"pedalboard": board})
}
