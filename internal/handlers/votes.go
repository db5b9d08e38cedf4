package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/alx-polly/backend/internal/repo"
	"github.com/alx-polly/backend/internal/services/voting"
	"github.com/gin-gonic/gin"
)

type VoteService interface {
	SubmitVote(ctx context.Context, pollID, optionID string, userID *string, voterIP string) error
	VotesByUser(ctx context.Context, pollID, userID string) ([]string, error)
}

type VoteHandler struct {
	voting VoteService
}

type SubmitVoteRequest struct {
	OptionID string `json:"optionId" binding:"required"`
}

func NewVoteHandler(voteService VoteService) *VoteHandler {
	return &VoteHandler{voting: voteService}
}

func (h *VoteHandler) SubmitVote(c *gin.Context) {
	var req SubmitVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "optionId is required"})
		return
	}

	pollID := c.Param("id")

	var userID *string
	if id, ok := userIDFromContext(c); ok {
		userID = &id
	}

	err := h.voting.SubmitVote(c.Request.Context(), pollID, req.OptionID, userID, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrPollNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "poll not found"})
		case errors.Is(err, repo.ErrOptionNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "option does not belong to this poll"})
		case errors.Is(err, voting.ErrVoteNotAllowed):
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot vote on this poll"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit vote"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetMyVotes returns the caller's chosen option ids; anonymous callers get an
// empty list.
func (h *VoteHandler) GetMyVotes(c *gin.Context) {
	pollID := c.Param("id")

	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"optionIds": []string{}})
		return
	}

	optionIDs, err := h.voting.VotesByUser(c.Request.Context(), pollID, userID)
	if err != nil {
		if errors.Is(err, repo.ErrPollNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "poll not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load votes"})
		return
	}
	if optionIDs == nil {
		optionIDs = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"optionIds": optionIDs})
}
