package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alx-polly/backend/internal/entity"
	"github.com/alx-polly/backend/internal/notify"
	"github.com/alx-polly/backend/internal/repo"
	"github.com/alx-polly/backend/internal/services/polls"
	"github.com/gin-gonic/gin"
)

type PollService interface {
	CreatePoll(ctx context.Context, creator entity.Profile, input polls.NewPoll) (string, polls.CreateOutcome, error)
	ListPolls(ctx context.Context, creatorID string) ([]entity.PollSummary, error)
	ClosePoll(ctx context.Context, id, userID string) error
	DeletePoll(ctx context.Context, id, userID string) error
}

type SnapshotProvider interface {
	Snapshot(ctx context.Context, pollID string) (notify.PollUpdate, error)
}

type PollHandler struct {
	polls     PollService
	snapshots SnapshotProvider
}

type CreatePollRequest struct {
	Title                   string     `json:"title" binding:"required"`
	Description             string     `json:"description"`
	Options                 []string   `json:"options" binding:"required"`
	AllowMultipleSelections bool       `json:"allowMultipleSelections"`
	IsPublic                *bool      `json:"isPublic"`
	EndDate                 *time.Time `json:"endDate"`
}

func NewPollHandler(pollService PollService, snapshots SnapshotProvider) *PollHandler {
	return &PollHandler{polls: pollService, snapshots: snapshots}
}

func (h *PollHandler) CreatePoll(c *gin.Context) {
	var req CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	creator, ok := profileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	// Polls are public unless the request says otherwise.
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	input := polls.NewPoll{
		Title:         req.Title,
		Description:   req.Description,
		Options:       req.Options,
		AllowMultiple: req.AllowMultipleSelections,
		IsPublic:      isPublic,
		EndDate:       req.EndDate,
	}

	pollID, _, err := h.polls.CreatePoll(c.Request.Context(), creator, input)
	if err != nil {
		if errors.Is(err, polls.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create poll"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"pollId": pollID})
}

func (h *PollHandler) GetPolls(c *gin.Context) {
	creatorID := c.Query("userId")

	list, err := h.polls.ListPolls(c.Request.Context(), creatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list polls"})
		return
	}
	if list == nil {
		list = []entity.PollSummary{}
	}

	c.JSON(http.StatusOK, gin.H{"polls": list})
}

func (h *PollHandler) GetPollByID(c *gin.Context) {
	pollID := c.Param("id")

	update, err := h.snapshots.Snapshot(c.Request.Context(), pollID)
	if err != nil {
		if errors.Is(err, repo.ErrPollNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "poll not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load poll"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"poll":    update.Poll,
		"options": update.Options,
		"stats":   update.Stats,
	})
}

func (h *PollHandler) ClosePoll(c *gin.Context) {
	pollID := c.Param("id")

	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.polls.ClosePoll(c.Request.Context(), pollID, userID); err != nil {
		writeOwnershipError(c, err, "failed to close poll")
		return
	}

	c.JSON(http.StatusOK, gin.H{"pollId": pollID})
}

func (h *PollHandler) DeletePoll(c *gin.Context) {
	pollID := c.Param("id")

	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.polls.DeletePoll(c.Request.Context(), pollID, userID); err != nil {
		writeOwnershipError(c, err, "failed to delete poll")
		return
	}

	c.JSON(http.StatusOK, gin.H{"pollId": pollID})
}

func writeOwnershipError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, polls.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "not the poll owner"})
	case errors.Is(err, repo.ErrPollNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "poll not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
