package routes

import (
	"github.com/alx-polly/backend/internal/handlers"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Polls   *handlers.PollHandler
	Votes   *handlers.VoteHandler
	Updates *handlers.UpdatesHandler
}

func RegisterPublicRoutes(rg *gin.RouterGroup, h Handlers) {
	{
		rg.POST("/auth/register", h.Auth.Register)
		rg.POST("/auth/login", h.Auth.Login)
		rg.POST("/auth/refresh", h.Auth.Refresh)
		rg.POST("/auth/logout", h.Auth.Logout)

		rg.GET("/polls", h.Polls.GetPolls)
		rg.GET("/polls/:id", h.Polls.GetPollByID)
		rg.GET("/polls/:id/updates", h.Updates.Stream)
	}
}

// RegisterVoterRoutes attach to a group with optional auth: votes may be
// anonymous, but a signed-in identity is picked up when present.
func RegisterVoterRoutes(rg *gin.RouterGroup, h Handlers) {
	{
		rg.POST("/polls/:id/vote", h.Votes.SubmitVote)
		rg.GET("/polls/:id/votes", h.Votes.GetMyVotes)
	}
}

func RegisterPrivateRoutes(rg *gin.RouterGroup, h Handlers) {
	{
		rg.POST("/polls", h.Polls.CreatePoll)
		rg.POST("/polls/:id/close", h.Polls.ClosePoll)
		rg.DELETE("/polls/:id", h.Polls.DeletePoll)
	}
}
