package handler

import (
	"Lattice/internal/pkg/response"
	"Lattice/internal/service"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feedSvc service.FeedService
}

func NewFeedHandler(feedSvc service.FeedService) *FeedHandler {
	return &FeedHandler{feedSvc: feedSvc}
}

func (s *FeedHandler) GetFeed(c *gin.Context) {
	userId := c.GetUint64("user_id")
	scope := c.DefaultQuery("scope", service.FeedScopeFollowing)
	cursor := c.Query("cursor")
	includeSelf := c.DefaultQuery("include_self", "false") == "true"
	limit := getLimit(c)

	page, err := s.feedSvc.ComposeFeed(c.Request.Context(), userId, scope, cursor, limit, includeSelf)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}
