package handler

import (
	"Lattice/internal/api/dto"
	"Lattice/internal/pkg/consts"
	"Lattice/internal/pkg/response"
	"Lattice/internal/pkg/util"
	"Lattice/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PostActionHandler struct {
	actionSvc service.PostActionService
}

func NewPostActionHandler(actionSvc service.PostActionService) *PostActionHandler {
	return &PostActionHandler{actionSvc: actionSvc}
}

func (s *PostActionHandler) LikePost(c *gin.Context) {
	userId := c.GetUint64("user_id")
	postId, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	err = s.actionSvc.LikePost(c.Request.Context(), userId, postId)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostActionHandler) CancelLikePost(c *gin.Context) {
	userId := c.GetUint64("user_id")
	postId, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	err = s.actionSvc.CancelLikePost(c.Request.Context(), userId, postId)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostActionHandler) GetPostLikeCount(c *gin.Context) {
	postId, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	count, err := s.actionSvc.GetPostLikeCount(c.Request.Context(), postId)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]int64{"count": count})
}

func (s *PostActionHandler) CreateComment(c *gin.Context) {
	userId := c.GetUint64("user_id")
	var req dto.CommentCreateDTO
	err := c.ShouldBind(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}
	err = s.actionSvc.CreateComment(c.Request.Context(), userId, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostActionHandler) UpdateComment(c *gin.Context) {
	userId := c.GetUint64("user_id")
	commentId, err := strconv.ParseUint(c.Param("comment_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	var req dto.CommentUpdateDTO
	if err = c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err = util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}
	err = s.actionSvc.UpdateComment(c.Request.Context(), userId, commentId, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostActionHandler) DeleteComment(c *gin.Context) {
	userId := c.GetUint64("user_id")
	commentId, err := strconv.ParseUint(c.Param("comment_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	err = s.actionSvc.DeleteComment(c.Request.Context(), userId, commentId)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostActionHandler) GetComments(c *gin.Context) {
	postId, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	cursor := c.Query("cursor")
	limit := getLimit(c)

	page, err := s.actionSvc.GetCommentsByPostID(c.Request.Context(), postId, cursor, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

// getLimit 解析分页大小并夹在 [1, MaxPageSize] 内
func getLimit(c *gin.Context) int {
	limitStr := c.DefaultQuery("limit", strconv.Itoa(consts.DefaultPageSize))
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = consts.DefaultPageSize
	}
	if limit > consts.MaxPageSize {
		limit = consts.MaxPageSize
	}
	return limit
}
