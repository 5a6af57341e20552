package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid          = errors.New("参数错误")
	ErrUserNotFound          = errors.New("用户不存在")
	ErrUserExist             = errors.New("邮箱已注册")
	ErrUserNotVerified       = errors.New("邮箱未验证")
	ErrUserDisabled          = errors.New("账号已停用")
	ErrPasswordIncorrect     = errors.New("密码错误")
	ErrUserFollowSelf        = errors.New("用户不能关注自己")
	ErrUserFollowLimit       = errors.New("用户关注数量超过限制")
	ErrPostNotFound          = errors.New("帖子不存在")
	ErrPostCommentNotFound   = errors.New("评论不存在")
	ErrNotOwner              = errors.New("没有操作权限")
	ErrNotificationNotFound  = errors.New("通知不存在")
	ErrTokenNotFound         = errors.New("令牌不存在")
	ErrTokenExpired          = errors.New("令牌已过期")
	ErrTokenAlreadyConsumed  = errors.New("令牌已被使用")
	UnExpectedError          = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:         BadRequest,
	ErrUserNotFound:         NotFound,
	ErrUserExist:            BadRequest,
	ErrUserNotVerified:      Unauthorized,
	ErrUserDisabled:         Unauthorized,
	ErrPasswordIncorrect:    Unauthorized,
	ErrUserFollowSelf:       BadRequest,
	ErrUserFollowLimit:      BadRequest,
	ErrPostNotFound:         NotFound,
	ErrPostCommentNotFound:  NotFound,
	ErrNotOwner:             Forbidden,
	ErrNotificationNotFound: NotFound,
	ErrTokenNotFound:        NotFound,
	ErrTokenExpired:         Unauthorized,
	ErrTokenAlreadyConsumed: Unauthorized,
	UnExpectedError:         InternalServerError,
}
