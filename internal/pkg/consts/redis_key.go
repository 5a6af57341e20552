package consts

const (
	UserFollowerCountKey  = "user:follower:count:"
	UserFollowingCountKey = "user:following:count:"
	UserFollowDirtyKey    = "user:follow:dirty"
	PostLikeKey           = "post:like:"
	PostLikeDirtyKey      = "post:like:dirty"
	PostCommentKey        = "post:comment:"
	NotifyUnreadKey       = "notify:unread:count:"
	TokenKey              = "token:"
	TokenConsumedKey      = "token:consumed:"
	TokenIndexKey         = "token:index:"
)
