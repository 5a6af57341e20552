package consts

const (
	TokenPurposeVerifyEmail   = "verify-email"
	TokenPurposeResetPassword = "reset-password"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)
