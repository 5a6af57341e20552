package service

import (
	"Lattice/internal/api/config"
	"Lattice/internal/api/dto"
	"Lattice/internal/model"
	"Lattice/internal/pkg/consts"
	"Lattice/internal/pkg/redis"
	"Lattice/internal/pkg/security"
	"Lattice/internal/pkg/util"
	"context"
	"errors"
	log "log/slog"
	"time"

	"Lattice/internal/repository"

	"github.com/go-sql-driver/mysql"
	"github.com/jinzhu/copier"
)

func isDuplicateError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

type UserService interface {
	Register(ctx context.Context, dto *dto.RegisterDTO) error
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, dto *dto.CredentialDTO) (string, error)
	Logout(ctx context.Context, token string) error
	GetUserInfo(ctx context.Context, id uint64) (*dto.UserDTO, error)
	UpdateUserInfo(ctx context.Context, id uint64, req *dto.UserUpdateDTO) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPasswordFromToken(ctx context.Context, dto *dto.ResetPasswordDTO) error
	UpdatePasswordFromOld(ctx context.Context, id uint64, dto *dto.ChangePasswordDTO) error
	CancelUser(ctx context.Context, id uint64) error
}

type UserServiceImpl struct {
	userRepo repository.UserRepo
	tokenSvc TokenService
}

func NewUserService(userRepo repository.UserRepo, tokenSvc TokenService) UserService {
	return &UserServiceImpl{
		userRepo: userRepo,
		tokenSvc: tokenSvc,
	}
}

// Register 注册账号，初始为未验证状态，验证链接经邮件送达
func (s *UserServiceImpl) Register(ctx context.Context, regDTO *dto.RegisterDTO) error {
	findUser, err := s.userRepo.GetUserByEmail(ctx, regDTO.Email)
	if err != nil {
		return err
	}
	if findUser != nil {
		return ErrUserExist
	}

	passwordHash, err := security.HashPassword(regDTO.Password)
	if err != nil {
		return err
	}

	user := &model.User{
		Email:    regDTO.Email,
		Password: passwordHash,
		Nickname: regDTO.Nickname,
	}
	if err = s.userRepo.CreateUser(ctx, user); err != nil {
		// 与前置查重并发的注册请求在唯一索引上冲突
		if isDuplicateError(err) {
			return ErrUserExist
		}
		return err
	}

	token, err := s.tokenSvc.Issue(ctx, consts.TokenPurposeVerifyEmail, user.ID, s.verifyTTL())
	if err != nil {
		return err
	}

	go func(email, token string) {
		if err := util.SendVerifyMail(email, token); err != nil {
			log.Error("send verify mail failed", "email", email, "err", err)
		}
	}(user.Email, token)

	return nil
}

// VerifyEmail 消费验证令牌，将账号置为已验证
func (s *UserServiceImpl) VerifyEmail(ctx context.Context, token string) error {
	accountID, err := s.tokenSvc.Consume(ctx, token, consts.TokenPurposeVerifyEmail)
	if err != nil {
		return err
	}
	updated, err := s.userRepo.UpdateUserVerified(ctx, accountID, true)
	if err != nil {
		return err
	}
	if updated == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserServiceImpl) Login(ctx context.Context, credDTO *dto.CredentialDTO) (string, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, credDTO.Email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	if user.IsDisabled {
		return "", ErrUserDisabled
	}
	if !user.Verified {
		return "", ErrUserNotVerified
	}
	if err = security.CheckPasswordHash(credDTO.Password, user.Password); err != nil {
		return "", ErrPasswordIncorrect
	}

	return security.GenerateToken(user.ID)
}

// Logout 将 token 签名放进黑名单，在剩余有效期内拒绝
func (s *UserServiceImpl) Logout(ctx context.Context, token string) error {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return ErrParamInvalid
	}
	return redis.SetWithExpiration(ctx, signature, "revoked", security.JWTExpirationTime)
}

func (s *UserServiceImpl) GetUserInfo(ctx context.Context, id uint64) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetUserById(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsDisabled {
		return nil, ErrUserNotFound
	}

	userDTO := &dto.UserDTO{}
	_ = copier.Copy(userDTO, user)
	return userDTO, nil
}

// UpdateUserInfo 更新昵称和简介，零值字段不触碰
func (s *UserServiceImpl) UpdateUserInfo(ctx context.Context, id uint64, req *dto.UserUpdateDTO) error {
	user, err := s.userRepo.GetUserById(ctx, id)
	if err != nil {
		return err
	}
	if user == nil || user.IsDisabled {
		return ErrUserNotFound
	}
	return s.userRepo.UpdateUser(ctx, &model.User{
		ID:       id,
		Nickname: req.Nickname,
		Bio:      req.Bio,
	})
}

// RequestPasswordReset 签发重置令牌并发送重置邮件
// 为不泄露邮箱是否注册，邮箱不存在时同样静默返回成功
func (s *UserServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || user.IsDisabled {
		return nil
	}

	token, err := s.tokenSvc.Issue(ctx, consts.TokenPurposeResetPassword, user.ID, s.resetTTL())
	if err != nil {
		return err
	}

	go func(email, token string) {
		if err := util.SendResetPasswordMail(email, token); err != nil {
			log.Error("send reset mail failed", "email", email, "err", err)
		}
	}(user.Email, token)

	return nil
}

// ResetPasswordFromToken 消费重置令牌并更新密码
func (s *UserServiceImpl) ResetPasswordFromToken(ctx context.Context, resetDTO *dto.ResetPasswordDTO) error {
	accountID, err := s.tokenSvc.Consume(ctx, resetDTO.Token, consts.TokenPurposeResetPassword)
	if err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(resetDTO.Password)
	if err != nil {
		return err
	}
	return s.userRepo.UpdateUserPassword(ctx, accountID, passwordHash)
}

func (s *UserServiceImpl) UpdatePasswordFromOld(ctx context.Context, id uint64, changeDTO *dto.ChangePasswordDTO) error {
	user, err := s.userRepo.GetUserById(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err = security.CheckPasswordHash(changeDTO.OldPassword, user.Password); err != nil {
		return ErrPasswordIncorrect
	}

	passwordHash, err := security.HashPassword(changeDTO.NewPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdateUserPassword(ctx, id, passwordHash)
}

// CancelUser 软停用账号，已发内容与通知保留，读取时过滤
func (s *UserServiceImpl) CancelUser(ctx context.Context, id uint64) error {
	updated, err := s.userRepo.UpdateUserIsDisabled(ctx, id, true)
	if err != nil {
		return err
	}
	if updated == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserServiceImpl) verifyTTL() time.Duration {
	minutes := config.Cfg.Token.VerifyTTL
	if minutes <= 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}

func (s *UserServiceImpl) resetTTL() time.Duration {
	minutes := config.Cfg.Token.ResetTTL
	if minutes <= 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}
