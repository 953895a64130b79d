// Package service 提供业务逻辑层的实现
package service

import (
	"context"
	"errors"
	"time"

	"ai-chat-server/internal/repository"
	"ai-chat-server/pkg/util"
)

// 用户相关业务错误
var (
	ErrOldPasswordWrong = errors.New("old password is wrong") // 原密码错误
)

// UserService 用户服务
// 处理个人资料查询、修改密码和注销账号
type UserService struct {
	userRepo         *repository.UserRepository
	conversationRepo *repository.ConversationRepository
}

// NewUserService 创建 UserService 实例
func NewUserService(userRepo *repository.UserRepository, conversationRepo *repository.ConversationRepository) *UserService {
	return &UserService{
		userRepo:         userRepo,
		conversationRepo: conversationRepo,
	}
}

// ProfileResponse 个人资料响应
type ProfileResponse struct {
	UserID            int64     `json:"user_id"`            // 用户 ID
	Username          string    `json:"username"`           // 用户名
	CreatedAt         time.Time `json:"created_at"`         // 注册时间
	ConversationCount int64     `json:"conversation_count"` // 对话数量
}

// GetProfile 获取个人资料
// 参数:
//   - ctx: 上下文
//   - userID: 当前用户ID
//
// 返回:
//   - *ProfileResponse: 个人资料
//   - error: 用户不存在返回 ErrUserNotFound
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*ProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	count, err := s.conversationRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileResponse{
		UserID:            user.ID,
		Username:          user.Username,
		CreatedAt:         user.CreatedAt,
		ConversationCount: count,
	}, nil
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"` // 原密码
	NewPassword string `json:"new_password" binding:"required"` // 新密码
}

// ChangePassword 修改密码
// 参数:
//   - ctx: 上下文
//   - userID: 当前用户ID
//   - req: 修改密码请求
//
// 返回:
//   - error: 原密码错误/新密码过短等
func (s *UserService) ChangePassword(ctx context.Context, userID int64, req *ChangePasswordRequest) error {
	// 1. 校验新密码长度
	if len(req.NewPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	// 2. 查找用户并验证原密码
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !util.CheckPassword(req.OldPassword, user.PasswordHash) {
		return ErrOldPasswordWrong
	}

	// 3. 写入新密码哈希
	passwordHash, err := util.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, userID, passwordHash)
}

// DeleteAccount 注销账号
// 删除用户及其全部对话，不可恢复
// 参数:
//   - ctx: 上下文
//   - userID: 当前用户ID
//
// 返回:
//   - error: 数据库错误
func (s *UserService) DeleteAccount(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.userRepo.Delete(ctx, userID)
}
