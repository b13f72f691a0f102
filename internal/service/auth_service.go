package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"voicenotes-be/internal/config"
	"voicenotes-be/internal/dto"
	"voicenotes-be/internal/entity"
	"voicenotes-be/internal/pkg/apperror"
	"voicenotes-be/internal/repository/specification"
	"voicenotes-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const refreshTokenKeyPrefix = "refresh_token:"

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, req *dto.LogoutRequest) error
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	rdb        *redis.Client
	cfg        config.AuthConfig
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, rdb *redis.Client, cfg config.AuthConfig) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		rdb:        rdb,
		cfg:        cfg,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Validation("email", "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	return &dto.RegisterResponse{Id: user.Id, Email: user.Email}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Same answer as a bad password, so login can't probe for accounts.
		return nil, apperror.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.LoginResponse, error) {
	userIdStr, err := s.rdb.Get(ctx, refreshTokenKeyPrefix+req.RefreshToken).Result()
	if err == redis.Nil {
		return nil, apperror.Unauthorized("invalid refresh token")
	}
	if err != nil {
		return nil, apperror.Storage(err)
	}

	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return nil, apperror.Unauthorized("invalid refresh token")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Unauthorized("invalid refresh token")
	}

	// Rotate: the presented token is single-use.
	if err := s.rdb.Del(ctx, refreshTokenKeyPrefix+req.RefreshToken).Err(); err != nil {
		return nil, apperror.Storage(err)
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	if err := s.rdb.Del(ctx, refreshTokenKeyPrefix+req.RefreshToken).Err(); err != nil {
		return apperror.Storage(err)
	}
	return nil
}

func (s *authService) issueTokens(ctx context.Context, user *entity.User) (*dto.LoginResponse, error) {
	expiresAt := time.Now().Add(s.cfg.AccessTokenTTL)

	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := s.rdb.Set(ctx, refreshTokenKeyPrefix+refreshToken, user.Id.String(), s.cfg.RefreshTokenTTL).Err(); err != nil {
		return nil, apperror.Storage(err)
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User: dto.UserInfo{
			Id:       user.Id,
			Email:    user.Email,
			FullName: user.FullName,
		},
	}, nil
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
