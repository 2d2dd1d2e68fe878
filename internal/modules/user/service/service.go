package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"anoa.com/boardinghouse/internal/access"
	"anoa.com/boardinghouse/internal/modules/user/dto"
	"anoa.com/boardinghouse/internal/modules/user/repository"
	"anoa.com/boardinghouse/pkg/apperror"
	"anoa.com/boardinghouse/pkg/logger"
	"anoa.com/boardinghouse/pkg/ratelimit"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var errInvalidCredentials = fmt.Errorf("%w: no active account found with the given credentials", apperror.ErrUnauthorized)

type TokenClaims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// LoginThrottle is how long a username is locked after a failed login.
	LoginThrottle time.Duration
}

type AuthService interface {
	Login(ctx context.Context, input dto.TokenRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, input dto.RefreshRequest) (*dto.AccessResponse, error)
	// ParseAccessToken validates an access token and returns its user id.
	ParseAccessToken(token string) (uint, error)
	Me(ctx context.Context, principal access.Principal) (*dto.UserResponse, error)
}

type authService struct {
	repo  repository.UserRepository
	redis *redis.Client
	cfg   TokenConfig
	now   func() time.Time
}

// NewAuthService builds the token service. redisClient may be nil, which
// disables login throttling.
func NewAuthService(repo repository.UserRepository, redisClient *redis.Client, cfg TokenConfig) AuthService {
	return &authService{
		repo:  repo,
		redis: redisClient,
		cfg:   cfg,
		now:   time.Now,
	}
}

func (s *authService) Login(ctx context.Context, input dto.TokenRequest) (*dto.TokenResponse, error) {
	throttleKey := "login:" + strings.ToLower(input.Username)
	if err := s.checkThrottle(ctx, throttleKey); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.lockout(ctx, throttleKey)
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.lockout(ctx, throttleKey)
		return nil, errInvalidCredentials
	}

	if err := ratelimit.Clear(ctx, s.redis, throttleKey); err != nil {
		logger.FromContext(ctx).Warn("failed to clear login throttle", zap.Error(err))
	}

	accessToken, err := s.sign(user.ID, TokenTypeAccess, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user.ID, TokenTypeRefresh, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("user logged in", zap.Uint("user_id", user.ID))
	return &dto.TokenResponse{Access: accessToken, Refresh: refresh}, nil
}

func (s *authService) Refresh(ctx context.Context, input dto.RefreshRequest) (*dto.AccessResponse, error) {
	userID, err := s.parse(input.Refresh, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	accessToken, err := s.sign(userID, TokenTypeAccess, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	return &dto.AccessResponse{Access: accessToken}, nil
}

func (s *authService) ParseAccessToken(token string) (uint, error) {
	return s.parse(token, TokenTypeAccess)
}

func (s *authService) Me(ctx context.Context, principal access.Principal) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	resp := dto.NewUserResponse(user)
	resp.MemberID = principal.MemberID
	return &resp, nil
}

func (s *authService) sign(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := TokenClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (s *authService) parse(tokenString, wantType string) (uint, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("%w: token is invalid or expired", apperror.ErrUnauthorized)
	}

	if claims.TokenType != wantType {
		return 0, fmt.Errorf("%w: token has wrong type", apperror.ErrUnauthorized)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return 0, fmt.Errorf("%w: token contained no recognizable user identification", apperror.ErrUnauthorized)
	}
	return uint(userID), nil
}

func (s *authService) checkThrottle(ctx context.Context, key string) error {
	ttl, err := ratelimit.TTL(ctx, s.redis, key)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to read login throttle", zap.Error(err))
		return nil
	}
	if ttl <= 0 {
		return nil
	}

	seconds := int(math.Ceil(ttl.Seconds()))
	return apperror.New(http.StatusTooManyRequests,
		fmt.Sprintf("too many login attempts, try again in %d seconds", seconds),
		nil)
}

func (s *authService) lockout(ctx context.Context, key string) {
	if _, err := ratelimit.CheckAndSet(ctx, s.redis, key, s.cfg.LoginThrottle); err != nil {
		logger.FromContext(ctx).Warn("failed to set login throttle", zap.Error(err))
	}
}

// HashPassword is the bcrypt hash stored on entity.User.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
