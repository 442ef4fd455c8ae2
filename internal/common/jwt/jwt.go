// Package jwt 提供 JWT 令牌管理功能
package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 账号角色
const (
	RolePlatformAdmin = "platform_admin"
	RoleKitchenOwner  = "kitchen_owner"
	RoleManager       = "manager"
	RoleStaff         = "staff"
)

// 令牌类型
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Identity 签发令牌所需的身份信息
type Identity struct {
	AccountID    int64
	Role         string
	OwnerID      int64 // 店主账号
	RestaurantID int64 // 经理、员工所属餐厅
	UserID       int64 // 经理、员工的 users 记录
}

// Claims 自定义 JWT 声明
type Claims struct {
	AccountID    int64  `json:"account_id"`
	Role         string `json:"role"`
	OwnerID      int64  `json:"owner_id,omitempty"`
	RestaurantID int64  `json:"restaurant_id,omitempty"`
	UserID       int64  `json:"user_id,omitempty"`
	TokenType    string `json:"token_type"`
	jwt.RegisteredClaims
}

// Identity 从声明还原身份信息
func (c *Claims) Identity() Identity {
	return Identity{
		AccountID:    c.AccountID,
		Role:         c.Role,
		OwnerID:      c.OwnerID,
		RestaurantID: c.RestaurantID,
		UserID:       c.UserID,
	}
}

// Config JWT 配置
type Config struct {
	Secret            string
	AccessExpireTime  time.Duration
	RefreshExpireTime time.Duration
	Issuer            string
}

// Manager JWT 管理器
type Manager struct {
	config *Config
}

// TokenPair 令牌对
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// 预定义错误
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenNotActive = errors.New("token not active yet")
	ErrTokenWrongType = errors.New("wrong token type")
)

// NewManager 创建 JWT 管理器
func NewManager(config *Config) *Manager {
	return &Manager{
		config: config,
	}
}

// GenerateTokenPair 生成令牌对
func (m *Manager) GenerateTokenPair(id Identity) (*TokenPair, error) {
	now := time.Now()
	accessExpireAt := now.Add(m.config.AccessExpireTime)
	refreshExpireAt := now.Add(m.config.RefreshExpireTime)

	accessToken, err := m.generateToken(id, TokenTypeAccess, now, accessExpireAt)
	if err != nil {
		return nil, err
	}

	refreshToken, err := m.generateToken(id, TokenTypeRefresh, now, refreshExpireAt)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExpireAt.Unix(),
	}, nil
}

func (m *Manager) generateToken(id Identity, tokenType string, now, expireAt time.Time) (string, error) {
	claims := &Claims{
		AccountID:    id.AccountID,
		Role:         id.Role,
		OwnerID:      id.OwnerID,
		RestaurantID: id.RestaurantID,
		UserID:       id.UserID,
		TokenType:    tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   strconv.FormatInt(id.AccountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expireAt),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.Secret))
}

// ParseToken 解析令牌
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(m.config.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrTokenMalformed
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotActive
		}
		return nil, ErrTokenInvalid
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrTokenInvalid
}

// ParseAccessToken 解析访问令牌，拒绝刷新令牌
func (m *Manager) ParseAccessToken(tokenString string) (*Claims, error) {
	claims, err := m.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrTokenWrongType
	}
	return claims, nil
}

// RefreshToken 刷新令牌
func (m *Manager) RefreshToken(refreshTokenString string) (*TokenPair, error) {
	claims, err := m.ParseToken(refreshTokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, ErrTokenWrongType
	}

	return m.GenerateTokenPair(claims.Identity())
}
