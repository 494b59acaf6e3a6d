package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// AccessTokenExpiry is the duration for which access tokens are valid.
	AccessTokenExpiry = 24 * time.Hour
	// RefreshTokenExpiry is the duration for which refresh tokens are valid.
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

// Token uses. Both kinds share a signing key, so every check names the use it accepts.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// ErrInvalidToken is returned when a token cannot be parsed or verified.
var ErrInvalidToken = errors.New("invalid token")

// ErrWrongTokenUse is returned when a valid token is presented for the other use.
var ErrWrongTokenUse = errors.New("wrong token use")

// Claims represents JWT claims. Subject carries the user id.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Use    string `json:"typ"`
	jwt.RegisteredClaims
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
	}
}

// Secret exposes the signing key for the echo-jwt middleware.
func (s *JWTService) Secret() []byte {
	return s.secret
}

func (s *JWTService) newClaims(userID uint, email, use, tokenID string, ttl time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		UserID: userID,
		Email:  email,
		Use:    use,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
}

// GenerateAccessToken generates a new access token for the user.
func (s *JWTService) GenerateAccessToken(userID uint, email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, s.newClaims(userID, email, TokenUseAccess, "", AccessTokenExpiry))
	return token.SignedString(s.secret)
}

// GenerateRefreshToken generates a new refresh token for the user.
// The refresh token ID is returned separately for storage in Redis.
func (s *JWTService) GenerateRefreshToken(userID uint, email string) (tokenID string, token string, err error) {
	tokenID = uuid.New().String()
	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, s.newClaims(userID, email, TokenUseRefresh, tokenID, RefreshTokenExpiry))
	token, err = tokenObj.SignedString(s.secret)
	return tokenID, token, err
}

// ValidateToken validates a JWT token of any use and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	return token.Claims.(*Claims), nil
}

// ValidateAccessToken validates a token and requires it to be an access token.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validateUse(tokenString, TokenUseAccess)
}

// ValidateRefreshToken validates a token and requires it to be a refresh token
// carrying a token ID.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	claims, err := s.validateUse(tokenString, TokenUseRefresh)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, errors.New("token ID not found")
	}
	return claims, nil
}

// ParseAccessToken is the echo-jwt ParseTokenFunc body: it returns the parsed
// token only for access tokens.
func (s *JWTService) ParseAccessToken(tokenString string) (*jwt.Token, error) {
	token, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if token.Claims.(*Claims).Use != TokenUseAccess {
		return nil, ErrWrongTokenUse
	}
	return token, nil
}

func (s *JWTService) validateUse(tokenString, use string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Use != use {
		return nil, ErrWrongTokenUse
	}
	return claims, nil
}

func (s *JWTService) parse(tokenString string) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return token, nil
}

// ExtractTokenID extracts the token ID (JTI) from a refresh token.
func (s *JWTService) ExtractTokenID(tokenString string) (string, error) {
	claims, err := s.ValidateRefreshToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.ID, nil
}

// Authenticate resolves an access token to its user id.
func (s *JWTService) Authenticate(token string) (uint, error) {
	claims, err := s.ValidateAccessToken(token)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}
