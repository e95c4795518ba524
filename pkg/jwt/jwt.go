package jwt

import (
	"errors"
	"time"

	"clinic-scheduling/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RolePatient Role = "patient"
)

// Claims identifies the bearer. PatientID is zero for the administrator.
type Claims struct {
	PatientID int64  `json:"patient_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      Role   `json:"role"`
	TokenID   string `json:"token_id"`
	jwt.RegisteredClaims
}

// Owner is the stable owner key used for the token registry
func (c *Claims) Owner() string {
	if c.Role == RoleAdmin {
		return string(RoleAdmin)
	}
	return c.RegisteredClaims.Subject
}

type JWTService struct {
	config config.JWTConfig
	now    func() time.Time
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{config: cfg, now: time.Now}
}

// GenerateAccessToken signs a token for the given principal and returns the
// token and its id.
func (s *JWTService) GenerateAccessToken(role Role, subject string, patientID int64, email string) (string, string, error) {
	tokenID := uuid.New().String()
	now := s.now()
	claims := Claims{
		PatientID: patientID,
		Email:     email,
		Role:      role,
		TokenID:   tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", "", err
	}

	return signedToken, tokenID, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.Role != RoleAdmin && claims.Role != RolePatient {
		return nil, errors.New("invalid role")
	}

	return claims, nil
}

func (s *JWTService) GetAccessExpiry() time.Duration {
	return s.config.AccessExpiry
}
