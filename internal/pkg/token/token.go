package token

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// TypeViewer marks read-only dashboard tokens
const TypeViewer = "dashboard"

var ErrEmptySubject = errors.New("token subject is required")

type Service interface {
	GenerateViewerToken(subject string) (token string, expiresAt int64, err error)
	ValidateViewerToken(tokenString string) (subject string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	expiration time.Duration
	tokenAuth  *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, expiration time.Duration) Service {
	return &JWTService{
		expiration: expiration,
		tokenAuth:  jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// GenerateViewerToken issues a token that grants read access to the dashboard API
func (j *JWTService) GenerateViewerToken(subject string) (token string, expiresAt int64, err error) {
	if subject == "" {
		return "", 0, ErrEmptySubject
	}
	expiresAt = time.Now().Add(j.expiration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"sub":  subject,
		"type": TypeViewer,
		"exp":  expiresAt,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) ValidateViewerToken(tokenString string) (subject string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TypeViewer {
		return "", jwt.ErrInvalidJWT()
	}
	if token.Subject() == "" {
		return "", jwt.ErrInvalidJWT()
	}
	return token.Subject(), nil
}
