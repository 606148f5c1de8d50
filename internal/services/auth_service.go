package services

import (
	"errors"
	"time"

	"grivyzom/internal/domain"
	"grivyzom/internal/repos"

	"github.com/asaskevich/EventBus"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCreds     = errors.New("invalid username or password")
	ErrUserExists   = errors.New("username or email already taken")
	ErrBadToken     = errors.New("invalid or expired token")
	ErrUnknownEmail = errors.New("no account with that email")
)

// Bus topics. Auth only publishes; downstream subscribers (the grovs
// service) copy what they need and never call back into auth from inside a
// handler, so the auth->grovs sync cannot loop.
const (
	TopicLogin  = "auth.login"
	TopicLogout = "auth.logout"
)

type AuthService struct {
	Users       *repos.UserRepo
	Bus         EventBus.Bus
	TokenSecret []byte
}

func NewAuthService(users *repos.UserRepo, bus EventBus.Bus, secret string) *AuthService {
	return &AuthService{Users: users, Bus: bus, TokenSecret: []byte(secret)}
}

// Login accepts the email or the username as the identifier.
func (s *AuthService) Login(sid, ident, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(ident)
	if err != nil || u == nil {
		u, err = s.Users.ByUsername(ident)
	}
	if err != nil || u == nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	if s.Bus != nil {
		s.Bus.Publish(TopicLogin, u)
	}
	return u, nil
}

func (s *AuthService) Register(username, minecraftName, email, password string) (*domain.User, error) {
	if _, err := s.Users.ByUsername(username); err == nil {
		return nil, ErrUserExists
	}
	if _, err := s.Users.ByEmail(email); err == nil {
		return nil, ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:                uuid.NewString(),
		Username:          username,
		MinecraftUsername: minecraftName,
		Email:             email,
		Hash:              string(hash),
		Role:              domain.RolePlayer,
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	u, _ := s.Users.SessionUser(sid)
	if err := s.Users.UnbindSession(sid); err != nil {
		return err
	}
	if s.Bus != nil && u != nil {
		s.Bus.Publish(TopicLogout, u.ID)
	}
	return nil
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

// IssueResetToken signs a short-lived password-reset token for the account
// holding email. The token is stateless; expiry is the only revocation.
func (s *AuthService) IssueResetToken(email string) (string, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return "", ErrUnknownEmail
	}
	claims := jwt.RegisteredClaims{
		Subject:   u.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * time.Minute)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    "grivyzom-reset",
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.TokenSecret)
}

func (s *AuthService) ResetPassword(token, newPassword string) error {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return s.TokenSecret, nil
	}, jwt.WithIssuer("grivyzom-reset"))
	if err != nil || !parsed.Valid {
		return ErrBadToken
	}
	claims := parsed.Claims.(*jwt.RegisteredClaims)
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), 12)
	if err != nil {
		return err
	}
	return s.Users.UpdatePassword(claims.Subject, string(hash))
}
