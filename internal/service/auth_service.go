package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/config"
	"github.com/text-materials-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// accessClaims is the payload of an access token
type accessClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// authService is the concrete implementation of AuthService
type authService struct {
	*deps
	cfg  *config.AuthConfig
	bans BanService
	log  zerolog.Logger
}

func newAuthService(d *deps, cfg *config.AuthConfig, bans BanService) *authService {
	return &authService{
		deps: d,
		cfg:  cfg,
		bans: bans,
		log:  d.log.With().Str("service", "auth").Logger(),
	}
}

// Register creates an account with a bcrypt password hash
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	existing, err := s.repos.User.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, wrap(err, "failed to look up user")
	}
	if existing != nil {
		return nil, conflict("user with email %s already exists", strings.ToLower(req.Email))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, wrap(err, "failed to hash password")
	}

	user := &models.User{
		Username:             req.Username,
		Email:                req.Email,
		PasswordHash:         string(hash),
		ReceiveNotifications: true,
		Roles:                []string{},
		CreatedAt:            s.now().UTC(),
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		return nil, wrap(err, "failed to create user")
	}

	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	return user, nil
}

// Login verifies credentials and issues an access token. Banned users are
// refused while their ban is active.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	user, err := s.repos.User.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, wrap(err, "failed to look up user")
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, unauthorized("invalid email or password")
	}

	ban, err := s.bans.ActiveBan(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if ban != nil {
		return nil, bannedError(ban)
	}

	now := s.now()
	expires := now.Add(s.cfg.AccessTTL)
	claims := accessClaims{
		Roles: user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, wrap(err, "failed to sign token")
	}

	s.log.Info().Int64("user_id", user.ID).Msg("User logged in")
	return &models.AuthResponse{AccessToken: token, ExpiresAt: expires.UTC(), User: user}, nil
}

// ParseToken validates an access token and returns the caller identity
func (s *authService) ParseToken(token string) (*models.Identity, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, unauthorized("access token expired")
		}
		return nil, unauthorized("invalid access token")
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, unauthorized("invalid access token subject")
	}
	return &models.Identity{UserID: id, Roles: claims.Roles}, nil
}

func bannedError(ban *models.Ban) *Error {
	msg := fmt.Sprintf("user is banned until %s", ban.Expires.UTC().Format("2006-01-02 15:04"))
	if ban.Reason != "" {
		msg += ": " + ban.Reason
	}
	return forbidden("%s", msg)
}
