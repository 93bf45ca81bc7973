// Package service implements registration, login, and token refresh. Profile
// rows for requesters and contractors are created through registrar ports so
// this module stays decoupled from those contexts.
package service

import (
	"context"
	"errors"
	"time"

	"leadmarket_backend/internal/auth/password"
	"leadmarket_backend/internal/auth/repository"
	"leadmarket_backend/internal/auth/token"
	"leadmarket_backend/internal/auth/transport"
	"leadmarket_backend/platform/apperr"
	"leadmarket_backend/platform/config"
	"leadmarket_backend/platform/httpkit"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/phone"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Stable error codes returned to API clients.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeTokenInvalid       = "TOKEN_INVALID"
)

const (
	accessTokenType = "access"
	refreshTokenTTL = 30 * 24 * time.Hour
)

// RequesterRegistrar creates the requester profile for a new account.
type RequesterRegistrar interface {
	RegisterRequester(ctx context.Context, userID uuid.UUID, name, email, phone string) error
}

// ContractorRegistrar creates the contractor profile for a new account.
type ContractorRegistrar interface {
	RegisterContractor(ctx context.Context, userID uuid.UUID, name, businessName, licenseNumber, licenseClass string) error
}

type Service struct {
	repo        *repository.Repository
	requesters  RequesterRegistrar
	contractors ContractorRegistrar
	cfg         config.AuthServiceConfig
	log         *logger.Logger
}

func New(repo *repository.Repository, requesters RequesterRegistrar, contractors ContractorRegistrar, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		requesters:  requesters,
		contractors: contractors,
		cfg:         cfg,
		log:         log,
	}
}

// RegisterRequester creates a requester account and its profile.
func (s *Service) RegisterRequester(ctx context.Context, req transport.RegisterRequesterRequest) (transport.TokenResponse, error) {
	user, err := s.createUser(ctx, req.Email, req.Password, httpkit.RoleRequester)
	if err != nil {
		return transport.TokenResponse{}, err
	}

	if err := s.requesters.RegisterRequester(ctx, user.ID, req.Name, req.Email, phone.NormalizeE164(req.Phone)); err != nil {
		return transport.TokenResponse{}, apperr.Wrap(apperr.KindInternal, "could not create requester profile", err)
	}

	s.log.AuthEvent("register_requester", req.Email, true, "")
	return s.issueTokens(ctx, user)
}

// RegisterContractor creates a contractor account and its profile. The
// license starts in review; an admin must activate it before the contractor
// can receive leads.
func (s *Service) RegisterContractor(ctx context.Context, req transport.RegisterContractorRequest) (transport.TokenResponse, error) {
	user, err := s.createUser(ctx, req.Email, req.Password, httpkit.RoleContractor)
	if err != nil {
		return transport.TokenResponse{}, err
	}

	if err := s.contractors.RegisterContractor(ctx, user.ID, req.Name, req.BusinessName, req.LicenseNumber, req.LicenseClass); err != nil {
		return transport.TokenResponse{}, apperr.Wrap(apperr.KindInternal, "could not create contractor profile", err)
	}

	s.log.AuthEvent("register_contractor", req.Email, true, "")
	return s.issueTokens(ctx, user)
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.TokenResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		s.log.AuthEvent("login", req.Email, false, "unknown email")
		return transport.TokenResponse{}, apperr.Unauthorized("invalid credentials").WithCode(CodeInvalidCredentials)
	}

	if err := password.Compare(user.PasswordHash, req.Password); err != nil {
		s.log.AuthEvent("login", req.Email, false, "wrong password")
		return transport.TokenResponse{}, apperr.Unauthorized("invalid credentials").WithCode(CodeInvalidCredentials)
	}

	s.log.AuthEvent("login", req.Email, true, "")
	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token and issues a new pair.
func (s *Service) Refresh(ctx context.Context, rawToken string) (transport.TokenResponse, error) {
	hash := token.HashSHA256(rawToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return transport.TokenResponse{}, apperr.Unauthorized("invalid refresh token").WithCode(CodeTokenInvalid)
	}
	if time.Now().After(expiresAt) {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return transport.TokenResponse{}, apperr.Unauthorized("refresh token expired").WithCode(CodeTokenInvalid)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return transport.TokenResponse{}, apperr.Unauthorized("invalid refresh token").WithCode(CodeTokenInvalid)
	}

	_ = s.repo.RevokeRefreshToken(ctx, hash)
	return s.issueTokens(ctx, user)
}

// Logout revokes a refresh token.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	return s.repo.RevokeRefreshToken(ctx, token.HashSHA256(rawToken))
}

func (s *Service) createUser(ctx context.Context, email, plainPassword, role string) (repository.User, error) {
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "could not hash password", err)
	}

	user, err := s.repo.CreateUser(ctx, email, hash, role)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return repository.User{}, apperr.Conflict("email is already registered").WithCode(CodeEmailTaken)
		}
		return repository.User{}, apperr.Wrap(apperr.KindUnavailable, "temporary storage failure, try again", err)
	}
	return user, nil
}

func (s *Service) issueTokens(ctx context.Context, user repository.User) (transport.TokenResponse, error) {
	accessToken, err := s.signJWT(user.ID, []string{user.Role}, s.cfg.GetAccessTokenTTL())
	if err != nil {
		return transport.TokenResponse{}, apperr.Wrap(apperr.KindInternal, "could not sign token", err)
	}

	refreshToken, err := token.GenerateRandomToken(48)
	if err != nil {
		return transport.TokenResponse{}, apperr.Wrap(apperr.KindInternal, "could not generate token", err)
	}

	hash := token.HashSHA256(refreshToken)
	if err := s.repo.CreateRefreshToken(ctx, user.ID, hash, time.Now().Add(refreshTokenTTL)); err != nil {
		return transport.TokenResponse{}, apperr.Wrap(apperr.KindUnavailable, "temporary storage failure, try again", err)
	}

	return transport.TokenResponse{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *Service) signJWT(userID uuid.UUID, roles []string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"type":  accessTokenType,
		"roles": roles,
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}
