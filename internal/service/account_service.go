package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taxi-booking-service/internal/model"
)

type TokenIssuer interface {
	Issue(principal model.Principal) (string, time.Time, error)
}

type AccountService struct {
	accounts   AccountStore
	passengers *PassengerService
	drivers    *DriverService
	tokens     TokenIssuer
	hashCost   int
	log        zerolog.Logger
}

func NewAccountService(
	accounts AccountStore,
	passengers *PassengerService,
	drivers *DriverService,
	tokens TokenIssuer,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		accounts:   accounts,
		passengers: passengers,
		drivers:    drivers,
		tokens:     tokens,
		hashCost:   bcrypt.DefaultCost,
		log:        log.With().Str("component", "accounts").Logger(),
	}
}

type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Account   *model.Account `json:"account"`
	ProfileID *uuid.UUID     `json:"profile_id,omitempty"`
}

type RegisterPassengerInput struct {
	Username string
	Password string
	Profile  PassengerInput
}

type RegisterDriverInput struct {
	Username string
	Password string
	Profile  DriverInput
}

// RegisterPassenger creates the login account and the passenger profile.
// The account is removed again when the profile cannot be created.
func (s *AccountService) RegisterPassenger(ctx context.Context, input RegisterPassengerInput) (*model.Passenger, error) {
	account, err := s.createAccount(ctx, input.Username, input.Password, model.UserRolePassenger)
	if err != nil {
		return nil, err
	}

	input.Profile.AccountID = &account.ID
	passenger, err := s.passengers.Create(ctx, input.Profile)
	if err != nil {
		s.rollbackAccount(ctx, account.ID)
		return nil, err
	}
	return passenger, nil
}

func (s *AccountService) RegisterDriver(ctx context.Context, input RegisterDriverInput) (*model.Driver, error) {
	account, err := s.createAccount(ctx, input.Username, input.Password, model.UserRoleDriver)
	if err != nil {
		return nil, err
	}

	input.Profile.AccountID = &account.ID
	driver, err := s.drivers.Create(ctx, input.Profile)
	if err != nil {
		s.rollbackAccount(ctx, account.ID)
		return nil, err
	}
	return driver, nil
}

func (s *AccountService) Login(ctx context.Context, username, password string) (*Session, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeErr("load account", err, "account")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	principal := model.Principal{AccountID: account.ID, Role: account.Role}
	switch account.Role {
	case model.UserRolePassenger:
		passenger, err := s.passengers.GetByAccount(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		principal.ProfileID = &passenger.ID
	case model.UserRoleDriver:
		driver, err := s.drivers.GetByAccount(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		principal.ProfileID = &driver.ID
	}

	token, expiresAt, err := s.tokens.Issue(principal)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		Account:   account,
		ProfileID: principal.ProfileID,
	}, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, accountID uuid.UUID, current, next string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return storeErr("load account", err, "account")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	if err := validatePassword(next); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.hashCost)
	if err != nil {
		return err
	}
	rows, err := s.accounts.UpdatePassword(ctx, accountID, string(hash))
	return affected("update password", rows, err, "account")
}

// EnsureAdmin creates the admin account unless one with that username exists.
func (s *AccountService) EnsureAdmin(ctx context.Context, username, password string) error {
	existing, err := s.accounts.ExistsByUsername(ctx, username)
	if err != nil {
		return storeErr("check admin", err, "account")
	}
	if existing {
		return nil
	}
	if _, err := s.createAccount(ctx, username, password, model.UserRoleAdmin); err != nil {
		return err
	}
	s.log.Info().Str("username", username).Msg("admin account created")
	return nil
}

func (s *AccountService) List(ctx context.Context, role *model.UserRole) ([]model.Account, error) {
	if role != nil && !role.Valid() {
		return nil, invalid("unknown role %q", *role)
	}
	accounts, err := s.accounts.List(ctx, role)
	if err != nil {
		return nil, storeErr("list accounts", err, "account")
	}
	return accounts, nil
}

func (s *AccountService) createAccount(ctx context.Context, username, password string, role model.UserRole) (*model.Account, error) {
	username, err := validateUsername(username)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	taken, err := s.accounts.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, storeErr("check username", err, "account")
	}
	if taken {
		return nil, conflict("username %s is already taken", username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, err
	}
	account := &model.Account{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, storeErr("create account", err, "account")
	}
	return account, nil
}

func (s *AccountService) rollbackAccount(ctx context.Context, accountID uuid.UUID) {
	if _, err := s.accounts.Delete(ctx, accountID); err != nil {
		s.log.Error().Err(err).Str("account_id", accountID.String()).Msg("failed to remove account after profile error")
	}
}
