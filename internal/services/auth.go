package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/siplanskills/backend/internal/apierr"
	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/normalization"
	"github.com/siplanskills/backend/internal/repos"
	"github.com/siplanskills/backend/internal/requestdata"
	"github.com/siplanskills/backend/internal/types"
	"github.com/siplanskills/backend/internal/utils"
)

type JWTClaims struct {
	AccountType string `json:"account_type,omitempty"`
	CartorioID  string `json:"cartorio_id,omitempty"`
	jwt.RegisteredClaims
}

type AuthService interface {
	RegisterAccount(ctx context.Context, account *types.Account) error
	LoginAccount(ctx context.Context, email, password string) (string, string, error)
	RefreshAccount(ctx context.Context) (string, string, error)
	LogoutAccount(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db               *gorm.DB
	log              *logger.Logger
	accountRepo      repos.AccountRepo
	accountTokenRepo repos.AccountTokenRepo
	jwtSecretKey     string
	accessTTL        time.Duration
	refreshTTL       time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	accountRepo repos.AccountRepo,
	accountTokenRepo repos.AccountTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:               db,
		log:              serviceLog,
		accountRepo:      accountRepo,
		accountTokenRepo: accountTokenRepo,
		jwtSecretKey:     jwtSecretKey,
		accessTTL:        accessTTL,
		refreshTTL:       refreshTTL,
	}
}

func (as *authService) RegisterAccount(ctx context.Context, account *types.Account) error {
	utils.NormalizeAccountFields(account)
	if vErr := utils.ValidateRegistration(ctx, account); vErr != nil {
		return apierr.InvalidArgument(vErr)
	}
	emailExists, err := as.accountRepo.EmailExists(ctx, nil, account.Email)
	if err != nil {
		return apierr.DataUnavailable(fmt.Errorf("failed to check account email: %w", err))
	}
	if emailExists {
		return apierr.InvalidArgument(fmt.Errorf("email is already in use"))
	}
	if hErr := utils.HashPassword(account); hErr != nil {
		return hErr
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account.ID = uuid.New()
		if account.Type == types.AccountTypeCartorio && account.CartorioID == nil {
			// A cartório account owns its own scope unless it was
			// created under an existing office.
			id := account.ID
			account.CartorioID = &id
		}
		if _, cErr := as.accountRepo.Create(ctx, tx, []*types.Account{account}); cErr != nil {
			return apierr.PersistenceFailure(fmt.Errorf("failed to create account: %w", cErr))
		}
		return nil
	})
}

func (as *authService) LoginAccount(ctx context.Context, email, password string) (string, string, error) {
	email = normalization.ParseInputString(email)

	if vErr := utils.ValidateLogin(ctx, email, password); vErr != nil {
		return "", "", apierr.InvalidArgument(vErr)
	}

	accounts, aErr := as.accountRepo.GetByEmails(ctx, nil, []string{email})
	if aErr != nil {
		return "", "", apierr.DataUnavailable(fmt.Errorf("error retrieving account by email: %w", aErr))
	}
	if len(accounts) == 0 {
		return "", "", apierr.NotAuthenticated(fmt.Errorf("invalid email or password"))
	}

	account := accounts[0]
	if hErr := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); hErr != nil {
		return "", "", apierr.NotAuthenticated(fmt.Errorf("invalid email or password"))
	}

	var accessToken string
	var refreshToken string
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundTokens, ftErr := as.accountTokenRepo.GetByAccountIDs(ctx, tx, []uuid.UUID{account.ID})
		if ftErr != nil {
			return fmt.Errorf("failed to check account tokens: %w", ftErr)
		}
		for _, tok := range foundTokens {
			if tok != nil && tok.ExpiresAt.Before(time.Now()) {
				if dtErr := as.accountTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{tok.ID}); dtErr != nil {
					return fmt.Errorf("failed to delete expired account token: %w", dtErr)
				}
			}
		}
		tok, genErr := as.generateAccessToken(account)
		if genErr != nil {
			return fmt.Errorf("generate access token: %w", genErr)
		}
		accessToken = tok
		refreshToken = uuid.New().String()
		now := time.Now()
		accountToken := types.AccountToken{
			ID:           uuid.New(),
			AccountID:    account.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    now.Add(as.refreshTTL),
			LastSeenAt:   &now,
		}
		if _, ctErr := as.accountTokenRepo.Create(ctx, tx, []*types.AccountToken{&accountToken}); ctErr != nil {
			as.log.Warn("Create account token error", "error", ctErr)
			return fmt.Errorf("create account token: %w", ctErr)
		}
		return nil
	}); err != nil {
		return "", "", apierr.PersistenceFailure(err)
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshAccount(ctx context.Context) (string, string, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.RefreshToken == "" {
		return "", "", apierr.NotAuthenticated(fmt.Errorf("no refresh token in request context"))
	}

	var accessToken string
	var newRefreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundTokens, ftErr := as.accountTokenRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
		if ftErr != nil {
			return fmt.Errorf("error fetching refresh token: %w", ftErr)
		}
		if len(foundTokens) == 0 {
			return apierr.NotAuthenticated(fmt.Errorf("unknown refresh token"))
		}
		existingToken := foundTokens[0]
		if existingToken.ExpiresAt.Before(time.Now()) {
			if dtErr := as.accountTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{existingToken.ID}); dtErr != nil {
				return fmt.Errorf("refresh token expired, error deleting: %w", dtErr)
			}
			return apierr.NotAuthenticated(fmt.Errorf("refresh token expired"))
		}
		accounts, aErr := as.accountRepo.GetByIDs(ctx, tx, []uuid.UUID{existingToken.AccountID})
		if aErr != nil {
			return fmt.Errorf("failed to load account for refresh: %w", aErr)
		}
		if len(accounts) == 0 {
			return apierr.NotAuthenticated(fmt.Errorf("no account found for the given refresh token"))
		}
		account := accounts[0]
		tok, genErr := as.generateAccessToken(account)
		if genErr != nil {
			return fmt.Errorf("failed to generate new access token: %w", genErr)
		}
		accessToken = tok
		newRefreshToken = uuid.New().String()
		now := time.Now()
		newAccountToken := types.AccountToken{
			ID:           uuid.New(),
			AccountID:    account.ID,
			AccessToken:  accessToken,
			RefreshToken: newRefreshToken,
			ExpiresAt:    now.Add(as.refreshTTL),
			LastSeenAt:   &now,
		}
		if _, cErr := as.accountTokenRepo.Create(ctx, tx, []*types.AccountToken{&newAccountToken}); cErr != nil {
			return fmt.Errorf("failed to create new account token: %w", cErr)
		}
		if dErr := as.accountTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{existingToken.ID}); dErr != nil {
			return fmt.Errorf("failed to remove old refresh token: %w", dErr)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutAccount(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return apierr.NotAuthenticated(fmt.Errorf("no session token in request context"))
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundTokens, ftErr := as.accountTokenRepo.GetByAccessTokens(ctx, tx, []string{rd.TokenString})
		if ftErr != nil {
			return fmt.Errorf("error finding account token: %w", ftErr)
		}
		if len(foundTokens) == 0 {
			return nil
		}
		if tdErr := as.accountTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{foundTokens[0].ID}); tdErr != nil {
			return apierr.PersistenceFailure(fmt.Errorf("error deleting account token: %w", tdErr))
		}
		return nil
	})
}

func (as *authService) generateAccessToken(account *types.Account) (string, error) {
	claims := JWTClaims{
		AccountType: account.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	if account.CartorioID != nil {
		claims.CartorioID = account.CartorioID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.NotAuthenticated(fmt.Errorf("missing token"))
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, apierr.NotAuthenticated(fmt.Errorf("failed to parse token: %w", err))
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, apierr.NotAuthenticated(fmt.Errorf("invalid or expired token"))
	}
	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.NotAuthenticated(fmt.Errorf("invalid account id in token: %w", err))
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		AccountID:   accountID,
		AccountType: claims.AccountType,
	}
	if claims.CartorioID != "" {
		if cartorioID, cErr := uuid.Parse(claims.CartorioID); cErr == nil {
			rd.CartorioID = cartorioID
		}
	}
	foundTokens, ftErr := as.accountTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
	if ftErr != nil {
		as.log.Warn("Error fetching account token by access token", "error", ftErr)
		return ctx, apierr.DataUnavailable(fmt.Errorf("failed to fetch account token: %w", ftErr))
	}
	if len(foundTokens) == 0 {
		// Token row gone means the session was logged out or swept.
		return ctx, apierr.NotAuthenticated(fmt.Errorf("session no longer active"))
	}
	rd.RefreshToken = foundTokens[0].RefreshToken
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
