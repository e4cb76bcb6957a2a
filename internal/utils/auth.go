package utils

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/siplanskills/backend/internal/normalization"
	"github.com/siplanskills/backend/internal/types"
)

func ValidateRegistration(ctx context.Context, account *types.Account) error {
	if account == nil {
		return fmt.Errorf("no account given, cannot proceed with registration")
	}
	if account.Email == "" {
		return fmt.Errorf("an email is required to register")
	}
	if account.Password == "" {
		return fmt.Errorf("a password is required to register")
	}
	if account.Name == "" {
		return fmt.Errorf("a name is required to register")
	}
	switch account.Type {
	case types.AccountTypeCartorio, types.AccountTypeAdmin:
	default:
		return fmt.Errorf("account type must be cartorio or admin")
	}
	return nil
}

func ValidateLogin(ctx context.Context, email, password string) error {
	if email == "" {
		return fmt.Errorf("email is required to login")
	}
	if password == "" {
		return fmt.Errorf("password is required to login")
	}
	return nil
}

func HashPassword(account *types.Account) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	account.Password = string(hashedPassword)
	return nil
}

func NormalizeAccountFields(account *types.Account) {
	account.Email = normalization.ParseInputString(account.Email)
	account.Type = normalization.ParseInputString(account.Type)
}
