package orders

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/battolapablo/marketgo/internal/auth"
)

type AccountStore interface {
	UserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, u *User) error
}

type TokenIssuer interface {
	Issue(userID string, roles []string) (string, error)
}

// Accounts handles signup and signin. Passwords are stored as bcrypt hashes;
// responses never carry secrets.
type Accounts struct {
	Store  AccountStore
	Tokens TokenIssuer
}

type SignUpInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Phone           string `json:"phone"`
	Country         string `json:"country"`
	Address         string `json:"address"`
	City            string `json:"city"`
}

var ErrPasswordMismatch = errors.New("passwords do not match")

func (a *Accounts) SignUp(ctx context.Context, in SignUpInput) (*UserSnapshot, error) {
	if strings.TrimSpace(in.Password) != strings.TrimSpace(in.ConfirmPassword) {
		return nil, ErrPasswordMismatch
	}
	if _, err := a.Store.UserByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}
	u := &User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
		Phone:    in.Phone,
		Country:  in.Country,
		Address:  in.Address,
		City:     in.City,
	}
	if err := a.Store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	snap := u.Snapshot()
	return &snap, nil
}

func (a *Accounts) SignIn(ctx context.Context, email, password string) (string, error) {
	u, err := a.Store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrBadCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return "", ErrBadCredentials
	}

	role := auth.RoleUser
	if u.IsAdmin {
		role = auth.RoleAdmin
	}
	return a.Tokens.Issue(u.ID, []string{role})
}
