package user

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/alama/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrUsernameExists = errors.New("a user with this username already exists")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		GetUserByToken(ctx context.Context, token string) (User, error)
		UpdateUserToken(ctx context.Context, id int, token string) error
	}

	ServiceInterface interface {
		CheckUniqueness(uname string) error
		Create(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id int) (User, error)
		GetByToken(ctx context.Context, token string) (User, error)
		Authenticate(ctx context.Context, uname, pwd string) (User, error)
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, conf *core.Config) ServiceInterface {
	secretKey = conf.SecretKey
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(uname string) error {
	if err := svc.repo.CheckUsernameUniqueness(context.Background(), uname); err != nil {
		if err == ErrUsernameExists {
			return core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Username:      nu.Username,
		Email:         nu.Email,
		FirstName:     nu.FirstName,
		LastName:      nu.LastName,
		IsSystemAdmin: nu.IsSystemAdmin,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

// GetByToken resolves an opaque bearer token into the authenticated User.
func (svc *service) GetByToken(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrNotFound
	}
	return svc.repo.GetUserByToken(ctx, token)
}

// Authenticate checks the credentials and mints the rotating monthly token.
// The stored token is only refreshed when the derived one differs (month
// roll-over or password change).
func (svc *service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		return User{}, err
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrNotFound
	}

	token := makeToken(usr)
	if usr.Token != token {
		if err := svc.repo.UpdateUserToken(ctx, usr.ID, token); err != nil {
			return User{}, err
		}
		usr.Token = token
	}
	return usr, nil
}
