package auth

import (
	"context"
	"errors"

	"github.com/spec-kit/ssu-portal/internal/domain"
)

// ErrUserNotFound is returned when a directory lookup misses.
var ErrUserNotFound = errors.New("user not found")

// UserDirectory resolves portal accounts. The portal treats the credential
// store as an external collaborator; this interface is the seam.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

type staticDirectory struct {
	byEmail map[string]domain.User
	byID    map[string]domain.User
}

// NewStaticDirectory builds a directory over a fixed account list.
func NewStaticDirectory(users []domain.User) UserDirectory {
	d := &staticDirectory{
		byEmail: make(map[string]domain.User, len(users)),
		byID:    make(map[string]domain.User, len(users)),
	}
	for _, user := range users {
		d.byEmail[user.Email] = user
		d.byID[user.ID] = user
	}
	return d
}

func (d *staticDirectory) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := d.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (d *staticDirectory) FindByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := d.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// SeedUsers returns the default dashboard accounts with the given password
// hashed at the configured cost.
func SeedUsers(password string, cost int) ([]domain.User, error) {
	hashed, err := HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	return []domain.User{
		{ID: "1", Email: "admin@ssu.gov", Name: "Administrador do Sistema", Role: domain.RoleAdmin, PasswordHash: hashed},
		{ID: "2", Email: "master@ssu.gov", Name: "Gestor Master", Role: domain.RoleMaster, PasswordHash: hashed},
		{ID: "3", Email: "gerenteA@ssu.gov", Name: "Gerente A - Execução", Role: domain.RoleManagerA, PasswordHash: hashed},
		{ID: "4", Email: "gerenteB@ssu.gov", Name: "Gerente B - Execução", Role: domain.RoleManagerB, PasswordHash: hashed},
	}, nil
}
