package authsvc_test

import (
	"context"
	"testing"

	"booklend/model"
	authsvc "booklend/service/auth"
	"booklend/util/hash"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type userRepoMock struct {
	createFn  func(ctx context.Context, u *model.User) error
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
}

func (m *userRepoMock) Create(ctx context.Context, u *model.User) error { return m.createFn(ctx, u) }
func (m *userRepoMock) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.byEmailFn(ctx, email)
}
func (m *userRepoMock) ByID(ctx context.Context, id int64) (*model.User, error) { return nil, nil }

const secret = "test-secret"

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes password and issues token", func(t *testing.T) {
		var created *model.User
		r := &userRepoMock{
			createFn: func(ctx context.Context, u *model.User) error {
				u.ID = 7
				created = u
				return nil
			},
		}
		s := authsvc.New(r, secret)

		u, token, err := s.Register(ctx, model.RegisterReq{
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
			Password: "correct horse",
		})
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.Equal(t, int64(7), u.ID)
		require.Equal(t, model.RoleUser, created.Role)
		require.NotEqual(t, "correct horse", created.PasswordHash)
		require.True(t, hash.CheckPassword(created.PasswordHash, "correct horse"))
	})

	t.Run("taken email maps the unique violation", func(t *testing.T) {
		r := &userRepoMock{
			createFn: func(ctx context.Context, u *model.User) error {
				return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
			},
		}
		s := authsvc.New(r, secret)

		_, _, err := s.Register(ctx, model.RegisterReq{
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
			Password: "correct horse",
		})
		require.ErrorIs(t, err, authsvc.ErrEmailTaken)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	hashed, err := hash.HashPassword("correct horse")
	require.NoError(t, err)
	stored := &model.User{ID: 7, Email: "ada@example.com", PasswordHash: hashed, Role: model.RoleUser}

	t.Run("valid credentials", func(t *testing.T) {
		r := &userRepoMock{
			byEmailFn: func(ctx context.Context, email string) (*model.User, error) { return stored, nil },
		}
		s := authsvc.New(r, secret)

		u, token, err := s.Login(ctx, model.LoginReq{Email: "ada@example.com", Password: "correct horse"})
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.Equal(t, int64(7), u.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		r := &userRepoMock{
			byEmailFn: func(ctx context.Context, email string) (*model.User, error) { return stored, nil },
		}
		s := authsvc.New(r, secret)

		_, _, err := s.Login(ctx, model.LoginReq{Email: "ada@example.com", Password: "wrong"})
		require.ErrorIs(t, err, authsvc.ErrInvalidCreds)
	})

	t.Run("unknown email", func(t *testing.T) {
		r := &userRepoMock{
			byEmailFn: func(ctx context.Context, email string) (*model.User, error) { return nil, nil },
		}
		s := authsvc.New(r, secret)

		_, _, err := s.Login(ctx, model.LoginReq{Email: "nobody@example.com", Password: "x"})
		require.ErrorIs(t, err, authsvc.ErrInvalidCreds)
	})
}
