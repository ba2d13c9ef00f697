package authsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/Legend373/Legend-Library-Ms/model"
	userrepo "github.com/Legend373/Legend-Library-Ms/repository/user"
	"github.com/Legend373/Legend-Library-Ms/util/hash"
	jwtutil "github.com/Legend373/Legend-Library-Ms/util/jwt"
)

type mockRepo struct {
	createFn  func(ctx context.Context, u *model.User) error
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
	byIDFn    func(ctx context.Context, id int64) (*model.User, error)
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}

func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, userrepo.ErrNotFound
	}
	return m.byEmailFn(ctx, email)
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, userrepo.ErrNotFound
	}
	return m.byIDFn(ctx, id)
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}
	svc := New(m, "test-secret")

	u, tok, err := svc.Register(ctx, model.RegisterReq{
		Username: "halim",
		Email:    "USER@Example.COM ",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "user@example.com", u.Email)
	require.Equal(t, model.RoleMember, u.Role)
	require.NotEmpty(t, u.PasswordHash)
	require.NotEqual(t, "supersecret", u.PasswordHash)

	claims, err := jwtutil.ParseAuth(tok, "test-secret")
	require.NoError(t, err)
	require.EqualValues(t, 42, claims["sub"])
	require.Equal(t, model.RoleMember, claims["role"])
}

func TestRegister_DuplicateMapping(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		constraint string
		want       error
	}{
		{"users_email_key", ErrEmailTaken},
		{"users_username_key", ErrUsernameTaken},
		{"something_else", ErrBadInput},
	}
	for _, tc := range cases {
		m := &mockRepo{
			createFn: func(ctx context.Context, u *model.User) error {
				return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: tc.constraint}
			},
		}
		svc := New(m, "test-secret")
		_, _, err := svc.Register(ctx, model.RegisterReq{
			Username: "halim", Email: "x@example.com", Password: "123456",
		})
		require.ErrorIs(t, err, tc.want, "constraint %s", tc.constraint)
	}
}

func TestRegister_RepoError(t *testing.T) {
	dbDown := errors.New("db down")
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error { return dbDown },
	}
	svc := New(m, "test-secret")
	_, _, err := svc.Register(context.Background(), model.RegisterReq{
		Username: "ok", Email: "ok@example.com", Password: "123456",
	})
	require.ErrorIs(t, err, dbDown)
}

func TestLogin_Success(t *testing.T) {
	hashed := mustHash(t, "supersecret")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			require.Equal(t, "user@example.com", email)
			return &model.User{ID: 7, Email: email, PasswordHash: hashed, Role: model.RoleMember}, nil
		},
	}
	svc := New(m, "test-secret")

	u, tok, err := svc.Login(context.Background(), model.LoginReq{
		Email: " User@Example.com", Password: "supersecret",
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)
	require.NotEmpty(t, tok)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := New(&mockRepo{}, "test-secret")
	_, _, err := svc.Login(context.Background(), model.LoginReq{
		Email: "missing@example.com", Password: "whatever",
	})
	require.ErrorIs(t, err, ErrInvalidCreds)
}

func TestProfile(t *testing.T) {
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			if id != 7 {
				return nil, userrepo.ErrNotFound
			}
			return &model.User{ID: 7, Username: "halim"}, nil
		},
	}
	svc := New(m, "test-secret")

	u, err := svc.Profile(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "halim", u.Username)

	_, err = svc.Profile(context.Background(), 404)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogin_WrongPassword(t *testing.T) {
	hashed := mustHash(t, "correct-password")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 101, Email: email, PasswordHash: hashed}, nil
		},
	}
	svc := New(m, "test-secret")
	_, _, err := svc.Login(context.Background(), model.LoginReq{
		Email: "user@example.com", Password: "wrong-password",
	})
	require.ErrorIs(t, err, ErrInvalidCreds)
}
