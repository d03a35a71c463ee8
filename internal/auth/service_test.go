package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/users"
)

type memoryUsers struct {
	byID   map[int64]users.User
	nextID int64
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[int64]users.User{}, nextID: 1}
}

func (m *memoryUsers) Create(_ context.Context, user users.User) (users.User, error) {
	user.ID = m.nextID
	user.IsActive = true
	m.nextID++
	m.byID[user.ID] = user
	return user, nil
}

func (m *memoryUsers) Get(_ context.Context, id int64) (users.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (users.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return users.User{}, shared.ErrNotFound
}

func (m *memoryUsers) GetByUsername(_ context.Context, username string) (users.User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return users.User{}, shared.ErrNotFound
}

func (m *memoryUsers) List(_ context.Context, _ users.ListFilter) ([]users.User, int, error) {
	var result []users.User
	for _, u := range m.byID {
		result = append(result, u)
	}
	return result, len(result), nil
}

func (m *memoryUsers) Update(_ context.Context, user users.User) error {
	if _, ok := m.byID[user.ID]; !ok {
		return shared.ErrNotFound
	}
	m.byID[user.ID] = user
	return nil
}

func (m *memoryUsers) SetRole(_ context.Context, id int64, role shared.Role) error {
	u, ok := m.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Role = role
	m.byID[id] = u
	return nil
}

func (m *memoryUsers) SetActive(_ context.Context, id int64, active bool) error {
	u, ok := m.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.IsActive = active
	m.byID[id] = u
	return nil
}

func validInput() RegisterInput {
	return RegisterInput{
		Username:  "jamie",
		Email:     "jamie@example.com",
		Password:  "correct-horse",
		FirstName: "Jamie",
		LastName:  "Doe",
	}
}

func TestRegisterHashesPasswordAndDefaultsToCustomer(t *testing.T) {
	repo := newMemoryUsers()
	svc := NewService(repo)

	user, err := svc.Register(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, shared.RoleCustomer, user.Role)
	require.NotEqual(t, "correct-horse", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	repo := newMemoryUsers()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), validInput())
	require.NoError(t, err)

	dup := validInput()
	dup.Username = "someone-else"
	_, err = svc.Register(context.Background(), dup)
	require.ErrorIs(t, err, shared.ErrConflict)

	dup = validInput()
	dup.Email = "other@example.com"
	_, err = svc.Register(context.Background(), dup)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestRegisterValidatesInput(t *testing.T) {
	repo := newMemoryUsers()
	svc := NewService(repo)

	short := validInput()
	short.Password = "short"
	_, err := svc.Register(context.Background(), short)
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	blank := validInput()
	blank.Username = "   "
	_, err = svc.Register(context.Background(), blank)
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestAuthenticate(t *testing.T) {
	repo := newMemoryUsers()
	svc := NewService(repo)

	registered, err := svc.Register(context.Background(), validInput())
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), "Jamie@Example.com ", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)

	_, err = svc.Authenticate(context.Background(), "jamie@example.com", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "correct-horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	// Deactivated accounts are indistinguishable from bad credentials.
	require.NoError(t, repo.SetActive(context.Background(), registered.ID, false))
	_, err = svc.Authenticate(context.Background(), "jamie@example.com", "correct-horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
