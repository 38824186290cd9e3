package authenticating

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/prism-reports-api/infrastructure/repository/mocks"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) (Authenticator, *mocks.MockUserRepository) {
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepository(ctrl)

	svc := NewService(userRepo, &config.Config{
		Auth: config.Auth{Secret: "jwt-secret"},
	})
	return svc, userRepo
}

func hashOf(t *testing.T, password string) string {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func activeUser(t *testing.T, password string) *domain.User {
	return &domain.User{
		ID:           42,
		Name:         "Jordan",
		Email:        "jordan@acme.com",
		Active:       true,
		RoleID:       2,
		ClientID:     "client-1",
		PasswordHash: hashOf(t, password),
	}
}

func TestLoginUser_IssuesValidToken(t *testing.T) {
	svc, userRepo := newAuthService(t)

	userRepo.EXPECT().
		GetUserByEmail("jordan@acme.com").
		Return(activeUser(t, "Sup3r$enha"), nil)

	token, err := svc.LoginUser("  Jordan@Acme.com ", "Sup3r$enha")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// O token emitido valida com o mesmo segredo e carrega o perfil
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "client-1", claims.UserClientID)
	assert.Equal(t, 2, claims.UserRoleID)
}

func TestLoginUser_WrongPassword(t *testing.T) {
	svc, userRepo := newAuthService(t)

	userRepo.EXPECT().
		GetUserByEmail("jordan@acme.com").
		Return(activeUser(t, "Sup3r$enha"), nil)

	_, err := svc.LoginUser("jordan@acme.com", "errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 42, authErr.UserID)
}

func TestLoginUser_UnknownEmail(t *testing.T) {
	svc, userRepo := newAuthService(t)

	userRepo.EXPECT().GetUserByEmail("ghost@acme.com").Return(nil, nil)

	_, err := svc.LoginUser("ghost@acme.com", "qualquer")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLoginUser_DisabledUser(t *testing.T) {
	svc, userRepo := newAuthService(t)

	user := activeUser(t, "Sup3r$enha")
	user.Active = false
	userRepo.EXPECT().GetUserByEmail("jordan@acme.com").Return(user, nil)

	_, err := svc.LoginUser("jordan@acme.com", "Sup3r$enha")
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestLoginUser_MissingFields(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.LoginUser("", "senha")
	assert.ErrorIs(t, err, ErrMissingRequiredData)

	_, err = svc.LoginUser("jordan@acme.com", "")
	assert.ErrorIs(t, err, ErrMissingRequiredData)
}

func TestValidateToken_RejectsTampered(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestCreateUser_HashesPasswordAndDefaultsRole(t *testing.T) {
	svc, userRepo := newAuthService(t)

	userRepo.EXPECT().GetUserByEmail("new@acme.com").Return(nil, nil)
	userRepo.EXPECT().
		CreateUser(gomock.Any()).
		DoAndReturn(func(user *domain.User) (*domain.User, error) {
			assert.NotEqual(t, "Sup3r$enha", user.PasswordHash)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Sup3r$enha")))
			assert.Equal(t, 3, user.RoleID)
			assert.False(t, user.Active)
			return user, nil
		})

	_, err := svc.CreateUser(&domain.User{
		Name:         "New User",
		Email:        "New@Acme.com",
		PasswordHash: "Sup3r$enha",
		ClientID:     "client-1",
	})
	require.NoError(t, err)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc, userRepo := newAuthService(t)

	userRepo.EXPECT().GetUserByEmail("new@acme.com").Return(&domain.User{ID: 7}, nil)

	_, err := svc.CreateUser(&domain.User{
		Name:         "New User",
		Email:        "new@acme.com",
		PasswordHash: "Sup3r$enha",
		ClientID:     "client-1",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestChangePassword(t *testing.T) {
	svc, userRepo := newAuthService(t)

	user := activeUser(t, "Atual$enha1")
	userRepo.EXPECT().GetUserByID(42).Return(user, nil)
	userRepo.EXPECT().
		UpdateUser(gomock.Any()).
		DoAndReturn(func(updated *domain.User) error {
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("Nov@Senha9")))
			return nil
		})

	err := svc.ChangePassword(42, "Atual$enha1", "Nov@Senha9")
	require.NoError(t, err)
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	svc, userRepo := newAuthService(t)

	userRepo.EXPECT().GetUserByID(42).Return(activeUser(t, "Atual$enha1"), nil)

	err := svc.ChangePassword(42, "errada", "Nov@Senha9")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword_WeakNewPassword(t *testing.T) {
	svc, userRepo := newAuthService(t)

	userRepo.EXPECT().GetUserByID(42).Return(activeUser(t, "Atual$enha1"), nil)

	err := svc.ChangePassword(42, "Atual$enha1", "fraca")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a senha deve conter")
}

func TestValidatePasswordStrength(t *testing.T) {
	svc, _ := newAuthService(t)

	tests := []struct {
		password string
		wantErr  bool
	}{
		{"Nov@Senha9", false},
		{"curta1!", true},
		{"semmaiuscula9!", true},
		{"SEMMINUSCULA9!", true},
		{"SemNumero!!", true},
		{"SemEspecial99", true},
	}

	for _, tt := range tests {
		err := svc.ValidatePasswordStrength(tt.password)
		if tt.wantErr {
			assert.Error(t, err, tt.password)
		} else {
			assert.NoError(t, err, tt.password)
		}
	}
}

func TestListUsersByClient_StripsPasswordHashes(t *testing.T) {
	svc, userRepo := newAuthService(t)

	userRepo.EXPECT().
		ListUsersByClient("client-1").
		Return([]*domain.User{{ID: 1, PasswordHash: "hash"}}, nil)

	users, err := svc.ListUsersByClient("client-1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash)
}

func TestUpdateUser_AppliesPartialFields(t *testing.T) {
	svc, userRepo := newAuthService(t)

	existing := activeUser(t, "Sup3r$enha")
	userRepo.EXPECT().GetUserByID(42).Return(existing, nil)

	newName := "Jordan Silva"
	active := false
	userRepo.EXPECT().
		UpdateUser(gomock.Any()).
		DoAndReturn(func(updated *domain.User) error {
			assert.Equal(t, "Jordan Silva", updated.Name)
			assert.False(t, updated.Active)
			// Campos não enviados permanecem
			assert.Equal(t, "jordan@acme.com", updated.Email)
			return nil
		})

	err := svc.UpdateUser(&domain.UpdateUserRequest{
		ID:     42,
		Name:   &newName,
		Active: &active,
	})
	require.NoError(t, err)
}

func TestUpdateUser_NotFound(t *testing.T) {
	svc, userRepo := newAuthService(t)

	userRepo.EXPECT().GetUserByID(99).Return(nil, nil)

	err := svc.UpdateUser(&domain.UpdateUserRequest{ID: 99})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidCredentials))
}
