package user_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/recyclehub/recyclehub/internal/user"
)

func TestService_Register(t *testing.T) {
	type testCase struct {
		name      string
		params    user.RegisterParams
		setupMock func(m *user.MockRepository)
		wantRole  user.Role
		wantErr   error
	}

	tests := []testCase{
		{
			name: "DefaultsToRequester",
			params: user.RegisterParams{
				FirstName: "Amina",
				LastName:  "El Fassi",
				Email:     "Amina.ElFassi@Example.com",
				Password:  "s3cret",
				City:      "Marrakech",
			},
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "amina.elfassi@example.com").
					Return(nil, user.ErrNotFound)
				m.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u *user.User) error {
						u.ID = uuid.New()
						assert.Equal(t, "amina.elfassi@example.com", u.Email)
						assert.NotEqual(t, "s3cret", u.PasswordHash)
						return nil
					})
			},
			wantRole: user.RoleRequester,
		},
		{
			name: "ExplicitCollectorRole",
			params: user.RegisterParams{
				FirstName: "Karim",
				LastName:  "Alaoui",
				Email:     "karim@example.com",
				Password:  "s3cret",
				Role:      user.RoleCollector,
			},
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "karim@example.com").
					Return(nil, user.ErrNotFound)
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantRole: user.RoleCollector,
		},
		{
			name: "EmailTaken",
			params: user.RegisterParams{
				Email:    "taken@example.com",
				Password: "s3cret",
			},
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "taken@example.com").
					Return(&user.User{ID: uuid.New()}, nil)
			},
			wantErr: user.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := user.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := user.NewService(repo)
			got, err := svc.Register(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, got.Role)
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := &user.User{
		ID:           uuid.New(),
		Email:        "amina@example.com",
		PasswordHash: string(hash),
	}

	type testCase struct {
		name      string
		email     string
		password  string
		setupMock func(m *user.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:     "Success",
			email:    "amina@example.com",
			password: "s3cret",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "amina@example.com").
					Return(stored, nil)
			},
		},
		{
			name:     "CaseInsensitiveEmail",
			email:    "  AMINA@example.com ",
			password: "s3cret",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "amina@example.com").
					Return(stored, nil)
			},
		},
		{
			name:     "WrongPassword",
			email:    "amina@example.com",
			password: "nope",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "amina@example.com").
					Return(stored, nil)
			},
			wantErr: user.ErrInvalidCredentials,
		},
		{
			name:     "UnknownEmail",
			email:    "ghost@example.com",
			password: "s3cret",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "ghost@example.com").
					Return(nil, user.ErrNotFound)
			},
			wantErr: user.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := user.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := user.NewService(repo)
			got, err := svc.Authenticate(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, stored.ID, got.ID)
		})
	}
}

func TestService_UpdateProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	stored := &user.User{
		ID:        id,
		FirstName: "Amina",
		LastName:  "El Fassi",
		Email:     "amina@example.com",
		City:      "Marrakech",
		Role:      user.RoleRequester,
	}

	repo := user.NewMockRepository(ctrl)
	repo.EXPECT().GetUser(gomock.Any(), id).Return(stored, nil)
	repo.EXPECT().UpdateUser(gomock.Any(), gomock.Any()).Return(nil)

	svc := user.NewService(repo)

	got, err := svc.UpdateProfile(context.Background(), id, user.UpdateProfileParams{
		City:  new("Rabat"),
		Phone: new("+212600000000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Rabat", got.City)
	assert.Equal(t, "+212600000000", got.Phone)
	assert.Equal(t, "Amina", got.FirstName)
	assert.Equal(t, user.RoleRequester, got.Role)
}
