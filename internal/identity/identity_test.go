package identity_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recyclehub/recyclehub/internal/identity"
	"github.com/recyclehub/recyclehub/internal/user"
)

func TestManager_RoundTrip(t *testing.T) {
	m := identity.NewManager("test-secret", time.Hour)

	u := &user.User{ID: uuid.New(), Role: user.RoleCollector}

	token, err := m.Issue(u)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	actor, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, actor.ID)
	assert.Equal(t, user.RoleCollector, actor.Role)
}

func TestManager_Verify_Invalid(t *testing.T) {
	m := identity.NewManager("test-secret", time.Hour)
	u := &user.User{ID: uuid.New(), Role: user.RoleRequester}

	type testCase struct {
		name  string
		token func(t *testing.T) string
	}

	tests := []testCase{
		{
			name:  "Garbage",
			token: func(*testing.T) string { return "not.a.token" },
		},
		{
			name:  "Empty",
			token: func(*testing.T) string { return "" },
		},
		{
			name: "WrongSecret",
			token: func(t *testing.T) string {
				other := identity.NewManager("other-secret", time.Hour)
				token, err := other.Issue(u)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "Expired",
			token: func(t *testing.T) string {
				expired := identity.NewManager("test-secret", -time.Minute)
				token, err := expired.Issue(u)
				require.NoError(t, err)
				return token
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token(t))
			assert.ErrorIs(t, err, identity.ErrInvalidToken)
		})
	}
}
