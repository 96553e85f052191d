package social

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPasswordAndVerify(t *testing.T) {
	u := NewUser("alice", "", false)
	require.NoError(t, u.SetPassword("pw1"))

	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEqual(t, "pw1", u.PasswordHash)

	ok, err := u.PasswordMatches("pw1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = u.PasswordMatches("wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetPasswordIsSalted(t *testing.T) {
	a := NewUser("a", "", false)
	b := NewUser("b", "", false)
	require.NoError(t, a.SetPassword("same-password"))
	require.NoError(t, b.SetPassword("same-password"))

	assert.NotEqual(t, a.PasswordHash, b.PasswordHash)
}

func TestNewUser(t *testing.T) {
	u := NewUser("bob", "Bobby", false)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "bob", u.Username)
	assert.Equal(t, "Bobby", u.DisplayName)
	assert.False(t, u.IsAdmin)
	assert.False(t, u.IsBanned)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestUserName(t *testing.T) {
	withDisplay := &User{Username: "bob", DisplayName: "Bobby"}
	assert.Equal(t, "Bobby", withDisplay.Name())

	withoutDisplay := &User{Username: "bob"}
	assert.Equal(t, "bob", withoutDisplay.Name())
}
