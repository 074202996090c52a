package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Password(t *testing.T) {
	user := &User{}
	require.NoError(t, user.SetPassword("correct horse"))

	assert.NotEqual(t, "correct horse", user.PasswordHash)
	assert.True(t, user.CheckPassword("correct horse"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestUser_CheckPasswordWithoutHash(t *testing.T) {
	user := &User{}
	assert.False(t, user.CheckPassword(""))
}

func TestUser_BeforeSaveNormalizesEmail(t *testing.T) {
	user := &User{Name: "  Ada ", Email: "  Ada@Example.COM "}
	require.NoError(t, user.BeforeSave(nil))

	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.Name)
}

func TestUser_ToProfile(t *testing.T) {
	user := &User{BaseModel: BaseModel{ID: 4}, Name: "Ada", Email: "ada@example.com", IsAdmin: true}

	profile := user.ToProfile()

	assert.Equal(t, UserProfile{ID: 4, Name: "Ada", Email: "ada@example.com", IsAdmin: true}, profile)
}
