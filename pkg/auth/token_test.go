package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestStore_SaveAndGet(t *testing.T) {
	keyring.MockInit()
	s := NewStore(t.TempDir(), "hf_token")

	require.NoError(t, s.Save("  hf_abc  "))
	token, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "hf_abc", token)

	_, err = os.Stat(filepath.Join(s.Dir, s.Name))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestStore_SaveEmpty(t *testing.T) {
	keyring.MockInit()
	s := NewStore(t.TempDir(), "hf_token")
	assert.ErrorIs(t, s.Save("   "), ErrEmptyToken)
}

func TestStore_FallbackToFile(t *testing.T) {
	keyring.MockInitWithError(errors.New("no keychain"))
	s := NewStore(t.TempDir(), "hf_token")

	require.NoError(t, s.Save("hf_file"))
	b, err := os.ReadFile(filepath.Join(s.Dir, s.Name))
	require.NoError(t, err)
	assert.Equal(t, "hf_file", string(b))

	token, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "hf_file", token)
}

func TestStore_MigratesFileToKeychain(t *testing.T) {
	keyring.MockInit()
	s := NewStore(t.TempDir(), "hf_token")
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, s.Name), []byte("hf_legacy\n"), tokenFileMode))

	token, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "hf_legacy", token)

	stored, err := keyring.Get(keyringService, s.Name)
	require.NoError(t, err)
	assert.Equal(t, "hf_legacy", stored)

	_, err = os.Stat(filepath.Join(s.Dir, s.Name))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestStore_GetMissing(t *testing.T) {
	keyring.MockInit()
	s := NewStore(t.TempDir(), "missing")
	_, err := s.Get()
	assert.ErrorIs(t, err, ErrEmptyToken)
}

func TestStore_Delete(t *testing.T) {
	keyring.MockInit()
	s := NewStore(t.TempDir(), "hf_token")
	require.NoError(t, s.Save("hf_abc"))
	require.NoError(t, s.Delete())

	_, err := s.Get()
	assert.ErrorIs(t, err, ErrEmptyToken)

	// deleting twice is fine
	assert.NoError(t, s.Delete())
}

func TestStore_Resolve(t *testing.T) {
	keyring.MockInit()
	s := NewStore(t.TempDir(), "hf_token")

	assert.Equal(t, "", s.Resolve(""))
	assert.Equal(t, "explicit", s.Resolve("explicit"))

	require.NoError(t, s.Save("stored"))
	assert.Equal(t, "stored", s.Resolve(""))
	assert.Equal(t, "explicit", s.Resolve("explicit"))
}
