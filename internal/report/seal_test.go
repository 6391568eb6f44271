package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeal_RoundTrip(t *testing.T) {
	plaintext := []byte(`{"files_analyzed": 3}`)

	sealed, err := Seal(plaintext, "test-passphrase-123")
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.True(t, bytes.HasPrefix(sealed, []byte(SealedHeader+"\n"+ageArmorHeader)))
	assert.NotContains(t, string(sealed), "files_analyzed")

	opened, err := Open(sealed, "test-passphrase-123")
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestSeal_WrongPassphrase(t *testing.T) {
	sealed, err := Seal([]byte("secret"), "correct")
	require.NoError(t, err)

	_, err = Open(sealed, "wrong")
	assert.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestSeal_EmptyPassphrase(t *testing.T) {
	_, err := Seal([]byte("secret"), "")
	assert.ErrorIs(t, err, ErrNoPassphrase)

	sealed, err := Seal([]byte("secret"), "pw")
	require.NoError(t, err)
	_, err = Open(sealed, "")
	assert.ErrorIs(t, err, ErrNoPassphrase)
}

func TestOpen_HeaderlessArmor(t *testing.T) {
	sealed, err := Seal([]byte("secret"), "pw")
	require.NoError(t, err)
	bare := bytes.TrimPrefix(sealed, []byte(SealedHeader+"\n"))
	require.True(t, IsSealed(bare))

	opened, err := Open(bare, "pw")
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), opened)
}

func TestOpen_NotSealed(t *testing.T) {
	_, err := Open([]byte(`{"id": "x"}`), "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a sealed report")
}

func TestIsSealed(t *testing.T) {
	assert.False(t, IsSealed([]byte(`{"id": "x"}`)))
	assert.False(t, IsSealed(nil))
	assert.False(t, IsSealed([]byte(SealedHeader+"\n{}")))
	assert.True(t, IsSealed([]byte("\n"+SealedHeader+"\n"+ageArmorHeader+"\n")))
}

func TestWriteFileReadFile(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "report.json")
	require.NoError(t, WriteFile(plain, []byte("{}"), ""))
	data, err := ReadFile(plain, "")
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), data)

	sealed := filepath.Join(dir, "report.json.age")
	require.NoError(t, WriteFile(sealed, []byte("{}"), "pw"))
	raw, err := os.ReadFile(sealed)
	require.NoError(t, err)
	assert.True(t, IsSealed(raw))

	_, err = ReadFile(sealed, "")
	assert.ErrorIs(t, err, ErrNoPassphrase)

	_, err = ReadFile(sealed, "other")
	assert.ErrorIs(t, err, ErrWrongPassphrase)

	data, err = ReadFile(sealed, "pw")
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), data)
}
