package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/heartgame/internal/models"
)

func TestDefaultConfigReadsEnv(t *testing.T) {
	t.Setenv("HEARTCTL_SERVER", "http://game.test:9000")
	t.Setenv("HEARTCTL_TOKEN", "env-token")
	t.Setenv("HEARTCTL_TOKEN_FILE", "/tmp/heartctl-token")
	t.Setenv("HEART_API_URL", "http://hearts.test/api.php")
	t.Setenv("HEART_API_TIMEOUT_SECONDS", "4")

	c := DefaultConfig()
	assert.Equal(t, "http://game.test:9000", c.ServerURL)
	assert.Equal(t, "env-token", c.Token)
	assert.Equal(t, "/tmp/heartctl-token", c.TokenFile)
	assert.Equal(t, "http://hearts.test/api.php", c.HeartAPIURL)
	assert.Equal(t, 4*time.Second, c.HeartAPITimeout)
	assert.Equal(t, "text", c.Output)
}

func TestDefaultConfigHeartTimeoutFallsBack(t *testing.T) {
	t.Setenv("HEART_API_TIMEOUT_SECONDS", "soon")
	assert.Equal(t, 15*time.Second, DefaultConfig().HeartAPITimeout)
}

func TestTokenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	c := &Config{TokenFile: path}

	require.NoError(t, c.LoadToken())
	assert.Empty(t, c.Token)

	require.NoError(t, c.SaveToken("abc.def.ghi"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, os.WriteFile(path, []byte("abc.def.ghi\n"), 0600))
	loaded := &Config{TokenFile: path}
	require.NoError(t, loaded.LoadToken())
	assert.Equal(t, "abc.def.ghi", loaded.Token)
}

func TestLoadTokenKeepsExplicitToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("from-file"), 0600))

	c := &Config{Token: "from-flag", TokenFile: path}
	require.NoError(t, c.LoadToken())
	assert.Equal(t, "from-flag", c.Token)
}

func TestSessionRequiresLogin(t *testing.T) {
	_, err := (&Config{}).Session()
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestParseDifficulty(t *testing.T) {
	d, err := parseDifficulty("hard")
	require.NoError(t, err)
	assert.Equal(t, models.DifficultyHard, d)

	_, err = parseDifficulty("impossible")
	assert.Error(t, err)
}
