package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigValue(t *testing.T) {
	t.Run("env_wins", func(t *testing.T) {
		t.Setenv("RL_TEST_VALUE", "from-env")
		assert.Equal(t, "from-env", getConfigValue("from-config", "RL_TEST_VALUE", "default"))
	})

	t.Run("config_when_env_missing", func(t *testing.T) {
		assert.Equal(t, "from-config", getConfigValue("from-config", "RL_TEST_UNSET", "default"))
	})

	t.Run("placeholder_falls_back_to_default", func(t *testing.T) {
		assert.Equal(t, "default", getConfigValue("YOUR_CLIENT_ID", "RL_TEST_UNSET", "default"))
	})
}

func TestInitMixcloudDefaults(t *testing.T) {
	t.Setenv("MIXCLOUD_CLIENT_ID", "cid")
	t.Setenv("MIXCLOUD_CLIENT_SECRET", "secret")
	cfg := Config{App: App{Port: 8080}}
	initMixcloud(&cfg)

	assert.Equal(t, "https://www.mixcloud.com/oauth/authorize", cfg.Mixcloud.AuthURL)
	assert.Equal(t, "https://www.mixcloud.com/oauth/access_token", cfg.Mixcloud.TokenURL)
	assert.Equal(t, "http://localhost:8080/api/auth/mixcloud/callback", cfg.Mixcloud.RedirectURI)
	assert.Equal(t, 60, cfg.Mixcloud.RequestsPerMinute)
	assert.True(t, cfg.MixcloudEnabled())
	assert.False(t, cfg.StoryblokEnabled())
}

func TestInitStoryblokFolderFromEnv(t *testing.T) {
	t.Setenv("STORYBLOK_MANAGEMENT_TOKEN", "tok")
	t.Setenv("STORYBLOK_SPACE_ID", "12345")
	t.Setenv("STORYBLOK_SHOWS_FOLDER_ID", "987")
	cfg := Config{}
	initStoryblok(&cfg)

	assert.Equal(t, int64(987), cfg.Storyblok.ShowsFolderID)
	assert.Equal(t, "show", cfg.Storyblok.Component)
	assert.True(t, cfg.StoryblokEnabled())
}

func TestPostgresDSN(t *testing.T) {
	d := Db{Host: "db", Port: "5432", User: "rl", Password: "pw", Name: "rhythm", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=rl password=pw dbname=rhythm sslmode=disable", d.PostgresDSN())
}

func TestLoadEnvFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "# comment\n\nexport RL_ENV_A=\"alpha\"\nRL_ENV_B=beta\nRL_ENV_KEEP=file\nnot-a-pair\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("RL_ENV_KEEP", "process")
	t.Cleanup(func() {
		_ = os.Unsetenv("RL_ENV_A")
		_ = os.Unsetenv("RL_ENV_B")
	})

	loaded := LoadEnvFromFile(filepath.Join(dir, "missing.env"), path)

	assert.Equal(t, 2, loaded)
	assert.Equal(t, "alpha", os.Getenv("RL_ENV_A"))
	assert.Equal(t, "beta", os.Getenv("RL_ENV_B"))
	assert.Equal(t, "process", os.Getenv("RL_ENV_KEEP"))
}

func TestReloadAppliesEnvironment(t *testing.T) {
	t.Setenv("EVENTS_DRIVER", "PubSub")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://admin.example.com,https://preview.example.com")
	Reload()
	t.Cleanup(Reload)

	assert.Equal(t, "pubsub", C.Events.Driver)
	assert.Equal(t, 9090, C.App.Port)
	assert.Equal(t, []string{"https://admin.example.com", "https://preview.example.com"}, C.Cors.AllowOrigins)
	assert.Equal(t, "@every 30m", C.Jobs.TokenRefreshSpec)
}
