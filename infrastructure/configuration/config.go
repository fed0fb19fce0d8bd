package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	Database    Database    `json:"database"`
	App         App         `json:"app"`
	RedisClient RedisClient `json:"redisClient"`
	Logger      Logger      `json:"logger"`
	Mixcloud    Mixcloud    `json:"mixcloud"`
	Storyblok   Storyblok   `json:"storyblok"`
	Events      Events      `json:"events"`
	Jobs        Jobs        `json:"jobs"`
	Cors        Cors        `json:"cors"`
}

type App struct {
	Port        int    `json:"port"`
	SecretKey   string `json:"secretKey"`
	TLSEnabled  bool   `json:"tlsEnabled"`
	TLSCertFile string `json:"tlsCertFile"`
	TLSKeyFile  string `json:"tlsKeyFile"`
	// AdminRedirect is where the OAuth callback sends the browser back to.
	AdminRedirect string `json:"adminRedirect"`
}

type Database struct {
	Psql  Db `json:"psql"`
	Mongo Db `json:"mongo"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
	URI      string `json:"uri"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	Username string `json:"username"`
	DB       int    `json:"db"`
	// ShowTTLSeconds bounds how long a cached show detail is served.
	ShowTTLSeconds int `json:"showTTLSeconds"`
}

type Logger struct {
	Format string `json:"format"`
	Level  string `json:"level"`
}

type Mixcloud struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectURI"`
	AuthURL      string `json:"authURL"`
	TokenURL     string `json:"tokenURL"`
	APIBaseURL   string `json:"apiBaseURL"`
	// RequestsPerMinute throttles outgoing API calls.
	RequestsPerMinute int `json:"requestsPerMinute"`
}

type Storyblok struct {
	ManagementToken string `json:"managementToken"`
	SpaceID         string `json:"spaceId"`
	ShowsFolderID   int64  `json:"showsFolderId"`
	BaseURL         string `json:"baseURL"`
	Component       string `json:"component"`
}

type Events struct {
	// Driver is one of "pubsub", "servicebus" or empty (disabled).
	Driver    string `json:"driver"`
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

type Jobs struct {
	TokenRefreshSpec       string `json:"tokenRefreshSpec"`
	TokenRefreshWindowMins int    `json:"tokenRefreshWindowMins"`
}

type Cors struct {
	AllowOrigins []string `json:"allowOrigins"`
}

var C Config

func init() {
	Reload()
}

// Reload re-reads the config file and environment overlays into C.
func Reload() {
	C = Config{}
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initMixcloud(&C)
	initStoryblok(&C)
	initServices(&C)
	logger.SetLevel(C.Logger.Level)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	C.Database.Psql.Name = getConfigValue(C.Database.Psql.Name, "DB_NAME", "")
	C.Database.Psql.Host = getConfigValue(C.Database.Psql.Host, "DB_HOST", "")
	C.Database.Psql.Port = getConfigValue(C.Database.Psql.Port, "DB_PORT", "5432")
	C.Database.Psql.User = getConfigValue(C.Database.Psql.User, "DB_USER", "postgres")
	C.Database.Psql.Password = getConfigValue(C.Database.Psql.Password, "DB_PASSWORD", "")
	C.Database.Psql.SSLMode = getConfigValue(C.Database.Psql.SSLMode, "DB_SSLMODE", "require")
	C.Database.Mongo.URI = getConfigValue(C.Database.Mongo.URI, "MONGO_URI", "")
	C.Database.Mongo.Name = getConfigValue(C.Database.Mongo.Name, "MONGO_DB_NAME", "rhythm_lab")
	logger.GetLogger().WithFields(map[string]interface{}{
		"host":        C.Database.Psql.Host,
		"name":        C.Database.Psql.Name,
		"mongoConfig": C.Database.Mongo.URI != "",
	}).Info("Database configuration")
}

func initApp(C *Config) {
	// Prefer SECRET_KEY from environment for JWT verification; overrides config file when provided
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	C.App.AdminRedirect = getConfigValue(C.App.AdminRedirect, "ADMIN_REDIRECT_URL", "/admin/mixcloud")
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; admin authentication will fail. Provide SECRET_KEY via environment.")
	}
	if len(C.Cors.AllowOrigins) == 0 {
		if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
			C.Cors.AllowOrigins = strings.Split(v, ",")
		} else {
			C.Cors.AllowOrigins = []string{"http://localhost:3000"}
		}
	}
}

func initMixcloud(C *Config) {
	scheme := "http"
	if C.App.TLSEnabled {
		scheme = "https"
	}
	defaultRedirect := fmt.Sprintf("%s://localhost:%d/api/auth/mixcloud/callback", scheme, C.App.Port)
	C.Mixcloud.ClientID = getConfigValue(C.Mixcloud.ClientID, "MIXCLOUD_CLIENT_ID", "")
	C.Mixcloud.ClientSecret = getConfigValue(C.Mixcloud.ClientSecret, "MIXCLOUD_CLIENT_SECRET", "")
	C.Mixcloud.RedirectURI = getConfigValue(C.Mixcloud.RedirectURI, "MIXCLOUD_REDIRECT_URI", defaultRedirect)
	C.Mixcloud.AuthURL = getConfigValue(C.Mixcloud.AuthURL, "MIXCLOUD_AUTH_URL", "https://www.mixcloud.com/oauth/authorize")
	C.Mixcloud.TokenURL = getConfigValue(C.Mixcloud.TokenURL, "MIXCLOUD_TOKEN_URL", "https://www.mixcloud.com/oauth/access_token")
	C.Mixcloud.APIBaseURL = getConfigValue(C.Mixcloud.APIBaseURL, "MIXCLOUD_API_BASE_URL", "https://api.mixcloud.com")
	if C.Mixcloud.RequestsPerMinute <= 0 {
		C.Mixcloud.RequestsPerMinute = 60
	}
}

func initStoryblok(C *Config) {
	C.Storyblok.ManagementToken = getConfigValue(C.Storyblok.ManagementToken, "STORYBLOK_MANAGEMENT_TOKEN", "")
	C.Storyblok.SpaceID = getConfigValue(C.Storyblok.SpaceID, "STORYBLOK_SPACE_ID", "")
	C.Storyblok.BaseURL = getConfigValue(C.Storyblok.BaseURL, "STORYBLOK_MANAGEMENT_URL", "https://mapi.storyblok.com/v1")
	C.Storyblok.Component = getConfigValue(C.Storyblok.Component, "STORYBLOK_SHOW_COMPONENT", "show")
	if v := os.Getenv("STORYBLOK_SHOWS_FOLDER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			C.Storyblok.ShowsFolderID = id
		}
	}
}

func initServices(C *Config) {
	C.RedisClient.Host = getConfigValue(C.RedisClient.Host, "REDIS_HOST", "")
	C.RedisClient.Port = getConfigValue(C.RedisClient.Port, "REDIS_PORT", "6379")
	C.RedisClient.Password = getConfigValue(C.RedisClient.Password, "REDIS_PASSWORD", "")
	if C.RedisClient.ShowTTLSeconds <= 0 {
		C.RedisClient.ShowTTLSeconds = 300
	}
	C.Events.Driver = strings.ToLower(getConfigValue(C.Events.Driver, "EVENTS_DRIVER", ""))
	C.Events.ProjectID = getConfigValue(C.Events.ProjectID, "PUBSUB_PROJECT_ID", "")
	C.Events.Topic = getConfigValue(C.Events.Topic, "PUBSUB_TOPIC", "show-ingested")
	C.Events.Namespace = getConfigValue(C.Events.Namespace, "SERVICEBUS_NAMESPACE", "")
	C.Events.Queue = getConfigValue(C.Events.Queue, "SERVICEBUS_QUEUE", "show-ingested")
	C.Jobs.TokenRefreshSpec = getConfigValue(C.Jobs.TokenRefreshSpec, "TOKEN_REFRESH_SPEC", "@every 30m")
	if C.Jobs.TokenRefreshWindowMins <= 0 {
		C.Jobs.TokenRefreshWindowMins = 60
	}
}

// getConfigValue gets value from environment first, then config, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	// Otherwise use config value if set and not a placeholder
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}

// PostgresDSN renders the lib/pq connection string for the configured database.
func (d Db) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// MixcloudEnabled reports whether OAuth client credentials are present.
func (c Config) MixcloudEnabled() bool {
	return c.Mixcloud.ClientID != "" && c.Mixcloud.ClientSecret != ""
}

// StoryblokEnabled reports whether the management API can be called.
func (c Config) StoryblokEnabled() bool {
	return c.Storyblok.ManagementToken != "" && c.Storyblok.SpaceID != ""
}
