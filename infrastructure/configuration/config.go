package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"creator-contest/domain/scoring"
	"creator-contest/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	Database    Database    `json:"database"`
	App         App         `json:"app"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	RedisClient RedisClient `json:"redisClient"`
	Logger      Logger      `json:"logger"`
	TikTok      TikTok      `json:"tiktok"`
	Vault       Vault       `json:"vault"`
	Scheduler   Scheduler   `json:"scheduler"`
	Scoring     Scoring     `json:"scoring"`
	Contest     Contest     `json:"contest"`
}

// App holds the HTTP surface settings. An empty AllowOrigins admits any origin;
// OperatorIDs lists the callers allowed to trigger a manual metrics sync.
type App struct {
	Port         int      `json:"port"`
	SecretKey    string   `json:"secretKey"`
	TLSEnabled   bool     `json:"tlsEnabled"`
	TLSCertFile  string   `json:"tlsCertFile"`
	TLSKeyFile   string   `json:"tlsKeyFile"`
	AllowOrigins []string `json:"allowOrigins"`
	OperatorIDs  []string `json:"operatorIDs"`
}

type Database struct {
	Psql Db `json:"psql"`
}

// Db is one Postgres connection. AutoMigrate runs the embedded goose migrations at startup.
type Db struct {
	Name        string `json:"name"`
	Host        string `json:"host"`
	Port        string `json:"port"`
	User        string `json:"user"`
	Password    string `json:"password"`
	SSLMode     string `json:"sslMode"`
	AutoMigrate bool   `json:"autoMigrate"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

type ServiceBus struct {
	Namespace        string `json:"namespace"`
	ConnectionString string `json:"connectionString"`
	Topic            string `json:"topic"`
}

type RedisClient struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
	Username     string `json:"username"`
}

// DB maps DatabaseName onto a Redis logical database index. Anything that is not a non-negative number selects 0.
func (r RedisClient) DB() int {
	n, err := strconv.Atoi(strings.TrimSpace(r.DatabaseName))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Logger.Format is "json" (default) or "text".
type Logger struct {
	Format string `json:"format"`
}

// TikTok configures the platform clients. SuccessRedirectURL is where the browser lands after a completed consent callback.
type TikTok struct {
	ClientKey             string   `json:"clientKey"`
	ClientSecret          string   `json:"clientSecret"`
	RedirectURI           string   `json:"redirectURI"`
	APIBaseURL            string   `json:"apiBaseURL"`
	AuthURL               string   `json:"authURL"`
	TokenURL              string   `json:"tokenURL"`
	RevokeURL             string   `json:"revokeURL"`
	Scopes                []string `json:"scopes"`
	RequestTimeoutSeconds int      `json:"requestTimeoutSeconds"`
	SuccessRedirectURL    string   `json:"successRedirectURL"`
}

type Vault struct {
	// EncryptionSecret is the server secret the token cipher key is derived from.
	EncryptionSecret  string `json:"encryptionSecret"`
	ExpirySkewSeconds int    `json:"expirySkewSeconds"`
}

type Scheduler struct {
	Enabled          bool `json:"enabled"`
	IntervalSeconds  int  `json:"intervalSeconds"`
	ChunkSize        int  `json:"chunkSize"`
	ChunkPauseMillis int  `json:"chunkPauseMillis"`
}

func (s Scheduler) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

func (s Scheduler) ChunkPause() time.Duration {
	return time.Duration(s.ChunkPauseMillis) * time.Millisecond
}

// Scoring overrides the default scoring weights. Zero values keep the default.
type Scoring struct {
	EngagementRatio       float64 `json:"engagementRatio"`
	EngagementReach       float64 `json:"engagementReach"`
	EngagementInteraction float64 `json:"engagementInteraction"`
	QualityBase           int     `json:"qualityBase"`
	QualityBonus          int     `json:"qualityBonus"`
	QualityRecencyBonus   int     `json:"qualityRecencyBonus"`
	RecencyWindowHours    int     `json:"recencyWindowHours"`
	ViralityReachCap      float64 `json:"viralityReachCap"`
	FinalEngagement       float64 `json:"finalEngagement"`
	FinalQuality          float64 `json:"finalQuality"`
	FinalVirality         float64 `json:"finalVirality"`
}

func (s Scoring) Weights() scoring.Weights {
	w := scoring.DefaultWeights()
	setFloat(&w.EngagementRatio, s.EngagementRatio)
	setFloat(&w.EngagementReach, s.EngagementReach)
	setFloat(&w.EngagementInteraction, s.EngagementInteraction)
	setInt(&w.QualityBase, s.QualityBase)
	setInt(&w.QualityBonus, s.QualityBonus)
	setInt(&w.QualityRecencyBonus, s.QualityRecencyBonus)
	setInt(&w.RecencyWindowHours, s.RecencyWindowHours)
	setFloat(&w.ViralityReachCap, s.ViralityReachCap)
	setFloat(&w.FinalEngagement, s.FinalEngagement)
	setFloat(&w.FinalQuality, s.FinalQuality)
	setFloat(&w.FinalVirality, s.FinalVirality)
	return w
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

type Contest struct {
	DefaultWinnerCount      int `json:"defaultWinnerCount"`
	LeaderboardCacheSeconds int `json:"leaderboardCacheSeconds"`
}

func (c Contest) LeaderboardTTL() time.Duration {
	return time.Duration(c.LeaderboardCacheSeconds) * time.Second
}

var C Config

func init() {
	LoadEnvFromFile(".env", "config.env")
	LoadConfig()
	initLogger(&C)
	initDatabase(&C)
	initApp(&C)
	initTikTok(&C)
	initVault(&C)
	initScheduler(&C)
	initContest(&C)
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
	C.Database.Psql.Name = getConfigValue(C.Database.Psql.Name, "DB_NAME", "contest")
	C.Database.Psql.Host = getConfigValue(C.Database.Psql.Host, "DB_HOST", "localhost")
	C.Database.Psql.Port = getConfigValue(C.Database.Psql.Port, "DB_PORT", "5432")
	C.Database.Psql.User = getConfigValue(C.Database.Psql.User, "DB_USER", "postgres")
	C.Database.Psql.Password = getConfigValue(C.Database.Psql.Password, "DB_PASSWORD", "")
	C.Database.Psql.SSLMode = getConfigValue(C.Database.Psql.SSLMode, "DB_SSLMODE", "disable")
	if v, ok := envBool("DB_AUTO_MIGRATE"); ok {
		C.Database.Psql.AutoMigrate = v
	}
	logger.GetLogger().
		WithField("host", C.Database.Psql.Host).
		WithField("name", C.Database.Psql.Name).
		Info("Database configuration")

	C.RedisClient.Host = getConfigValue(C.RedisClient.Host, "REDIS_HOST", "")
	C.RedisClient.Port = getConfigValue(C.RedisClient.Port, "REDIS_PORT", "6379")
	C.RedisClient.Password = getConfigValue(C.RedisClient.Password, "REDIS_PASSWORD", "")
	C.RedisClient.DatabaseName = getConfigValue(C.RedisClient.DatabaseName, "REDIS_DB", "0")
	C.Pubsub.ProjectID = getConfigValue(C.Pubsub.ProjectID, "PUBSUB_PROJECT_ID", "")
	C.Pubsub.Topic = getConfigValue(C.Pubsub.Topic, "PUBSUB_TOPIC", "leaderboard-updated")
	C.ServiceBus.Namespace = getConfigValue(C.ServiceBus.Namespace, "SERVICEBUS_NAMESPACE", "")
	C.ServiceBus.ConnectionString = getConfigValue(C.ServiceBus.ConnectionString, "SERVICEBUS_CONNECTION_STRING", "")
	C.ServiceBus.Topic = getConfigValue(C.ServiceBus.Topic, "SERVICEBUS_TOPIC", "leaderboard-updated")
}

func initLogger(C *Config) {
	C.Logger.Format = getConfigValue(C.Logger.Format, "LOG_FORMAT", "json")
	logger.SetFormat(C.Logger.Format)
}

func initApp(C *Config) {
	// SECRET_KEY from the environment wins over the config file.
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// APP_PORT -> PORT -> config -> 10001
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
	if v, ok := envBool("TLS_ENABLED"); ok {
		C.App.TLSEnabled = v
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if C.App.TLSEnabled {
		if C.App.TLSCertFile == "" {
			if _, err := os.Stat("certs/localhost.crt"); err == nil {
				C.App.TLSCertFile = "certs/localhost.crt"
			}
		}
		if C.App.TLSKeyFile == "" {
			if _, err := os.Stat("certs/localhost.key"); err == nil {
				C.App.TLSKeyFile = "certs/localhost.key"
			}
		}
		logger.GetLogger().WithFields(map[string]interface{}{"cert": C.App.TLSCertFile, "key": C.App.TLSKeyFile}).Info("TLS enabled via configuration")
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
	if v := os.Getenv("OPERATOR_IDS"); v != "" {
		C.App.OperatorIDs = splitList(v)
	}
	if len(C.App.OperatorIDs) == 0 {
		logger.GetLogger().Warn("App.OperatorIDs empty; manual metrics sync is disabled")
	}
}

// splitList reads a comma separated env value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func initVault(C *Config) {
	C.Vault.EncryptionSecret = getConfigValue(C.Vault.EncryptionSecret, "VAULT_ENCRYPTION_SECRET", "")
	if C.Vault.EncryptionSecret == "" {
		logger.GetLogger().Warn("Vault.EncryptionSecret not set; falling back to App.SecretKey for token encryption")
		C.Vault.EncryptionSecret = C.App.SecretKey
	}
	if C.Vault.ExpirySkewSeconds <= 0 {
		C.Vault.ExpirySkewSeconds = 60
	}
}

func initScheduler(C *Config) {
	if v, ok := envBool("SCHEDULER_ENABLED"); ok {
		C.Scheduler.Enabled = v
	}
	if C.Scheduler.IntervalSeconds <= 0 {
		C.Scheduler.IntervalSeconds = 300
	}
	if C.Scheduler.ChunkSize <= 0 {
		C.Scheduler.ChunkSize = 10
	}
	if C.Scheduler.ChunkPauseMillis <= 0 {
		C.Scheduler.ChunkPauseMillis = 500
	}
}

func initContest(C *Config) {
	if C.Contest.DefaultWinnerCount <= 0 {
		C.Contest.DefaultWinnerCount = 3
	}
	if C.Contest.LeaderboardCacheSeconds <= 0 {
		C.Contest.LeaderboardCacheSeconds = 60
	}
}

func envBool(key string) (bool, bool) {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True":
		return true, true
	case "0", "false", "FALSE", "False":
		return false, true
	}
	return false, false
}

func hasHTTPS(u string) bool { return len(u) >= 8 && u[:8] == "https://" }

func toHTTPSCallback(u string) string {
	if len(u) >= 7 && u[:7] == "http://" {
		return "https://" + u[7:]
	}
	return u
}
