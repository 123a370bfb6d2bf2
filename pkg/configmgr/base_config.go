package configmgr

// Config - config interface.
type Config interface {
	GetServiceName() string
	GetVersion() string
	GetEnvironment() string
	GetServerConfig() *ServerConfig
	GetLoggingConfig() *LoggingConfig
	GetDatabaseConfig() *DatabaseConfig
	GetFeatureStoreConfig() *FeatureStoreConfig
	GetNotificationsConfig() *NotificationsConfig
	IsLocalEnvironment() bool
}

// BaseConfig - app config struct.
// This struct represents the base configuration of the catalog service and of stmtctl and is expected
// to be in the following YAML format:
/*
name: "serving-stmt-catalog"
environment: "development"
version: "1.0"
logging:
  level: "debug"
server:
  port: "8080"
  concurrency: 10
  disableStartupMsg: false
  shutdownTimeoutMilli: 500
database:
  host: localhost
  port: 5432
  name: featurestore
  user: postgres
  password: password
  maxConn: 10
  minConn: 1
featureStore:
  url: https://hopsworks.example.com/hopsworks-api/api/project/119
  apiKey: secret
  timeoutMilli: 5000
notifications:
  projectId: my-gcp-project
  topic: serving-stmt-catalog-changes
  batchSize: 10
  flushDelayMilli: 10
  maxRetryCount: 3
*/
type BaseConfig struct {
	Name          string               `mapstructure:"name"`
	Environment   string               `mapstructure:"environment"`
	Version       string               `mapstructure:"version"`
	Logging       *LoggingConfig       `mapstructure:"logging"`
	Server        *ServerConfig        `mapstructure:"server"`
	Database      *DatabaseConfig      `mapstructure:"database"`
	FeatureStore  *FeatureStoreConfig  `mapstructure:"featureStore"`
	Notifications *NotificationsConfig `mapstructure:"notifications"`
}

type ServerConfig struct {
	Port                  string `mapstructure:"port"`
	Concurrency           int    `mapstructure:"concurrency"`
	DisableStartupMessage bool   `mapstructure:"disableStartupMsg"`
	ShutdownTimeoutMilli  int64  `mapstructure:"shutdownTimeoutMilli"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// DatabaseConfig - connection properties of the Postgres instance backing the statement catalog.
// CloudSqlInstance, when set, makes the pool connect through the Cloud SQL unix socket instead of Host/Port.
type DatabaseConfig struct {
	Host             string `mapstructure:"host"`
	Port             int32  `mapstructure:"port"`
	Name             string `mapstructure:"name"`
	User             string `mapstructure:"user"`
	Password         string `mapstructure:"password"`
	MaxConn          int32  `mapstructure:"maxConn"`
	MinConn          int32  `mapstructure:"minConn"`
	CloudSqlInstance string `mapstructure:"cloudSqlInstance"`
}

// FeatureStoreConfig - REST endpoint of the feature store serving the prepared statements.
type FeatureStoreConfig struct {
	URL          string `mapstructure:"url"`
	ApiKey       string `mapstructure:"apiKey"`
	TimeoutMilli int64  `mapstructure:"timeoutMilli"`
}

// NotificationsConfig - Pub/Sub topic receiving the catalog change events. Notifications are off without a topic.
type NotificationsConfig struct {
	ProjectID       string `mapstructure:"projectId"`
	Topic           string `mapstructure:"topic"`
	BatchSize       int32  `mapstructure:"batchSize"`
	FlushDelayMilli int64  `mapstructure:"flushDelayMilli"`
	MaxRetryCount   int16  `mapstructure:"maxRetryCount"`
}

func (cfg BaseConfig) GetServiceName() string {
	return cfg.Name
}

func (cfg BaseConfig) GetVersion() string {
	return cfg.Version
}

func (cfg BaseConfig) GetEnvironment() string {
	return cfg.Environment
}

func (cfg BaseConfig) IsLocalEnvironment() bool {
	return isLocalEnv(cfg.Environment)
}

// GetServerConfig returns the server section, or an empty one when the section is missing.
func (cfg BaseConfig) GetServerConfig() *ServerConfig {
	if cfg.Server == nil {
		return &ServerConfig{}
	}

	return cfg.Server
}

// GetLoggingConfig returns the logging section, or an empty one when the section is missing.
func (cfg BaseConfig) GetLoggingConfig() *LoggingConfig {
	if cfg.Logging == nil {
		return &LoggingConfig{}
	}

	return cfg.Logging
}

func (cfg BaseConfig) GetDatabaseConfig() *DatabaseConfig {
	if cfg.Database == nil {
		return &DatabaseConfig{}
	}

	return cfg.Database
}

func (cfg BaseConfig) GetFeatureStoreConfig() *FeatureStoreConfig {
	if cfg.FeatureStore == nil {
		return &FeatureStoreConfig{}
	}

	return cfg.FeatureStore
}

func (cfg BaseConfig) GetNotificationsConfig() *NotificationsConfig {
	if cfg.Notifications == nil {
		return &NotificationsConfig{}
	}

	return cfg.Notifications
}
