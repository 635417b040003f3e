package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

type ServerConfig struct {
	Port             int           `mapstructure:"port"`
	BaseURL          string        `mapstructure:"base-url"`
	GracefulShutdown time.Duration `mapstructure:"graceful-shutdown"`
	ReadTimeout      time.Duration `mapstructure:"read-timeout"`
	WriteTimeout     time.Duration `mapstructure:"write-timeout"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type DBConfig struct {
	DataSource  string `mapstructure:"data-source"`
	PrepareStmt bool   `mapstructure:"prepare-stmt"`
	LogLevel    string `mapstructure:"log-level"`
	Pool        struct {
		Enable             bool          `mapstructure:"enable"`
		MaxOpenConnections int           `mapstructure:"max-open-connections"`
		MaxIdleConnections int           `mapstructure:"max-idle-connections"`
		MaxLifetime        time.Duration `mapstructure:"max-lifetime"`
	} `mapstructure:"pool"`
}

type CacheConfig struct {
	MaxSize   int    `mapstructure:"max-size"`
	RedisAddr string `mapstructure:"redis-addr"`
	RedisPass string `mapstructure:"redis-pass"`
}

type StorageConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket"`
	AccessKey      string `mapstructure:"access-key"`
	SecretKey      string `mapstructure:"secret-key"`
	ForcePathStyle bool   `mapstructure:"force-path-style"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LoggingConfig `mapstructure:"log"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	DB      DBConfig      `mapstructure:"db"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Storage StorageConfig `mapstructure:"storage"`
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required")
	}
	if c.DB.DataSource == "" {
		return errors.New("db data source is required")
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage bucket is required")
	}
	return nil
}

type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

func stringToDurationHook() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		str, ok := data.(string)
		if !ok {
			return data, nil
		}
		return time.ParseDuration(str)
	}
}

// Initialize reads the config file (flag, cwd or ~/.skydrive), binds the
// SKYDRIVE_* environment and the command's flags.
func (l *Loader) Initialize(cmd *cobra.Command) error {
	l.v.SetConfigType("toml")

	cfgFile := cmd.Flags().Lookup("config").Value.String()

	if cfgFile != "" {
		l.v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error getting home directory: %w", err)
		}
		l.v.AddConfigPath(filepath.Join(home, ".skydrive"))
		l.v.AddConfigPath(".")
		l.v.SetConfigName("config")
	}

	l.v.SetEnvPrefix("skydrive")
	l.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	l.v.AutomaticEnv()

	if err := l.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

func (l *Loader) Load(cfg *Config) error {
	dc := &mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(stringToDurationHook()),
		WeaklyTypedInput: true,
		Result:           cfg,
	}

	decoder, err := mapstructure.NewDecoder(dc)
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(l.v.AllSettings()); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	return nil
}

func AddCommonFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.StringP("config", "c", "", "Config file path (default $HOME/.skydrive/config.toml)")

	flags.StringVar(&cfg.Log.Level, "log-level", zapcore.InfoLevel.String(), "Logging level")
	flags.StringVar(&cfg.Log.File, "log-file", "", "Logging file path")

	flags.StringVar(&cfg.DB.DataSource, "db-data-source", "", "Database connection string")
	flags.StringVar(&cfg.DB.LogLevel, "db-log-level", zapcore.WarnLevel.String(), "Database log level")
	flags.BoolVar(&cfg.DB.PrepareStmt, "db-prepare-stmt", true, "Enable prepared statements")
	flags.BoolVar(&cfg.DB.Pool.Enable, "db-pool-enable", true, "Enable database pool")
	flags.IntVar(&cfg.DB.Pool.MaxOpenConnections, "db-pool-max-open-connections", 25, "Database max open connections")
	flags.IntVar(&cfg.DB.Pool.MaxIdleConnections, "db-pool-max-idle-connections", 25, "Database max idle connections")
	flags.DurationVar(&cfg.DB.Pool.MaxLifetime, "db-pool-max-lifetime", 10*time.Minute, "Database max connection lifetime")

	flags.StringVar(&cfg.Storage.Endpoint, "storage-endpoint", "", "S3 endpoint (empty for AWS)")
	flags.StringVar(&cfg.Storage.Region, "storage-region", "us-east-1", "S3 region")
	flags.StringVar(&cfg.Storage.Bucket, "storage-bucket", "", "S3 bucket for file blobs")
	flags.StringVar(&cfg.Storage.AccessKey, "storage-access-key", "", "S3 access key")
	flags.StringVar(&cfg.Storage.SecretKey, "storage-secret-key", "", "S3 secret key")
	flags.BoolVar(&cfg.Storage.ForcePathStyle, "storage-force-path-style", false, "Use path style S3 addressing")
}

func AddServerFlags(flags *pflag.FlagSet, cfg *Config) {
	AddCommonFlags(flags, cfg)

	flags.IntVar(&cfg.Server.Port, "server-port", 8080, "Server port")
	flags.StringVar(&cfg.Server.BaseURL, "server-base-url", "http://localhost:8080", "Public base URL used in share links")
	flags.DurationVar(&cfg.Server.GracefulShutdown, "server-graceful-shutdown", 10*time.Second, "Server graceful shutdown timeout")
	flags.DurationVar(&cfg.Server.ReadTimeout, "server-read-timeout", 1*time.Minute, "Server read timeout")
	flags.DurationVar(&cfg.Server.WriteTimeout, "server-write-timeout", 1*time.Minute, "Server write timeout")

	flags.StringVar(&cfg.JWT.Secret, "jwt-secret", "", "JWT HMAC secret")

	flags.IntVar(&cfg.Cache.MaxSize, "cache-max-size", 10*1024*1024, "Max cache size in bytes for in-memory cache")
	flags.StringVar(&cfg.Cache.RedisAddr, "cache-redis-addr", "", "Redis address (empty for in-memory cache)")
	flags.StringVar(&cfg.Cache.RedisPass, "cache-redis-pass", "", "Redis password")
}
