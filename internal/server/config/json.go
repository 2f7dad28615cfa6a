package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/recipehub/internal/flagx"
	"github.com/dmitrijs2005/recipehub/internal/timex"
)

// JSONConfig is the on-disk shape of the optional config file. Durations
// accept "12h"-style strings or integer nanoseconds. Zero values leave the
// corresponding Config field untouched.
type JSONConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	TokenIssuer                 string         `json:"token_issuer"`
	TokenAudience               string         `json:"token_audience"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	ImageStorage                string         `json:"image_storage"`
	UploadDir                   string         `json:"upload_dir"`
	UploadsURLPrefix            string         `json:"uploads_url_prefix"`
	MaxImageSize                int64          `json:"max_image_size"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	SearchStrategy              string         `json:"search_strategy"`
	AuthRateLimit               float64        `json:"auth_rate_limit"`
	AuthRateBurst               int            `json:"auth_rate_burst"`
	ShutdownTimeout             timex.Duration `json:"shutdown_timeout"`
	LogLevel                    string         `json:"log_level"`
}

// parseJSON overlays values from the file named by -c/-config, if any.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JSONConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.TokenIssuer, c.TokenIssuer)
	setString(&config.TokenAudience, c.TokenAudience)
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.ImageStorage, c.ImageStorage)
	setString(&config.UploadDir, c.UploadDir)
	setString(&config.UploadsURLPrefix, c.UploadsURLPrefix)
	if c.MaxImageSize > 0 {
		config.MaxImageSize = c.MaxImageSize
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.SearchStrategy, c.SearchStrategy)
	if c.AuthRateLimit > 0 {
		config.AuthRateLimit = c.AuthRateLimit
	}
	if c.AuthRateBurst > 0 {
		config.AuthRateBurst = c.AuthRateBurst
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	setString(&config.LogLevel, c.LogLevel)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
