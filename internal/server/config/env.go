package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/recipehub/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "RECIPEHUB_"

const defaultEnvFile = ".env"

// parseEnv overlays RECIPEHUB_* variables. Values from the dotenv file
// (-env-file, or ./.env when it exists) are used only when the variable is
// not set in the real environment.
func parseEnv(config *Config, args []string, lookupEnv func(string) (string, bool)) error {
	fileVars, err := readEnvFile(flagx.EnvFileFlag(args))
	if err != nil {
		return err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := lookupEnv(envPrefix + key); ok {
			return v, true
		}
		v, ok := fileVars[envPrefix+key]
		return v, ok
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("HTTP_ADDR", &config.EndpointAddrHTTP)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("JWT_SECRET", &config.SecretKey)
	str("JWT_ISSUER", &config.TokenIssuer)
	str("JWT_AUDIENCE", &config.TokenAudience)
	str("IMAGE_STORAGE", &config.ImageStorage)
	str("UPLOAD_DIR", &config.UploadDir)
	str("UPLOADS_URL_PREFIX", &config.UploadsURLPrefix)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	str("SEARCH_STRATEGY", &config.SearchStrategy)
	str("LOG_LEVEL", &config.LogLevel)

	if v, ok := lookup("TOKEN_VALIDITY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTOKEN_VALIDITY: %w", envPrefix, err)
		}
		config.AccessTokenValidityDuration = d
	}
	if v, ok := lookup("MAX_IMAGE_SIZE"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_IMAGE_SIZE: %w", envPrefix, err)
		}
		config.MaxImageSize = n
	}
	return nil
}

func readEnvFile(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return vars, nil
}
