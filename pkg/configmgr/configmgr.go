package configmgr

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcodd23/go-serving-stmt/pkg/errorx"
	"github.com/spf13/viper"
)

const (
	defaultConfigBaseName = "property"
	environmentVariable   = "ENVIRONMENT"
)

// LoadConfigForEnv reads the property file of the current ENVIRONMENT from the working directory.
func LoadConfigForEnv(config Config) error {
	return ReadConfiguration(EnvPropertyFile(""), config)
}

// EnvPropertyFile returns the property file of the current ENVIRONMENT inside dir:
// property.yaml for local runs, property-<env>.yaml for dev, stage and prod.
func EnvPropertyFile(dir string) string {
	name := defaultConfigBaseName + ".yaml"
	if env := strings.ToLower(os.Getenv(environmentVariable)); !isLocalEnv(env) {
		name = defaultConfigBaseName + "-" + env + ".yaml"
	}

	return filepath.Join(dir, name)
}

// ReadConfiguration unmarshals the yaml file at configFilePath into config.
// Environment variables override file values, with dots and dashes of a key replaced by underscores
// (database.host -> DATABASE_HOST). A missing file is not an error: config is then left as is.
// Each call uses its own viper instance.
func ReadConfiguration(configFilePath string, config Config) error {
	v := viper.New()
	v.SetConfigFile(configFilePath)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return errorx.NewGeneralErrorWrapper(err, "unable to read config file %s", configFilePath)
	}

	if err := v.Unmarshal(config); err != nil {
		return errorx.NewGeneralErrorWrapper(err, "unable to decode config file %s", configFilePath)
	}

	return nil
}

func isLocalEnv(env string) bool {
	switch strings.ToUpper(env) {
	case "DEV", "STAGE", "PROD":
		return false
	}

	return true
}
