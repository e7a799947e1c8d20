// Package config registers every setting with its default and loads phim.toml through viper.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/raidenhub/phim/constant"
	"github.com/raidenhub/phim/filesystem"
	"github.com/raidenhub/phim/key"
	"github.com/raidenhub/phim/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer maps a key such as network.rate_limit to its NETWORK_RATE_LIMIT env suffix.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup reads phim.toml from the config directory on top of the registered defaults.
// PHIM_* environment variables override both. A missing file is not an error, an invalid value is.
func Setup() error {
	viper.SetConfigName(constant.Phim)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Phim)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil && !errors.As(err, new(viper.ConfigFileNotFoundError)) {
		return err
	}
	return Validate()
}

// Validate rejects values the network and server layers cannot run with.
func Validate() error {
	var errs []error
	if viper.GetInt(key.NetworkTimeout) <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", key.NetworkTimeout))
	}
	if viper.GetInt(key.NetworkRateLimit) < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", key.NetworkRateLimit))
	}
	if viper.GetInt(key.CacheTTL) < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", key.CacheTTL))
	}
	if _, _, err := net.SplitHostPort(viper.GetString(key.ServerAddr)); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", key.ServerAddr, err))
	}
	return errors.Join(errs...)
}
