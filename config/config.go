// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"

	"github.com/cardinalhq/lakeagg/internal/bytesource"
	"github.com/cardinalhq/lakeagg/internal/engine"
	"github.com/cardinalhq/lakeagg/internal/report"
	"github.com/cardinalhq/lakeagg/internal/valueparse"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "LAKEAGG"
	// FileName is the config file base name searched in the working directory.
	FileName = "lakeagg"

	DefaultInputFile = "measurements.txt"
)

// Config aggregates configuration for the application.
type Config struct {
	Aggregate AggregateConfig `mapstructure:"aggregate"`
}

// AggregateConfig holds the defaults for the aggregate command. Flags given
// on the command line take precedence.
type AggregateConfig struct {
	File           string `mapstructure:"file"`
	Workers        int    `mapstructure:"workers"`
	Parser         string `mapstructure:"parser"`
	Format         string `mapstructure:"format"`
	Output         string `mapstructure:"output"`
	Source         string `mapstructure:"source"`
	PerWorkerViews bool   `mapstructure:"per_worker_views"`
	MinValueWidth  int    `mapstructure:"min_value_width"`
	QuietMalformed bool   `mapstructure:"quiet_malformed"`
}

func DefaultAggregateConfig() AggregateConfig {
	return AggregateConfig{
		File:          DefaultInputFile,
		Parser:        valueparse.DefaultName,
		Format:        report.DefaultFormat,
		Source:        string(bytesource.ModeMmap),
		MinValueWidth: engine.DefaultMinValueWidth,
	}
}

// Validate rejects values no command could run with.
func (c AggregateConfig) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.MinValueWidth < 0 {
		errs = append(errs, fmt.Errorf("min_value_width must not be negative, got %d", c.MinValueWidth))
	}
	if _, err := valueparse.Lookup(c.Parser); err != nil {
		errs = append(errs, err)
	}
	if _, err := report.Lookup(c.Format); err != nil {
		errs = append(errs, err)
	}
	if _, err := bytesource.ParseMode(c.Source); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Load reads configuration from lakeagg.{yaml,json,toml} in the working
// directory, if present, and from environment variables.
// Environment variables use the prefix "LAKEAGG" and the dot character
// in keys is replaced by an underscore. For example, "aggregate.workers"
// becomes "LAKEAGG_AGGREGATE_WORKERS".
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. A missing explicit file
// is an error; a missing default file is not.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{
		Aggregate: DefaultAggregateConfig(),
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts[:len(parts):len(parts)], tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
