package config

import (
	"encoding"
	"os"
	"reflect"
	"strings"

	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every configuration environment variable
const EnvPrefix = "DEPLOYREV_"

// LoadOptions selects the sources Load reads
type LoadOptions struct {
	// File is a deployrev.toml to merge over the defaults
	File string
	// Required makes a missing File an error instead of being skipped
	Required bool
	// Overrides are applied last, keyed by koanf path (e.g. "deploy_to")
	Overrides map[string]interface{}
	// SkipEnv ignores DEPLOYREV_ variables
	SkipEnv bool
}

// Load builds a Config from the embedded defaults, the config file, the
// environment and the overrides, later sources winning. Lists replace rather
// than extend earlier values.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. Config file
	if opts.File != "" {
		if _, err := os.Stat(opts.File); err == nil {
			if err := k.Load(file.Provider(opts.File), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", opts.File).
					WithDetail("path", opts.File)
			}
			logger.Debug().Str("path", opts.File).Msg("Loaded config file")
		} else if opts.Required || !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config file %s", opts.File).
				WithDetail("path", opts.File)
		}
	}

	// 3. Environment
	if !opts.SkipEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 4. Overrides from flags
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	// 5. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				stringToTextSliceHookFunc(","),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the embedded defaults alone
func Default() (*Config, error) {
	return Load(LoadOptions{SkipEnv: true})
}

// envKey maps DEPLOYREV_RESTART_COMMAND to restart_command and
// DEPLOYREV_CALLBACKS__BEFORE_RESTART to callbacks.before_restart
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// stringToTextSliceHookFunc splits a separated string, as environment
// variables carry lists, when the target is a slice of text unmarshalers such
// as []linker.Link. Each part is then decoded on its own.
func stringToTextSliceHookFunc(sep string) mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Slice {
			return data, nil
		}
		elem := t.Elem()
		if !elem.Implements(textUnmarshalerType) && !reflect.PointerTo(elem).Implements(textUnmarshalerType) {
			return data, nil
		}

		raw := strings.TrimSpace(data.(string))
		if raw == "" {
			return []string{}, nil
		}
		parts := strings.Split(raw, sep)
		for i, part := range parts {
			parts[i] = strings.TrimSpace(part)
		}
		return parts, nil
	}
}
