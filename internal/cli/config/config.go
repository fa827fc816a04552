package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/derhami/Converterz/pkg/converter"
	"github.com/derhami/Converterz/pkg/util"
)

const (
	EnvPrefix         = "CONVERTERZ"
	DefaultConfigName = "converterz"
)

// flagKeys maps configuration keys to the command line flags that override them.
var flagKeys = map[string]string{
	"outputDir":    "output-dir",
	"verbose":      "verbose",
	"format":       "format",
	"resize":       "resize",
	"quality":      "quality",
	"naming":       "naming",
	"reportFormat": "report-format",
	"retainLog":    "retain-log",
}

// LoadAndValidate loads configuration from all sources (defaults, file, env, flags),
// validates the merged result and resolves the output directory. Log records are written
// as text to logOut (os.Stderr when nil); the TUI passes io.Discard so records only reach
// the diagnostic log. The configuration is read-only: nothing is ever written back.
func LoadAndValidate(cfgFile, appVersion string, verbose bool, flags *pflag.FlagSet, logOut io.Writer) (converter.Options, *slog.Logger, error) {
	var opts converter.Options
	v := viper.New()
	if logOut == nil {
		logOut = os.Stderr
	}

	// Temporary logger for errors raised before the level is known.
	earlyLevel := slog.LevelInfo
	if verbose {
		earlyLevel = slog.LevelDebug
	}
	tempLogger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: earlyLevel}))

	setDefaults(v)

	// --- Load Config File ---
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
		} else {
			tempLogger.Debug("No home directory, skipping user config location", slog.Any("error", err))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) && cfgFile == "" {
			tempLogger.Debug("No configuration file found, using defaults/env/flags.")
		} else {
			configFileUsed := cfgFile
			if configFileUsed == "" {
				configFileUsed = fmt.Sprintf("searched locations for %s.yaml", DefaultConfigName)
			}
			tempLogger.Error("Error reading configuration file", slog.String("path", configFileUsed), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error reading config file '%s': %w", configFileUsed, err)
		}
	} else {
		opts.ConfigFilePath = v.ConfigFileUsed()
		tempLogger.Debug("Using configuration file", slog.String("path", opts.ConfigFilePath))
	}

	// --- Bind Environment Variables ---
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// --- Bind Flags (Highest Priority) ---
	if flags != nil {
		for key, name := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				tempLogger.Debug("Flag lookup failed during binding", slog.String("flag", name))
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				tempLogger.Error("Error binding flag", slog.String("flag", name), slog.Any("error", err))
				return opts, tempLogger, fmt.Errorf("error binding flag '--%s': %w", name, err)
			}
		}
	}

	opts.AppVersion = appVersion
	if err := v.Unmarshal(&opts); err != nil {
		tempLogger.Error("Error unmarshalling configuration", slog.Any("error", err))
		return opts, tempLogger, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Explicit flags always win for booleans.
	if flags != nil {
		if flags.Changed("verbose") {
			opts.Verbose, _ = flags.GetBool("verbose")
		}
		if flags.Changed("retain-log") {
			opts.RetainLog, _ = flags.GetBool("retain-log")
		}
		if flags.Changed("no-tui") {
			if noTui, _ := flags.GetBool("no-tui"); noTui {
				opts.TuiEnabled = false
			}
		}
	}
	if verbose {
		opts.Verbose = true
	}

	// --- Setup Final Logger ---
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logHandler := slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logHandler)
	opts.Logger = logHandler
	opts.EventHooks = &converter.NoOpHooks{}

	if err := validateAndDeriveOptions(&opts, logger); err != nil {
		return opts, logger, err
	}

	logger.Debug("Configuration loading and validation complete",
		slog.String("configFile", opts.ConfigFilePath),
		slog.String("outputDir", opts.OutputDir),
		slog.Bool("verbose", opts.Verbose),
		slog.String("logLevel", logLevel.String()),
	)
	return opts, logger, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("outputDir", "") // Resolved to ~/Desktop/Converterz during validation
	v.SetDefault("format", string(converter.DefaultFormat))
	v.SetDefault("resize", converter.DefaultResizePercentage)
	v.SetDefault("quality", converter.DefaultQualityPercentage)
	v.SetDefault("naming", string(converter.DefaultNamingMethod))
	v.SetDefault("reportFormat", string(converter.DefaultReportFormat))
	v.SetDefault("retainLog", converter.DefaultRetainLog)
	v.SetDefault("tuiEnabled", converter.DefaultTuiEnabled)
	v.SetDefault("verbose", converter.DefaultVerbose)
}

func isValidEnumValue[T ~string](value T, allowedValues []T) bool {
	return slices.Contains(allowedValues, value)
}

func validateAndDeriveOptions(opts *converter.Options, logger *slog.Logger) error {
	if strings.TrimSpace(opts.OutputDir) == "" {
		def, err := util.DefaultOutputDir(converter.OutputDirName)
		if err != nil {
			err = fmt.Errorf("%w: cannot determine default output directory: %w", converter.ErrInvalidConfiguration, err)
			logger.Error(err.Error(), slog.String("key", "outputDir"))
			return err
		}
		opts.OutputDir = def
	}
	expanded, err := util.ExpandHome(opts.OutputDir)
	if err != nil {
		err = fmt.Errorf("%w: cannot expand output directory '%s': %w", converter.ErrInvalidConfiguration, opts.OutputDir, err)
		logger.Error(err.Error(), slog.String("key", "outputDir"), slog.String("value", opts.OutputDir))
		return err
	}
	absOutput, err := filepath.Abs(expanded)
	if err != nil {
		err = fmt.Errorf("%w: cannot resolve absolute output directory '%s': %w", converter.ErrInvalidConfiguration, opts.OutputDir, err)
		logger.Error(err.Error(), slog.String("key", "outputDir"), slog.String("value", opts.OutputDir))
		return err
	}
	opts.OutputDir = absOutput
	logger.Debug("Resolved output directory", slog.String("path", opts.OutputDir))

	format, err := converter.ParseFormat(opts.Format)
	if err != nil {
		logger.Error(err.Error(), slog.String("key", "format"), slog.String("value", opts.Format))
		return err
	}
	opts.Format = string(format)

	naming, err := converter.ParseNamingMethod(opts.Naming)
	if err != nil {
		logger.Error(err.Error(), slog.String("key", "naming"), slog.String("value", opts.Naming))
		return err
	}
	opts.Naming = string(naming)

	// The percentages stay strings, exactly as the shells hold them, but must already parse.
	if _, err := opts.RequestBuilder().Build(); err != nil {
		logger.Error(err.Error(), slog.String("key", "resize/quality"), slog.String("resize", opts.Resize), slog.String("quality", opts.Quality))
		return err
	}

	opts.ReportFormat = converter.ReportFormat(strings.ToLower(string(opts.ReportFormat)))
	if !isValidEnumValue(opts.ReportFormat, converter.SupportedReportFormats) {
		err := fmt.Errorf("%w: invalid value '%s' for key 'reportFormat' (flag --report-format). Allowed: %v", converter.ErrInvalidConfiguration, opts.ReportFormat, converter.SupportedReportFormats)
		logger.Error(err.Error(), slog.String("key", "reportFormat"), slog.String("value", string(opts.ReportFormat)))
		return err
	}

	if opts.Logger == nil {
		return fmt.Errorf("internal setup error: logger handler is nil in validateAndDeriveOptions")
	}
	return nil
}
