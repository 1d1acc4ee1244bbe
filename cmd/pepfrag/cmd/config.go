package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/pepfrag/pkg/core"
	"github.com/ChrisMcGann/pepfrag/pkg/enzyme"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configBaseName   = "pepfrag"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	envPrefix = "PEPFRAG"

	enzymeKey          = "digest.enzyme"
	missedKey          = "digest.missed_cleavages"
	minLengthKey       = "digest.min_length"
	maxLengthKey       = "digest.max_length"
	stripWhitespaceKey = "digest.strip_whitespace"
	threadsKey         = "digest.threads"
	massSourceKey      = "mass.source"
	ntermKey           = "fragment.nterm"
	ctermKey           = "fragment.cterm"
	seriesKey          = "fragment.series"
	modsFileKey        = "mods.file"
	enzymesFileKey     = "enzymes.file"
	formatKey          = "output.format"

	defaultEnzyme     = "Trypsin"
	defaultThreads    = 1
	defaultMassSource = "monoisotopic"
	defaultFormat     = "table"

	// Loaded when present and no mods.file is configured
	customModsFile = "unimod_custom.csv"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".pepfrag.log"
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var defaultSeries = []string{"b", "y"}

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(enzymeKey, defaultEnzyme)
	viper.SetDefault(missedKey, 0)
	viper.SetDefault(minLengthKey, 0)
	viper.SetDefault(maxLengthKey, 0)
	viper.SetDefault(stripWhitespaceKey, true)
	viper.SetDefault(threadsKey, defaultThreads)
	viper.SetDefault(massSourceKey, defaultMassSource)
	viper.SetDefault(ntermKey, "H")
	viper.SetDefault(ctermKey, "OH")
	viper.SetDefault(seriesKey, defaultSeries)
	viper.SetDefault(formatKey, defaultFormat)

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, "info")
	viper.SetDefault(logVerboseKey, false)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return
		}
		fmt.Fprintf(os.Stderr, "Warning: failed to read %s: %v\n", configFileName, err)
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels (e.g. -4 for debug)
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger installs a slog logger writing to a rotating log file.
// Verbose forces debug level.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}
	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	logLevel := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	if verbose || viper.GetBool(logVerboseKey) {
		logLevel = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// massSource resolves mass.source to element masses and a residue table
func massSource() (core.MassSource, *core.ResidueTable, error) {
	name := viper.GetString(massSourceKey)
	src, err := core.MassSourceByName(name)
	if err != nil {
		return nil, nil, err
	}
	return src, core.NewResidueTable(src), nil
}

// loadModDatabase returns the default modifications plus any loaded from
// mods.file, or from unimod_custom.csv in the working directory.
func loadModDatabase() (*core.ModDatabase, error) {
	modDB := core.DefaultModDatabase()

	path := viper.GetString(modsFileKey)
	if path == "" {
		if _, err := os.Stat(customModsFile); err != nil {
			return modDB, nil
		}
		path = customModsFile
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open modification file: %w", err)
	}
	defer f.Close()

	if err := modDB.LoadFromCSV(f); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	slog.Debug("loaded modifications", "file", path, "count", modDB.Len())
	return modDB, nil
}

// loadEnzymeLibrary returns the built-in rules, extended or overridden by
// the rules in enzymes.file.
func loadEnzymeLibrary() (*enzyme.Library, error) {
	lib := enzyme.DefaultLibrary()

	path := viper.GetString(enzymesFileKey)
	if path == "" {
		return lib, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open enzyme file: %w", err)
	}
	defer f.Close()

	rules, err := enzyme.ParseRules(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	slog.Debug("loaded enzyme rules", "file", path, "count", len(rules))
	return lib.With(rules...), nil
}

// lookupRule finds an enzyme and suggests names differing only in case
func lookupRule(lib *enzyme.Library, name string) (*enzyme.Rule, error) {
	rule, err := lib.Lookup(name)
	if err == nil {
		return rule, nil
	}
	if suggestions := lib.Suggest(name); len(suggestions) > 0 {
		return nil, fmt.Errorf("%w (did you mean %s?)", err, strings.Join(suggestions, ", "))
	}
	return nil, fmt.Errorf("%w (run 'pepfrag enzymes' for the list)", err)
}
