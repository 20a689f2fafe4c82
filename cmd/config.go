package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"splice.dev/pkg/splice/internal/domain"
	m "splice.dev/pkg/splice/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "splice"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName     = "output"
	classpathFlagName  = "classpath"
	mixFlagName        = "mix"
	dependencyFlagName = "dependency"
	lockFlagName       = "lock"
	parallelFlagName   = "parallel"
	verboseFlagName    = "verbose"
	logFileFlagName    = "log-file"

	classpathConfigKey     = "classpath"
	mixinsConfigKey        = "mixins"
	dependenciesConfigKey  = "dependencies"
	mirrorsConfigKey       = "mirrors"
	lockPathConfigKey      = "lock.path"
	fetchParallelConfigKey = "fetch.parallel"
	fetchTimeoutConfigKey  = "fetch.timeout"
	patchParallelConfigKey = "patch.parallel"
	cacheDirConfigKey      = "cache.dir"

	defaultOutputDir     = ".splice-out"
	defaultLockPath      = "splice.lock"
	defaultCacheDir      = ".splice-cache"
	defaultMirrorURL     = "https://repo.maven.apache.org/maven2"
	defaultFetchParallel = 4
	defaultPatchParallel = 4
	defaultFetchTimeout  = 30 * time.Second

	envPrefix = "SPLICE"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".splice.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputFlagName, defaultOutputDir)
	viper.SetDefault(classpathConfigKey, []string{})
	viper.SetDefault(mixinsConfigKey, []string{})
	viper.SetDefault(dependenciesConfigKey, []string{})
	viper.SetDefault(mirrorsConfigKey, []map[string]string{{"url": defaultMirrorURL}})
	viper.SetDefault(lockPathConfigKey, defaultLockPath)
	viper.SetDefault(fetchParallelConfigKey, defaultFetchParallel)
	viper.SetDefault(fetchTimeoutConfigKey, int64(defaultFetchTimeout.Seconds()))
	viper.SetDefault(patchParallelConfigKey, defaultPatchParallel)
	viper.SetDefault(cacheDirConfigKey, defaultCacheDir)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

// setupArgs collects the engine setup shared by every command from flags,
// environment and the config file.
func setupArgs() (domain.SetupArgs, error) {
	var mirrors []m.MirrorConfig
	if err := viper.UnmarshalKey(mirrorsConfigKey, &mirrors); err != nil {
		return domain.SetupArgs{}, fmt.Errorf("invalid %s configuration: %w", mirrorsConfigKey, err)
	}

	return domain.SetupArgs{
		Classpath:    parsePaths(viper.GetStringSlice(classpathConfigKey)),
		Mixins:       viper.GetStringSlice(mixinsConfigKey),
		Dependencies: viper.GetStringSlice(dependenciesConfigKey),
		Mirrors:      mirrors,
		Parallel:     viper.GetInt(fetchParallelConfigKey),
		LockPath:     m.Path(viper.GetString(lockPathConfigKey)),
	}, nil
}

func fetchTimeout() time.Duration {
	seconds := viper.GetInt64(fetchTimeoutConfigKey)
	if seconds <= 0 {
		return defaultFetchTimeout
	}

	return time.Duration(seconds) * time.Second
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

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
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

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
