package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"rcpilot.dev/pkg/rcpilot/internal/adapter"
	"rcpilot.dev/pkg/rcpilot/internal/domain"
	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "rcpilot"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	envPrefix = "RCPILOT"

	sourcesDirKey   = "paths.sources_dir"
	artifactsDirKey = "paths.artifacts_dir"
	stateDirKey     = "paths.state_dir"

	specMaxIterationsKey  = "repair.spec_max_iterations"
	lemmaMaxIterationsKey = "repair.lemma_max_iterations"
	lemmaEnabledKey       = "repair.lemma_enabled"
	escalateKey           = "repair.escalate_on_proof_failure"
	flowTimeoutKey        = "repair.flow_timeout"
	verifyTimeoutKey      = "repair.verify_timeout"
	generateTimeoutKey    = "repair.generate_timeout"

	runParallelConfigKey = "run.parallel"

	verifierKey     = "tools.verifier"
	verifierArgsKey = "tools.verifier_args"
	coqcKey         = "tools.coqc"
	coqcArgsKey     = "tools.coqc_args"

	specModelKey  = "agents.spec.model"
	lemmaModelKey = "agents.lemma.model"

	groupContinuationKey = "insert.group_continuation"
	lemmaModuleKey       = "lemma.module"

	defaultSourcesDir   = "sources"
	defaultArtifactsDir = "artifacts"
	defaultStateDir     = ".rcpilot-state"
	defaultRunParallel  = 4

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".rcpilot.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	initConfig()
}

// initConfig points viper at rcpilot.yaml and the RCPILOT_ environment and
// registers the defaults.
func initConfig() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

func setDefaults() {
	repair := domain.DefaultRepairConfig()

	viper.SetDefault(configVersionKey, currentConfigVersion)

	viper.SetDefault(sourcesDirKey, defaultSourcesDir)
	viper.SetDefault(artifactsDirKey, defaultArtifactsDir)
	viper.SetDefault(stateDirKey, defaultStateDir)

	viper.SetDefault(specMaxIterationsKey, repair.SpecMaxIterations)
	viper.SetDefault(lemmaMaxIterationsKey, repair.LemmaMaxIterations)
	viper.SetDefault(lemmaEnabledKey, repair.LemmaEnabled)
	viper.SetDefault(escalateKey, repair.EscalateOnProofFailure)
	viper.SetDefault(flowTimeoutKey, repair.FlowTimeout.String())
	viper.SetDefault(verifyTimeoutKey, repair.VerifyTimeout.String())
	viper.SetDefault(generateTimeoutKey, repair.GenerateTimeout.String())

	viper.SetDefault(runParallelConfigKey, defaultRunParallel)

	viper.SetDefault(verifierKey, adapter.DefaultVerifier)
	viper.SetDefault(verifierArgsKey, adapter.DefaultVerifierArgs)
	viper.SetDefault(coqcKey, adapter.DefaultCoqc)
	viper.SetDefault(coqcArgsKey, []string{})

	viper.SetDefault(specModelKey, adapter.DefaultGeminiModel)
	viper.SetDefault(lemmaModelKey, adapter.DefaultGeminiModel)

	viper.SetDefault(groupContinuationKey, false)
	viper.SetDefault(lemmaModuleKey, domain.DefaultLemmaModule)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

// repairConfigFromViper reads the repair section, falling back to the
// defaults for unparsable durations.
func repairConfigFromViper() domain.RepairConfig {
	defaults := domain.DefaultRepairConfig()

	return domain.RepairConfig{
		SpecMaxIterations:      viper.GetInt(specMaxIterationsKey),
		LemmaMaxIterations:     viper.GetInt(lemmaMaxIterationsKey),
		LemmaEnabled:           viper.GetBool(lemmaEnabledKey),
		EscalateOnProofFailure: viper.GetBool(escalateKey),
		FlowTimeout:            durationOrDefault(viper.GetString(flowTimeoutKey), defaults.FlowTimeout),
		VerifyTimeout:          durationOrDefault(viper.GetString(verifyTimeoutKey), defaults.VerifyTimeout),
		GenerateTimeout:        durationOrDefault(viper.GetString(generateTimeoutKey), defaults.GenerateTimeout),
		LemmaModule:            viper.GetString(lemmaModuleKey),
	}
}

// layoutFromViper builds the directory layout of project.
func layoutFromViper(project string) adapter.Layout {
	return adapter.Layout{
		SourcesDir:   m.Path(viper.GetString(sourcesDirKey)),
		ArtifactsDir: m.Path(viper.GetString(artifactsDirKey)),
		StateDir:     m.Path(viper.GetString(stateDirKey)),
		Project:      project,
	}
}

// durationOrDefault accepts Go durations ("90s") and plain seconds ("90").
func durationOrDefault(value string, fallback time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	if n, err := strconv.Atoi(value); err == nil && n >= 0 {
		return time.Duration(n) * time.Second
	}

	slog.Warn("invalid duration in configuration, using default", "value", value, "default", fallback)

	return fallback
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
// By default it logs at the configured level; if verbose is true it logs at Debug.
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

	globalLogger = slog.New(handler).With("tool", configBaseName)
	slog.SetDefault(globalLogger)
}
