package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"kidtimer/internal/audio"
	"kidtimer/internal/client"
	"kidtimer/internal/controller"
	"kidtimer/internal/logging"
	"kidtimer/internal/model"
	"kidtimer/internal/preferences"
	"kidtimer/internal/reporter"
	"kidtimer/internal/timer"
	"kidtimer/internal/tui"
)

const (
	appName  = "kidtimer"
	tokenKey = "authToken"
)

type settings struct {
	PrefsPath string
	Server    string
	Token     string
	LogFile   string
	Verbose   bool
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("KIDTIMER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "A visual countdown timer for kids",
		Long:          `Pick a preset (or a custom number of minutes), press space, and watch the clock count down. A chime plays when time is up.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimer(cmd, loadSettings(v))
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("prefs", "", "preferences file (default: user config dir)")
	flags.String("server", "", "timer server URL for session history")
	flags.String("token", "", "API token (default: the token saved by login)")
	flags.String("log-file", "", "write JSON logs to this file")
	flags.Bool("verbose", false, "log at debug level")
	for _, name := range []string{"prefs", "server", "token", "log-file", "verbose"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	cmd.AddCommand(
		newPresetsCmd(),
		newSoundsCmd(),
		newLoginCmd(v),
		newLogoutCmd(v),
		newHistoryCmd(v),
	)
	return cmd
}

func loadSettings(v *viper.Viper) settings {
	return settings{
		PrefsPath: v.GetString("prefs"),
		Server:    v.GetString("server"),
		Token:     v.GetString("token"),
		LogFile:   v.GetString("log-file"),
		Verbose:   v.GetBool("verbose"),
	}
}

func (s settings) logger() (*zap.Logger, error) {
	if s.LogFile == "" {
		return zap.NewNop(), nil
	}
	level := "info"
	if s.Verbose {
		level = "debug"
	}
	return logging.ToFile(s.LogFile, level)
}

func (s settings) backend() (*preferences.FileBackend, error) {
	path := s.PrefsPath
	if path == "" {
		var err error
		path, err = preferences.DefaultPath(appName)
		if err != nil {
			return nil, err
		}
	}
	return preferences.NewFileBackend(path), nil
}

// token prefers an explicit token over the one saved by login.
func (s settings) token(ctx context.Context, backend preferences.Backend) string {
	if s.Token != "" {
		return s.Token
	}
	saved, ok, err := backend.Get(ctx, tokenKey)
	if err != nil || !ok {
		return ""
	}
	return saved
}

func (s settings) apiClient(ctx context.Context, backend preferences.Backend) (*client.Client, error) {
	if s.Server == "" {
		return nil, fmt.Errorf("no server configured; pass --server or set KIDTIMER_SERVER")
	}
	token := s.token(ctx, backend)
	if token == "" {
		return nil, fmt.Errorf("not logged in; run %s login", appName)
	}
	return client.New(s.Server, client.WithToken(token)), nil
}

func runTimer(cmd *cobra.Command, s settings) error {
	ctx := cmd.Context()

	logger, err := s.logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	backend, err := s.backend()
	if err != nil {
		return err
	}
	store := preferences.NewStore(backend, logger.Named("preferences"))
	sound := audio.NewService(audio.NewBellPlayer(cmd.ErrOrStderr()), logger.Named("audio"))

	var async *reporter.Async
	var listener func(timer.Event)
	if token := s.token(ctx, backend); token != "" && s.Server != "" {
		api := client.New(s.Server, client.WithToken(token))
		async = reporter.NewAsync(api, reporter.Options{Logger: logger.Named("reporter")})
		listener = async.Observe
		logger.Info("session history enabled", zap.String("server", s.Server))
	}

	engine := timer.New(model.DefaultPreset(), sound, timer.Options{
		Logger:   logger.Named("timer"),
		Listener: listener,
	})
	ctrl := controller.New(engine, store, sound, logger.Named("controller"))
	ctrl.Restore(ctx)

	program := tea.NewProgram(
		tui.New(ctx, ctrl, engine.Subscribe(64)),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, runErr := program.Run()

	// A run still counting down is recorded as paused.
	engine.Pause()
	engine.Close()

	if async != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := async.Close(closeCtx); err != nil {
			logger.Warn("flush session history", zap.Error(err))
		}
	}

	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("run timer: %w", runErr)
	}
	return nil
}
