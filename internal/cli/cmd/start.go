package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/matjam/camview/internal/eglnative"
	"github.com/matjam/camview/internal/gles"
	"github.com/matjam/camview/internal/ipc"
	"github.com/matjam/camview/internal/source"
	"github.com/matjam/camview/internal/types"
	"github.com/matjam/camview/internal/x11host"
	daemon "github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func NewStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the camview preview",
		Run: func(cmd *cobra.Command, args []string) {
			background, _ := cmd.Flags().GetBool("background")
			StartManager(background)
		},
	}
}

// StartManager runs the preview until it is stopped. With background set the
// process re-executes itself as a daemon and the parent returns at once.
func StartManager(background bool) {
	if background && !daemon.WasReborn() {
		if reborn := daemonize(); reborn {
			return
		}
	}

	log.Infof("StartManager() started in PID: %d", os.Getpid())

	if os.Getenv("BACKGROUND_PROCESS") == "1" {
		setupRotatingLogger()
	}

	if _, err := ipc.SendStatus(); err == nil {
		log.Infof("camview is already running, exiting")
		os.Exit(0)
	}

	cfg := managerConfig()

	display, err := openDisplay(cfg.DisplayMode)
	if err != nil {
		log.Fatalf("Failed to open display: %v", err)
	}
	cfg.Display = display

	manager := ipc.NewManager(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting socket server")
		return ipc.Start(ctx, manager)
	})
	g.Go(func() error {
		defer cancel()
		return manager.Run(ctx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("camview failed: %v", err)
	}
	log.Infof("camview exited")
}

func managerConfig() ipc.ManagerConfig {
	return ipc.ManagerConfig{
		GL:          gles.GL{},
		Backend:     eglnative.New(),
		DisplayMode: types.DisplayMode(viper.GetString("display")),
		Source:      viper.GetString("source"),
		SourceOptions: source.Options{
			Width:     viper.GetInt("width"),
			Height:    viper.GetInt("height"),
			Framerate: viper.GetInt("source_framerate"),
			MaxSide:   viper.GetInt("max_texture_size"),
			Interval:  time.Duration(viper.GetInt("slide_interval")) * time.Second,
			Shuffle:   viper.GetBool("shuffle"),
		},
		Orientation:   types.Orientation(viper.GetString("orientation")),
		Rotation:      viper.GetInt("rotation"),
		CoalesceDraws: viper.GetBool("coalesce_draws"),
	}
}

func openDisplay(mode types.DisplayMode) (ipc.Display, error) {
	width, height := viper.GetInt("width"), viper.GetInt("height")
	switch mode {
	case types.DisplayHeadless:
		log.Infof("Rendering headless at %dx%d", width, height)
		return ipc.NewHeadless(width, height), nil
	default:
		log.Info("Opening X11 window")
		window, err := x11host.Open("camview", width, height)
		if err != nil {
			return nil, err
		}
		return window, nil
	}
}

// daemonize re-executes the process in the background. It reports true in
// the parent.
func daemonize() bool {
	cntxt := &daemon.Context{
		WorkDir: "/",
		Umask:   027,
		Args:    os.Args,
		Env:     append(os.Environ(), "BACKGROUND_PROCESS=1"),
	}

	child, err := cntxt.Reborn()
	if err != nil {
		log.Fatalf("Failed to start daemon: %v", err)
	}
	if child != nil {
		log.Infof("camview started in background (PID %d)", child.Pid)
		return true
	}
	return false
}

func setupRotatingLogger() {
	home := os.Getenv("HOME")
	logDir := filepath.Join(home, ".local", "share", "camview")
	logPath := filepath.Join(logDir, "camview.log")

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Fatalf("failed to create log directory: %v", err)
	}

	writer, err := rotatelogs.New(
		logPath+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(logPath),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationSize(10*1024*1024),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		log.Fatalf("failed to configure log rotation: %v", err)
	}

	log.SetOutput(writer)
	if !viper.GetBool("debug") {
		log.SetLevel(log.InfoLevel)
	}
}
