package main

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/flashgesture/internal/app"
	"github.com/ayusman/flashgesture/internal/capture"
	"github.com/ayusman/flashgesture/internal/config"
	"github.com/ayusman/flashgesture/internal/flashcard"
	"github.com/ayusman/flashgesture/internal/logger"
	"github.com/ayusman/flashgesture/internal/server"
	"github.com/ayusman/flashgesture/internal/tray"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the flashcard server",
	Long: "Serve the flashcard API and the /api/gesture WebSocket. With --camera the local webcam\n" +
		"is classified as well; with --tray a menu bar switch for gesture input is shown.",
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", config.DefaultAddr, "Listen address")
	f.String("static", "", "Directory with the web UI (default: ./web or ~/.flashgesture/web)")
	f.Int("camera", config.CameraDisabled, "Camera device for local gesture input (-1 disables it)")
	f.Duration("hold", 0, "How long a gesture must be held to confirm (default 1.5s)")
	f.Duration("timeout", 0, "How long after a card is shown inactivity is flagged (default 8s)")
	f.Bool("tray", false, "Show the system tray menu")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Named("cli")
	cfg := config.Load()
	applyServeFlags(cmd, &cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	cards := flashcard.NewService(st)

	a := app.New(app.Config{
		Store: st,
		Camera: capture.Config{
			DeviceID: cfg.Camera.DeviceID,
			Width:    capture.DefaultWidth,
			Height:   capture.DefaultHeight,
			FPS:      capture.IdleFPS,
		},
		MotionThresh: cfg.Camera.MotionThresh,
		SampleEvery:  cfg.Camera.SampleEvery,
		Classifier:   cfg.Classifier,
	})
	if err := a.LoadTemplates(ctx); err != nil {
		return err
	}

	cameraOn := cfg.Camera.DeviceID != config.CameraDisabled
	if cameraOn {
		if err := a.Start(); err != nil {
			log.Warn().Err(err).Int("camera", cfg.Camera.DeviceID).Msg("camera unavailable, browser input only")
			cameraOn = false
		} else {
			a.SetEnabled(true)
		}
	}
	defer a.Stop()

	static := cfg.Server.StaticDir
	if static == "" {
		static = findWebDir()
	}
	if static != "" {
		log.Info().Str("dir", static).Msg("serving web UI")
	}

	var t *tray.Tray
	if cfg.Tray {
		t = tray.New(a.IsEnabled())
	}

	srvCfg := server.Config{
		StaticDir:   static,
		CORSOrigins: cfg.Server.CORSOrigins,
		Cards:       cards,
		App:         a,
		Stream:      cameraOn,
		Engine:      cfg.Engine,
		Classifier:  cfg.Classifier,
	}
	if t != nil {
		srvCfg.OnRating = t.SetLastRating
	}
	srv := server.New(srvCfg)

	if t == nil {
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	}

	// systray needs the main goroutine, so the server runs beside it.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t.OnToggle(a.SetEnabled)
	t.OnOpen(func() { openBrowser("http://localhost" + cfg.Server.Addr) })
	t.OnQuit(cancel)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx, cfg.Server.Addr)
		t.Quit()
	}()

	t.Run()
	cancel()
	return <-errCh
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("addr") {
		cfg.Server.Addr, _ = f.GetString("addr")
	}
	if f.Changed("static") {
		cfg.Server.StaticDir, _ = f.GetString("static")
	}
	if f.Changed("camera") {
		cfg.Camera.DeviceID, _ = f.GetInt("camera")
	}
	if f.Changed("hold") {
		cfg.Engine.HoldDuration, _ = f.GetDuration("hold")
	}
	if f.Changed("timeout") {
		cfg.Engine.OverallTimeout, _ = f.GetDuration("timeout")
	}
	if f.Changed("tray") {
		cfg.Tray, _ = f.GetBool("tray")
	}
}

// findWebDir checks ./web, ../web and ~/.flashgesture/web.
func findWebDir() string {
	candidates := []string{"web", filepath.Join("..", "web")}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".flashgesture", "web"))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logger.Named("cli").Warn().Err(err).Str("url", url).Msg("open browser")
	}
}
