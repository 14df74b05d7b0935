// Command vtuber runs the green-screen VTuber overlay.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"vtuber/internal/anim"
	"vtuber/internal/app"
	"vtuber/internal/audio"
	"vtuber/internal/audio/mic"
	"vtuber/internal/avatar"
	"vtuber/internal/chat"
	"vtuber/internal/config"
	"vtuber/internal/effects"
	"vtuber/internal/logging"
	"vtuber/internal/screen"
	"vtuber/internal/speech"
	"vtuber/internal/speech/vosk"
)

var version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "vtuber",
		Short:         "Green-screen VTuber overlay driven by your microphone",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./vtuber.yaml)")

	var debug bool
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Open the overlay window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, debug)
		},
	}
	runCmd.Flags().BoolVar(&debug, "debug", false, "print mic level and particle count on screen")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List avatar models found in the models directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.Load(configPath)
			if err != nil {
				return err
			}
			reg := avatar.NewRegistry(cfg.Avatar.ModelsDir, cfg.Avatar.ImageScale, zerolog.Nop())
			names, err := reg.Available()
			if err != nil {
				return err
			}
			for _, name := range names {
				marker := " "
				if name == cfg.Avatar.DefaultModel {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, modelsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath string, debug bool) error {
	cfg, v, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer logger.Close()
	log := logger.Component("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := avatar.NewRegistry(cfg.Avatar.ModelsDir, cfg.Avatar.ImageScale, logger.Component("avatar"))
	if err := registry.Load(cfg.Avatar.DefaultModel); err != nil {
		return fmt.Errorf("load default model: %w", err)
	}
	sprites, err := avatar.LoadSprites(cfg.Avatar.AssetsDir, cfg.Avatar.HeartScale, cfg.Avatar.SparkleSize)
	if err != nil {
		return fmt.Errorf("load sprites: %w", err)
	}

	inbox := app.NewInbox(64)
	workers := app.NewWorkers(ctx, logger.Component("workers"))

	// Speech is optional: without a model the overlay still reacts to volume.
	var (
		queue      *audio.FrameQueue
		recognizer *vosk.Recognizer
		matcher    = speech.NewMatcher(cfg.Speech.Keywords)
	)
	if cfg.Speech.Enabled {
		recognizer, err = vosk.New(cfg.Speech.ModelPath, float64(cfg.Audio.SampleRate))
		if err != nil {
			log.Warn().Err(err).Str("model_path", cfg.Speech.ModelPath).Msg("speech recognition disabled")
		} else {
			defer recognizer.Close()
			queue = audio.NewFrameQueue(cfg.Audio.QueueSize)
			bridge := speech.NewBridge(queue, recognizer, matcher,
				func(keyword, text string) {
					if !inbox.Post(app.Event{Kind: app.EventTrigger, Keyword: keyword, Source: "speech"}) {
						log.Warn().Str("keyword", keyword).Msg("inbox full, trigger dropped")
					}
				},
				speech.WithPollTimeout(cfg.Speech.PollTimeout),
				speech.WithBackoff(cfg.Speech.Backoff),
				speech.WithLogger(logger.Component("speech")),
			)
			workers.Add("speech", bridge.Run)
		}
	}

	monitor := audio.NewMonitor(cfg.Audio.Threshold, queue, logger.Component("audio"))
	device, err := mic.Open(mic.Config{SampleRate: cfg.Audio.SampleRate, Channels: cfg.Audio.Channels}, monitor.Process, logger.Component("mic"))
	if err != nil {
		log.Warn().Err(err).Msg("no microphone, avatar will stay idle")
	} else {
		workers.Add("mic", device.Run)
	}

	if cfg.Chat.URL != "" {
		keywords := make([]chat.Keyword, 0, len(cfg.Chat.Keywords))
		for _, k := range cfg.Chat.Keywords {
			keywords = append(keywords, chat.Keyword{Keyword: k.Keyword, Model: k.Model})
		}
		listener := chat.NewListener(cfg.Chat.URL, cfg.Chat.ReconnectDelay, keywords,
			func(author, keyword, model string) {
				inbox.Post(app.Event{Kind: app.EventSwitchModel, Keyword: keyword, Model: model, Source: "chat"})
			},
			logger.Component("chat"),
		)
		workers.Add("chat", listener.Run)
	}

	config.Watch(v, func(next *config.Config) {
		monitor.SetThreshold(next.Audio.Threshold)
		matcher.SetKeywords(next.Speech.Keywords)
		log.Info().Float64("threshold", next.Audio.Threshold).Strs("keywords", matcher.Keywords()).Msg("config reloaded")
	}, func(err error) {
		log.Warn().Err(err).Msg("config reload rejected")
	})

	fx := effects.DefaultConfig()
	fx.GlowDuration = cfg.Effects.GlowDuration
	fx.GlowMaxAlpha = cfg.Effects.GlowMaxAlpha
	fx.SpawnRadius = cfg.Effects.SpawnRadius
	fx.MaxParticles = cfg.Effects.MaxParticles
	fx.Hearts.Count = cfg.Effects.Hearts
	fx.Sparkles.Count = cfg.Effects.Sparkles
	seed := uint64(time.Now().UnixNano())

	machine := app.NewMachine(app.Deps{
		Width:          cfg.Window.Width,
		Height:         cfg.Window.Height,
		SplashDuration: cfg.UI.SplashDuration,
		Anim: anim.Params{
			BounceSpeed:  cfg.Animation.BounceSpeed,
			BounceHeight: cfg.Animation.BounceHeight,
			BreathSpeed:  cfg.Animation.BreathSpeed,
			BreathHeight: cfg.Animation.BreathHeight,
		},
		Effects: effects.New(fx, rand.New(rand.NewPCG(seed, seed>>1))),
		Models:  registry,
		Speaker: monitor,
		Inbox:   inbox,
		Workers: workers,
		Log:     logger.Component("app"),
	})

	fonts := screen.LoadFonts(logger.Component("screen"), cfg.UI.FontPath, "assets/font.otf")
	game := screen.New(machine, registry, sprites, fonts, monitor, screen.Options{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Debug:  debug,
		Done:   ctx.Done(),
	})

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetTPS(cfg.Window.TPS)
	ebiten.SetWindowClosingHandled(true)

	log.Info().Int("width", cfg.Window.Width).Int("height", cfg.Window.Height).Msg("starting overlay")
	runErr := ebiten.RunGame(game)

	if err := workers.Stop(); err != nil {
		log.Warn().Err(err).Msg("worker stopped with error")
	}
	if runErr != nil {
		return fmt.Errorf("overlay: %w", runErr)
	}
	log.Info().Msg("goodbye")
	return nil
}
