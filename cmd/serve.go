package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"eva/internal/actions"
	"eva/internal/agent"
	"eva/internal/channel"
	"eva/internal/config"
	"eva/internal/contacts"
	"eva/internal/gsuite"
	"eva/internal/httpapi"
	"eva/internal/logger"
	"eva/internal/maps"
	"eva/internal/search"
	"eva/internal/voice"
	"eva/internal/watcher"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if portFlag > 0 {
		cfg.Port = portFlag
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone %q, using local time", cfg.Timezone)
		loc = time.Local
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := buildProvider(ctx, cfg)
	if err != nil {
		return err
	}

	reg := actions.NewRegistry()
	book, err := contacts.Open(cfg.Contacts.Path)
	if err != nil {
		return fmt.Errorf("open contacts: %w", err)
	}
	defer book.Close()
	actions.RegisterContacts(reg, book)

	var auth *gsuite.Auth
	var mail *gsuite.Mail
	if _, statErr := os.Stat(cfg.Google.ClientSecretsFile); statErr == nil {
		redirect := fmt.Sprintf("http://localhost:%d/oauth2callback_google", cfg.Port)
		auth, err = gsuite.NewAuth(cfg.Google.ClientSecretsFile, cfg.Google.TokenFile, redirect)
		if err != nil {
			return fmt.Errorf("google auth: %w", err)
		}
		mail = gsuite.NewMail(auth)
		actions.RegisterCalendar(reg, gsuite.NewCalendar(auth, loc), nil, loc)
		actions.RegisterMail(reg, mail, book)
		actions.RegisterTasks(reg, gsuite.NewTasks(auth), nil)
	} else {
		logger.Warn("google client secrets not configured, calendar/email/task actions disabled")
	}

	if cfg.Maps.APIKey != "" {
		router, err := maps.NewRouter(cfg.Maps.APIKey)
		if err != nil {
			return fmt.Errorf("maps client: %w", err)
		}
		actions.RegisterDirections(reg, router, cfg.Maps.DefaultOrigin)
	}

	if cfg.Search.APIKey != "" {
		engine := search.NewSerpEngine(cfg.Search.APIKey, cfg.Search.BaseURL, cfg.Search.MaxResults)
		actions.RegisterSearch(reg, engine, search.NewWeather(engine), cfg.Maps.DefaultOrigin)
	}

	var transcriber voice.Transcriber
	if cfg.AI.OpenAIKey != "" {
		transcriber = voice.NewWhisperTranscriber(cfg.AI.OpenAIKey, cfg.Language)
	}
	actions.RegisterSystem(reg, cfg.Apps, nil, loc, transcriber)
	actions.RegisterCode(reg, cfg.Sandbox.Interpreter,
		time.Duration(cfg.Sandbox.TimeoutSeconds)*time.Second, os.TempDir(),
		codeGen{provider})

	var synth voice.Synthesizer
	if cfg.Voice.Enabled {
		synth = voice.NewGoogleTTS(cfg.Voice.Language)
	}

	a := agent.New(provider, reg, nil, loc)

	mux := http.NewServeMux()
	mux.Handle("/api/chat_ws", channel.NewServer(a, synth, cfg.Memory.MaxPairs))
	httpapi.New(Version, cfg.AI.Provider, len(reg.Actions()), auth).Register(mux)

	if cfg.Watcher.Enabled && mail != nil {
		w := watcher.New(mail, provider, watcher.Config{
			Schedule:         cfg.Watcher.Schedule,
			Monitored:        cfg.Watcher.Monitored,
			ExcludedPrefixes: cfg.Watcher.ExcludedPrefixes,
			ReplyAll:         cfg.Watcher.ReplyAll,
		})
		stopWatcher, err := w.Start()
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer stopWatcher()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("eva listening on %s (%d actions)", srv.Addr, len(reg.Actions()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func buildProvider(ctx context.Context, cfg *config.Config) (agent.Provider, error) {
	switch cfg.AI.Provider {
	case "openai":
		if cfg.AI.OpenAIKey == "" {
			return nil, fmt.Errorf("openai provider selected but no openai key configured")
		}
		return agent.NewOpenAIProvider(cfg.AI.OpenAIKey, cfg.AI.Model), nil
	case "gemini", "":
		if cfg.AI.APIKey == "" {
			return nil, fmt.Errorf("no Gemini API key configured (set GEMINI_API_KEY)")
		}
		return agent.NewGeminiProvider(ctx, cfg.AI.APIKey, cfg.AI.Model)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AI.Provider)
	}
}

// codeGen adapts the conversation provider to the code-generation
// interface the 3D action needs.
type codeGen struct {
	provider agent.Provider
}

func (g codeGen) GenerateCode(ctx context.Context, instruction string) (string, error) {
	return g.provider.Generate(ctx, "", []agent.Turn{{Role: agent.RoleUser, Text: instruction}})
}
