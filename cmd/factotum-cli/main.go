package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"factotum-cli/internal/config"
	"factotum-cli/internal/logger"
	"factotum-cli/internal/render"
	"factotum-cli/internal/repl"
	"factotum-cli/internal/runtime"

	"github.com/charmbracelet/lipgloss"
)

var log = logger.Named("main")

func main() {
	logger.Configure()
	if logFile, _, err := logger.SetupFile(logger.DefaultLogPath); err != nil {
		log.Warnf("failed to initialize log file: %v", err)
	} else {
		defer logFile.Close()
	}

	cli, err := parseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("parse args: %v", err)
	}

	cfg, err := config.Load(cli.cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg = applyOverrides(cfg, cli)
	if strings.TrimSpace(cfg.GatewayURL) == "" {
		log.Fatalf("no gateway configured; set gateway_url in %s or FACTOTUM_GATEWAY_URL", cfg.Source)
	}

	for _, dir := range []string{cfg.InputDir, cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Warnf("failed to create %s: %v", dir, err)
		}
	}

	client := runtime.NewClient(runtime.ClientOptions{
		BaseURL:        cfg.GatewayURL,
		Token:          cfg.Token,
		Agent:          cfg.Agent,
		SandboxTimeout: cfg.SandboxTimeout(),
	})

	theme := render.DefaultTheme()
	loop := repl.New(repl.Options{
		Config: cfg,
		Client: client,
		In:     os.Stdin,
		Out:    os.Stdout,
		Theme:  theme,
		Width:  terminalWidth(),
		Banner: banner(theme, cfg),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := loop.Run(ctx); err != nil {
		log.Fatalf("program exit: %v", err)
	}
}

type cliArgs struct {
	cfgPath string
	gateway string
	agent   string
}

func parseArgs(args []string) (cliArgs, error) {
	fs := flag.NewFlagSet("factotum-cli", flag.ContinueOnError)
	var cli cliArgs
	fs.StringVar(&cli.cfgPath, "config", "", "Path to config file (default ~/.factotum/config.toml)")
	fs.StringVar(&cli.gateway, "gateway", "", "Gateway base URL (overrides config)")
	fs.StringVar(&cli.agent, "agent", "", "Agent backend: claude, codex or gemini (overrides config)")
	if err := fs.Parse(args); err != nil {
		return cliArgs{}, err
	}
	if rest := fs.Args(); len(rest) > 0 {
		return cliArgs{}, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return cli, nil
}

func applyOverrides(cfg config.Config, cli cliArgs) config.Config {
	if strings.TrimSpace(cli.gateway) != "" {
		cfg.GatewayURL = strings.TrimSpace(cli.gateway)
	}
	if strings.TrimSpace(cli.agent) != "" {
		cfg.Agent = strings.TrimSpace(cli.agent)
	}
	return cfg
}

func banner(theme render.Theme, cfg config.Config) string {
	title := theme.Header.Render("factotum")
	detail := theme.Muted.Render(fmt.Sprintf("agent=%s gateway=%s", cfg.Agent, cfg.GatewayURL))
	hint := theme.Muted.Render("/help for commands, /quit to exit")
	return lipgloss.JoinVertical(lipgloss.Left, title, detail, hint)
}

// terminalWidth seeds the static renderer; the live program picks up the
// real width from its own resize events.
func terminalWidth() int {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		var w int
		if _, err := fmt.Sscanf(cols, "%d", &w); err == nil && w > 0 {
			return w
		}
	}
	return 80
}
