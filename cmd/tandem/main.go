package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v2"

	"github.com/nimec77/tandem/pkg/agent"
	"github.com/nimec77/tandem/pkg/config"
	"github.com/nimec77/tandem/pkg/mcp"
	"github.com/nimec77/tandem/pkg/model"
	"github.com/nimec77/tandem/pkg/model/anthropic"
	"github.com/nimec77/tandem/pkg/model/openaichat"
	"github.com/nimec77/tandem/pkg/session"
	"github.com/nimec77/tandem/pkg/tool"
	toolbuiltin "github.com/nimec77/tandem/pkg/tool/builtin"
)

const version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "tandem",
		Usage:   "multi-provider conversational AI agent with MCP tools",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "use the named configuration file", EnvVars: []string{"TANDEM_CONFIG"}},
			&cli.StringFlag{Name: "provider", Aliases: []string{"p"}, Usage: "model provider (anthropic, openai, deepseek)", EnvVars: []string{"TANDEM_PROVIDER"}},
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "model to be used for responses", EnvVars: []string{"TANDEM_MODEL"}},
			&cli.StringFlag{Name: "anthropic-key", Usage: "Anthropic API key", EnvVars: []string{"TANDEM_ANTHROPIC_KEY", "ANTHROPIC_API_KEY"}},
			&cli.StringFlag{Name: "openai-key", Usage: "OpenAI API key", EnvVars: []string{"TANDEM_OPENAI_KEY", "OPENAI_API_KEY"}},
			&cli.StringFlag{Name: "deepseek-key", Usage: "DeepSeek API key", EnvVars: []string{"TANDEM_DEEPSEEK_KEY", "DEEPSEEK_API_KEY"}},
			&cli.StringFlag{Name: "base-url", Usage: "override the provider endpoint", EnvVars: []string{"TANDEM_BASE_URL"}},
			&cli.StringFlag{Name: "mcp-config", Usage: "tool-server configuration file", EnvVars: []string{"TANDEM_MCP_CONFIG"}},
			&cli.BoolFlag{Name: "builtin-tools", Usage: "enable the builtin workspace tools", EnvVars: []string{"TANDEM_BUILTIN_TOOLS"}},
			&cli.StringFlag{Name: "system", Usage: "system prompt for the conversation", EnvVars: []string{"TANDEM_SYSTEM"}},
			&cli.IntFlag{Name: "max-tokens", Usage: "maximum number of tokens to generate", EnvVars: []string{"TANDEM_MAXTOKENS"}},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}, Usage: "enable debug logging", EnvVars: []string{"TANDEM_VERBOSE"}},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "tandem:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	var sources []tool.Client
	if cfg.BuiltinTools {
		registry := tool.NewRegistry()
		if err := toolbuiltin.Register(registry, ""); err != nil {
			return err
		}
		sources = append(sources, registry)
	}
	if cfg.MCPConfig != "" {
		servers, err := mcp.LoadConfig(cfg.MCPConfig)
		if err != nil {
			return err
		}
		client := mcp.NewClient(ctx, servers, logger)
		defer client.Shutdown()
		sources = append(sources, client)
	}
	var tools agent.ToolClient
	if len(sources) > 0 {
		tools = tool.NewMux(sources...)
	}

	ag, err := agent.New(agent.Config{Provider: provider, Tools: tools, Logger: logger})
	if err != nil {
		return err
	}

	history := session.NewHistory(cfg.HistorySize)
	if cfg.SystemPrompt != "" {
		history.Append(model.Message{Role: model.RoleSystem, Content: cfg.SystemPrompt})
	}

	logger.Info("tandem ready", "provider", cfg.Provider, "model", cfg.Model)
	return repl(ctx, ag, history)
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("provider") {
		cfg.Provider = c.String("provider")
	}
	if c.IsSet("model") {
		cfg.Model = c.String("model")
	}
	if c.IsSet("anthropic-key") {
		cfg.API.AnthropicKey = c.String("anthropic-key")
	}
	if c.IsSet("openai-key") {
		cfg.API.OpenAIKey = c.String("openai-key")
	}
	if c.IsSet("deepseek-key") {
		cfg.API.DeepSeekKey = c.String("deepseek-key")
	}
	if c.IsSet("base-url") {
		cfg.API.BaseURL = c.String("base-url")
	}
	if c.IsSet("mcp-config") {
		cfg.MCPConfig = c.String("mcp-config")
	}
	if c.IsSet("builtin-tools") {
		cfg.BuiltinTools = c.Bool("builtin-tools")
	}
	if c.IsSet("system") {
		cfg.SystemPrompt = c.String("system")
	}
	if c.IsSet("max-tokens") {
		cfg.MaxTokens = c.Int("max-tokens")
	}
	if c.IsSet("verbose") {
		cfg.Verbose = c.Bool("verbose")
	}
	return cfg, nil
}

func buildProvider(cfg *config.Config) (model.Provider, error) {
	factory := model.NewFactory()
	factory.Register("anthropic", func(mc model.Config) (model.Provider, error) {
		return anthropic.New(mc)
	})
	factory.Register("openai", openaichat.NewOpenAI)
	factory.Register("deepseek", openaichat.NewDeepSeek)

	return factory.New(model.Config{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		BaseURL:   cfg.API.BaseURL,
		APIKey:    cfg.APIKey(),
		MaxTokens: cfg.MaxTokens,
	})
}

func repl(ctx context.Context, ag *agent.Agent, history *session.History) error {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := scanner.Text()
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			history.Clear()
			fmt.Println("history cleared")
			continue
		}

		userMsg := model.Message{Role: model.RoleUser, Content: line}
		st, err := ag.Stream(ctx, append(history.Messages(), userMsg))
		if err != nil {
			slog.Error("turn failed", "error", err)
			continue
		}

		answer, failed := drain(st)
		fmt.Println()
		if failed {
			continue
		}
		history.Append(userMsg, model.Message{Role: model.RoleAssistant, Content: answer})

		if ctx.Err() != nil {
			return nil
		}
	}
}

// drain prints deltas as they arrive and reports whether the stream ended in
// an error.
func drain(st *model.Stream) (string, bool) {
	defer st.Close()
	var answer []byte
	for evt := range st.Events() {
		switch evt.Type {
		case model.EventTextDelta:
			fmt.Print(evt.Text)
			answer = append(answer, evt.Text...)
		case model.EventError:
			slog.Error("stream failed", "error", evt.Err)
			return string(answer), true
		}
	}
	return string(answer), false
}
