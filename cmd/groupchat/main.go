// groupchat is a terminal group chat between a human and a roster of LLM
// agents. Each human message starts a round: every configured agent takes a
// turn in roster order, sees the replies produced earlier in the round, and
// answers under its own name. The transcript is saved to a JSON file on
// exit and can be resumed with --load.
//
// Two modes of operation:
//
// Full-screen TUI (default): a bubbletea screen with a scrolling transcript,
// a per-agent thinking indicator, and a text input. Logs go to a file so
// they do not corrupt the display.
//
// Console mode (--no-ui): plain line-oriented stdio, suitable for pipes and
// dumb terminals. Logs go to stderr.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/tailored-agentic-units/groupchat/agent"
	"github.com/tailored-agentic-units/groupchat/history"
	"github.com/tailored-agentic-units/groupchat/observability"
	"github.com/tailored-agentic-units/groupchat/session"
	"github.com/tailored-agentic-units/groupchat/tui"
)

const logFile = "groupchat.log"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		loadPath   string
		noUI       bool
		verbose    bool
	)

	flagSet := pflag.NewFlagSet("groupchat", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to JSON config file (default: built-in roster)")
	flagSet.StringVar(&loadPath, "load", "", "resume the conversation from this transcript file")
	flagSet.BoolVar(&noUI, "no-ui", false, "plain console mode instead of the full-screen TUI")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log debug-level events")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	// API keys live in .env during development; a missing file is fine.
	_ = godotenv.Load()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	cfg.Agents = pruneUnavailable(cfg.Agents)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if noUI {
		return runConsole(ctx, cfg, loadPath, verbose)
	}
	return runTUI(ctx, cfg, loadPath, verbose)
}

// loadConfig reads the user's config file, or falls back to the built-in
// roster.
func loadConfig(path string) (*session.Config, error) {
	if path != "" {
		return session.LoadConfig(path)
	}
	cfg := session.DefaultConfig()
	cfg.Agents = defaultRoster()
	return &cfg, nil
}

// defaultRoster mirrors the stock lineup: Gemini and Llama active, Claude
// and GPT present but disabled until their keys are wanted.
func defaultRoster() []agent.Config {
	return []agent.Config{
		{
			Name:            "Gemini",
			Kind:            agent.KindGemini,
			Model:           "gemini-2.5-pro",
			SystemDirective: "You are Gemini, an AI assistant in a group chat with other AI models and a human. Keep your responses informative but concise. You excel at providing factual information and logical analysis.",
		},
		{
			Name:            "Llama",
			Kind:            agent.KindLlama,
			Model:           "llama-3.3-70b-versatile",
			SystemDirective: "You are Llama, an AI assistant in a group chat with other AI models and a human. You're known for your creative and out-of-the-box thinking. Keep responses concise and focus on generating novel ideas.",
		},
		{
			Name:            "Claude",
			Kind:            agent.KindAnthropic,
			Model:           "claude-sonnet-4-5",
			Disabled:        true,
			SystemDirective: "You are Claude, an AI assistant in a group chat with other AI models and a human. You excel at nuanced reasoning and thoughtful analysis. Provide insights that complement the other AI assistants.",
		},
		{
			Name:            "GPT",
			Kind:            agent.KindOpenAI,
			Model:           "gpt-4o",
			Disabled:        true,
			SystemDirective: "You are GPT, an AI assistant in a group chat with other AI models and a human. You're versatile and adaptive, known for your wide-ranging capabilities. Focus on providing well-balanced and helpful responses.",
		},
	}
}

// pruneUnavailable disables enabled agents whose API key cannot be resolved,
// warning on stderr, so a missing key degrades the roster instead of
// aborting startup.
func pruneUnavailable(roster []agent.Config) []agent.Config {
	kept := make([]agent.Config, 0, len(roster))
	for _, ac := range roster {
		if !ac.Disabled && !ac.IsHuman() && ac.ResolveAPIKey() == "" {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: no API key (set %s)\n",
				ac.Name, ac.APIKeyEnv())
			continue
		}
		kept = append(kept, ac)
	}
	return kept
}

// resumeHistory loads a persisted transcript for --load.
func resumeHistory(ctx context.Context, path string) (*history.History, error) {
	if path == "" {
		return nil, nil
	}
	h, err := history.NewFileStore(path).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot resume from %s: %w", path, err)
	}
	return h, nil
}

func logLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func runConsole(ctx context.Context, cfg *session.Config, loadPath string, verbose bool) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(verbose),
	}))

	opts := []session.Option{
		session.WithObserver(observability.NewSlogObserver(logger)),
	}
	resumed, err := resumeHistory(ctx, loadPath)
	if err != nil {
		return err
	}
	if resumed != nil {
		opts = append(opts, session.WithHistory(resumed))
	}

	presenter := tui.NewConsolePresenter(os.Stdin, os.Stdout)
	sess, err := session.New(cfg, presenter, opts...)
	if err != nil {
		return err
	}

	fmt.Printf("Group chat with: %s. Say exit, quit, or bye to leave.\n",
		strings.Join(sess.Participants(), ", "))
	if err := sess.Run(ctx); err != nil {
		return err
	}
	fmt.Printf("Goodbye. Transcript saved to %s.\n", cfg.HistoryFile)
	return nil
}

func runTUI(ctx context.Context, cfg *session.Config, loadPath string, verbose bool) error {
	// The alt-screen owns the terminal, so log records go to a file.
	logOut, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("cannot open log file: %w", err)
	}
	defer logOut.Close()
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel(verbose),
	}))

	screenObserver := tui.NewObserver()
	opts := []session.Option{
		session.WithObserver(observability.NewMultiObserver(
			observability.NewSlogObserver(logger),
			screenObserver,
		)),
	}
	resumed, err := resumeHistory(ctx, loadPath)
	if err != nil {
		return err
	}
	if resumed != nil {
		opts = append(opts, session.WithHistory(resumed))
	}

	inputs := make(chan string)
	presenter := tui.NewPresenter(inputs)
	sess, err := session.New(cfg, presenter, opts...)
	if err != nil {
		return err
	}

	// The quit path cancels the engine's context so an in-flight agent call
	// is cut short instead of running to its timeout.
	engineCtx, engineCancel := context.WithCancel(ctx)
	defer engineCancel()

	title := fmt.Sprintf("groupchat — %s", strings.Join(sess.Participants(), ", "))
	model := tui.NewModel(title, sess.HumanName(), inputs, engineCancel)
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	presenter.Attach(program)
	screenObserver.Attach(program)

	engineErr := make(chan error, 1)
	go func() {
		err := sess.Run(engineCtx)
		engineErr <- err
		presenter.NotifyDone(err)
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return <-engineErr
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `groupchat — multi-agent terminal chat.

One human, several LLM agents, one shared conversation. Every message you
send starts a round in which each agent replies in turn, seeing the replies
that came before it. The transcript is saved to chat_history.json on exit.

Usage:
  groupchat [flags]

Examples:
  # Chat with the default roster (Gemini and Llama)
  groupchat

  # Use a custom roster
  groupchat --config roster.json

  # Resume an earlier conversation in plain console mode
  groupchat --no-ui --load chat_history.json

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
