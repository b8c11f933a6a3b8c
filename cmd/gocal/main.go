package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"gocal/internal/calendar"
	"gocal/internal/calerr"
	"gocal/internal/command"
	"gocal/internal/config"
	"gocal/internal/export"
	"gocal/internal/ics"
	"gocal/internal/logging"
)

type flagConfig struct {
	configPath string
	mode       string
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config %s: %v\n", flags.configPath, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("gocal starting",
		zap.String("mode", flags.mode),
		zap.String("default_calendar", conf.DefaultCalendar),
		zap.String("default_timezone", conf.DefaultTimezone),
	)

	mgr := calendar.NewManager(logger)
	if _, err := mgr.CreateCalendar(conf.DefaultCalendar, conf.DefaultTimezone); err != nil {
		logger.Error("failed to create default calendar", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	executor := command.NewExecutor(mgr,
		export.NewCSVExporter(),
		ics.NewImporter(logger),
		conf.ExportDir,
		logger,
	)

	// Root context canceled on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("signal received, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	switch flags.mode {
	case "interactive":
		runInteractive(ctx, executor)
	case "headless":
		file := flag.Arg(0)
		if file == "" {
			fmt.Fprintln(os.Stderr, "Error: headless mode requires a command file")
			os.Exit(1)
		}
		if err := runHeadless(ctx, executor, file); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "gui":
		// This build ships without the graphical front-end; fall back so
		// scripts written for the full product still run.
		fmt.Println("GUI mode is not available in this build; starting interactive mode.")
		runInteractive(ctx, executor)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q (want interactive, headless or gui)\n", flags.mode)
		os.Exit(1)
	}

	logger.Info("gocal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig
	flag.StringVar(&cfg.configPath, "config", defaultConfigPath(), "Path to config file")
	flag.StringVar(&cfg.mode, "mode", "gui", "Run mode: interactive, headless <file>, or gui")
	flag.Parse()
	return cfg
}

func defaultConfigPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.config/gocal/config.yaml"
	}
	return "config.yaml"
}

func runInteractive(ctx context.Context, executor *command.Executor) {
	fmt.Println("gocal interactive mode. Type commands, or \"exit\" to quit.")
	reader := bufio.NewReader(os.Stdin)
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Println()
				return
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}

		msg, quit, execErr := executor.Execute(line)
		if execErr != nil {
			fmt.Printf("Error: %v\n", execErr)
			continue
		}
		if quit {
			return
		}
		if msg != "" {
			fmt.Println(msg)
		}
	}
}

// runHeadless executes the command file line by line. Command failures are
// printed and execution continues; export I/O failures abort the batch, and
// a file without a terminating exit command is an error.
func runHeadless(ctx context.Context, executor *command.Executor, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open command file: %w", err)
	}
	defer f.Close()

	sawExit := false
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lineNo++
		msg, quit, execErr := executor.Execute(scanner.Text())
		if execErr != nil {
			if errors.Is(execErr, calerr.ErrExport) {
				return fmt.Errorf("line %d: %w", lineNo, execErr)
			}
			fmt.Printf("Error: %v\n", execErr)
			continue
		}
		if quit {
			sawExit = true
			break
		}
		if msg != "" {
			fmt.Println(msg)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read command file: %w", err)
	}
	if !sawExit {
		return fmt.Errorf("command file %s does not end with an exit command", path)
	}
	return nil
}
