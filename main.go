package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/nutcas3/api-docs-tui/internal/apidoc"
	"github.com/nutcas3/api-docs-tui/internal/logging"
)

var version = "dev"

type cliOptions struct {
	configDir string
	theme     string
	env       string
	logLevel  string
	noWatch   bool
	expand    bool
	version   bool
	docPath   string
}

func parseFlags(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("api-docs-tui", flag.ContinueOnError)
	fs.StringVarP(&opts.configDir, "config-dir", "c", "", "config directory (default: ~/.api-docs-tui)")
	fs.StringVar(&opts.theme, "theme", "", "color theme: latte, frappe, macchiato, mocha")
	fs.StringVarP(&opts.env, "env", "e", "", "environment used for {{VAR}} substitution")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.BoolVar(&opts.noWatch, "no-watch", false, "do not reload the document when it changes")
	fs.BoolVarP(&opts.expand, "expand", "x", false, "start with every endpoint expanded")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: api-docs-tui [flags] [document.yaml]\n\nReads the document from stdin when no path is given.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 1 {
		return opts, fmt.Errorf("expected at most one document, got %d", fs.NArg())
	}
	opts.docPath = fs.Arg(0)
	return opts, nil
}

// applyOverrides lets flags win over config.yaml. Only --env is saved, the
// same way switching environments in the UI is.
func applyOverrides(cm *ConfigManager, opts cliOptions) error {
	if opts.env != "" {
		if err := cm.SetCurrentEnv(opts.env); err != nil {
			return err
		}
	}
	if opts.theme != "" {
		cm.Config.Theme = opts.theme
	}
	if opts.logLevel != "" {
		cm.Config.LogLevel = opts.logLevel
	}
	if opts.noWatch {
		cm.Config.Watch = false
	}
	if opts.expand {
		cm.Config.StartExpanded = true
	}
	return nil
}

func loadDocument(path string, stdin *os.File) (*apidoc.Document, error) {
	if path != "" {
		return apidoc.Load(path)
	}
	stat, err := stdin.Stat()
	if err != nil {
		return nil, err
	}
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return nil, fmt.Errorf("no document given: pass a path or pipe one on stdin")
	}
	return apidoc.Read(stdin)
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if opts.version {
		fmt.Println(version)
		return
	}

	configManager, err := NewConfigManager(opts.configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
	if err := applyOverrides(configManager, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{
		FilePath: configManager.LogPath(),
		Level:    configManager.Config.LogLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		logger = logging.Nop()
	}
	defer logger.Close()

	doc, err := loadDocument(opts.docPath, os.Stdin)
	if err != nil {
		logger.Error("document not loaded", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	modelOpts := Options{DocPath: opts.docPath}
	if opts.docPath != "" && configManager.Config.Watch {
		w, err := apidoc.NewWatcher(opts.docPath)
		if err != nil {
			logger.Warn("document will not be watched", zap.Error(err))
		} else {
			defer w.Close()
			modelOpts.Watcher = w
		}
	}

	model, err := newModel(doc, configManager, logger.Logger, modelOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	if opts.docPath == "" {
		// stdin carried the document; keys come from the terminal.
		programOpts = append(programOpts, tea.WithInputTTY())
	}

	p := tea.NewProgram(model, programOpts...)
	if _, err := p.Run(); err != nil {
		logger.Error("program exited", zap.Error(err))
		fmt.Println("Error running program:", err)
		os.Exit(1)
	}
}
