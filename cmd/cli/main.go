package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/flatdb/flatdb"
	"github.com/flatdb/flatdb/db"
	"github.com/flatdb/flatdb/ps"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	var (
		dataDir string
		sqlFile string
		verbose bool
	)

	rootCmd := &cobra.Command{
		Use:   "flatdb",
		Short: "FlatDB - flat-file SQL engine",
		Long: `FlatDB is a small SQL engine over plain JSON files: one file per
table, a schema catalog, and atomic whole-file commits.

With no arguments it starts an interactive REPL. Pass --file to run a
SQL script instead.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := openEngine(cmd.OutOrStdout(), dataDir, verbose)
			if err != nil {
				return err
			}

			if sqlFile != "" {
				return runScript(cmd.OutOrStdout(), engine, sqlFile)
			}
			return runREPL(cmd.OutOrStdout(), engine, dataDir)
		},
	}

	rootCmd.Flags().StringVar(&dataDir, "data", "", "data directory (in-memory when empty)")
	rootCmd.Flags().StringVar(&sqlFile, "file", "", "SQL file to execute (non-interactive)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log statement execution")

	return rootCmd
}

func openEngine(w io.Writer, dataDir string, verbose bool) (*db.Engine, error) {
	var (
		persistence ps.Persistence
		err         error
	)
	if dataDir == "" {
		fmt.Fprintln(w, "Using in-memory persistence (data is not saved)")
		persistence, err = ps.NewMemoryPersistence()
	} else {
		fmt.Fprintf(w, "Using data directory: %s\n", dataDir)
		persistence, err = ps.NewFilePersistence(dataDir)
	}
	if err != nil {
		return nil, err
	}

	engine := flatdb.Open(&persistence).Engine()
	if verbose {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		engine = engine.WithLogger(logger)
	}
	return engine, nil
}

// runScript executes the statements of a SQL file in order, reporting
// per-statement failures and continuing past them.
func runScript(w io.Writer, engine *db.Engine, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}

	failures := 0
	for i, statement := range splitStatements(string(data)) {
		result, err := engine.Execute(statement)
		if err != nil {
			fmt.Fprintf(w, "[%d] error: %v\n", i+1, err)
			failures++
			continue
		}
		result.Render(w)
	}

	if failures > 0 {
		return fmt.Errorf("%d statement(s) failed", failures)
	}
	return nil
}

// splitStatements breaks a script into statements on semicolons,
// ignoring semicolons inside string literals and skipping -- comments.
func splitStatements(content string) []string {
	var statements []string
	var current strings.Builder
	inString := false

	for _, line := range strings.Split(content, "\n") {
		if !inString && strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}

		for i := 0; i < len(line); i++ {
			ch := line[i]
			switch {
			case ch == '\'':
				inString = !inString
				current.WriteByte(ch)
			case ch == ';' && !inString:
				if statement := strings.TrimSpace(current.String()); statement != "" {
					statements = append(statements, statement)
				}
				current.Reset()
			default:
				current.WriteByte(ch)
			}
		}
		current.WriteByte(' ')
	}

	if statement := strings.TrimSpace(current.String()); statement != "" {
		statements = append(statements, statement)
	}
	return statements
}

const (
	mainPrompt = "flatdb> "
	contPrompt = "   ...> "
)

func runREPL(w io.Writer, engine *db.Engine, dataDir string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          mainPrompt,
		HistoryFile:     historyPath(dataDir),
		AutoComplete:    newCompleter(engine),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("initializing REPL: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(w, "FlatDB v%s\n", Version)
	fmt.Fprintln(w, "Type .help for commands, .quit to exit")
	fmt.Fprintln(w)

	var buffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buffer.Reset()
			rl.SetPrompt(mainPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buffer.Len() == 0 && strings.HasPrefix(line, ".") {
			if line == ".quit" || line == ".exit" {
				return nil
			}
			handleDotCommand(w, engine, line)
			continue
		}

		// Accumulate until the closing semicolon.
		buffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buffer.WriteString(" ")
			rl.SetPrompt(contPrompt)
			continue
		}
		rl.SetPrompt(mainPrompt)

		query := buffer.String()
		buffer.Reset()

		result, err := engine.Execute(query)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}
		result.Render(w)
	}
}

func handleDotCommand(w io.Writer, engine *db.Engine, line string) {
	parts := strings.Fields(line)

	switch strings.ToLower(parts[0]) {
	case ".help":
		printHelp(w)

	case ".tables":
		count := 0
		for name, err := range engine.Persistence().ListTables() {
			if err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return
			}
			fmt.Fprintln(w, name)
			count++
		}
		if count == 0 {
			fmt.Fprintln(w, "No tables defined")
		}

	case ".schema":
		if len(parts) < 2 {
			fmt.Fprintln(w, "Usage: .schema <table>")
			return
		}
		table, err := engine.Persistence().GetTable(parts[1])
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return
		}
		for _, column := range table.Columns {
			marker := ""
			if column.Name == table.PrimaryKey {
				marker = "  (primary key)"
			}
			fmt.Fprintf(w, "  %s %s%s\n", column.Name, column.Type, marker)
		}

	case ".clear":
		fmt.Fprint(w, "\033[H\033[2J")

	case ".version":
		fmt.Fprintf(w, "FlatDB version %s\n", Version)

	default:
		fmt.Fprintf(w, "Unknown command: %s (type .help for commands)\n", parts[0])
	}
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `
Commands:
  .help            Show this help message
  .tables          List all tables
  .schema <table>  Show a table's columns
  .clear           Clear the screen
  .version         Show version info
  .quit / .exit    Exit the REPL

SQL:
  CREATE TABLE <name> (<column> <type>, ...) PRIMARY KEY <column>;
  DROP TABLE <name>;
  INSERT INTO <name> VALUES (<values>);
  SELECT <columns|*> FROM <name> [, <other>] [WHERE ...];
  UPDATE <name> SET <col> = <val>, ... WHERE ...;
  DELETE FROM <name> WHERE ...;

Types: Int, Float, String, Bool
Statements must end with a semicolon.

`)
}

func newCompleter(engine *db.Engine) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	// Completion is best effort; an unreadable catalog just means no
	// table names to offer.
	for name, err := range engine.Persistence().ListTables() {
		if err != nil {
			break
		}
		items = append(items, readline.PcItem(name))
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
	)
	return readline.NewPrefixCompleter(items...)
}

func historyPath(dataDir string) string {
	if dataDir != "" {
		return filepath.Join(dataDir, ".flatdb_history")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".flatdb_history")
}
