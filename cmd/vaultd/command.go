package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
)

// Command represents a CLI command with common functionality
type Command struct {
	Name        string
	Description string
	Usage       string
	Examples    []string
	Run         func(ctx context.Context, args []string, out io.Writer) error
}

// NewFlagSet creates a standardized flag set for a command.
// Parse errors are returned instead of exiting so commands stay testable.
func (c *Command) NewFlagSet(out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(c.Name, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		c.PrintUsage(out)
		fmt.Fprintln(out, "\nFLAGS:")
		fs.PrintDefaults()
	}
	return fs
}

// PrintUsage prints standardized usage information
func (c *Command) PrintUsage(w io.Writer) {
	fmt.Fprintf(w, "%s\n\n", c.Description)
	fmt.Fprintf(w, "USAGE:\n    %s\n", c.Usage)
	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nEXAMPLES:\n")
		for _, example := range c.Examples {
			fmt.Fprintf(w, "    %s\n", example)
		}
	}
}

// CommandRegistry manages all CLI commands
type CommandRegistry struct {
	commands map[string]*Command
	order    []string
	version  VersionInfo
}

// VersionInfo holds build-time version information
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry(v VersionInfo) *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]*Command),
		version:  v,
	}
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(cmd *Command) {
	if _, ok := r.commands[cmd.Name]; !ok {
		r.order = append(r.order, cmd.Name)
	}
	r.commands[cmd.Name] = cmd
}

// Lookup returns the named command.
func (r *CommandRegistry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Execute runs the appropriate command based on args
func (r *CommandRegistry) Execute(ctx context.Context, args []string, out io.Writer) error {
	if len(args) < 1 {
		r.PrintHelp(out)
		return fmt.Errorf("no command specified")
	}

	switch args[0] {
	case "help", "-h", "--help":
		r.PrintHelp(out)
		return nil
	}

	cmd, ok := r.commands[args[0]]
	if !ok {
		r.PrintHelp(out)
		return fmt.Errorf("unknown command: %s", args[0])
	}
	return cmd.Run(ctx, args[1:], out)
}

// PrintHelp prints overall CLI help
func (r *CommandRegistry) PrintHelp(w io.Writer) {
	fmt.Fprintln(w, "vaultd - pooled-deposit yield vault")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "    vaultd <command> [arguments]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "COMMANDS:")
	for _, name := range r.order {
		cmd := r.commands[name]
		fmt.Fprintf(w, "    %-12s %s\n", cmd.Name, cmd.Description)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'vaultd <command> --help' for more information on a command.")
}

func (r *CommandRegistry) versionCommand(_ context.Context, _ []string, out io.Writer) error {
	fmt.Fprintf(out, "vaultd %s\n", r.version.Version)
	fmt.Fprintf(out, "  commit: %s\n", r.version.Commit)
	fmt.Fprintf(out, "  built:  %s\n", r.version.Date)
	return nil
}

// TableWriter provides simple table formatting
type TableWriter struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTableWriter creates a new table writer
func NewTableWriter(headers []string) *TableWriter {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &TableWriter{headers: headers, widths: widths}
}

// AddRow adds a row to the table
func (t *TableWriter) AddRow(row ...string) {
	t.rows = append(t.rows, row)
	for i, cell := range row {
		if i < len(t.widths) && len(cell) > t.widths[i] {
			t.widths[i] = len(cell)
		}
	}
}

// Print prints the table with borders
func (t *TableWriter) Print(w io.Writer) {
	t.printSeparator(w)
	t.printRow(w, t.headers)
	t.printSeparator(w)
	for _, row := range t.rows {
		t.printRow(w, row)
	}
	t.printSeparator(w)
}

func (t *TableWriter) printSeparator(w io.Writer) {
	fmt.Fprint(w, "+")
	for _, width := range t.widths {
		fmt.Fprint(w, strings.Repeat("-", width+2), "+")
	}
	fmt.Fprintln(w)
}

func (t *TableWriter) printRow(w io.Writer, row []string) {
	fmt.Fprint(w, "|")
	for i := range t.widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		fmt.Fprintf(w, " %-*s |", t.widths[i], cell)
	}
	fmt.Fprintln(w)
}
