// Command minitest is a regression-diff harness: it replays a file of SQL
// statements against a running minidbserver and either records each
// response as a baseline ("create" mode) or diffs live responses against
// a previously recorded baseline ("compare" mode).
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/freeeve/minidb/internal/client"
	"github.com/freeeve/minidb/internal/logging"
)

const baselineSeparator = "\n--- response ---\n"

func main() {
	var host string
	var port int
	var runMode string
	var verbose bool

	root := &cobra.Command{
		Use:   "minitest <sql-file>",
		Short: "Replay a SQL file against a minidb server and diff or record results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(verbose)

			statements, err := readStatements(args[0])
			if err != nil {
				return fmt.Errorf("failed to read sql file: %w", err)
			}

			c := client.New(fmt.Sprintf("%s:%d", host, port))
			responses := make([]string, len(statements))
			for i, stmt := range statements {
				resp, err := c.Query(stmt)
				if err != nil {
					return fmt.Errorf("query %d failed: %w", i+1, err)
				}
				responses[i] = resp
			}

			baselinePath := args[0] + ".baseline"
			switch runMode {
			case "create":
				return writeBaseline(baselinePath, statements, responses)
			case "compare":
				return compareBaseline(baselinePath, statements, responses)
			default:
				return fmt.Errorf("unknown run-mode %q (want create or compare)", runMode)
			}
		},
	}

	root.Flags().StringVar(&host, "host", "localhost", "server host")
	root.Flags().IntVar(&port, "port", 9876, "server port")
	root.Flags().StringVar(&runMode, "run-mode", "compare", "create or compare")
	root.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// readStatements splits the file into non-blank, non-comment lines, each
// one SQL statement (spec's test-file convention: one statement per line).
func readStatements(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

func writeBaseline(path string, statements, responses []string) error {
	var b strings.Builder
	for i, stmt := range statements {
		b.WriteString(stmt)
		b.WriteString(baselineSeparator)
		b.WriteString(responses[i])
		b.WriteString("\n=== end ===\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func compareBaseline(path string, statements, responses []string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read baseline %s (run with --run-mode=create first): %w", path, err)
	}
	records := strings.Split(string(data), "\n=== end ===\n")

	mismatches := 0
	for i, stmt := range statements {
		if i >= len(records) {
			fmt.Printf("MISSING BASELINE: %s\n", stmt)
			mismatches++
			continue
		}
		parts := strings.SplitN(records[i], baselineSeparator, 2)
		if len(parts) != 2 {
			fmt.Printf("MALFORMED BASELINE at statement %d\n", i+1)
			mismatches++
			continue
		}
		expected := parts[1]
		if expected != responses[i] {
			fmt.Printf("MISMATCH: %s\n  expected: %q\n  actual:   %q\n", stmt, expected, responses[i])
			mismatches++
		}
	}
	if mismatches > 0 {
		return fmt.Errorf("%d mismatch(es)", mismatches)
	}
	fmt.Printf("%d statement(s) matched baseline\n", len(statements))
	return nil
}
