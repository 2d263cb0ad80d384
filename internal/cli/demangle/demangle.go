// Package demangle implements the 'fieldtrace demangle' command.
package demangle

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/fieldtrace/pkg/symbol"
)

// NewDemangleCmd creates the demangle command.
func NewDemangleCmd() *cobra.Command {
	var short, parse bool

	cmd := &cobra.Command{
		Use:   "demangle [symbol...]",
		Short: "Print readable forms of symbol names",
		Long: `Demangle Go, Itanium C++ and Rust symbol names.

Names are taken from the arguments, or read one per line from stdin when
none are given. Names that cannot be demangled are printed unchanged.

Examples:
  fieldtrace demangle _ZN3foo3barEv
  fieldtrace demangle --short 'github.com/acme/bank%2ev2.(*Account[go.shape.int]).Deposit'
  go tool nm ./app | awk '{print $3}' | fieldtrace demangle --parse`,
		RunE: func(cmd *cobra.Command, args []string) error {
			style := symbol.StyleFull
			if short {
				style = symbol.StyleShort
			}

			out := cmd.OutOrStdout()
			emit := func(name string) error {
				_, err := fmt.Fprintln(out, render(name, style, parse))
				return err
			}

			if len(args) > 0 {
				for _, name := range args {
					if err := emit(name); err != nil {
						return err
					}
				}
				return nil
			}
			return eachLine(cmd.InOrStdin(), emit)
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Drop parameter lists and import paths")
	cmd.Flags().BoolVar(&parse, "parse", false, "Also split Go names into package, receiver and function")

	return cmd
}

func render(name string, style symbol.Style, parse bool) string {
	out := symbol.DemangleWith(name, style)
	if !parse {
		return out
	}

	fn := symbol.ParseFuncName(name)
	recv := fn.Receiver
	if fn.Pointer {
		recv = "*" + recv
	}
	return fmt.Sprintf("%s\tpackage=%s receiver=%s func=%s", out, fn.Package, recv, fn.Name)
}

func eachLine(r io.Reader, fn func(string) error) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read symbols: %w", err)
	}
	return nil
}
