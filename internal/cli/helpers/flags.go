package helpers

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/coral-mesh/fieldtrace/pkg/symbol"
)

// AddFormatFlag adds a standard --format/-o flag to a command.
func AddFormatFlag(cmd *cobra.Command, formatVar *string, defaultFormat OutputFormat, supportedFormats []OutputFormat) {
	formatNames := make([]string, len(supportedFormats))
	for i, f := range supportedFormats {
		formatNames[i] = string(f)
	}

	description := fmt.Sprintf("Output format (%s)", strings.Join(formatNames, ", "))
	cmd.Flags().StringVarP(formatVar, "format", "o", string(defaultFormat), description)

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formatNames, cobra.ShellCompDirectiveNoFileComp
	})
}

// StyleFlag is a pflag.Value accepting the demangle style names.
type StyleFlag struct {
	Style symbol.Style
}

var _ pflag.Value = (*StyleFlag)(nil)

func (f *StyleFlag) String() string { return f.Style.String() }

func (f *StyleFlag) Set(s string) error {
	style, err := symbol.ParseStyle(s)
	if err != nil {
		return err
	}
	f.Style = style
	return nil
}

func (f *StyleFlag) Type() string { return "style" }

// AddDemangleFlag adds --demangle with completion for the known styles.
func AddDemangleFlag(cmd *cobra.Command, style *StyleFlag) {
	cmd.Flags().Var(style, "demangle", "Caller name style (full, short); overrides trace.demangle")

	_ = cmd.RegisterFlagCompletionFunc("demangle", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"full", "short"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// ValidateFormat checks if the format is in the supported list.
func ValidateFormat(format string, supported []OutputFormat) error {
	for _, s := range supported {
		if format == string(s) {
			return nil
		}
	}

	supportedNames := make([]string, len(supported))
	for i, s := range supported {
		supportedNames[i] = string(s)
	}

	return fmt.Errorf("unsupported format %q, must be one of: %s",
		format, strings.Join(supportedNames, ", "))
}
