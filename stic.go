// MIT License

// Copyright (c) 2018 Akhil Indurti

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// This CLI utility compiles stic source files into indented HTML.
//
// Usage:
//   stic [command]
//
// Available Commands:
//   ast         Print the syntax tree of a stic source file
//   deps        List the modules a stic source file includes
//   help        Help about any command
//   html        HTML output generator for stic source files
//
// Flags:
//   -h, --help   help for stic
//
// Use "stic [command] --help" for more information about a command.
//
// Every flag of the html command may also be set from the environment,
// as STIC_ followed by the flag name in upper case with dashes replaced by
// underscores (STIC_TAGS, STIC_INCLUDE_DIR, ...). Flags win over the
// environment.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"akhil.cc/stic/ast"
	"akhil.cc/stic/gen"
	"akhil.cc/stic/gen/html"
	"akhil.cc/stic/parser"
	"akhil.cc/stic/tags"
	"github.com/hashicorp/go-multierror"
	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	prefixHTML  = "(HTML) "
	defaultTags = "html-tags"
	envPrefix   = "STIC"
)

func prefix(msg string, err error) error {
	return errors.New(msg + err.Error())
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "stic",
		Short:        "compiler from stic source files to HTML",
		Long:         `This CLI utility compiles stic source files into indented HTML.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newHTMLCmd(), newASTCmd(), newDepsCmd())
	return rootCmd
}

func newHTMLCmd() *cobra.Command {
	htmlCmd := &cobra.Command{
		Use:   "html [input] [-o output]",
		Short: "HTML output generator for stic source files",
		Long: `This command compiles a stic source file into HTML.
Output starts with a doctype and is indented by nesting depth.
Modules included with @name are read from name.stic in the
include directory, which defaults to the directory of the input.

Classes are mapped to tag names by the mapping file given with
--tags. A mapping file ending in .yaml or .yml is read as YAML;
any other file has one "class tag" pair per line, split according
to the Bourne shell's word-splitting rules.

If no output argument is specified, output is written to
standard output.`,
		Args:                  cobra.ExactArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config(cmd.Flags())
			if err != nil {
				return prefix(prefixHTML, err)
			}
			if err := runHTML(cmd, v, args[0]); err != nil {
				return prefix(prefixHTML, err)
			}
			return nil
		},
	}
	htmlCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		if err != nil {
			return prefix(prefixHTML, err)
		}
		return nil
	})
	// pflag includes the argument type when it unquotes its usage.
	// To prevent this behavior we prefix the usage with backquotes ``.
	flags := htmlCmd.Flags()
	flags.StringP("output", "o", "", "``name of the output file")
	flags.StringP("tags", "m", defaultTags, "``file mapping classes to tag names")
	flags.StringP("include-dir", "I", "", "``directory of included modules (default: directory of the input)")
	flags.String("indent", gen.DefaultIndent, "``indentation unit of the output")
	flags.String("ext", html.DefaultExt, "``file extension of included modules")
	flags.DurationP("timeout", "t", 0, "``timeout used to halt generator for long-running compilations")
	flags.BoolP("verbose", "v", false, "log module loading to standard error")
	flags.StringToString("var", nil, "``name=value binding of the outermost scope")
	return htmlCmd
}

// config binds flags into a viper instance reading STIC_* environment
// variables.
func config(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	return v, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runHTML(cmd *cobra.Command, v *viper.Viper, input string) error {
	logger := newLogger(cmd.ErrOrStderr(), v.GetBool("verbose"))
	vars, err := bindings(cmd.Flags(), v)
	if err != nil {
		return err
	}

	file, err := parseFile(input)
	if err != nil {
		return err
	}
	mapping, err := loadTags(v.GetString("tags"))
	if err != nil {
		return err
	}
	logger.Debug("tag mapping", "file", v.GetString("tags"), "entries", len(mapping))
	dir := v.GetString("include-dir")
	if dir == "" {
		dir = filepath.Dir(input)
	}

	ctx := context.Background()
	if timeout := v.GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	g := html.GenContext(ctx, file)
	g.FS = os.DirFS(dir)
	g.Ext = v.GetString("ext")
	g.Tags = mapping
	g.Indent = v.GetString("indent")
	g.Vars = vars
	g.Logger = logger

	var outfile *os.File
	g.Stdout = cmd.OutOrStdout()
	if name := v.GetString("output"); name != "" {
		if outfile, err = os.Create(name); err != nil {
			return err
		}
		g.Stdout = outfile
	}

	result := &multierror.Error{ErrorFormat: errorFormat}
	if err := g.Run(); err != nil {
		result = multierror.Append(result, err)
	}
	if outfile != nil {
		if err := outfile.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// bindings returns the --var bindings, or those of STIC_VAR, which has
// the same name=value,... form.
func bindings(flags *pflag.FlagSet, v *viper.Viper) (map[string]string, error) {
	if flags.Changed("var") {
		return flags.GetStringToString("var")
	}
	s := strings.TrimSuffix(strings.TrimPrefix(v.GetString("var"), "["), "]")
	m := make(map[string]string)
	for _, kv := range strings.Split(s, ",") {
		if kv == "" {
			continue
		}
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("STIC_VAR: %q is not a name=value binding", kv)
		}
		m[name] = value
	}
	return m, nil
}

func errorFormat(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// loadTags reads the mapping file name. A missing default mapping file
// yields the empty mapping.
func loadTags(name string) (tags.Mapping, error) {
	m, err := tags.LoadFile(name)
	if errors.Is(err, fs.ErrNotExist) && name == defaultTags {
		return tags.Mapping{}, nil
	}
	return m, err
}

func parseFile(name string) (*ast.File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parser.ParseReader(name, f)
}

func newASTCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ast [input]",
		Short: "Print the syntax tree of a stic source file",
		Long: `This command parses a stic source file and prints its syntax tree.
Included modules are not read.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := parseFile(args[0])
			if err != nil {
				return prefix("(AST) ", err)
			}
			opts := litter.Options{
				StripPackageNames: false,
				HidePrivateFields: true,
			}
			fmt.Fprintln(cmd.OutOrStdout(), opts.Sdump(file))
			return nil
		},
	}
}

func newDepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps [input]",
		Short: "List the modules a stic source file includes",
		Long: `This command prints the name of every module a stic source file
includes directly, once, in order of first appearance. Names are
printed as written, before variable substitution.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := parseFile(args[0])
			if err != nil {
				return prefix("(DEPS) ", err)
			}
			for _, m := range modules(file) {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
}

// modules returns the module names included anywhere in file.
func modules(file *ast.File) []string {
	var names []string
	seen := make(map[string]bool)
	ast.Walk(file, func(n ast.Node) (ast.Node, error) {
		if inc, ok := n.(*ast.Include); ok && !seen[inc.Module] {
			seen[inc.Module] = true
			names = append(names, inc.Module)
		}
		return n, nil
	})
	return names
}
