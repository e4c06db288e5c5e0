// Command hades is the Hades compiler driver: a thin cobra CLI over
// internal/driver's build/check/run pipeline, consolidated into one binary
// with cobra subcommands instead of one binary per verb.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hades-lang/hades/internal/driver"
	"github.com/hades-lang/hades/internal/registry"
	"github.com/hades-lang/hades/internal/span"
	"github.com/hades-lang/hades/internal/walker"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// reportError renders a pipeline failure to stderr. Errors that carry a
// source span go through the caret-snippet printer; everything else
// prints plainly.
func reportError(err error) {
	printer := span.NewPrinter(span.NewCache())
	switch e := errors.Cause(err).(type) {
	case *walker.Error:
		printer.Print(os.Stderr, e.Diagnostic)
	case *registry.Error:
		if len(e.Diags) > 0 {
			printer.PrintAll(os.Stderr, e.Diags)
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", e)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hades",
		Short:         "Hades compiler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(buildCmd(), checkCmd(), runCmd(), emitLLVMCmd(), printASTCmd())
	return root
}

func buildCmd() *cobra.Command {
	var out, outDir, cc string
	cmd := &cobra.Command{
		Use:   "build <source>",
		Short: "Compile a Hades program to a native executable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := driver.Compile(driver.Options{
				EntryFile: args[0],
				OutputDir: outDir,
				OutputExe: out,
				CC:        cc,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "built %s\n", res.ExePath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output executable name")
	cmd.Flags().StringVar(&outDir, "out-dir", "build", "output directory")
	cmd.Flags().StringVar(&cc, "cc", "clang", "C compiler used for linking")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <source>",
		Short: "Type-check a Hades program without generating code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := driver.Check(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <source>",
		Short: "Compile and immediately execute a Hades program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpDir, err := os.MkdirTemp("", "hades-run-*")
			if err != nil {
				return err
			}
			defer os.RemoveAll(tmpDir)
			code, err := driver.Run(driver.Options{
				EntryFile: args[0],
				OutputDir: tmpDir,
			})
			if err != nil {
				return err
			}
			os.Exit(code)
			return nil
		},
	}
}

func emitLLVMCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "emit-llvm <source>",
		Short: "Type-check and print the generated LLVM IR without linking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := driver.Compile(driver.Options{
				EntryFile: args[0],
				OutputDir: outDir,
				EmitIR:    true,
			})
			if err != nil {
				return err
			}
			ir, err := os.ReadFile(res.IRPath)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(ir))
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", "build", "directory for the emitted .ll file")
	return cmd
}

func printASTCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print-ast <source>",
		Short: "Print the merged, dependency-resolved AST",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := registry.Load(args[0])
			if err != nil {
				return err
			}
			for _, stmt := range prog.Stmts {
				fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", stmt)
			}
			return nil
		},
	}
}
