// Command javap disassembles one or more class files, printing their
// declared members and (with -c) their bytecode. Built with cobra the way
// saferwall-pe/cmd/pedumper.go builds its PE-dumping CLI (SPEC_FULL.md §2),
// as the outer driver for the decoder-only core spec.md §1 scopes out.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/classvm/classvm/internal/disasm"
	"github.com/classvm/classvm/pkg/classfile"
)

func main() {
	var opt disasm.Options

	root := &cobra.Command{
		Use:   "javap [flags] classfile...",
		Short: "Disassemble JVM class files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := false
			for _, path := range args {
				if err := disassembleFile(cmd.OutOrStdout(), path, opt); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					failed = true
				}
			}
			if failed {
				os.Exit(1)
			}
			return nil
		},
	}

	root.Flags().BoolVarP(&opt.Code, "code", "c", false, "emit bytecode for each method")
	root.Flags().BoolVarP(&opt.Tables, "tables", "l", false, "print line number and local variable tables")
	root.Flags().BoolVarP(&opt.Private, "private", "p", false, "also show private and package-private members")
	root.Flags().BoolVarP(&opt.Descriptors, "descriptors", "s", false, "print internal type descriptors")
	root.Flags().BoolVarP(&opt.Verbose, "verbose", "v", false, "verbose output (implies -c -l -s), plus a constant pool dump")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// disassembleFile decodes and prints a single class file. Per-file failures
// are reported by the caller and do not stop the remaining files from being
// processed (spec.md §6's disassembler CLI contract).
func disassembleFile(w io.Writer, path string, opt disasm.Options) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cf, err := classfile.Parse(f)
	if err != nil {
		return err
	}
	return disasm.Print(w, path, cf, opt)
}
