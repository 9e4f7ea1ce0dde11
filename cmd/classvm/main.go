// Command classvm loads a class by name from a classpath and runs its
// static main(String[]) method. Built with cobra the way
// saferwall-pe/cmd/pedumper.go builds its own CLI (SPEC_FULL.md §2), as the
// launcher spec.md §6 names in its external interfaces.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/classvm/classvm/internal/log"
	"github.com/classvm/classvm/pkg/loader"
	"github.com/classvm/classvm/pkg/native"
	"github.com/classvm/classvm/pkg/vmrun"
)

func main() {
	var classpath string
	var verbose bool

	root := &cobra.Command{
		Use:   "classvm [flags] className",
		Short: "Run a JVM class file's main method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cp := classpath
			if cp == "" {
				cp = os.Getenv("CLASSPATH")
			}

			level := log.LevelError
			if verbose {
				level = log.LevelDebug
			}
			logger := log.Default(os.Stderr, level)

			ld := loader.NewDirClassLoader(loader.SplitClasspath(cp), logger)
			vm := vmrun.New(ld, native.NewDefaultRegistry(os.Stdout), logger)

			if err := vm.Execute(args[0]); err != nil {
				return err
			}
			return nil
		},
	}

	root.Flags().StringVar(&classpath, "cp", "", "PATHSEP-separated class search path (defaults to $CLASSPATH, then \".\")")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "log class-load and link-time events")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
