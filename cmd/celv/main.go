package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"celv/internal/logging"
	"celv/internal/mount"
	"celv/internal/shell"
)

var (
	logger  = logging.GetLogger()
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:   "celv",
		Short: "CELV — an in-memory, versioned virtual file system",
	}
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel(logging.LevelDebug)
		}
	}

	root.AddCommand(shellCmd())
	root.AddCommand(mountCmd())

	if err := root.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell [scriptfile]",
		Short: "Start the interactive CELV console, or play back a command file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sh := shell.New(os.Stdout, os.Stderr)

			if len(args) == 0 {
				sh.Run(os.Stdin, true)
				return nil
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open script file: %w", err)
			}
			defer f.Close()
			sh.Run(f, false)
			return nil
		},
	}
}

func mountCmd() *cobra.Command {
	var source, mountpoint string

	cmd := &cobra.Command{
		Use:   "mount",
		Short: "Mount a fresh in-memory facade tree at a real path for the lifetime of this process",
		RunE: func(cmd *cobra.Command, args []string) error {
			if mountpoint == "" {
				return fmt.Errorf("--mountpoint is required")
			}
			return mount.Serve(source, mountpoint)
		},
	}
	cmd.Flags().StringVar(&source, "source", "celv", "Display name for the mounted tree")
	cmd.Flags().StringVar(&mountpoint, "mountpoint", "", "Path to mount the facade at")
	return cmd
}
