package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mote-dev/mote/pkg/protocol"
)

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print version, commit, and build information for the mote CLI.`,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Println(version)
				return
			}

			printBanner()
			fmt.Println()
			rows := [][2]string{
				{"Version", version},
				{"Commit", commit},
				{"Built", date},
				{"Protocol", protocol.CurrentVersion.String()},
				{"Go version", runtime.Version()},
				{"OS/Arch", runtime.GOOS + "/" + runtime.GOARCH},
			}
			for _, row := range rows {
				fmt.Printf("  %-11s %s\n", row[0]+":", row[1])
			}
			fmt.Println()
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")

	return cmd
}
