package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SYKhayyat/docx2org/internal/engine"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of docx2org and the detected conversion engine",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("docx2org %s\n", version)

		eng, err := engine.Detect(cmd.Context(), viper.GetString("engine.path"))
		if err != nil {
			fmt.Printf("engine: %v\n", err)
			return
		}
		fmt.Printf("engine: %s\n", eng.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
