package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "appiumctl",
	Short: "Job control API for simulated device automation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func main() {
	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(SimulateCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
