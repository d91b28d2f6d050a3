package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "imageprocessor",
	Short: "Detects faces on video frames from a stream and republishes enriched records",
	Long: "Without a subcommand the binary serves the AWS Lambda runtime API, " +
		"so it can be deployed as the function's bootstrap.",
	SilenceUsage: true,
	RunE:         runLambda,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
