package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ncerny/deepthought/internal/client"
	"github.com/ncerny/deepthought/internal/persona"
	"github.com/spf13/cobra"
)

const defaultEndpoint = "http://localhost:8787"

var (
	endpoint string
	noDelay  bool
)

var rootCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask Deep Thought a question",
	Long: `Ask sends a question to a Deep Thought server, waits while Deep Thought
ponders it, then prints the answer as it is streamed.

The server address is taken from --endpoint, or from DEEPTHOUGHT_ENDPOINT when
the flag is not set.`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := asker{
			client:         client.New(endpoint),
			picker:         persona.NewPicker(nil),
			out:            cmd.OutOrStdout(),
			status:         cmd.ErrOrStderr(),
			think:          !noDelay,
			musingInterval: 3 * time.Second,
		}
		return a.ask(cmd.Context(), strings.Join(args, " "))
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	def := defaultEndpoint
	if v := os.Getenv("DEEPTHOUGHT_ENDPOINT"); v != "" {
		def = v
	}
	rootCmd.Flags().StringVarP(&endpoint, "endpoint", "e", def, "Deep Thought server address")
	rootCmd.Flags().BoolVar(&noDelay, "no-delay", false, "skip the thinking delay")
}
