package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "tokengate",
	Short:         "Issue and verify signed bearer tokens",
	SilenceUsage:  true,
	SilenceErrors: false,
}
