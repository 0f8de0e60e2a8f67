package main

import (
	"fmt"
	"os"

	"github.com/danielpatrickdp/interview-engine/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
