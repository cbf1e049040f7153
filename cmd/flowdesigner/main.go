// Package main provides the ContractPulse workflow designer server and tooling.
package main

import (
	"context"
	"os"

	"github.com/contractpulse/flowdesigner/pkg/log"
	"github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	cmd := &cli.Command{
		Name:                  "flowdesigner",
		Usage:                 "Design, validate and publish contract approval workflows",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			RunAPICommand(),
			ValidateCommand(),
			TemplatesCommand(),
			RenderCommand(),
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.WithModule("cli").Error("Command failed", "error", err)
		os.Exit(1)
	}
}
