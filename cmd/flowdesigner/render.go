package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/contractpulse/flowdesigner/pkg/canvas"
	"github.com/urfave/cli/v3"
)

func RenderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render a workflow JSON file as SVG, Mermaid or PNG",
		ArgsUsage: "<workflow.json>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (svg, mermaid, png)",
				Value:   "svg",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file, stdout when empty",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			path := command.Args().First()
			if path == "" {
				return ErrMissingWorkflowFile
			}

			var w io.Writer = os.Stdout

			if output := command.String("output"); output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer file.Close()

				w = file
			}

			return renderWorkflowFile(ctx, w, path, command.String("format"))
		},
	}
}

func renderWorkflowFile(ctx context.Context, w io.Writer, path, format string) error {
	workflow, err := loadWorkflowFile(path)
	if err != nil {
		return err
	}

	switch format {
	case "svg":
		return canvas.RenderSVG(w, canvas.BuildScene(workflow, canvas.NewViewport(), ""))
	case "mermaid":
		_, err := io.WriteString(w, canvas.RenderMermaid(workflow))

		return err
	case "png":
		image, err := canvas.RenderImage(ctx, workflow)
		if err != nil {
			return err
		}

		_, err = w.Write(image)

		return err
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
