package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/contractpulse/flowdesigner/pkg/palette"
	"github.com/urfave/cli/v3"
)

func TemplatesCommand() *cli.Command {
	return &cli.Command{
		Name:    "templates",
		Aliases: []string{"t"},
		Usage:   "List the built-in workflow templates",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Filter by name or description",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "Filter by category",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print full templates as JSON",
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			return listTemplates(os.Stdout, palette.Default(), command.String("query"), command.String("category"), command.Bool("json"))
		},
	}
}

func listTemplates(w io.Writer, p *palette.Palette, query, category string, asJSON bool) error {
	templates := p.SearchTemplates(query, category)

	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(templates)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tNODES")

	for _, tmpl := range templates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", tmpl.ID, tmpl.Name, tmpl.Category, tmpl.NodeCount())
	}

	return tw.Flush()
}
