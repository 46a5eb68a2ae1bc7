package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/urfave/cli/v2"

	"booksearch/internal/client"
	"booksearch/internal/config"
	"booksearch/internal/platform/logging"
	"booksearch/internal/stats"
)

func main() {
	config.LoadEnvFiles()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		logging.Fatal().Err(err).Msg("search failed")
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "booksearch",
		Usage:     "search the book catalog through the proxy and show page statistics",
		ArgsUsage: "<keyword>",
		Writer:    out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Usage:   "proxy base URL",
				Value:   "http://localhost:4000/api",
				EnvVars: []string{"BOOKSEARCH_API"},
			},
			&cli.StringFlag{
				Name:    "key",
				Usage:   "catalog API key",
				EnvVars: []string{"BOOKSEARCH_API_KEY"},
			},
			&cli.IntFlag{
				Name:  "page",
				Usage: "1-based page number",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "page-size",
				Usage: "results per page (5, 10, 20 or 30)",
				Value: 10,
			},
		},
		Action: func(c *cli.Context) error {
			keyword := strings.Join(c.Args().Slice(), " ")
			if keyword == "" {
				return cli.Exit("a keyword is required", 2)
			}
			pageSize := c.Int("page-size")
			if !slices.Contains(client.AllowedPageSizes, pageSize) {
				return cli.Exit(fmt.Sprintf("page size must be one of %v", client.AllowedPageSizes), 2)
			}

			session := client.NewSession(client.New(c.String("api")))
			res := session.Search(c.Context, client.Request{
				Keyword:  keyword,
				Page:     c.Int("page"),
				PageSize: pageSize,
				Key:      c.String("key"),
			})
			return render(c.App.Writer, res)
		},
	}
}

func render(w io.Writer, res client.Result) error {
	if res.Err != nil {
		fmt.Fprintln(w, res.Err.Error())
		return nil
	}

	fmt.Fprintf(w, "Total number of results: %d\n", res.Page.TotalCount)
	if s := res.Summary.MostCommonAuthor; s != nil {
		fmt.Fprintf(w, "Most common author: %s\n", *s)
	}
	if s := res.Summary.EarliestDate; s != nil {
		fmt.Fprintf(w, "Earliest publication date: %s\n", *s)
	}
	if s := res.Summary.LatestDate; s != nil {
		fmt.Fprintf(w, "Latest publication date: %s\n", *s)
	}
	if ms := res.Summary.ResponseLatencyMs; ms != nil {
		fmt.Fprintf(w, "Server response time: %s\n", stats.FormatLatency(*ms))
	}
	fmt.Fprintln(w)

	for _, rec := range res.Page.Items {
		title := rec.Title
		if len(rec.Authors) > 0 {
			title = strings.Join(rec.Authors, ",") + "-" + title
		}
		fmt.Fprintln(w, title)

		desc := rec.Description
		if desc == "" {
			desc = "No description to show"
		}
		fmt.Fprintf(w, "    %s\n", desc)
	}
	return nil
}
