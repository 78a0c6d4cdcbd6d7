// Package commands implements the command-line entry points.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/apiarycd/svndesk/internal"
	"github.com/apiarycd/svndesk/internal/credentials"
	"github.com/apiarycd/svndesk/internal/svn"
	"github.com/urfave/cli/v2"
)

const passwordEnv = "SVN_PASSWORD"

// New returns the svndesk command-line application.
func New() *cli.App {
	serve := &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Action: func(_ *cli.Context) error {
			internal.Run()
			return nil
		},
	}

	return &cli.App{
		Name:    "svndesk",
		Usage:   "Subversion working copy service",
		Version: internal.Version,
		Action:  serve.Action,
		Commands: []*cli.Command{
			serve,
			{
				Name:  "status",
				Usage: "Print the changes of a working copy",
				Flags: []cli.Flag{
					rootFlag(),
				},
				Action: func(c *cli.Context) error {
					root := c.String("root")
					return internal.Invoke(func(svc *svn.Service) error {
						entries, err := svc.Status(context.Background(), root)
						if err != nil {
							return err
						}
						return printJSON(c.App.Writer, entries)
					})
				},
			},
			{
				Name:  "log",
				Usage: "Print the revision history of a working copy",
				Flags: []cli.Flag{
					rootFlag(),
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Repository user name",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					root := c.String("root")
					creds := credentials.Credentials{
						Username: c.String("username"),
						Password: os.Getenv(passwordEnv),
					}
					return internal.Invoke(func(svc *svn.Service) error {
						revisions, err := svc.History(context.Background(), root, creds)
						if err != nil {
							return err
						}
						return printJSON(c.App.Writer, revisions)
					})
				},
			},
			{
				Name:  "info",
				Usage: "Print the repository location of a folder",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Folder to inspect",
						Value: ".",
					},
				},
				Action: func(c *cli.Context) error {
					dir := c.String("dir")
					return internal.Invoke(func(svc *svn.Service) error {
						return printJSON(c.App.Writer, svc.Locate(context.Background(), &dir))
					})
				},
			},
		},
	}
}

func rootFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "root",
		Aliases: []string{"r"},
		Usage:   "Working copy root",
		Value:   ".",
	}
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to print result: %w", err)
	}

	return nil
}
