package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/gravadigital/simradar/internal/actions"
	"github.com/gravadigital/simradar/internal/client"
	"github.com/gravadigital/simradar/internal/config"
	"github.com/gravadigital/simradar/internal/domain/membership"
	"github.com/gravadigital/simradar/internal/export"
	"github.com/gravadigital/simradar/internal/locale"
	"github.com/gravadigital/simradar/internal/logger"
	"github.com/gravadigital/simradar/internal/metrics"
)

// newApp builds the command tree. Flag defaults come from cfg so the
// environment and .env still apply.
func newApp(cfg *config.Config, in io.Reader, out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "simradar",
		Usage:     "Manage event registrations and groups of a simradar server.",
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base-url", Value: cfg.API.BaseURL, Usage: "Server root URL."},
			&cli.StringFlag{Name: "locale", Value: cfg.API.Locale, Usage: "Language of routes and messages (en, es)."},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Do not ask before destructive actions."},
			&cli.StringFlag{Name: "log-level", Value: cfg.LogLevel, Usage: "debug, info, warn or error."},
			&cli.StringFlag{Name: "export-dir", Value: cfg.Export.Dir, Usage: "Directory for file exports."},
			&cli.StringFlag{Name: "metrics-file", Value: cfg.MetricsFile, Usage: "Write request metrics to this file on exit."},
		},
		Before: func(c *cli.Context) error {
			logger.InitializeWithWriter(errOut, c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			countCommand(),
			statusCommand(),
			joinCommand(),
			leaveCommand(),
			deleteEventCommand(),
			removeMemberCommand(),
			deleteGroupCommand(),
			deleteUserCommand(),
			exportCommand(),
			exportByTitleCommand(),
		},
		Metadata: map[string]any{
			"config": cfg,
			"in":     in,
		},
	}
}

// run wires a dispatcher from the global flags and hands it to fn
func run(c *cli.Context, fn func(ctx context.Context, d *actions.Dispatcher) error) error {
	cfg := *c.App.Metadata["config"].(*config.Config)
	in := c.App.Metadata["in"].(io.Reader)
	out, errOut := c.App.Writer, c.App.ErrWriter

	cfg.API.BaseURL = c.String("base-url")
	cfg.Export.Dir = c.String("export-dir")
	loc := locale.Match(c.String("locale"))

	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)

	cl := client.New(cfg.API.BaseURL,
		client.WithLocale(loc),
		client.WithTimeout(cfg.API.Timeout),
		client.WithUserAgent(cfg.API.UserAgent),
		client.WithObserver(collector),
	)

	sink, err := export.FromConfig(&cfg)
	if err != nil {
		return err
	}

	var prompter actions.Prompter = actions.NewTerminalPrompter(in, errOut)
	if c.Bool("yes") {
		prompter = actions.AutoConfirm{}
	}

	d := actions.New(cl,
		actions.WithPrompter(prompter),
		actions.WithNotifier(actions.WriterNotifier{Out: errOut}),
		actions.WithSink(sink),
		actions.WithRejections(collector),
		actions.WithOnSuccess(func(_ context.Context, _ string, ack *membership.Ack) {
			fmt.Fprintf(out, "%s %s\n", loc.Messages.ServerResponse, ack.Message)
		}),
	)

	err = fn(c.Context, d)

	if path := c.String("metrics-file"); path != "" {
		if werr := metrics.WriteTextfile(path, reg); werr != nil {
			logger.Get().Warn("Could not write metrics", "file", path, "error", werr)
		}
	}

	if errors.Is(err, actions.ErrDeclined) {
		return nil
	}
	return err
}

func eventFlag() cli.Flag {
	return &cli.Int64Flag{Name: "event", Aliases: []string{"e"}, Required: true, Usage: "Event id."}
}

func userFlag() cli.Flag {
	return &cli.Int64Flag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "User id."}
}

func groupFlag() cli.Flag {
	return &cli.Int64Flag{Name: "group", Aliases: []string{"g"}, Required: true, Usage: "Group id."}
}

func countCommand() *cli.Command {
	return &cli.Command{
		Name:  "count",
		Usage: "Print the number of participants of an event.",
		Flags: []cli.Flag{eventFlag()},
		Action: func(c *cli.Context) error {
			return run(c, func(ctx context.Context, d *actions.Dispatcher) error {
				n, err := d.ParticipantCount(ctx, c.Int64("event"))
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, n)
				return nil
			})
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Print whether a user participates in an event.",
		Flags: []cli.Flag{eventFlag(), userFlag()},
		Action: func(c *cli.Context) error {
			return run(c, func(ctx context.Context, d *actions.Dispatcher) error {
				ok, err := d.ParticipationStatus(ctx, c.Int64("event"), c.Int64("user"))
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, ok)
				return nil
			})
		},
	}
}

func joinCommand() *cli.Command {
	return &cli.Command{
		Name:  "join",
		Usage: "Register a user for an event unless it is full.",
		Flags: []cli.Flag{
			eventFlag(),
			userFlag(),
			&cli.IntFlag{Name: "max", Required: true, Usage: "Maximum number of participants of the event."},
		},
		Action: func(c *cli.Context) error {
			return run(c, func(ctx context.Context, d *actions.Dispatcher) error {
				_, err := d.Register(ctx, c.Int64("event"), c.Int64("user"), c.Int("max"))
				return err
			})
		},
	}
}

func leaveCommand() *cli.Command {
	return &cli.Command{
		Name:  "leave",
		Usage: "Remove a user from an event.",
		Flags: []cli.Flag{eventFlag(), userFlag()},
		Action: func(c *cli.Context) error {
			return run(c, func(ctx context.Context, d *actions.Dispatcher) error {
				_, err := d.Unregister(ctx, c.Int64("event"), c.Int64("user"))
				return err
			})
		},
	}
}

func deleteEventCommand() *cli.Command {
	return &cli.Command{
		Name:  "delete-event",
		Usage: "Delete an event and its registrations.",
		Flags: []cli.Flag{eventFlag()},
		Action: func(c *cli.Context) error {
			return run(c, func(ctx context.Context, d *actions.Dispatcher) error {
				_, err := d.DeleteEvent(ctx, c.Int64("event"))
				return err
			})
		},
	}
}

func removeMemberCommand() *cli.Command {
	return &cli.Command{
		Name:  "remove-member",
		Usage: "Remove a user from a group.",
		Flags: []cli.Flag{userFlag(), groupFlag()},
		Action: func(c *cli.Context) error {
			return run(c, func(ctx context.Context, d *actions.Dispatcher) error {
				_, err := d.RemoveMember(ctx, c.Int64("user"), c.Int64("group"))
				return err
			})
		},
	}
}

func deleteGroupCommand() *cli.Command {
	return &cli.Command{
		Name:  "delete-group",
		Usage: "Delete a group and its memberships.",
		Flags: []cli.Flag{groupFlag()},
		Action: func(c *cli.Context) error {
			return run(c, func(ctx context.Context, d *actions.Dispatcher) error {
				_, err := d.DeleteGroup(ctx, c.Int64("group"))
				return err
			})
		},
	}
}

func deleteUserCommand() *cli.Command {
	return &cli.Command{
		Name:  "delete-user",
		Usage: "Delete a user account.",
		Flags: []cli.Flag{userFlag()},
		Action: func(c *cli.Context) error {
			return run(c, func(ctx context.Context, d *actions.Dispatcher) error {
				_, err := d.DeleteUser(ctx, c.Int64("user"))
				return err
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Download the participant sheet of an event.",
		Flags: []cli.Flag{eventFlag()},
		Action: func(c *cli.Context) error {
			return run(c, func(ctx context.Context, d *actions.Dispatcher) error {
				location, err := d.ExportParticipants(ctx, c.Int64("event"))
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, location)
				return nil
			})
		},
	}
}

func exportByTitleCommand() *cli.Command {
	return &cli.Command{
		Name:  "export-by-title",
		Usage: "Download one sheet covering every event with a title.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Usage: "Event title."},
		},
		Action: func(c *cli.Context) error {
			return run(c, func(ctx context.Context, d *actions.Dispatcher) error {
				location, err := d.ExportByTitle(ctx, c.String("title"))
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, location)
				return nil
			})
		},
	}
}
