// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytbeets/internal/shared"
)

const version = "0.1.0"

// -v belongs to --verbose; the version flag only answers to --version and -V.
func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:        "version",
		Aliases:     []string{"V"},
		Usage:       "print the version",
		HideDefault: true,
		Local:       true,
	}
}

// newApp builds the root command around r.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     shared.AppName,
		Usage:    "Fetch YouTube Music releases with yt-dlp and import them with beets",
		Version:  version,
		Flags:    globalFlags(),
		Before:   r.Before,
		After:    r.After,
		Commands: r.register(),
	}
}

// globalFlags are accepted by every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file (default: $XDG_CONFIG_HOME/ytbeets/config.toml)",
			Sources: cli.EnvVars("YTBEETS_CONFIG"),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging and verbose beets output",
		},
	}
}

// runFlags tune a single pipeline run.
func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "keep-files",
			Aliases: []string{"k"},
			Usage:   "Keep downloaded files in the staging cache after import",
		},
		&cli.BoolFlag{
			Name:    "force",
			Aliases: []string{"f"},
			Usage:   "Fetch even when the release is already in the library",
		},
		&cli.BoolFlag{
			Name:  "no-import",
			Usage: "Download and tag only, leaving files in the staging cache",
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Aliases: []string{"n"},
			Usage:   "Resolve and check availability without downloading",
		},
	}
}

// fetchFlags are the flags of the album and track commands.
func fetchFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:    "url",
			Aliases: []string{"u"},
			Usage:   "Download this URL instead of searching the catalogue",
		},
	}, runFlags()...)
}

// albumCommand fetches an album
func albumCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "album",
		Usage:     "Fetch an album and import it",
		ArgsUsage: "<artist> <album>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "artist"},
			&cli.StringArg{Name: "title"},
		},
		Flags:  fetchFlags(),
		Action: r.Album,
	}
}

// trackCommand fetches a single track
func trackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "track",
		Aliases:   []string{"single"},
		Usage:     "Fetch a single track and import it as a singleton",
		ArgsUsage: "<artist> <title>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "artist"},
			&cli.StringArg{Name: "title"},
		},
		Flags:  fetchFlags(),
		Action: r.Track,
	}
}

// missingCommand re-fetches library items whose files are gone
func missingCommand(r *Runner) *cli.Command {
	run := runFlags()
	return &cli.Command{
		Name:   "missing",
		Usage:  "Re-download library items whose files are missing",
		Flags:  []cli.Flag{run[0], run[2], run[3]},
		Action: r.Missing,
	}
}

// searchCommand searches the catalogue
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search YouTube Music for albums or songs",
		ArgsUsage: "<query>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Result type: albums or songs",
				Value:   "albums",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results to print (0 for all)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Search,
	}
}

// showCommand prints a release
func showCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show an album tracklist or song by id",
		ArgsUsage: "<browse-id|video-id>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "song",
				Usage: "Treat the id as a video id",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: text, markdown, csv or json",
				Value: "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to this file or directory instead of stdout",
			},
		},
		Action: r.Show,
	}
}

// pickCommand launches the interactive picker
func pickCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "pick",
		Usage:     "Search interactively, then fetch the chosen release",
		ArgsUsage: "<query>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "song",
				Usage: "Search songs instead of albums",
			},
		}, runFlags()[:3]...),
		Action: r.Pick,
	}
}

// historyCommand lists download records
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past downloads",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only show downloads with this status (pending, downloading, imported, failed, skipped)",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Only show downloads of this source id",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of records",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.History,
		Commands: []*cli.Command{
			{
				Name:      "mark",
				Usage:     "Set the status of the latest download of a source, e.g. failed to allow a re-fetch",
				ArgsUsage: "<source-id> <status>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "source"},
					&cli.StringArg{Name: "status"},
				},
				Action: r.HistoryMark,
			},
			{
				Name:      "forget",
				Usage:     "Remove every download record of a source",
				ArgsUsage: "<source-id>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "source"},
				},
				Action: r.HistoryForget,
			},
		},
	}
}

// cacheCommand inspects and empties the staging cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clean the staging cache",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show staging cache location and size",
				Action: r.CacheStatus,
			},
			{
				Name:  "clean",
				Usage: "Remove kept staging directories of imported downloads",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Remove everything in the staging cache, including failed downloads",
					},
				},
				Action: r.CacheClean,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write the default configuration file",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// doctorCommand checks external dependencies
func doctorCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "doctor",
		Usage:  "Check yt-dlp, beets, the metadata proxy and the beets library",
		Action: r.Doctor,
	}
}
