// Package uploadcmder provides the upload command for ingesting documents
// into the cosmo server.
package uploadcmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cosmohq/cosmo/pkg/api"
	"github.com/cosmohq/cosmo/pkg/cliui"
	"github.com/cosmohq/cosmo/pkg/config"
	"github.com/cosmohq/cosmo/pkg/logger"
	"github.com/cosmohq/cosmo/pkg/uploader"
	"github.com/cosmohq/cosmo/pkg/utils"
)

type uploadCommander struct {
	target  string
	dir     string
	force   bool
	watch   bool
	workers uint
	debug   bool

	logger *slog.Logger
}

const uploadLongDesc string = `Ingest documents into the cosmo server.

Accepts individual files, or a directory with --dir. Directory uploads walk
the tree for supported documents (.pdf, .md, .markdown) and upload them
concurrently through a bounded worker pool.

Already-indexed files are skipped unless --force is given. With --watch the
command keeps running and re-uploads supported files as they are created or
changed under the --dir directory.

Examples:
  cosmo upload notes.md
  cosmo upload --force react-handbook.pdf
  cosmo upload --dir ./docs --workers 8
  cosmo upload --dir ./docs --watch`

const uploadShortDesc string = "Ingest documents into the server"

func NewUploadCmd() *cobra.Command {
	cmder := &uploadCommander{}

	cmd := &cobra.Command{
		Use:   "upload [files...]",
		Short: uploadShortDesc,
		Long:  uploadLongDesc,
		Args: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" && len(args) == 0 {
				return fmt.Errorf("provide files to upload or --dir")
			}
			if dir != "" && len(args) > 0 {
				return fmt.Errorf("cannot mix file arguments with --dir")
			}
			return nil
		},
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagTarget,
				config.FlagWorkers,
			})

			cmder.target = v.GetString("client.target")
			cmder.workers = v.GetUint("upload.workers")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(args)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)
	config.AddUintFlag(cmd, config.Flags, config.FlagWorkers, &cmder.workers)
	cmd.Flags().StringVar(&cmder.dir, "dir", "", "Directory to walk for supported documents")
	cmd.Flags().BoolVarP(&cmder.force, "force", "f", false, "Re-index documents that are already ingested")
	cmd.Flags().BoolVar(&cmder.watch, "watch", false, "Keep running and re-upload documents as they change (requires --dir)")

	return cmd
}

func (c *uploadCommander) run(files []string) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	if c.watch && c.dir == "" {
		return fmt.Errorf("--watch requires --dir")
	}

	var failed atomic.Int64

	pool, err := uploader.NewPool(&uploader.Config{
		Client:     api.NewClient(c.target),
		NumWorkers: c.workers,
		Logger:     c.logger,
		OnResult: func(result uploader.Result) {
			if result.Err != nil {
				failed.Add(1)
				fmt.Fprintf(os.Stderr, "  %s %s: %v\n", cliui.FailMark, result.Path, result.Err)
				return
			}
			if result.ChunksIndexed == 0 {
				fmt.Printf("  %s %s %s\n",
					cliui.DimStyle.Render("-"),
					result.Path,
					cliui.DimStyle.Render("(already indexed, use --force to re-index)"),
				)
				return
			}
			fmt.Printf("  %s %s %s\n",
				cliui.SuccessMark,
				result.Path,
				cliui.DimStyle.Render(fmt.Sprintf("(%d chunks)", result.ChunksIndexed)),
			)
		},
	})
	if err != nil {
		return err
	}

	if c.dir == "" {
		for _, path := range files {
			if !uploader.Supported(path) {
				fmt.Fprintf(os.Stderr, "  %s %s: unsupported file type\n", cliui.FailMark, path)
				failed.Add(1)
				continue
			}
			pool.Enqueue(uploader.Job{Path: path, Force: c.force})
		}
		pool.Close()
		return exitErr(failed.Load())
	}

	enqueued, err := pool.UploadDir(c.dir, c.force)
	if err != nil {
		pool.Close()
		return err
	}

	c.logger.Debug("directory upload enqueued", "dir", c.dir, "files", enqueued)

	if !c.watch {
		pool.Close()
		return exitErr(failed.Load())
	}

	fmt.Printf("\n  %s %s\n\n",
		cliui.KeyStyle.Render("Watching:"),
		cliui.ValueStyle.Render(c.dir),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = pool.Watch(ctx, c.dir)
	pool.Close()

	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func exitErr(failed int64) error {
	if failed > 0 {
		return fmt.Errorf("%s failed", utils.Plural(int(failed), "upload"))
	}
	return nil
}
