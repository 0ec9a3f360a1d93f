package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bibliothek/bibliothek/pkg/authors"
	"github.com/bibliothek/bibliothek/pkg/ingest"
	"github.com/bibliothek/bibliothek/pkg/maintenance"
	"github.com/bibliothek/bibliothek/pkg/pdf"
	"github.com/bibliothek/bibliothek/pkg/report"
	"github.com/bibliothek/bibliothek/pkg/server"
	"github.com/bibliothek/bibliothek/pkg/worker"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/segmentio/encoding/json"
	"github.com/urfave/cli/v2"
)

// printJSON writes v to stdout for scripts to pick up.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return errors.WithStack(err)
}

func (e *env) newIngester() (*ingest.Ingester, *pdf.PdfiumRenderer) {
	renderer := pdf.NewRenderer()
	return ingest.New(e.db, e.cfg, renderer), renderer
}

func (e *env) ingestCommand() *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "ingest single files",
		ArgsUsage: "<path>...",
		Before:    e.before,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "rerun the ladder for books that are up to date"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("ingest needs at least one path", 1)
			}

			ing, renderer := e.newIngester()
			defer renderer.Close()

			ctx := e.log.WithContext(c.Context)
			rep := report.New("")
			results := []*ingest.Result{}
			for _, path := range c.Args().Slice() {
				res, err := ing.IngestFile(ctx, path, ingest.Options{Force: c.Bool("force")}, rep)
				if err != nil {
					return err
				}
				results = append(results, res)
				if res.Save != nil {
					if _, err := ing.WriteReport(filepath.Dir(res.Save.Path), rep); err != nil {
						return err
					}
					rep = report.New("")
				}
			}
			return printJSON(results)
		},
	}
}

func (e *env) scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "ingest every ebook below a directory",
		ArgsUsage: "[root]",
		Before:    e.before,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "rerun the ladder for books that are up to date"},
		},
		Action: func(c *cli.Context) error {
			root := c.Args().First()
			if root == "" {
				root = e.cfg.LibraryPath
			}
			if root == "" {
				return cli.Exit("scan needs a root when library_path is not configured", 1)
			}

			ing, renderer := e.newIngester()
			defer renderer.Close()

			// An interrupt stops the scan before the next file.
			ctx, cancel := context.WithCancel(e.log.WithContext(c.Context))
			defer cancel()
			graceful := signals.Setup()
			go func() {
				<-graceful
				e.log.Info("interrupt received, finishing current file")
				cancel()
			}()

			res, err := ing.Scan(ctx, root, ingest.ScanOptions{
				Options: ingest.Options{Force: c.Bool("force")},
				Progress: func(done, total int) {
					e.log.Info("scan progress", logger.Data{"done": done, "total": total})
				},
			})
			if res != nil {
				if perr := printJSON(res); perr != nil {
					return perr
				}
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func (e *env) cleanupCommand() *cli.Command {
	return &cli.Command{
		Name:   "cleanup",
		Usage:  "delete orphaned works, series, author links and authors",
		Before: e.before,
		Action: func(c *cli.Context) error {
			ctx := e.log.WithContext(c.Context)
			res, err := maintenance.NewService(e.db).CleanupOrphans(ctx)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
}

func (e *env) repairCommand() *cli.Command {
	return &cli.Command{
		Name:   "repair",
		Usage:  "check every stored book against the file system",
		Before: e.before,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "mark-missing", Usage: "keep books whose file is gone instead of deleting them"},
			&cli.StringFlag{Name: "report-dir", Usage: "where to append the report (default: library_path)"},
		},
		Action: func(c *cli.Context) error {
			ctx := e.log.WithContext(c.Context)
			rep := report.New("repair")
			res, err := maintenance.NewService(e.db).DeepRepair(ctx, maintenance.RepairOptions{
				MarkMissing: c.Bool("mark-missing"),
			}, rep)
			if err != nil {
				return err
			}

			dir := c.String("report-dir")
			if dir == "" {
				dir = e.cfg.LibraryPath
			}
			if dir != "" {
				ing, renderer := e.newIngester()
				defer renderer.Close()
				if _, err := ing.WriteReport(dir, rep); err != nil {
					return err
				}
			}
			return printJSON(map[string]interface{}{"repair": res, "entries": rep.Entries()})
		},
	}
}

func (e *env) markMissingCommand() *cli.Command {
	return &cli.Command{
		Name:      "mark-missing",
		Usage:     "keep a book whose file is gone under a placeholder path",
		ArgsUsage: "<book-id>",
		Before:    e.before,
		Action: func(c *cli.Context) error {
			id, err := strconv.Atoi(c.Args().First())
			if err != nil {
				return cli.Exit("mark-missing needs a numeric book id", 1)
			}
			return maintenance.NewService(e.db).MarkMissing(e.log.WithContext(c.Context), id)
		},
	}
}

func (e *env) mergeAuthorsCommand() *cli.Command {
	return &cli.Command{
		Name:   "merge-authors",
		Usage:  "move every work of the loser onto the winner and delete the loser",
		Before: e.before,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "winner", Required: true},
			&cli.IntFlag{Name: "loser", Required: true},
		},
		Action: func(c *cli.Context) error {
			ctx := e.log.WithContext(c.Context)
			return authors.NewService(e.db).MergeAuthors(ctx, c.Int("winner"), c.Int("loser"))
		},
	}
}

func (e *env) splitAuthorCommand() *cli.Command {
	return &cli.Command{
		Name:   "split-author",
		Usage:  "move some works of an author onto a new author with another first name",
		Before: e.before,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "author", Required: true},
			&cli.IntSliceFlag{Name: "work", Required: true, Usage: "work id to move, repeatable"},
			&cli.StringFlag{Name: "firstname", Required: true},
		},
		Action: func(c *cli.Context) error {
			ctx := e.log.WithContext(c.Context)
			created, err := authors.NewService(e.db).SplitAuthor(ctx, c.Int("author"), c.IntSlice("work"), c.String("firstname"))
			if err != nil {
				return err
			}
			return printJSON(created)
		},
	}
}

func (e *env) serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the API server and the background job worker",
		Before: e.before,
		Action: func(c *cli.Context) error {
			ctx := c.Context
			log := e.log

			ing, renderer := e.newIngester()
			defer renderer.Close()

			wrkr := worker.New(e.cfg, e.db, ing)

			srv, err := server.New(e.cfg, e.db, ing)
			if err != nil {
				return err
			}

			graceful := signals.Setup()

			go func() {
				lc := net.ListenConfig{}
				listener, err := lc.Listen(ctx, "tcp", srv.Addr)
				if err != nil {
					log.Err(err).Fatal("failed to bind port")
				}
				log.Info("server started", logger.Data{"addr": listener.Addr().String()})

				err = srv.Serve(listener)
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Err(err).Fatal("server stopped")
				}
				log.Info("server stopped")
			}()

			wrkr.Start()
			log.Info("worker started")

			<-graceful
			log.Info("starting graceful shutdown")

			err = srv.Shutdown(ctx)
			if err != nil {
				log.Err(err).Error("server shutdown error")
			}
			log.Info("server shutdown")

			wrkr.Shutdown()
			log.Info("worker shutdown")

			return nil
		},
	}
}
