// Command stockctl runs the desktop client's operations from a terminal:
// listing and searching resources, CSV export and import, receipt download
// and reading the backend operation logs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ytget/stockdesk/internal/api"
	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/catalog"
	"github.com/ytget/stockdesk/internal/config"
	"github.com/ytget/stockdesk/internal/dispatch"
	"github.com/ytget/stockdesk/internal/listview"
	"github.com/ytget/stockdesk/internal/logging"
	"github.com/ytget/stockdesk/internal/model"
	"github.com/ytget/stockdesk/internal/reports"
	"github.com/ytget/stockdesk/internal/session"
	"github.com/ytget/stockdesk/internal/transfer"
)

const (
	envUser     = "STOCKDESK_USER"
	envPassword = "STOCKDESK_PASSWORD"

	loginTimeout  = 30 * time.Second
	logoutTimeout = 10 * time.Second
)

var errUsage = errors.New("usage")

const usage = `usage: stockctl [flags] <command> [args]

commands:
  list <resource> [page]              print one page of a resource
  search <resource> key=value...      print the records matching the criteria
  export <resource> <file> [k=v...]   write a resource to a CSV file
  import <resource> <file>            upload a CSV file
  receipt <order-id> <file>           save the receipt document of an order
  logs [file]                         list log files or print one

resources: ` + "inventory, orders, history, providers, projects, employees, users" + `

flags:
`

// cli holds the wired services of one invocation.
type cli struct {
	out      io.Writer
	logger   *slog.Logger
	runner   *dispatch.Service
	transfer transfer.Transferer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	var (
		backend  = flag.String("backend", cfg.Backend.URL, "Backend base URL")
		user     = flag.String("user", os.Getenv(envUser), "Username (or set "+envUser+" env)")
		password = flag.String("password", os.Getenv(envPassword), "Password (or set "+envPassword+" env)")
		verbose  = flag.Bool("verbose", false, "Verbose logging")
	)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	level := cfg.Log.Level
	if *verbose {
		level = "debug"
	}
	logger := logging.New(os.Stderr, level, cfg.Log.Format)
	slog.SetDefault(logger)

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *user == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "credentials required (--user/--password or "+envUser+"/"+envPassword+" env)")
		os.Exit(2)
	}
	if err := config.ValidateBackendURL(*backend); err != nil {
		fmt.Fprintf(os.Stderr, "invalid backend: %v\n", err)
		os.Exit(2)
	}

	sess := session.New(cfg.Backend.TokenSecret, clockwork.NewRealClock(), logger)
	client := api.NewClient(*backend, cfg.Backend.Timeout, sess, logger)
	auth := api.NewAuth(client, sess, logger)

	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	err = auth.Login(ctx, *user, *password)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %s\n", apperr.Message(err))
		os.Exit(1)
	}

	runner := dispatch.NewService(client, logger)
	c := &cli{
		out:      os.Stdout,
		logger:   logger,
		runner:   runner,
		transfer: transfer.NewService(runner, logger),
	}
	err = c.run(flag.Args())

	ctx, cancel = context.WithTimeout(context.Background(), logoutTimeout)
	_ = auth.Logout(ctx)
	cancel()

	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	case err != nil:
		fmt.Fprintf(os.Stderr, "error: %s\n", apperr.Message(err))
		os.Exit(1)
	}
}

func (c *cli) run(args []string) error {
	cmd, args := args[0], args[1:]
	switch cmd {
	case "list":
		if len(args) < 1 || len(args) > 2 {
			return usageError("list needs a resource and an optional page")
		}
		page := 1
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return usageError("page must be a positive number")
			}
			page = n
		}
		return c.list(args[0], page)
	case "search":
		if len(args) < 2 {
			return usageError("search needs a resource and at least one key=value")
		}
		criteria, err := parseCriteria(args[1:])
		if err != nil {
			return err
		}
		return c.search(args[0], criteria)
	case "export":
		if len(args) < 2 {
			return usageError("export needs a resource and a file")
		}
		filter, err := parseCriteria(args[2:])
		if err != nil {
			return err
		}
		return c.export(args[0], args[1], filter)
	case "import":
		if len(args) != 2 {
			return usageError("import needs a resource and a file")
		}
		return c.importFile(args[0], args[1])
	case "receipt":
		if len(args) != 2 {
			return usageError("receipt needs an order id and a file")
		}
		return c.receipt(args[0], args[1])
	case "logs":
		if len(args) > 1 {
			return usageError("logs takes at most one file name")
		}
		return c.logs(args)
	default:
		return usageError("unknown command " + strconv.Quote(cmd))
	}
}

func (c *cli) controller(resource string) (*listview.Controller, error) {
	desc, err := catalog.Get(resource)
	if err != nil {
		return nil, err
	}
	notifier := listview.NotifierFunc(func(n listview.Notification) {
		if n.Level >= listview.LevelWarning {
			c.logger.Warn(n.Title, "resource", n.Resource, "message", n.Message)
		}
	})
	return listview.New(desc, c.runner, notifier, c.logger), nil
}

func (c *cli) list(resource string, page int) error {
	ctrl, err := c.controller(resource)
	if err != nil {
		return err
	}
	if ctrl.Descriptor().Paging == catalog.CriteriaOnly {
		return usageError(resource + " has no listing, use search")
	}
	if err := ctrl.Load(page, nil); err != nil {
		return err
	}
	snap := ctrl.Snapshot()
	c.printTable(ctrl.Descriptor(), snap.Items)
	fmt.Fprintf(c.out, "page %d/%d, %d records\n", snap.Page.Page, snap.Page.TotalPages, snap.Page.Count)
	return nil
}

func (c *cli) search(resource string, criteria url.Values) error {
	if resource == catalog.History {
		recs, err := reports.NewHistory(c.runner, c.logger).Search(criteria.Get("year"), criteria.Get("month"))
		if err != nil {
			return err
		}
		c.printTable(catalog.MustGet(catalog.History), recs)
		fmt.Fprintf(c.out, "%d records\n", len(recs))
		return nil
	}

	ctrl, err := c.controller(resource)
	if err != nil {
		return err
	}
	for key := range criteria {
		if key != ctrl.Descriptor().IDField && !ctrl.Descriptor().IsSearchKey(key) {
			return usageError(fmt.Sprintf("%s does not search by %q (keys: %s)",
				resource, key, strings.Join(ctrl.Descriptor().SearchKeys, ", ")))
		}
	}
	if err := ctrl.Search(criteria); err != nil {
		return err
	}
	recs := ctrl.Records()
	c.printTable(ctrl.Descriptor(), recs)
	fmt.Fprintf(c.out, "%d records\n", len(recs))
	return nil
}

func (c *cli) export(resource, path string, filter url.Values) error {
	desc, err := catalog.Get(resource)
	if err != nil {
		return err
	}
	task, err := c.transfer.Export(desc, transfer.Source{Filter: filter}, path)
	if err != nil {
		return err
	}
	task, err = c.transfer.Wait(task.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "wrote %d records to %s\n", task.Rows, task.Path)
	return nil
}

func (c *cli) importFile(resource, path string) error {
	desc, err := catalog.Get(resource)
	if err != nil {
		return err
	}
	task, err := c.transfer.Import(desc, path)
	if err != nil {
		return err
	}
	task, err = c.transfer.Wait(task.ID)
	if err != nil {
		return err
	}
	printBatch(c.out, task)
	return nil
}

func (c *cli) receipt(orderID, path string) error {
	task, err := c.transfer.SaveReceipt(orderID, path)
	if err != nil {
		return err
	}
	task, err = c.transfer.Wait(task.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "saved %s\n", task.Path)
	return nil
}

func (c *cli) logs(args []string) error {
	logs := reports.NewLogs(c.runner)
	if len(args) == 0 {
		files, err := logs.Files()
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintln(c.out, f)
		}
		return nil
	}
	lines, err := logs.Content(args[0])
	if err != nil {
		return err
	}
	for _, l := range lines {
		fmt.Fprintln(c.out, l)
	}
	return nil
}

func (c *cli) printTable(desc *catalog.Descriptor, recs []model.Record) {
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	headers := make([]string, len(desc.Columns))
	for i, col := range desc.Columns {
		headers[i] = col.Title
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, r := range recs {
		fmt.Fprintln(w, strings.Join(desc.Row(r), "\t"))
	}
	_ = w.Flush()
}

func printBatch(w io.Writer, task model.TransferTask) {
	res := task.Result
	if res == nil {
		fmt.Fprintf(w, "submitted %d rows\n", task.Rows)
		return
	}
	fmt.Fprintf(w, "imported %d, skipped %d, failed %d of %d\n", res.Succeeded, res.Skipped, res.Failed(), res.Requested)
	if len(res.FailedIDs) > 0 {
		fmt.Fprintf(w, "failed: %s\n", strings.Join(res.FailedIDs, ", "))
	}
	if res.Message != "" {
		fmt.Fprintln(w, res.Message)
	}
}

// parseCriteria turns key=value arguments into query values.
func parseCriteria(args []string) (url.Values, error) {
	out := url.Values{}
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, usageError(fmt.Sprintf("expected key=value, got %q", a))
		}
		out.Add(strings.TrimSpace(k), strings.TrimSpace(v))
	}
	return out, nil
}

func usageError(msg string) error {
	return fmt.Errorf("%w: %s", errUsage, msg)
}
