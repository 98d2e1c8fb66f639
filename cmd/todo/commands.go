package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/todolist/internal/credential"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/share"
	"github.com/nhle/todolist/internal/todo"
)

var (
	// add / edit flags
	entryTitle  string
	entryDate   string
	entryTime   string
	entryRepeat string
	entryList   string
	clearDate   bool

	// ls / done / share flags
	lsList     string
	lsDone     bool
	lsSearch   string
	lsJSON     bool
	doneUndo   bool
	sharePrint bool
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a task",
	Example: `  todo add "Pay rent" --date 2026-04-01 --repeat "Once a Month"
  todo add "Standup" --date 2026-03-11 --time 09:30 --list Work`,
	Args: cobra.MinimumNArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		due, err := todo.ParseDue(entryDate, entryTime, time.Local)
		if err != nil {
			return err
		}
		repeat, err := model.ParseRepeat(entryRepeat)
		if err != nil {
			return err
		}

		entry, err := e.svc.Add(ctx, todo.Draft{
			Title:    strings.Join(args, " "),
			SetDate:  due,
			Repeat:   repeat,
			ListType: model.ListType(entryList),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s %s (%s)\n", shortID(entry.ID), entry.Title, entry.TimeState.Label())
		return nil
	}),
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List tasks grouped by due date",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		q := todo.ListQuery(lsList)
		if lsDone {
			done := true
			q.Done = &done
		}
		if lsSearch != "" {
			q.Title = &lsSearch
		}

		entries, err := e.svc.Query(ctx, q)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if lsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		printGroups(out, todo.GroupByTimeState(entries))
		return nil
	}),
}

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Change a task's title, date, repeat or list",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		id, err := e.resolveID(ctx, args[0])
		if err != nil {
			return err
		}
		existing, err := e.svc.Get(ctx, id)
		if err != nil {
			return err
		}

		d := todo.Draft{
			Title:    existing.Title,
			SetDate:  existing.SetDate,
			Repeat:   existing.Repeat,
			ListType: existing.ListType,
		}

		flags := cmd.Flags()
		if flags.Changed("title") {
			d.Title = entryTitle
		}
		if flags.Changed("date") || flags.Changed("time") {
			date := entryDate
			if !flags.Changed("date") && existing.SetDate != nil {
				date = existing.SetDate.In(time.Local).Format(todo.DateLayout)
			}
			if d.SetDate, err = todo.ParseDue(date, entryTime, time.Local); err != nil {
				return err
			}
		}
		if clearDate {
			d.SetDate = nil
		}
		if flags.Changed("repeat") {
			if d.Repeat, err = model.ParseRepeat(entryRepeat); err != nil {
				return err
			}
		}
		if flags.Changed("list") {
			d.ListType = model.ListType(entryList)
		}

		if err := e.svc.Edit(ctx, id, d); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", shortID(id))
		return nil
	}),
}

var doneCmd = &cobra.Command{
	Use:   "done [id]",
	Short: "Mark a task done (or open again with --undo)",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		id, err := e.resolveID(ctx, args[0])
		if err != nil {
			return err
		}
		follow, err := e.svc.SetDone(ctx, id, !doneUndo)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if doneUndo {
			fmt.Fprintf(out, "reopened %s\n", shortID(id))
			return nil
		}
		fmt.Fprintf(out, "completed %s\n", shortID(id))
		if follow != nil && follow.SetDate != nil {
			fmt.Fprintf(out, "next occurrence %s on %s\n", shortID(follow.ID), share.FormatDate(follow.SetDate))
		}
		return nil
	}),
}

var rmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		id, err := e.resolveID(ctx, args[0])
		if err != nil {
			return err
		}
		if err := e.svc.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", shortID(id))
		return nil
	}),
}

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Show or manage list names",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		for _, name := range e.svc.Lists() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}),
}

var listsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Register a new list",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		if err := e.svc.AddList(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added list %q\n", args[0])
		return nil
	}),
}

var listsRmCmd = &cobra.Command{
	Use:   "rm [name]",
	Short: "Remove a list and every task in it",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		n, err := e.svc.RemoveList(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed list %q and %d task(s)\n", args[0], n)
		return nil
	}),
}

var shareCmd = &cobra.Command{
	Use:   "share [id]",
	Short: "Save a task to the IMAP drafts folder, or print it with --print",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		id, err := e.resolveID(ctx, args[0])
		if err != nil {
			return err
		}
		entry, err := e.svc.Get(ctx, id)
		if err != nil {
			return err
		}

		if sharePrint {
			fmt.Fprint(cmd.OutOrStdout(), share.Text(*entry))
			return nil
		}

		d, err := drafter()
		if err != nil {
			return err
		}
		if d == nil {
			return errors.New("sharing is not configured: set share.imap_host and share.imap_username")
		}
		env := envelope()
		env.Date = time.Now()
		if err := d.Save(ctx, env, *entry); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %q to %s\n", entry.Title, cfg.Share.Mailbox)
		return nil
	}),
}

var restampCmd = &cobra.Command{
	Use:   "restamp",
	Short: "Recompute stored due-date groups against today",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		n, err := e.svc.Restamp(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "restamped %d task(s)\n", n)
		return nil
	}),
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the IMAP password in the system keyring (read from stdin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user := cfg.Share.IMAPUsername
		if user == "" {
			return errors.New("share.imap_username is not set")
		}
		password, err := readLine(cmd.InOrStdin())
		if err != nil {
			return err
		}
		if err := credential.Set(credential.IMAPKey(user), password); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored password for %s\n", user)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored IMAP password from the system keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user := cfg.Share.IMAPUsername
		if user == "" {
			return errors.New("share.imap_username is not set")
		}
		if err := credential.Delete(credential.IMAPKey(user)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed password for %s\n", user)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write the effective configuration to the --config path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := model.SaveConfig(configPath, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringVar(&entryDate, "date", "", "due date (YYYY-MM-DD)")
		c.Flags().StringVar(&entryTime, "time", "", "due time (HH:MM)")
		c.Flags().StringVar(&entryRepeat, "repeat", "", `repeat cadence, e.g. "Once a week"`)
		c.Flags().StringVar(&entryList, "list", "", "list name")
	}
	editCmd.Flags().StringVar(&entryTitle, "title", "", "new title")
	editCmd.Flags().BoolVar(&clearDate, "clear-date", false, "remove the due date")

	lsCmd.Flags().StringVar(&lsList, "list", model.ListAll, "only show this list")
	lsCmd.Flags().BoolVar(&lsDone, "done", false, "only show completed tasks")
	lsCmd.Flags().StringVar(&lsSearch, "search", "", "title contains (case-insensitive)")
	lsCmd.Flags().BoolVar(&lsJSON, "json", false, "print JSON")

	doneCmd.Flags().BoolVar(&doneUndo, "undo", false, "mark the task open again")
	shareCmd.Flags().BoolVar(&sharePrint, "print", false, "print the shared text instead of saving a draft")

	listsCmd.AddCommand(listsAddCmd, listsRmCmd)
}

// withEnv opens the store for the duration of a command.
func withEnv(run func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()
		return run(cmd.Context(), e, cmd, args)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// printGroups writes entries under their bucket headings.
func printGroups(w io.Writer, groups []todo.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "nothing to do")
		return
	}
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", g.State.Label(), len(g.Entries))
		for _, e := range g.Entries {
			box := "[ ]"
			if e.IsDone {
				box = "[x]"
			}
			line := fmt.Sprintf("  %s %s  %s", box, shortID(e.ID), e.Title)
			if e.SetDate != nil {
				line += "  " + e.SetDate.In(time.Local).Format("Mon 2 Jan 15:04")
			}
			if e.Repeat.Recurring() {
				line += "  ↻ " + string(e.Repeat)
			}
			line += "  [" + string(e.ListType) + "]"
			fmt.Fprintln(w, line)
		}
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}
