package main

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/study-analytics/internal/config"
	"github.com/BuzzLyutic/study-analytics/internal/filter"
	"github.com/BuzzLyutic/study-analytics/internal/model"
	"github.com/BuzzLyutic/study-analytics/internal/notify"
	"github.com/BuzzLyutic/study-analytics/pkg/respond"
)

type cli struct {
	out   io.Writer
	owner int64
	app   *app
}

func (c *cli) close() {
	if c.app != nil {
		_ = c.app.Close()
		c.app = nil
	}
}

func (c *cli) print(data any) error {
	return respond.JSON(c.out, data)
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "app",
		Short:         "Study notes and task analytics",
		Long: `Study notes and task analytics.

The default memory store lives only as long as one command: notes, tasks,
search history and notifications are gone when it exits. Set
STORE_DRIVER=sqlite (SQLITE_PATH) or STORE_DRIVER=postgres (DATABASE_URL)
to keep data between runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.owner <= 0 {
				return usageError("--owner must be a positive id")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			c.app, err = newApp(cmd.Context(), cfg, logger)
			return err
		},
	}
	root.PersistentFlags().Int64Var(&c.owner, "owner", 0, "Owner (user) id every command is scoped to")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err.Error())
	})

	root.AddCommand(c.notesCmd(), c.tasksCmd(), c.searchCmd(), c.analyticsCmd())
	return root
}

func (c *cli) notesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "notes", Short: "Query and manage notes"}

	var (
		f    model.NoteFilter
		tags string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List notes; --page or --limit switches to a paginated result",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.Tags = splitList(tags)
			if f.Paginated() {
				page, err := c.app.notes.Page(cmd.Context(), c.owner, f)
				if err != nil {
					return err
				}
				return c.print(page)
			}
			notes, err := c.app.notes.List(cmd.Context(), c.owner, f)
			if err != nil {
				return err
			}
			return c.print(notes)
		},
	}
	list.Flags().StringVar(&f.Query, "query", "", "Substring of title or content")
	list.Flags().StringVar(&tags, "tags", "", "Comma-separated tags, any of which must match")
	list.Flags().StringVar(&f.StartDate, "start", "", "Created at or after (RFC3339 or YYYY-MM-DD)")
	list.Flags().StringVar(&f.EndDate, "end", "", "Created at or before (RFC3339 or YYYY-MM-DD)")
	list.Flags().StringVar(&f.SortBy, "sort", "", "Sort field (default created_at)")
	list.Flags().StringVar(&f.SortOrder, "order", "", "asc or desc (default desc)")
	list.Flags().IntVar(&f.Page, "page", 0, "Page number, 1-based")
	list.Flags().IntVar(&f.Limit, "limit", 0, "Page size (max 100)")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one note and mark it accessed",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			n, err := c.app.notes.Get(cmd.Context(), c.owner, id)
			if err != nil {
				return err
			}
			return c.print(n)
		},
	}

	var (
		in      model.NoteInput
		addTags string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Tags = splitList(addTags)
			n, err := c.app.notes.Create(cmd.Context(), c.owner, in)
			if err != nil {
				return err
			}
			return c.print(n)
		},
	}
	add.Flags().StringVar(&in.Title, "title", "", "Note title")
	add.Flags().StringVar(&in.Content, "content", "", "Note content, markup allowed")
	add.Flags().StringVar(&addTags, "tags", "", "Comma-separated tags")
	add.Flags().BoolVar(&in.IsPublic, "public", false, "Make the note public")

	del := &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete notes by id",
		Args:  minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			deleted, err := c.app.notes.DeleteMany(cmd.Context(), c.owner, ids)
			if err != nil {
				return err
			}
			return c.print(map[string]int{"deleted_count": deleted})
		},
	}

	tagsCmd := &cobra.Command{
		Use:   "tags",
		Short: "Tag frequencies, most used first",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			counts, err := c.app.notes.Tags(cmd.Context(), c.owner)
			if err != nil {
				return err
			}
			return c.print(counts)
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Word totals and notes per month",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.app.notes.Stats(cmd.Context(), c.owner)
			if err != nil {
				return err
			}
			return c.print(st)
		},
	}

	cmd.AddCommand(list, get, add, del, tagsCmd, statsCmd)
	return cmd
}

func (c *cli) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "tasks", Short: "Query and manage tasks"}

	var f model.TaskFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks; --page or --limit switches to a paginated result",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.Paginated() {
				page, err := c.app.tasks.Page(cmd.Context(), c.owner, f)
				if err != nil {
					return err
				}
				return c.print(page)
			}
			tasks, err := c.app.tasks.List(cmd.Context(), c.owner, f)
			if err != nil {
				return err
			}
			return c.print(tasks)
		},
	}
	list.Flags().StringVar(&f.Query, "query", "", "Substring of title, description or category")
	list.Flags().StringVar(&f.Status, "status", "", "pending or done")
	list.Flags().StringVar(&f.Priority, "priority", "", "low, medium or high")
	list.Flags().StringVar(&f.DateField, "date-field", "", "created_at (default) or due_date")
	list.Flags().StringVar(&f.StartDate, "start", "", "Range start (RFC3339 or YYYY-MM-DD)")
	list.Flags().StringVar(&f.EndDate, "end", "", "Range end (RFC3339 or YYYY-MM-DD)")
	list.Flags().StringVar(&f.SortBy, "sort", "", "Sort field (default created_at)")
	list.Flags().StringVar(&f.SortOrder, "order", "", "asc or desc (default desc)")
	list.Flags().IntVar(&f.Page, "page", 0, "Page number, 1-based")
	list.Flags().IntVar(&f.Limit, "limit", 0, "Page size (max 100)")

	var (
		in       model.TaskInput
		priority string
		due      string
		estimate int
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Priority = model.Priority(priority)
			var err error
			if in.DueDate, err = filter.ParseBound(due, c.app.loc, false); err != nil {
				return err
			}
			if cmd.Flags().Changed("estimate") {
				in.EstimatedTime = &estimate
			}
			t, err := c.app.tasks.Create(cmd.Context(), c.owner, in)
			if err != nil {
				return err
			}
			return c.print(t)
		},
	}
	add.Flags().StringVar(&in.Title, "title", "", "Task title")
	add.Flags().StringVar(&in.Description, "description", "", "Task description")
	add.Flags().StringVar(&priority, "priority", "", "low, medium (default) or high")
	add.Flags().StringVar(&due, "due", "", "Due date (RFC3339 or YYYY-MM-DD)")
	add.Flags().StringVar(&in.Category, "category", "", "Category (default general)")
	add.Flags().IntVar(&estimate, "estimate", 0, "Estimated minutes")

	status := &cobra.Command{
		Use:   "status STATUS ID...",
		Short: "Move tasks to pending or done",
		Args:  minArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := model.Status(args[0])
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			if len(ids) == 1 {
				t, err := c.app.tasks.UpdateStatus(cmd.Context(), c.owner, ids[0], st)
				if err != nil {
					return err
				}
				return c.print(struct {
					Task          model.Task            `json:"task"`
					Notifications []notify.Notification `json:"notifications"`
				}{t, c.app.notify.List(c.owner)})
			}
			modified, err := c.app.tasks.UpdateStatuses(cmd.Context(), c.owner, ids, st)
			if err != nil {
				return err
			}
			return c.print(map[string]int{"modified_count": modified})
		},
	}

	del := &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete tasks by id",
		Args:  minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			deleted, err := c.app.tasks.DeleteMany(cmd.Context(), c.owner, ids)
			if err != nil {
				return err
			}
			return c.print(map[string]int{"deleted_count": deleted})
		},
	}

	reorder := &cobra.Command{
		Use:   "reorder ID=ORDER...",
		Short: "Set the manual order of tasks",
		Args:  minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := parseOrders(args)
			if err != nil {
				return err
			}
			if err := c.app.tasks.Reorder(cmd.Context(), c.owner, orders); err != nil {
				return err
			}
			return c.print(map[string]int{"reordered": len(orders)})
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Task counts by status",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.app.tasks.Stats(cmd.Context(), c.owner)
			if err != nil {
				return err
			}
			return c.print(st)
		},
	}

	var weeks int
	weekly := &cobra.Command{
		Use:   "weekly",
		Short: "Created and completed tasks per week, most recent first",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			buckets, err := c.app.tasks.Weekly(cmd.Context(), c.owner, weeks)
			if err != nil {
				return err
			}
			return c.print(buckets)
		},
	}
	weekly.Flags().IntVar(&weeks, "weeks", 0, "Number of trailing weeks (default 12)")

	overdue := &cobra.Command{
		Use:   "overdue",
		Short: "Pending tasks past their due date",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := c.app.tasks.Overdue(cmd.Context(), c.owner)
			if err != nil {
				return err
			}
			return c.print(tasks)
		},
	}

	var date string
	today := &cobra.Command{
		Use:   "today",
		Short: "Tasks due on a local day (default today)",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := filter.ParseBound(date, c.app.loc, false)
			if err != nil {
				return err
			}
			var at time.Time
			if day != nil {
				at = *day
			}
			tasks, err := c.app.tasks.Today(cmd.Context(), c.owner, at)
			if err != nil {
				return err
			}
			return c.print(tasks)
		},
	}
	today.Flags().StringVar(&date, "date", "", "Day to show (YYYY-MM-DD)")

	var start, end string
	rate := &cobra.Command{
		Use:   "rate",
		Short: "Completion rate in percent, optionally for a created-at range",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := c.app.tasks.CompletionRate(cmd.Context(), c.owner, start, end)
			if err != nil {
				return err
			}
			return c.print(map[string]int{"completion_rate": r})
		},
	}
	rate.Flags().StringVar(&start, "start", "", "Created at or after")
	rate.Flags().StringVar(&end, "end", "", "Created at or before")

	cmd.AddCommand(list, add, status, del, reorder, statsCmd, weekly, overdue, today, rate)
	return cmd
}

func (c *cli) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Search notes and tasks at once",
		Args:  minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.app.composer.Search(cmd.Context(), c.owner, joinArgs(args))
			if err != nil {
				return err
			}
			return c.print(res)
		},
	}
}

func (c *cli) analyticsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "analytics", Short: "Cross-entity reports"}

	report := func(use, short string, fn func(cmd *cobra.Command) (any, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  noArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				data, err := fn(cmd)
				if err != nil {
					return err
				}
				return c.print(data)
			},
		}
	}

	dashboard := report("dashboard", "Note and task stats, 5-week trend and recent activity", func(cmd *cobra.Command) (any, error) {
		return c.app.analytics.Dashboard(cmd.Context(), c.owner)
	})
	recent := report("recent", "Activity of the current week", func(cmd *cobra.Command) (any, error) {
		return c.app.analytics.RecentActivity(cmd.Context(), c.owner)
	})
	streak := report("streak", "Consecutive active days", func(cmd *cobra.Command) (any, error) {
		n, err := c.app.analytics.Streak(cmd.Context(), c.owner)
		return map[string]int{"study_streak": n}, err
	})
	account := report("account", "Storage usage and member level", func(cmd *cobra.Command) (any, error) {
		return c.app.analytics.Account(cmd.Context(), c.owner)
	})

	var year int
	heatmap := report("heatmap", "Activity per day of a year", func(cmd *cobra.Command) (any, error) {
		return c.app.analytics.Heatmap(cmd.Context(), c.owner, year)
	})
	heatmap.Flags().IntVar(&year, "year", 0, "Calendar year (default current)")

	var days int
	productivity := report("productivity", "Daily notes, words and completed tasks", func(cmd *cobra.Command) (any, error) {
		return c.app.analytics.Productivity(cmd.Context(), c.owner, days)
	})
	productivity.Flags().IntVar(&days, "days", 0, "Days back from today (default 30)")

	cmd.AddCommand(dashboard, recent, streak, account, heatmap, productivity)
	return cmd
}
