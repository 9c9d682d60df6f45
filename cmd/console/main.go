package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/mindmesh/console/internal/api"
	"github.com/mindmesh/console/internal/auth"
	"github.com/mindmesh/console/internal/cache"
	"github.com/mindmesh/console/internal/console"
	"github.com/mindmesh/console/internal/domain"
	"github.com/mindmesh/console/internal/goals"
	"github.com/mindmesh/console/internal/infra"
	"github.com/mindmesh/console/internal/notify"
	"github.com/mindmesh/console/internal/session"
	"github.com/mindmesh/console/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "mindmesh",
	Short: "MindMesh console",
	Long: `MindMesh console talks to the MindMesh API from the terminal.
Run it with no arguments for the interactive dashboard, or use the
subcommands for scripted access to auth and goals.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

func main() {
	cobra.OnInitialize(initEnv)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initEnv() {
	viper.SetEnvPrefix("MINDMESH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides config)")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(meCmd())
	rootCmd.AddCommand(goalCmd())
}

// app bundles everything a command needs after wiring.
type app struct {
	cfg    *infra.Config
	logger *zap.Logger
	sess   *session.Store
	auth   *auth.Service
	goals  *goals.Service
}

// wire builds the full client stack: config, logger, persisted session,
// HTTP client, caches and the data services on top.
func wire(n notify.Notifier) (*app, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		return nil, err
	}

	sess := session.NewStore(cfg.Session.StorePath, logger)
	if err := sess.Restore(); err != nil {
		return nil, err
	}

	client := api.New(cfg.API.BaseURL, sess, api.Options{
		Timeout:            cfg.API.Timeout,
		BreakerMaxFailures: cfg.API.CBMaxFailures,
		BreakerInterval:    cfg.API.CBInterval,
		BreakerTimeout:     cfg.API.CBTimeout,
	}, logger)

	store := cache.New()
	return &app{
		cfg:    cfg,
		logger: logger,
		sess:   sess,
		auth:   auth.NewService(client, sess, store, n, logger),
		goals:  goals.NewService(client, store, n, logger),
	}, nil
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Interactive dashboard (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard()
		},
	}
}

func runDashboard() error {
	// The dashboard surfaces notifications in its status line instead of
	// the log, so the services get a buffering notifier.
	status := tui.NewStatusBuffer()
	a, err := wire(status)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	transcript := console.NewTranscript()
	submitter := console.NewSubmitter(transcript, a.goals, console.Defaults{
		Autonomy: domain.AutonomyLevel(a.cfg.Console.DefaultAutonomy),
		Priority: domain.GoalPriority(a.cfg.Console.DefaultPriority),
	}, a.logger)

	model := tui.New(a.auth, a.goals, submitter, status, tui.Options{
		PageSize: a.cfg.Console.PageSize,
	}, a.logger)

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wire(notify.NewLog(zap.NewNop()))
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			if email == "" {
				return fmt.Errorf("--email required")
			}
			fmt.Fprint(os.Stderr, "Password: ")
			raw, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return err
			}

			user, err := a.auth.Login(cmd.Context(), domain.Credentials{
				Email:    email,
				Password: string(raw),
			})
			if err != nil {
				return err
			}
			fmt.Printf("signed in as %s\n", user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wire(notify.NewLog(zap.NewNop()))
			if err != nil {
				return err
			}
			defer a.logger.Sync()
			if err := a.auth.Logout(); err != nil {
				return err
			}
			fmt.Println("signed out")
			return nil
		},
	}
}

func meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wire(notify.NewLog(zap.NewNop()))
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			user := a.auth.CurrentUser(cmd.Context())
			if user == nil {
				return fmt.Errorf("not signed in, run 'mindmesh login' first")
			}
			return printJSON(user)
		},
	}
}

func goalCmd() *cobra.Command {
	g := &cobra.Command{Use: "goal", Short: "Manage goals"}
	g.AddCommand(goalListCmd())
	g.AddCommand(goalCreateCmd())
	g.AddCommand(goalStartCmd())
	g.AddCommand(goalDeleteCmd())
	return g
}

func goalListCmd() *cobra.Command {
	var page, size int
	var status, priority, search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wire(notify.NewLog(zap.NewNop()))
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			result, err := a.goals.List(cmd.Context(), goals.ListFilter{
				Page:     page,
				Size:     size,
				Status:   domain.GoalStatus(status),
				Priority: domain.GoalPriority(priority),
				Search:   search,
			})
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(result)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Text", "Status", "Priority", "Autonomy"})
			for _, g := range result.Items {
				tw.AppendRow(table.Row{g.ID, g.Text, g.Status, g.Priority, g.AutonomyLevel})
			}
			tw.Render()
			fmt.Printf("page %d of %d (%d goals)\n", result.Page, result.Pages, result.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&size, "size", 20, "page size")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&priority, "priority", "", "filter by priority")
	cmd.Flags().StringVar(&search, "search", "", "free-text search")
	return cmd
}

func goalCreateCmd() *cobra.Command {
	var autonomy, priority string
	cmd := &cobra.Command{
		Use:   "create [text]",
		Short: "Create a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wire(notify.NewLog(zap.NewNop()))
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			goal, err := a.goals.Create(cmd.Context(), domain.GoalForm{
				Text:          args[0],
				AutonomyLevel: domain.AutonomyLevel(autonomy),
				Priority:      domain.GoalPriority(priority),
			})
			if err != nil {
				return err
			}
			return printJSON(goal)
		},
	}
	cmd.Flags().StringVar(&autonomy, "autonomy", "L1", "autonomy level (L0-L3)")
	cmd.Flags().StringVar(&priority, "priority", "medium", "priority")
	return cmd
}

func goalStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start [id]",
		Short: "Start executing a draft goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wire(notify.NewLog(zap.NewNop()))
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			runID, err := a.goals.Start(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("run %s started\n", runID)
			return nil
		},
	}
}

func goalDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wire(notify.NewLog(zap.NewNop()))
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			if err := a.goals.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("deleted")
			return nil
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
