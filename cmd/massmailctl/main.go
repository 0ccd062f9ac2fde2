package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/ignite/massmail/internal/app"
	"github.com/ignite/massmail/internal/config"
	"github.com/ignite/massmail/internal/pkg/logger"
	"github.com/ignite/massmail/internal/storage"
	"github.com/spf13/cobra"
)

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

type cli struct {
	cfgPath string
	out     string
	app     *app.App
}

// open loads the config and wires the app once per invocation.
func (c *cli) open(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	cfg, err := config.LoadFromEnv(c.cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(logger.Config{Env: cfg.Log.Env, Level: "warn", ServiceName: "massmailctl"}); err != nil {
		return nil, err
	}
	a, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *cli) close() {
	if c.app == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c.app.Close(ctx)
}

func (c *cli) print(v any) {
	p, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(p))
}

func main() {
	c := &cli{
		cfgPath: envOr("CONFIG_PATH", "config/config.yaml"),
		out:     envOr("MASSMAIL_OUT", "text"),
	}

	root := &cobra.Command{
		Use:           "massmailctl",
		Short:         "Administer the massmail console from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.close()
		},
	}
	root.PersistentFlags().StringVar(&c.cfgPath, "config", c.cfgPath, "Path to config.yaml (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&c.out, "out", c.out, "Output format: json|text")

	root.AddCommand(registerAdminCmd(c), contactsCmd(c), scheduledCmd(c), gmailCmd(c))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		c.close()
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func registerAdminCmd(c *cli) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "register-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("MASSMAIL_ADMIN_PASSWORD")
			}
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			u, err := a.Identity.Register(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if c.out == "json" {
				c.print(u)
				return nil
			}
			fmt.Printf("admin %s created (id %s)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Admin username")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (env MASSMAIL_ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func contactsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "contacts", Short: "Contact operations"}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <path|s3://bucket/key>",
		Short: "Import a CSV with a username column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			opener := storage.NewOpener(nil)
			if strings.HasPrefix(args[0], "s3://") {
				client, err := storage.NewS3Client(ctx, a.Config.Import.S3Region, a.Config.Import.AWSProfile)
				if err != nil {
					return err
				}
				opener = storage.NewOpener(client)
			}
			rc, err := opener.Open(ctx, args[0])
			if err != nil {
				return err
			}
			defer rc.Close()

			report, err := a.Contacts.Import(ctx, rc)
			if report == nil {
				return err
			}
			if c.out == "json" {
				c.print(report)
				return err
			}
			fmt.Printf("added %d, duplicate in file %d, already existing %d, skipped %d\n",
				report.Added, report.DuplicateInFile, report.AlreadyExists, report.Skipped)
			for _, l := range []struct {
				label string
				names []string
			}{
				{"added", report.AddedUsernames},
				{"duplicate", report.DuplicateUsernames},
				{"existing", report.ExistingUsernames},
			} {
				if len(l.names) > 0 {
					fmt.Printf("  %s: %s\n", l.label, strings.Join(l.names, ", "))
				}
			}
			return err
		},
	})
	return cmd
}

func scheduledCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "scheduled", Short: "Scheduled email operations"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List scheduled emails",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			recs, err := a.Schedule.List(cmd.Context())
			if err != nil {
				return err
			}
			if c.out == "json" {
				c.print(recs)
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATUS\tFIRE AT\tTO\tSUBJECT\tLAST ERROR")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Status, r.FireAt.Format(time.RFC3339), r.To, r.Subject, r.LastError)
			}
			return tw.Flush()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Fire every due Pending email once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			outcomes, err := a.Scheduler.RunDue(cmd.Context())
			if err != nil {
				return err
			}
			if c.out == "json" {
				c.print(outcomes)
				return nil
			}
			if len(outcomes) == 0 {
				fmt.Println("nothing due")
				return nil
			}
			for o, n := range outcomes {
				fmt.Printf("%s: %d\n", o, n)
			}
			return nil
		},
	})
	return cmd
}

func gmailCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "gmail", Short: "Gmail API consent"}
	cmd.AddCommand(&cobra.Command{
		Use:   "auth",
		Short: "Print the consent URL, read the code and cache the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if a.Gmail == nil {
				return fmt.Errorf("mail provider is %q, not gmail", a.Config.Mail.Provider)
			}
			fmt.Println("Open this URL, grant access, then paste the code:")
			fmt.Println(a.Gmail.AuthCodeURL("massmailctl"))
			fmt.Print("code: ")
			code, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("read code: %w", err)
			}
			if err := a.Gmail.Exchange(cmd.Context(), strings.TrimSpace(code)); err != nil {
				return err
			}
			fmt.Println("token stored at", a.Config.Mail.Gmail.TokenFile)
			return nil
		},
	})
	return cmd
}
