package admin

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type cli struct {
	open    Opener
	backend Backend

	configFile string
	dsn        string
	keySecret  string
	logLevel   string
}

// NewRootCmd builds the vaultadmin command tree. Every subcommand opens
// the backend in PersistentPreRunE and closes it afterwards.
func NewRootCmd(open Opener) *cobra.Command {
	c := &cli{open: open}

	root := &cobra.Command{
		Use:   "vaultadmin",
		Short: "Maintenance commands for the document vault",
		Long: `vaultadmin runs operator jobs directly against the vault database.

Examples:
  vaultadmin migrate
  vaultadmin quota recompute --user 4f1c...
  vaultadmin shares expire
  vaultadmin folders tree --user 4f1c...`,
		SilenceUsage:       true,
		PersistentPreRunE:  c.connect,
		PersistentPostRunE: c.disconnect,
	}

	root.PersistentFlags().StringVarP(&c.configFile, "config", "c", "", "path to JSON config file")
	root.PersistentFlags().StringVarP(&c.dsn, "dsn", "d", "", "database DSN (overrides config)")
	root.PersistentFlags().StringVarP(&c.keySecret, "key-secret", "k", "", "key encryption secret (overrides config)")
	root.PersistentFlags().StringVarP(&c.logLevel, "log-level", "l", "", "log level (overrides config)")

	root.AddCommand(c.migrateCmd(), c.quotaCmd(), c.sharesCmd(), c.foldersCmd())
	return root
}

func (c *cli) config() (*config.Config, error) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	if c.configFile != "" {
		if err := config.ApplyJSONFile(cfg, c.configFile); err != nil {
			return nil, err
		}
	}
	if c.dsn != "" {
		cfg.DatabaseDSN = c.dsn
	}
	if c.keySecret != "" {
		cfg.KeyEncryptionSecret = c.keySecret
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	return cfg, nil
}

func (c *cli) connect(cmd *cobra.Command, _ []string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	b, err := c.open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	c.backend = b
	return nil
}

func (c *cli) disconnect(*cobra.Command, []string) error {
	if c.backend == nil {
		return nil
	}
	err := c.backend.Close()
	c.backend = nil
	return err
}

func ok(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓")+" "+fmt.Sprintf(format, args...))
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.backend.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			ok(cmd, "schema is up to date")
			return nil
		},
	}
}

func (c *cli) quotaCmd() *cobra.Command {
	var userID string

	recompute := &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild a user's cached storage usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := c.backend.RecomputeQuota(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("recompute quota: %w", err)
			}
			ok(cmd, "%s: %s documents, %s folders, %s bytes", userID,
				color.CyanString("%d", q.DocumentCount),
				color.CyanString("%d", q.FolderCount),
				color.CyanString("%d", q.UsedBytes))
			return nil
		},
	}
	recompute.Flags().StringVarP(&userID, "user", "u", "", "user id")
	_ = recompute.MarkFlagRequired("user")

	quota := &cobra.Command{Use: "quota", Short: "Storage usage maintenance"}
	quota.AddCommand(recompute)
	return quota
}

func (c *cli) sharesCmd() *cobra.Command {
	expire := &cobra.Command{
		Use:   "expire",
		Short: "Deactivate share grants whose expiry has passed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := c.backend.ExpireShares(cmd.Context())
			if err != nil {
				return fmt.Errorf("expire shares: %w", err)
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("!")+" no expired grants")
				return nil
			}
			ok(cmd, "deactivated %s expired grants", color.CyanString("%d", n))
			return nil
		},
	}

	shares := &cobra.Command{Use: "shares", Short: "Share grant maintenance"}
	shares.AddCommand(expire)
	return shares
}

func (c *cli) foldersCmd() *cobra.Command {
	var userID string

	tree := &cobra.Command{
		Use:   "tree",
		Short: "Print a user's folder hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roots, err := c.backend.FolderTree(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("folder tree: %w", err)
			}
			if len(roots) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("!")+" no folders")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), strings.TrimRight(RenderFolderTree(userID, roots), "\n")+"\n")
			return nil
		},
	}
	tree.Flags().StringVarP(&userID, "user", "u", "", "user id")
	_ = tree.MarkFlagRequired("user")

	folders := &cobra.Command{Use: "folders", Short: "Folder inspection"}
	folders.AddCommand(tree)
	return folders
}
