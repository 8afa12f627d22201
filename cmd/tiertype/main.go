// Package main provides the CLI entrypoint for tiertype.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tiertype/internal/auth"
	"github.com/verte-zerg/tiertype/internal/config"
	"github.com/verte-zerg/tiertype/internal/model"
	"github.com/verte-zerg/tiertype/internal/scoresui"
	"github.com/verte-zerg/tiertype/internal/stats"
	"github.com/verte-zerg/tiertype/internal/store"
	"github.com/verte-zerg/tiertype/internal/texts"
	"github.com/verte-zerg/tiertype/internal/tui"
)

const defaultDifficulty = "easy"

var (
	practiceDifficulty string
	practiceTextsDir   string
	practiceBell       bool

	scoresPlain bool

	textsDifficulty string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tiertype",
		Short:         "Tiered typing-speed trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceDifficulty, "difficulty", defaultDifficulty, "difficulty tier (easy, medium, hard); defaults to your unlocked tier")
	rootCmd.Flags().StringVar(&practiceTextsDir, "texts-dir", "", "directory with easy.txt/medium.txt/hard.txt overrides")
	rootCmd.Flags().BoolVar(&practiceBell, "bell", false, "ring the terminal bell on mistakes")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSignupCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newScoresCmd())
	rootCmd.AddCommand(newTextsCmd())

	return rootCmd
}

// app bundles the resources most commands need.
type app struct {
	cfg   config.FileConfig
	store *store.Store
	auth  *auth.Service
}

func openApp() (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	ttl, err := fileCfg.Auth.TokenTTLOr(auth.DefaultTokenTTL)
	if err != nil {
		return nil, err
	}
	cost := auth.DefaultBcryptCost
	if fileCfg.Auth.BcryptCost != nil {
		cost = *fileCfg.Auth.BcryptCost
	}

	var secret []byte
	if fileCfg.Auth.Secret != nil && *fileCfg.Auth.Secret != "" {
		secret = []byte(*fileCfg.Auth.Secret)
	} else {
		secret, err = auth.LoadOrCreateSecret(config.DefaultSecretPath())
		if err != nil {
			return nil, err
		}
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	svc := auth.NewService(st, auth.Options{
		Secret:     secret,
		BcryptCost: cost,
		TokenTTL:   ttl,
		TokenPath:  config.DefaultTokenPath(),
	})
	return &app{cfg: fileCfg, store: st, auth: svc}, nil
}

func (a *app) close() {
	if cerr := a.store.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

// currentUser returns the logged-in user, or nil for a guest.
func (a *app) currentUser(ctx context.Context) (*model.User, error) {
	user, err := a.auth.Current(ctx)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, auth.ErrNotLoggedIn):
		return nil, nil
	case errors.Is(err, auth.ErrUnauthorized):
		logErrln("Your login has expired; playing as guest. Run: tiertype login")
		return nil, nil
	default:
		return nil, err
	}
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	applyStringConfig(cmd, "difficulty", &practiceDifficulty, a.cfg.Practice.Difficulty)
	applyStringConfig(cmd, "texts-dir", &practiceTextsDir, a.cfg.Practice.TextsDir)
	applyBoolConfig(cmd, "bell", &practiceBell, a.cfg.Practice.Bell)

	difficulty, err := model.ParseDifficulty(practiceDifficulty)
	if err != nil {
		return fmt.Errorf("invalid --difficulty: %w", err)
	}
	cfg := model.Config{
		Difficulty:    difficulty,
		DifficultySet: cmd.Flags().Changed("difficulty") || a.cfg.Practice.Difficulty != nil,
		TextsDir:      practiceTextsDir,
		Bell:          practiceBell,
	}

	catalog, err := loadCatalog(cfg.TextsDir)
	if err != nil {
		return err
	}
	user, err := a.currentUser(cmd.Context())
	if err != nil {
		return err
	}

	m := tui.NewModel(cfg, a.store, user, texts.NewPicker(catalog))
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadCatalog overlays texts from dir, or the default texts dir when dir is
// empty, on the built-in texts.
func loadCatalog(dir string) (texts.Catalog, error) {
	explicit := dir != ""
	if !explicit {
		dir = config.DefaultTextsDir()
	}
	if explicit {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("texts dir: %w", err)
		}
	}
	catalog, err := texts.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load texts from %s: %w", dir, err)
	}
	return catalog, nil
}

func newScoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Show personal bests, history and achievements",
		Args:  cobra.NoArgs,
		RunE:  runScoresCmd,
	}
	cmd.Flags().BoolVar(&scoresPlain, "plain", false, "print a plain text report instead of the TUI")
	return cmd
}

func runScoresCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	user, err := a.auth.Current(cmd.Context())
	if err != nil {
		return loginRequired(err)
	}

	if scoresPlain {
		report, err := stats.BuildReport(cmd.Context(), a.store, user.ID)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return stats.RenderReport(cmd.OutOrStdout(), report)
	}

	m := scoresui.NewModel(a.store, user)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run scores TUI: %w", err)
	}
	return nil
}

func newTextsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "texts",
		Short: "List the texts used for each tier",
		Args:  cobra.NoArgs,
		RunE:  runTextsCmd,
	}
	cmd.Flags().StringVar(&textsDifficulty, "difficulty", "", "only list one tier")
	cmd.Flags().StringVar(&practiceTextsDir, "texts-dir", "", "directory with easy.txt/medium.txt/hard.txt overrides")
	return cmd
}

func runTextsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "texts-dir", &practiceTextsDir, fileCfg.Practice.TextsDir)
	catalog, err := loadCatalog(practiceTextsDir)
	if err != nil {
		return err
	}

	tiers := model.Difficulties
	if textsDifficulty != "" {
		d, err := model.ParseDifficulty(textsDifficulty)
		if err != nil {
			return fmt.Errorf("invalid --difficulty: %w", err)
		}
		tiers = []model.Difficulty{d}
	}
	out := cmd.OutOrStdout()
	for _, d := range tiers {
		if _, err := fmt.Fprintf(out, "[%s]\n", d); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		for _, text := range catalog[d] {
			if _, err := fmt.Fprintln(out, text); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tiertype configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# difficulty = %q       # Starting tier; unset follows your unlocked tier
# texts-dir = "%s"      # Directory with easy.txt, medium.txt, hard.txt
# bell = false            # Ring the terminal bell on mistakes

[auth]
# bcrypt-cost = %d        # Password hashing cost
# token-ttl = "%s"        # How long a login lasts
# secret = ""             # Token signing secret; unset uses a generated key
`,
		defaultDifficulty,
		config.DefaultTextsDir(),
		auth.DefaultBcryptCost,
		auth.DefaultTokenTTL,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
