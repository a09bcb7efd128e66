package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tuto-go/internal/app"
	"tuto-go/internal/config"
	"tuto-go/internal/encryption"
	"tuto-go/internal/tuto"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "loading .env: %v\n", err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to the defaults when none exists.
func loadConfig() (*config.Config, map[string]string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.Load(defaults["config_path"], defaults["base_dir"])
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults, nil
}

// newApp reads the config and creates a TutoApp. The caller must defer app.Close().
// operation names the CLI command being run (e.g. "unzip", "fill").
func newApp(cmd *cobra.Command, operation string) (*app.TutoApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	a, err := app.NewTutoApp(cfg, operation, app.Options{Debug: debug, Console: os.Stdout})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// readPassphrase asks for the bundle passphrase twice without echo.
func readPassphrase() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; configure encryption.recipients instead")
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	fmt.Fprint(os.Stderr, "Confirm passphrase: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passphrases do not match")
	}
	return string(first), nil
}

var rootCmd = &cobra.Command{
	Use:   "tuto",
	Short: "Grading helper for tutors",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.Default(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, defaults, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("# Configuration from %s\n\n", defaults["config_path"])
		m := &config.Manager{}
		return m.Write(os.Stdout, cfg)
	},
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an age key pair for sealing feedback bundles",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			out = filepath.Join(cfg.BaseDir, "keys", "tuto.key")
		}

		recipient, err := encryption.GenerateIdentity(out)
		if err != nil {
			return err
		}

		fmt.Printf("Identity written to %s\n", out)
		fmt.Printf("Add this recipient to encryption.recipients:\n%s\n", recipient)
		return nil
	},
}

var unzipCmd = &cobra.Command{
	Use:   "unzip PATH",
	Short: "Extract a submission archive and every archive nested in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		single, _ := cmd.Flags().GetBool("single")
		flatten, _ := cmd.Flags().GetBool("flatten")
		target, _ := cmd.Flags().GetString("target")

		a, err := newApp(cmd, "unzip")
		if err != nil {
			return err
		}
		defer a.Close()

		dir, err := a.Unzip(args[0], tuto.UnzipOptions{Single: single, Flatten: flatten, Target: target})
		if err != nil {
			return fmt.Errorf("unzip failed: %w", err)
		}

		fmt.Printf("Extracted to %s\n", dir)
		return nil
	},
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Tally the points of every submission folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		targetDir, _ := cmd.Flags().GetString("target-dir")
		var maxPoints *float64
		if cmd.Flags().Changed("max-points") {
			m, _ := cmd.Flags().GetFloat64("max-points")
			maxPoints = &m
		}

		a, err := newApp(cmd, "count")
		if err != nil {
			return err
		}
		defer a.Close()

		tallies, resultPath, err := a.Count(tuto.CountOptions{Root: path, TargetDir: targetDir, MaxPoints: maxPoints})
		if err != nil {
			return fmt.Errorf("count failed: %w", err)
		}

		fmt.Printf("Counted %d submission(s) into %s\n", len(tallies), resultPath)
		return nil
	},
}

var fillCmd = &cobra.Command{
	Use:   "fill TABLE",
	Short: "Fill ratings and feedback into the grading table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir-path")
		result, _ := cmd.Flags().GetString("result-path")

		a, err := newApp(cmd, "fill")
		if err != nil {
			return err
		}
		defer a.Close()

		resultPath, n, err := a.Fill(tuto.FillOptions{TablePath: args[0], Root: dir, ResultPath: result})
		if err != nil {
			return fmt.Errorf("fill failed: %w", err)
		}

		fmt.Printf("Wrote %d record(s) to %s\n", n, resultPath)
		return nil
	},
}

var zipCmd = &cobra.Command{
	Use:   "zip [PATHS...]",
	Short: "Package feedback per student and bundle it for distribution",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		outDir, _ := cmd.Flags().GetString("out-dir")
		encrypt, _ := cmd.Flags().GetBool("encrypt")
		publish, _ := cmd.Flags().GetBool("publish")

		a, err := newApp(cmd, "zip")
		if err != nil {
			return err
		}
		defer a.Close()

		bundles, err := a.Zip(app.ZipRequest{
			Paths:      args,
			Name:       name,
			OutDir:     outDir,
			Encrypt:    encrypt,
			Publish:    publish,
			Passphrase: readPassphrase,
		})
		if err != nil {
			return fmt.Errorf("zip failed: %w", err)
		}

		for _, b := range bundles {
			fmt.Printf("Bundle: %s\n", b)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show grading statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "stats")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Stats()
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "history")
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, r := range runs {
			duration := ""
			if r.FinishedAt.Valid {
				d := r.FinishedAt.Time.Sub(r.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-6s  %s  %-8s  %-10s  %s\n",
				r.ID,
				r.Operation,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Status,
				duration,
				r.Parameters,
			)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Print every removal, move and extraction to stdout")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringP("output", "o", "", "Identity file (default <base_dir>/keys/tuto.key)")

	rootCmd.AddCommand(unzipCmd)
	unzipCmd.Flags().BoolP("single", "s", false, "Only extract the given archive")
	unzipCmd.Flags().BoolP("flatten", "f", false, "Flatten folders of extracted nested archives")
	unzipCmd.Flags().StringP("target", "t", "", "Extraction directory (default: archive name next to it)")

	rootCmd.AddCommand(countCmd)
	countCmd.Flags().StringP("path", "p", ".", "Directory holding the submission folders")
	countCmd.Flags().StringP("target-dir", "t", ".", "Directory result.csv is written to")
	countCmd.Flags().Float64P("max-points", "m", 0, "Maximum points (default grading.max_points)")

	rootCmd.AddCommand(fillCmd)
	fillCmd.Flags().StringP("dir-path", "d", ".", "Directory holding the submission folders")
	fillCmd.Flags().StringP("result-path", "r", "", "Output table (default <table>_filled<ext>)")

	rootCmd.AddCommand(zipCmd)
	zipCmd.Flags().StringP("name", "n", "", "Feedback archive name (default grading.feedback_name)")
	zipCmd.Flags().StringP("out-dir", "o", "", "Directory of feedbacks.zip (default: parent of the path)")
	zipCmd.Flags().Bool("encrypt", false, "Seal the bundle with age")
	zipCmd.Flags().Bool("publish", false, "Hand the bundle to the configured publisher")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
}
