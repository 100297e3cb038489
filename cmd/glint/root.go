package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"glint/internal/config"
	"glint/internal/detect"
	"glint/internal/logging"
	"glint/internal/models"
)

// commandContext carries the flag values and lazily resolved config every
// subcommand shares.
type commandContext struct {
	configFlag       string
	modelFlag        string
	modelDirFlag     string
	minScoreFlag     float64
	chunkSizeFlag    int
	chunkOverlapFlag int
	noColorFlag      bool
	jsonFlag         bool
	verboseFlag      bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "glint",
		Short:         "Highlight named entities in text with a pretrained NER model",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx.logger = logging.New(os.Stderr, ctx.verboseFlag)
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&ctx.configFlag, "config", "c", "", "configuration file path")
	pf.StringVarP(&ctx.modelFlag, "model", "m", "", "model bundle name")
	pf.StringVar(&ctx.modelDirFlag, "model-dir", "", "path to a model bundle directory")
	pf.Float64Var(&ctx.minScoreFlag, "min-score", -1, "minimum confidence for reported entities")
	pf.IntVar(&ctx.chunkSizeFlag, "chunk-size", 0, "chunk window size in words")
	pf.IntVar(&ctx.chunkOverlapFlag, "chunk-overlap", -1, "overlap between chunk windows in words")
	pf.BoolVar(&ctx.noColorFlag, "no-color", false, "disable highlight colors")
	pf.BoolVar(&ctx.jsonFlag, "json", false, "emit JSON instead of tables")
	pf.BoolVarP(&ctx.verboseFlag, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newDemoCommand(ctx))
	rootCmd.AddCommand(newExtractCommand(ctx))
	rootCmd.AddCommand(newModelCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	path := c.configFlag
	if path == "" {
		var err error
		path, err = config.Path()
		if err != nil {
			return config.Config{}, fmt.Errorf("resolve config path: %w", err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	c.applyFlags(&cfg)
	c.cfg = &cfg
	return cfg, nil
}

func (c *commandContext) applyFlags(cfg *config.Config) {
	if c.modelFlag != "" {
		cfg.Model = c.modelFlag
		cfg.ModelDir = ""
	}
	if c.modelDirFlag != "" {
		cfg.ModelDir = c.modelDirFlag
	}
	if c.minScoreFlag >= 0 {
		cfg.MinScore = c.minScoreFlag
	}
	if c.chunkSizeFlag > 0 {
		cfg.ChunkSize = c.chunkSizeFlag
	}
	if c.chunkOverlapFlag >= 0 {
		cfg.ChunkOverlap = c.chunkOverlapFlag
	}
	if c.noColorFlag {
		cfg.Color = "never"
	}
}

// bundleDir resolves the model bundle directory from config: an explicit
// directory wins, otherwise the named bundle under the models root.
func (c *commandContext) bundleDir() (dir, modelName string, err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", "", err
	}
	if cfg.ModelDir != "" {
		return cfg.ModelDir, filepath.Base(cfg.ModelDir), nil
	}
	root := cfg.ModelsRoot
	if root == "" {
		root, err = models.DefaultRoot()
		if err != nil {
			return "", "", fmt.Errorf("resolve models root: %w", err)
		}
	}
	return models.InstallPath(root, cfg.Model), cfg.Model, nil
}

func (c *commandContext) detector() (*detect.ONNXDetector, string, error) {
	dir, name, err := c.bundleDir()
	if err != nil {
		return nil, "", err
	}
	cfg, _ := c.ensureConfig()
	return detect.NewONNXDetector(detect.Config{
		BundleDir: dir,
		MinScore:  cfg.MinScore,
	}), name, nil
}
