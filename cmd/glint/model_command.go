package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"glint/internal/models"
)

func newModelCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage pretrained model bundles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newModelListCommand(ctx))
	cmd.AddCommand(newModelInfoCommand(ctx))
	cmd.AddCommand(newModelDownloadCommand(ctx))
	cmd.AddCommand(newModelRemoveCommand(ctx))
	cmd.AddCommand(newModelVerifyCommand(ctx))
	return cmd
}

func (c *commandContext) modelsRoot() (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if cfg.ModelsRoot != "" {
		return cfg.ModelsRoot, nil
	}
	return models.DefaultRoot()
}

func newModelListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known model bundles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := models.LoadCatalog()
			if err != nil {
				return err
			}
			root, err := ctx.modelsRoot()
			if err != nil {
				return err
			}
			tw := table.NewWriter()
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Name", "Lang", "Size", "Status", "Entity types"})
			installed := 0
			for _, b := range cat.Bundles {
				status := "not installed"
				if models.IsInstalled(root, b) {
					status = "installed"
					installed++
				}
				tw.AppendRow(table.Row{b.Name, b.Language, humanBytes(b.SizeBytes), status, strings.Join(b.EntityTypes, ", ")})
			}
			fmt.Fprintln(os.Stdout, tw.Render())
			fmt.Fprintf(os.Stdout, "Installed: %d/%d bundles\n", installed, len(cat.Bundles))
			return nil
		},
	}
}

func newModelInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info <name>",
		Short: "Show details for one model bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := models.LoadCatalog()
			if err != nil {
				return err
			}
			b, ok := cat.Find(args[0])
			if !ok {
				return fmt.Errorf("bundle %q not found", args[0])
			}
			root, err := ctx.modelsRoot()
			if err != nil {
				return err
			}
			status := "not installed"
			if models.IsInstalled(root, b) {
				status = "installed"
			}
			out := os.Stdout
			fmt.Fprintf(out, "%s (%s)\n", b.Name, b.DisplayName)
			fmt.Fprintln(out, strings.Repeat("-", 40))
			fmt.Fprintf(out, "Status:        %s\n", status)
			fmt.Fprintf(out, "Version:       %s\n", b.Version)
			fmt.Fprintf(out, "Language:      %s\n", b.Language)
			fmt.Fprintf(out, "Size:          %s\n", humanBytes(b.SizeBytes))
			fmt.Fprintf(out, "Location:      %s\n", models.InstallPath(root, b.Name))
			fmt.Fprintf(out, "Entity types:  %s\n", strings.Join(b.EntityTypes, ", "))
			fmt.Fprintf(out, "Architecture:  %s\n", b.Architecture)
			fmt.Fprintf(out, "F1 score:      %.2f\n", b.F1Score)
			fmt.Fprintf(out, "License:       %s\n", b.License)
			fmt.Fprintf(out, "URL:           %s\n", b.URL)
			return nil
		},
	}
}

func newModelDownloadCommand(ctx *commandContext) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "download [name]",
		Short: "Download and install model bundles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := models.LoadCatalog()
			if err != nil {
				return err
			}
			root, err := ctx.modelsRoot()
			if err != nil {
				return err
			}
			var selected []models.Bundle
			switch {
			case all:
				for _, b := range cat.Bundles {
					if b.Recommended {
						selected = append(selected, b)
					}
				}
			case len(args) == 1:
				b, ok := cat.Find(args[0])
				if !ok {
					return fmt.Errorf("bundle %q not found", args[0])
				}
				selected = append(selected, b)
			default:
				return fmt.Errorf("name a bundle or pass --all")
			}
			dl := models.NewDownloader()
			for _, b := range selected {
				if err := downloadBundle(dl, b, root); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "download all recommended bundles")
	return cmd
}

func downloadBundle(dl *models.Downloader, b models.Bundle, root string) error {
	out := os.Stdout
	fmt.Fprintf(out, "Downloading %s v%s from %s\n", b.Name, b.Version, b.URL)
	lastUpdate := time.Time{}
	err := dl.Install(context.Background(), b, root, func(p models.Progress) {
		if time.Since(lastUpdate) < 120*time.Millisecond && p.Total > 0 {
			return
		}
		lastUpdate = time.Now()
		pct := 0.0
		if p.Total > 0 {
			pct = float64(p.Downloaded) * 100 / float64(p.Total)
		}
		fmt.Fprintf(out, "\r%6.2f%% | %s / %s | %.2f MB/s | ETA %s",
			pct, humanBytes(p.Downloaded), humanBytes(p.Total), p.SpeedMBps, p.ETA.Truncate(time.Second))
	})
	fmt.Fprintln(out)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Bundle %s installed to %s\n", b.Name, models.InstallPath(root, b.Name))
	return nil
}

func newModelRemoveCommand(ctx *commandContext) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove an installed model bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := models.LoadCatalog()
			if err != nil {
				return err
			}
			b, ok := cat.Find(args[0])
			if !ok {
				return fmt.Errorf("bundle %q not found", args[0])
			}
			root, err := ctx.modelsRoot()
			if err != nil {
				return err
			}
			loc := models.InstallPath(root, b.Name)
			if _, err := os.Stat(loc); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					fmt.Fprintf(os.Stdout, "Bundle %s is not installed\n", b.Name)
					return nil
				}
				return err
			}
			if !yes && !confirm(fmt.Sprintf("Remove bundle %s (%s)? This deletes %s", b.Name, humanBytes(b.SizeBytes), loc)) {
				fmt.Fprintln(os.Stdout, "Cancelled")
				return nil
			}
			if err := os.RemoveAll(loc); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Bundle %s removed\n", b.Name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func confirm(prompt string) bool {
	fmt.Fprintf(os.Stdout, "%s\nContinue? (y/N): ", prompt)
	r := bufio.NewReader(os.Stdin)
	resp, _ := r.ReadString('\n')
	resp = strings.TrimSpace(strings.ToLower(resp))
	return resp == "y" || resp == "yes"
}

func newModelVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify installed bundles against the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := models.LoadCatalog()
			if err != nil {
				return err
			}
			root, err := ctx.modelsRoot()
			if err != nil {
				return err
			}
			out := os.Stdout
			installed, failures := 0, 0
			for _, b := range cat.Bundles {
				if !models.IsInstalled(root, b) {
					continue
				}
				installed++
				fmt.Fprintf(out, "%s\n", b.Name)
				data, err := os.ReadFile(filepath.Join(models.InstallPath(root, b.Name), ".checksum"))
				switch {
				case err != nil:
					fmt.Fprintln(out, "  checksum: unknown (no install metadata)")
				case strings.TrimSpace(string(data)) == b.Checksum:
					fmt.Fprintln(out, "  checksum: ok")
				default:
					fmt.Fprintln(out, "  checksum: MISMATCH with catalog")
					failures++
				}
			}
			if installed == 0 {
				fmt.Fprintln(out, "No installed bundles found")
				return nil
			}
			if failures > 0 {
				return fmt.Errorf("%d bundle(s) failed verification", failures)
			}
			fmt.Fprintln(out, "All bundles verified")
			return nil
		},
	}
}

func humanBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	const mb = 1024 * 1024
	if n >= mb {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%d KB", n/1024)
}
