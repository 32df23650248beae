package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"descant/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			written, err := config.WriteSample(target)
			if err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", written)
			fmt.Fprintln(out, "Set description.api_key (or export OPENROUTER_API_KEY) before processing videos.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			if exists {
				fmt.Fprintf(out, "Configuration at %s is valid\n", path)
			} else {
				fmt.Fprintln(out, "No configuration file found; defaults are valid")
			}
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rows := [][]string{
				{"paths.work_dir", cfg.Paths.WorkDir},
				{"paths.output_dir", cfg.Paths.OutputDir},
				{"paths.log_dir", cfg.Paths.LogDir},
				{"detection.whisperx_model", cfg.Detection.WhisperXModel},
				{"detection.vad_method", cfg.Detection.VADMethod},
				{"detection.min_window_seconds", fmt.Sprintf("%.1f", cfg.Detection.MinWindowSecs)},
				{"detection.merge_gap_seconds", fmt.Sprintf("%.1f", cfg.Detection.MergeGapSecs)},
				{"description.model", cfg.Description.Model},
				{"description.api_key", maskSecret(cfg.Description.APIKey)},
				{"narration.command", cfg.Narration.Command},
				{"narration.voice", cfg.Narration.Voice},
				{"mixing.background_attenuation_db", fmt.Sprintf("%.1f", cfg.Mixing.BackgroundAttenuationDB)},
				{"mixing.narration_gain_db", fmt.Sprintf("%.1f", cfg.Mixing.NarrationGainDB)},
				{"mixing.workers", fmt.Sprintf("%d", cfg.Mixing.Workers)},
				{"export.format", cfg.Export.Format},
				{"export.bitrate", cfg.Export.Bitrate},
				{"logging.format", cfg.Logging.Format},
				{"logging.level", cfg.Logging.Level},
			}
			table := renderTable([]string{"Setting", "Value"}, rows, []columnAlignment{alignLeft, alignLeft})
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}

func maskSecret(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(unset)"
	}
	if len(value) <= 6 {
		return "******"
	}
	return value[:3] + "..." + value[len(value)-3:]
}
