package main

import (
	"fmt"
	"os"

	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Build information (set by goreleaser)
var (
	version = "dev"
	commit  = "unknown"
)

var logFlags = logger.Flags{
	Level:       "info",
	LogToStderr: true,
}

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "writemate",
		Short: "生成田字格、米字格、九宫格练字帖 PDF",
		Long: `writemate 依据 .writemate 描述文件或已保存的设置生成 A4 练字帖。
每张字帖同时可以输出 SVG 或 PNG 预览。`,
		Example: `  writemate render lanting.writemate --out output/ --preview-svg
  writemate settings set --template article-vertical --grid mi
  writemate render --db ~/.cache/writemate.db
  writemate preset save`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Configure(logFlags)
		},
	}
	bindLogFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newTemplatesCommand())
	rootCmd.AddCommand(newFontsCommand())
	rootCmd.AddCommand(newPresetCommand())
	rootCmd.AddCommand(newSettingsCommand())
	return rootCmd
}

func bindLogFlags(flags *pflag.FlagSet) {
	flags.CountVarP(&logFlags.LevelCount, "loglevel", "v", "Increase logging level")
	flags.StringVar(&logFlags.Level, "log-level", "info", "Set the default log level")
	flags.BoolVar(&logFlags.JsonLogs, "json-logs", false, "Print logs in json format to stderr")
	flags.BoolVar(&logFlags.ReportCaller, "report-caller", false, "Report log caller info")
	flags.BoolVar(&logFlags.LogToStderr, "log-to-stderr", true, "Log to stderr instead of stdout")
}
