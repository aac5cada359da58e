package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/iw/internal/config"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(a *App) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			return execPrintConfig(o, a)
		},
	}
}

func execPrintConfig(o *IO, a *App) error {
	formatted, err := config.FormatConfig(a.Cfg)
	if err != nil {
		return err
	}

	o.Println(formatted)
	o.Println()
	o.Println("effective_cwd=" + a.Cfg.EffectiveCwd)
	o.Println("vault_dir=" + a.Cfg.VaultDirAbs)
	o.Println("queue_dir=" + a.Cfg.QueueDirAbs)

	if q, err := a.queue(); err == nil {
		o.Println("current_queue=" + q.Path)
	}

	o.Println()
	o.Println("# sources")

	if a.Cfg.Sources.Global == "" && a.Cfg.Sources.Project == "" {
		o.Println("(defaults only)")

		return nil
	}

	if a.Cfg.Sources.Global != "" {
		o.Println("global_config=" + a.Cfg.Sources.Global)
	}

	if a.Cfg.Sources.Project != "" {
		o.Println("project_config=" + a.Cfg.Sources.Project)
	}

	return nil
}
