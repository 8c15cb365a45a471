package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/nhscreen/internal/app"
	"github.com/doeshing/nhscreen/internal/infrastructure/cli/commands"
)

// annotationNoContainer marks commands that run without loading config.
const annotationNoContainer = "nhscreen/no-container"

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
	// Build constructs the container; defaults to app.BuildContainer.
	Build func(context.Context, app.Options) (*app.Container, error)
}

// NewRootCmd wires the cobra root command. The container is built once flags
// are parsed so --config and --debug take effect.
func NewRootCmd(opts Options) *cobra.Command {
	build := opts.Build
	if build == nil {
		build = app.BuildContainer
	}

	container := &app.Container{}
	var (
		configPath string
		debug      bool
	)

	root := &cobra.Command{
		Use:   "nhscreen",
		Short: "nhscreen - NHANES manuscript screener",
		Long: "nhscreen decides whether a manuscript uses NHANES data and, if so,\n" +
			"checks it for citation, methodology, data recency, title and author red flags.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoContainer] == "true" {
				return nil
			}
			built, err := build(cmd.Context(), app.Options{
				Verbose:    opts.Verbose || debug,
				ConfigPath: configPath,
			})
			if err != nil {
				return err
			}
			*container = *built
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.nhscreen/config.yaml, or $NHSCREEN_CONFIG)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging on stderr")

	version := commands.NewVersionCommand()
	version.Annotations = map[string]string{annotationNoContainer: "true"}

	root.AddCommand(
		commands.NewCheckCommand(container),
		commands.NewTopicsCommand(container),
		commands.NewChecksCommand(container),
		commands.NewServeCommand(container),
		commands.NewConfigCommand(container),
		commands.NewDoctorCommand(container),
		version,
	)
	return root
}

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	return commands.ExitCode(err)
}
