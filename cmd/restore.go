package cmd

import (
	"github.com/sloonz/worldback/lib"

	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cmdRestoreInstance  string
	cmdRestoreBackup    string
	cmdRestoreLevelName string
	cmdRestoreKeyFile   string
	cmdRestoreOptions   string
	cmdRestoreDryRun    bool
	cmdRestoreVerbosity int
	cmdRestore          = &cobra.Command{
		Use:   "restore",
		Short: "Restore a world backup onto a server instance",
		Long: `Restore a world backup onto a server instance.

The world directory is given by the level-name of the instance
server.properties ("world" by default). If it already exists, it is renamed to
<world>-<YYYY-MM-DD-HH-MM-SS> before the backup is extracted.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			setLogLevel(cmdRestoreVerbosity)

			opts := newOptionsBuilder(worldback.EvalOptions(worldback.SplitOptions(cmdRestoreOptions), presets)).
				WithOverrides(map[string]string{
					worldback.OptInstance:  cmdRestoreInstance,
					worldback.OptBackup:    cmdRestoreBackup,
					worldback.OptLevelName: cmdRestoreLevelName,
					worldback.OptKeyFile:   cmdRestoreKeyFile,
				}).
				WithStringOption(worldback.OptInstance).
				WithStringOption(worldback.OptBackup).
				WithIdentities().
				WithJob().
				FatalOnError()

			opts.Options.OverrideBoolean(worldback.OptDryRun, cmdRestoreDryRun)
			dryRun, err := opts.Options.GetBoolean(worldback.OptDryRun, false)
			if err != nil {
				logrus.Fatal(err)
			}

			if dryRun {
				plan, err := opts.Job.Plan()
				exitOnError(err)
				printPlan(plan)
				return
			}

			exitOnError(opts.Job.Run())
		},
	}
)

func printPlan(plan *worldback.Plan) {
	fmt.Printf("World: %s\n", plan.WorldPath)
	fmt.Printf("Prefix: %q\n", plan.Prefix)
	if _, err := os.Stat(plan.WorldPath); err == nil {
		fmt.Printf("Existing world will be moved aside\n")
	}
}

// Report err and exit with the code of its kind
func exitOnError(err error) {
	if err == nil {
		return
	}
	logrus.Error(err)
	os.Exit(worldback.ExitCode(err))
}

func init() {
	cmdRestore.Flags().StringVarP(&cmdRestoreInstance, "instance", "i", "", "the instance folder to apply the backup to")
	cmdRestore.Flags().StringVarP(&cmdRestoreBackup, "backup", "b", "", "the backup to apply")
	cmdRestore.Flags().StringVarP(&cmdRestoreLevelName, "level-name", "n", "", "world directory name, overrides server.properties")
	cmdRestore.Flags().StringVarP(&cmdRestoreKeyFile, "key-file", "k", "", "age identity file, for encrypted backups")
	cmdRestore.Flags().StringVarP(&cmdRestoreOptions, "options", "o", "", "additional options (key=value,...)")
	cmdRestore.Flags().BoolVarP(&cmdRestoreDryRun, "dry-run", "", false, "only print what would be restored")
	cmdRestore.Flags().CountVarP(&cmdRestoreVerbosity, "verbose", "v", "verbose logging, can be repeated")
}
