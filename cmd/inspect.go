package cmd

import (
	"github.com/sloonz/worldback/archives"
	"github.com/sloonz/worldback/lib"

	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cmdInspectInstance  string
	cmdInspectBackup    string
	cmdInspectLevelName string
	cmdInspectKeyFile   string
	cmdInspectVerbosity int
	cmdInspect          = &cobra.Command{
		Use:   "inspect",
		Short: "List the entries of a backup and where they would be restored",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			setLogLevel(cmdInspectVerbosity)

			identities, err := worldback.LoadIdentities(cmdInspectKeyFile, "")
			if err != nil {
				logrus.Fatal(err)
			}

			worldPath := ""
			if cmdInspectInstance != "" {
				job := &worldback.RestoreJob{Instance: cmdInspectInstance, LevelName: cmdInspectLevelName}
				worldPath, _, err = job.Locate()
				exitOnError(err)
			}

			archive, err := archives.Open(cmdInspectBackup, identities)
			exitOnError(err)

			prefix, err := worldback.ResolvePrefix(archive)
			if err != nil {
				archive.Close()
				exitOnError(err)
			}

			for i := 0; i < archive.Len(); i++ {
				name := archive.Entry(i).Name()
				if strings.HasPrefix(name, prefix) {
					fmt.Printf("  %s\n", name)
				} else {
					fmt.Printf("- %s (skipped)\n", name)
				}
			}
			archive.Close()

			fmt.Printf("Prefix: %q\n", prefix)
			if worldPath != "" {
				fmt.Printf("World: %s\n", worldPath)
			}
		},
	}
)

func init() {
	cmdInspect.Flags().StringVarP(&cmdInspectBackup, "backup", "b", "", "the backup to inspect")
	cmdInspect.Flags().StringVarP(&cmdInspectInstance, "instance", "i", "", "also show the world directory of this instance")
	cmdInspect.Flags().StringVarP(&cmdInspectLevelName, "level-name", "n", "", "world directory name, overrides server.properties")
	cmdInspect.Flags().StringVarP(&cmdInspectKeyFile, "key-file", "k", "", "age identity file, for encrypted backups")
	cmdInspect.Flags().CountVarP(&cmdInspectVerbosity, "verbose", "v", "verbose logging, can be repeated")
	cmdInspect.MarkFlagRequired("backup")
}
