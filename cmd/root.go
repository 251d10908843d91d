package cmd

import (
	"github.com/sloonz/worldback/lib"

	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	presetsDir string
	logLevel   string
	presets    map[string][]worldback.KeyValuePair

	tag       = "git"
	commit    = "unknown"
	buildDate = "unknown"

	rootCmd = &cobra.Command{
		Use:   "worldback",
		Short: "Restore game server worlds from backup archives",
	}
	cmdVersion = &cobra.Command{
		Use: "version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Version: %s\n", tag)
			fmt.Printf("Commit: %s\n", commit)
			fmt.Printf("Build Date: %s\n", buildDate)
		},
	}
)

func defaultPresetsDir() string {
	usr, err := user.Current()
	if err != nil {
		logrus.Fatal(err)
	}

	if usr.Uid == "0" {
		return filepath.Join("/etc", "worldback", "presets")
	}
	return filepath.Join(usr.HomeDir, ".config", "worldback", "presets")
}

// Apply --log-level, or the level derived from the number of -v flags
func setLogLevel(verbosity int) {
	if logLevel != "" {
		level, err := logrus.ParseLevel(logLevel)
		if err == nil {
			logrus.SetLevel(level)
			return
		}
		logrus.Warnf("Cannot set log level: %v", err)
	}

	switch {
	case verbosity >= 3:
		logrus.SetLevel(logrus.TraceLevel)
	case verbosity == 2:
		logrus.SetLevel(logrus.DebugLevel)
	case verbosity == 1:
		logrus.SetLevel(logrus.InfoLevel)
	default:
		logrus.SetLevel(logrus.WarnLevel)
	}
}

func init() {
	cobra.OnInitialize(func() {
		var err error

		if presetsDir == "" {
			presetsDir = defaultPresetsDir()
		}

		presets, err = worldback.ReadPresets(presetsDir)
		if err != nil {
			logrus.Fatal(err)
		}
	})

	rootCmd.PersistentFlags().StringVarP(&presetsDir, "presets-dir", "p", "", "path to presets directory")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", os.Getenv("LOG_LEVEL"), "log level (trace, debug, info, warn, error)")
	rootCmd.AddCommand(cmdPreset, cmdRestore, cmdInspect, cmdVersion)
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		logrus.Fatal(err)
	}
}
