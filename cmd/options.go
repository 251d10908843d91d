package cmd

import (
	"github.com/sloonz/worldback/archives"
	"github.com/sloonz/worldback/lib"

	"fmt"

	"filippo.io/age"
	"github.com/sirupsen/logrus"
)

type optionsBuilder struct {
	Options    *worldback.Options
	Identities []age.Identity
	Job        *worldback.RestoreJob
	Error      error
}

func newOptionsBuilder(options *worldback.Options, err error) *optionsBuilder {
	return &optionsBuilder{Options: options, Error: err}
}

// Command line flags take precedence over option lines and presets
func (o *optionsBuilder) WithOverrides(overrides map[string]string) *optionsBuilder {
	if o.Error == nil {
		for k, v := range overrides {
			o.Options.Override(k, v)
		}
	}
	return o
}

func (o *optionsBuilder) WithStringOption(k string) *optionsBuilder {
	if o.Error == nil {
		_, o.Error = o.Options.GetRequiredString(k)
	}
	return o
}

func (o *optionsBuilder) WithIdentities() *optionsBuilder {
	if o.Error == nil {
		o.Identities, o.Error = worldback.LoadIdentities(o.Options.String[worldback.OptKeyFile], o.Options.String[worldback.OptKey])
		if o.Error != nil {
			o.Error = fmt.Errorf("cannot load key: %w", o.Error)
		}
	}
	return o
}

func (o *optionsBuilder) WithJob() *optionsBuilder {
	if o.Error == nil {
		o.Job = &worldback.RestoreJob{
			Instance:           o.Options.GetString(worldback.OptInstance, ""),
			Backup:             o.Options.GetString(worldback.OptBackup, ""),
			LevelName:          o.Options.GetString(worldback.OptLevelName, ""),
			AsideSuffix:        o.Options.GetString(worldback.OptAsideSuffix, ""),
			ServerProcess:      o.Options.GetString(worldback.OptServerProcess, ""),
			PostRestoreCommand: o.Options.GetCommand(worldback.OptPostRestoreCommand, nil),
			OpenArchive:        archives.Opener(o.Identities),
			Permissions:        worldback.HostPermissions(),
		}
	}
	return o
}

func (o *optionsBuilder) FatalOnError() *optionsBuilder {
	if o.Error != nil {
		logrus.Fatal(o.Error)
	}
	return o
}
