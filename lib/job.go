package worldback

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

var jobLog = logrus.WithFields(logrus.Fields{
	"component": "job",
})

// Opens a backup archive from its path
type ArchiveOpener func(path string) (Archive, error)

// A complete restoration of a backup onto an instance
type RestoreJob struct {
	Instance string
	Backup   string

	// Overrides the level-name of server.properties when set
	LevelName string

	// Template for the suffix of the moved-aside world, DefaultAsideSuffix if empty
	AsideSuffix string

	// Refuse to restore while a process with this executable name runs
	ServerProcess string

	// Run after a successful restoration, in the instance directory
	PostRestoreCommand []string

	OpenArchive ArchiveOpener
	Permissions PermissionApplier
	Now         func() time.Time
}

// Where and what a job restores
type Plan struct {
	WorldPath string
	LevelName string
	Prefix    string
}

// Check inputs exist. Missing inputs are reported as *NotFoundError.
func (j *RestoreJob) Validate() error {
	if _, err := os.Stat(j.Instance); os.IsNotExist(err) {
		return &NotFoundError{Kind: InputInstance, Path: j.Instance}
	} else if err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	if _, err := os.Stat(j.Backup); os.IsNotExist(err) {
		return &NotFoundError{Kind: InputArchive, Path: j.Backup}
	} else if err != nil {
		return fmt.Errorf("%w: %w", ErrArchiveRead, err)
	}

	return nil
}

func (j *RestoreJob) checkServer() error {
	if j.ServerProcess == "" {
		return nil
	}

	// The server state is unknown when processes cannot be listed
	pid, err := FindProcess(j.ServerProcess)
	if err != nil {
		return fmt.Errorf("%w: cannot check for %s: %w", ErrServerRunning, j.ServerProcess, err)
	}
	if pid != 0 {
		return fmt.Errorf("%w: %s (pid %d)", ErrServerRunning, j.ServerProcess, pid)
	}
	return nil
}

// World path and level name the job restores onto
func (j *RestoreJob) Locate() (string, string, error) {
	if j.LevelName != "" {
		jobLog.Infof("using level-name: %s", j.LevelName)
		return filepath.Join(j.Instance, j.LevelName), j.LevelName, nil
	}

	props, err := ReadServerProperties(j.Instance)
	if err != nil {
		return "", "", err
	}

	worldPath := LocateWorld(j.Instance, props)
	levelName := LevelName(props)
	jobLog.Infof("using level-name: %s", levelName)
	return worldPath, levelName, nil
}

// Validate inputs, locate the world and resolve the archive prefix. The
// returned archive must be closed by the caller.
func (j *RestoreJob) prepare() (Archive, *Plan, error) {
	err := j.Validate()
	if err != nil {
		return nil, nil, err
	}

	worldPath, levelName, err := j.Locate()
	if err != nil {
		return nil, nil, err
	}

	archive, err := j.OpenArchive(j.Backup)
	if err != nil {
		return nil, nil, err
	}
	jobLog.Debugf("opened %s: %d entries", j.Backup, archive.Len())

	prefix, err := ResolvePrefix(archive)
	if err != nil {
		archive.Close()
		return nil, nil, err
	}

	return archive, &Plan{WorldPath: worldPath, LevelName: levelName, Prefix: prefix}, nil
}

// Resolve the world path and the archive prefix without modifying anything
func (j *RestoreJob) Plan() (*Plan, error) {
	archive, plan, err := j.prepare()
	if err != nil {
		return nil, err
	}
	archive.Close()
	return plan, nil
}

// Run the restoration. The archive is validated (prefix resolved) before the
// existing world is moved aside.
func (j *RestoreJob) Run() error {
	archive, plan, err := j.prepare()
	if err != nil {
		return err
	}
	defer archive.Close()

	err = j.checkServer()
	if err != nil {
		return err
	}

	ts, err := NewTemplateTimestamper(j.AsideSuffix, plan.LevelName, j.Now)
	if err != nil {
		return fmt.Errorf("invalid aside suffix template: %w", err)
	}

	jobLog.Printf("restoring %s onto %s", j.Backup, plan.WorldPath)
	err = NewRestorer(ts, j.Permissions).Restore(plan.WorldPath, archive, plan.Prefix)
	if err != nil {
		return err
	}

	if len(j.PostRestoreCommand) > 0 {
		err = RunCommand(jobLog, BuildCommand(j.Instance, j.PostRestoreCommand))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPostCommand, err)
		}
	}

	return nil
}
