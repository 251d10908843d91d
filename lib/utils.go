package worldback

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"filippo.io/age"
	"github.com/mitchellh/go-ps"
	"github.com/sirupsen/logrus"
)

// Load age identities either from a file (if keyFile argument is provided), or
// from its content (key argument). Both empty means no identity.
func LoadIdentities(keyFile, key string) ([]age.Identity, error) {
	if keyFile != "" && key != "" {
		return nil, fmt.Errorf("must provide one of key file or key, not both")
	}

	if keyFile != "" {
		keyData, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, err
		}

		key = string(keyData)
	}

	if key == "" {
		return nil, nil
	}

	return age.ParseIdentities(bytes.NewBufferString(key))
}

func BuildCommand(dir string, command []string) *exec.Cmd {
	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Stdout = os.Stderr // keep our stdout for our own output
	cmd.Stderr = os.Stderr
	return cmd
}

func RunCommand(log *logrus.Entry, cmd *exec.Cmd) error {
	log.Printf("running: %s", cmd.String())
	return cmd.Run()
}

// Process lister, replaced in tests
var listProcesses = ps.Processes

// Find a running process by executable name. Returns its pid, or 0 if none.
func FindProcess(executable string) (int, error) {
	procs, err := listProcesses()
	if err != nil {
		return 0, err
	}

	for _, p := range procs {
		if p.Executable() == executable || p.Executable() == filepath.Base(executable) {
			return p.Pid(), nil
		}
	}

	return 0, nil
}
