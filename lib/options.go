package worldback

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/gobuffalo/flect"
	"github.com/google/shlex"
	"github.com/sirupsen/logrus"
)

// Option keys understood by the restore command
const (
	OptInstance           = "Instance"
	OptBackup             = "Backup"
	OptLevelName          = "LevelName"
	OptKeyFile            = "KeyFile"
	OptKey                = "Key"
	OptAsideSuffix        = "AsideSuffix"
	OptServerProcess      = "ServerProcess"
	OptPostRestoreCommand = "PostRestoreCommand"
	OptDryRun             = "DryRun"
)

// Options whose values are templates evaluated later, not at option evaluation
var rawOptions = map[string]bool{
	OptAsideSuffix: true,
}

// A comma not escaped by an odd number of backslashes
var splitOptionsRe = regexp.MustCompile(`(?:[^\\]|^)(?:\\\\)*,`)

type KeyValuePair = [2]string

// Parsed and evaluated options
type Options struct {
	// Plain options; the last occurrence wins
	String map[string]string

	// "@"-prefixed options, accumulated in order of appearance.
	// Keys have their "@" prefix stripped
	StrSlice map[string][]string
}

func NewOptions() *Options {
	return &Options{
		String:   make(map[string]string),
		StrSlice: make(map[string][]string),
	}
}

// Values visible to option templates
func (o *Options) templateData() map[string]interface{} {
	res := make(map[string]interface{}, len(o.String)+len(o.StrSlice))
	for k, v := range o.String {
		res[k] = v
	}
	for k, v := range o.StrSlice {
		res["@"+k] = v
	}
	return res
}

// Get a command line. "@Key" options give the arguments one by one;
// a plain "Key" option is split following shell syntax.
func (o *Options) GetCommand(key string, defaults []string) []string {
	if args, ok := o.StrSlice[key]; ok {
		return args
	}

	s, ok := o.String[key]
	if !ok || s == "" {
		return defaults
	}

	args, err := shlex.Split(s)
	if err != nil {
		logrus.Warnf("cannot parse %s: %s", key, err)
		return defaults
	}
	return args
}

func (o *Options) GetBoolean(key string, defaults bool) (bool, error) {
	s, ok := o.String[key]
	if !ok {
		return defaults, nil
	}

	switch strings.ToLower(s) {
	case "1", "true", "yes":
		return true, nil
	case "", "0", "false", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean for %s: %s", key, s)
	}
}

func (o *Options) GetString(key string, defaults string) string {
	if s, ok := o.String[key]; ok {
		return s
	}
	return defaults
}

func (o *Options) GetRequiredString(key string) (string, error) {
	if s := o.String[key]; s != "" {
		return s, nil
	}
	return "", fmt.Errorf("missing option: %s", key)
}

// Set a plain option, unless value is empty
func (o *Options) Override(key, value string) {
	if value != "" {
		o.String[key] = value
	}
}

// Set a boolean option when a flag is given. An unset flag keeps the option.
func (o *Options) OverrideBoolean(key string, value bool) {
	if value {
		o.String[key] = "true"
	}
}

func parseOption(option string) (string, string) {
	option = strings.ReplaceAll(strings.ReplaceAll(option, "\\,", ","), "\\\\", "\\")
	k, v, hasValue := strings.Cut(option, "=")
	if !hasValue {
		v = "true"
	}

	prefix := ""
	if strings.HasPrefix(k, "@") {
		prefix = "@"
		k = k[1:]
	}

	if k == "" {
		return "", ""
	}
	return prefix + flect.Pascalize(k), v
}

// Split an option line ("a=1,b=2") into key-value pairs. Keys are Pascalized,
// a key without value is "true", and "\," escapes a comma.
func SplitOptions(options string) []KeyValuePair {
	result := make([]KeyValuePair, 0)
	prevPos := 0
	for _, idx := range splitOptionsRe.FindAllStringIndex(options, -1) {
		pos := idx[1]
		if k, v := parseOption(options[prevPos : pos-1]); k != "" {
			result = append(result, KeyValuePair{k, v})
		}
		prevPos = pos
	}

	if k, v := parseOption(options[prevPos:]); k != "" {
		result = append(result, KeyValuePair{k, v})
	}

	return result
}

// Load the *.json presets of a directory. A missing directory yields no preset.
func ReadPresets(presetsDir string) (map[string][]KeyValuePair, error) {
	entries, err := os.ReadDir(presetsDir)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	presets := make(map[string][]KeyValuePair)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(presetsDir, entry.Name()))
		if err != nil {
			logrus.Warn(err)
			continue
		}

		var options []KeyValuePair
		err = json.Unmarshal(data, &options)
		if err != nil {
			logrus.WithFields(logrus.Fields{"preset": entry.Name()}).Warn(err)
			continue
		}

		presets[strings.TrimSuffix(entry.Name(), ".json")] = options
	}

	return presets, nil
}

// Evaluate an option value as a template; on failure the raw value is kept
func evalTemplate(k, v string, result *Options) string {
	tpl, err := template.New(k).Funcs(sprig.TxtFuncMap()).Parse(v)
	if err != nil {
		logrus.Warnf("failed to evaluate %v: %v", k, err)
		return v
	}

	buf := bytes.NewBuffer(nil)
	err = tpl.Execute(buf, result.templateData())
	if err != nil {
		logrus.Warnf("failed to evaluate %v: %v", k, err)
		return v
	}
	return buf.String()
}

func evalOptions(result *Options, kvs []KeyValuePair, presets map[string][]KeyValuePair, depth int) error {
	if depth > 16 {
		return fmt.Errorf("presets nested too deeply")
	}

	for _, kv := range kvs {
		k, v := kv[0], kv[1]

		if !rawOptions[k] {
			v = evalTemplate(k, v, result)
		}

		switch {
		case k == "Preset":
			presetOptions, ok := presets[v]
			if !ok {
				logrus.Warnf("preset %s not found", v)
				continue
			}
			err := evalOptions(result, presetOptions, presets, depth+1)
			if err != nil {
				return err
			}
		case strings.HasPrefix(k, "@"):
			result.StrSlice[k[1:]] = append(result.StrSlice[k[1:]], v)
		default:
			result.String[k] = v
		}
	}
	return nil
}

// Evaluate raw key-value pairs: values are templates (with sprig functions)
// over the options seen so far, and "Preset" options are substituted.
func EvalOptions(kvs []KeyValuePair, presets map[string][]KeyValuePair) (*Options, error) {
	options := NewOptions()
	err := evalOptions(options, kvs, presets, 0)
	if err != nil {
		return nil, err
	}

	return options, nil
}
