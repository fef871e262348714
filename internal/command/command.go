// Package command implements the hbs-render subcommands on top of
// github.com/mitchellh/cli.
package command

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/aescanero/dago-hbs-helpers/internal/eval/template"
	"github.com/mitchellh/cli"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	// ExitSuccess is returned when a command completes
	ExitSuccess = 0
	// ExitError is returned for any failure
	ExitError = 1

	// stdinPath names standard input on the command line
	stdinPath = "-"
)

// Meta holds what every command shares
type Meta struct {
	Ui     cli.Ui
	Logger *zap.Logger
	Stdin  io.Reader
	Engine *template.Engine
}

func (m *Meta) logger() *zap.Logger {
	if m.Logger == nil {
		return zap.NewNop()
	}
	return m.Logger
}

func (m *Meta) engine() *template.Engine {
	if m.Engine == nil {
		m.Engine = template.NewEngine(template.WithLogger(m.Logger))
	}
	return m.Engine
}

// fail reports err to the user and the log
func (m *Meta) fail(msg string, err error) int {
	m.logger().Error(msg, zap.Error(err))
	m.Ui.Error(fmt.Sprintf("%s: %v", msg, err))
	return ExitError
}

// Commands returns the command table for the hbs-render CLI
func Commands(meta *Meta) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"render": func() (cli.Command, error) {
			return &RenderCommand{Meta: meta}, nil
		},
		"validate": func() (cli.Command, error) {
			return &ValidateCommand{Meta: meta}, nil
		},
		"helpers": func() (cli.Command, error) {
			return &HelpersCommand{Meta: meta}, nil
		},
	}
}

// readInput reads a file, or standard input when path is "-"
func (m *Meta) readInput(path string) ([]byte, error) {
	if path == stdinPath {
		if m.Stdin == nil {
			return nil, fmt.Errorf("standard input is not available")
		}
		return io.ReadAll(m.Stdin)
	}
	return os.ReadFile(path)
}

// decodeDocument decodes YAML or JSON into out. An empty document leaves
// out untouched.
func decodeDocument(data []byte, out interface{}) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

// loadData reads a YAML or JSON data file into a map
func (m *Meta) loadData(path string) (map[string]interface{}, error) {
	raw, err := m.readInput(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	data := make(map[string]interface{})
	if err := decodeDocument(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}
