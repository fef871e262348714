package command

import (
	"fmt"
	"strings"

	"github.com/mitchellh/cli"
	"github.com/posener/complete"
)

var (
	_ cli.Command             = (*ValidateCommand)(nil)
	_ cli.CommandAutocomplete = (*ValidateCommand)(nil)
)

// ValidateCommand checks that template files parse
type ValidateCommand struct {
	*Meta
}

func (c *ValidateCommand) Synopsis() string {
	return "Check that Handlebars templates parse"
}

func (c *ValidateCommand) Help() string {
	helpText := `
Usage: hbs-render validate TEMPLATE_FILE...

  Parse each template and report the ones that fail. Helper arity is
  checked when a template is rendered, not here.

      $ hbs-render validate rows.hbs list.hbs
`
	return strings.TrimSpace(helpText)
}

func (c *ValidateCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictFiles("*")
}

func (c *ValidateCommand) AutocompleteFlags() complete.Flags {
	return nil
}

func (c *ValidateCommand) Run(args []string) int {
	if len(args) == 0 {
		c.Ui.Error("expected at least one TEMPLATE_FILE")
		return cli.RunResultHelp
	}

	code := ExitSuccess
	for _, path := range args {
		source, err := c.readInput(path)
		if err == nil {
			err = c.engine().ValidateTemplate(string(source))
		}
		if err != nil {
			c.fail(path, err)
			code = ExitError
			continue
		}
		c.Ui.Info(fmt.Sprintf("%s: ok", path))
	}
	return code
}
