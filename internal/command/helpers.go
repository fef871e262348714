package command

import (
	"sort"
	"strings"

	"github.com/mitchellh/cli"
)

var _ cli.Command = (*HelpersCommand)(nil)

// HelpersCommand lists the variadic helpers available to templates
type HelpersCommand struct {
	*Meta
}

func (c *HelpersCommand) Synopsis() string {
	return "List the variadic template helpers"
}

func (c *HelpersCommand) Help() string {
	return strings.TrimSpace(`
Usage: hbs-render helpers

  Print the name of every variadic helper, one per line. These accept
  any number of arguments and a hash, unlike the fixed builtins.
`)
}

func (c *HelpersCommand) Run(args []string) int {
	if len(args) != 0 {
		return cli.RunResultHelp
	}

	names := c.engine().HelperNames()
	sort.Strings(names)
	for _, name := range names {
		c.Ui.Output(name)
	}
	return ExitSuccess
}
