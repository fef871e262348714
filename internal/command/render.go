package command

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	"github.com/aescanero/dago-hbs-helpers/internal/eval/gotemplate"
	"github.com/aescanero/dago-hbs-helpers/internal/helpers"
	"github.com/aescanero/dago-hbs-helpers/internal/render"
	"github.com/mitchellh/cli"
	"github.com/posener/complete"
	"go.uber.org/zap"
)

var (
	_ cli.Command             = (*RenderCommand)(nil)
	_ cli.CommandAutocomplete = (*RenderCommand)(nil)
)

// RenderCommand renders a template file, or a request file with variants
type RenderCommand struct {
	*Meta

	requestFile string
	sanitize    bool
	syntax      string
}

const (
	syntaxHandlebars = "handlebars"
	syntaxGo         = "go"
)

func (c *RenderCommand) Synopsis() string {
	return "Render a Handlebars template with YAML or JSON data"
}

func (c *RenderCommand) Help() string {
	helpText := `
Usage: hbs-render render [options] TEMPLATE_FILE [DATA_FILE]
       hbs-render render -request REQUEST_FILE

  Render a Handlebars template and write the result to standard output.
  DATA_FILE may be YAML or JSON; use "-" to read it from standard input.

      $ hbs-render render rows.hbs rows.yaml

  With -request, the file holds a full render request: a fallback
  template, variants guarded by CEL conditions over "data", and the data.

      $ hbs-render render -request request.yaml

Options:

  -request=<path>  Render a request file instead of a template file.

  -syntax=<name>   Template syntax of TEMPLATE_FILE: "handlebars" (default)
                   or "go" for text/template with the same helpers.

  -sanitize        Strip markup outside a user-generated-content policy
                   from the output. A request file can also set
                   "sanitize: true".
`
	return strings.TrimSpace(helpText)
}

func (c *RenderCommand) flags() *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&c.requestFile, "request", "", "")
	fs.BoolVar(&c.sanitize, "sanitize", false, "")
	fs.StringVar(&c.syntax, "syntax", syntaxHandlebars, "")
	return fs
}

func (c *RenderCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictFiles("*")
}

func (c *RenderCommand) AutocompleteFlags() complete.Flags {
	return complete.Flags{
		"-request":  complete.PredictFiles("*"),
		"-sanitize": complete.PredictNothing,
		"-syntax":   complete.PredictSet(syntaxHandlebars, syntaxGo),
	}
}

func (c *RenderCommand) Run(args []string) int {
	fs := c.flags()
	if err := fs.Parse(args); err != nil {
		c.Ui.Error(err.Error())
		return cli.RunResultHelp
	}
	args = fs.Args()

	var (
		output string
		err    error
	)
	if c.syntax != syntaxHandlebars && c.syntax != syntaxGo {
		c.Ui.Error(fmt.Sprintf("unknown syntax %q", c.syntax))
		return cli.RunResultHelp
	}

	switch {
	case c.requestFile != "" && c.syntax == syntaxGo:
		c.Ui.Error("-request only supports handlebars templates")
		return cli.RunResultHelp
	case c.requestFile != "":
		if len(args) != 0 {
			c.Ui.Error("-request does not take positional arguments")
			return cli.RunResultHelp
		}
		output, err = c.renderRequestFile(c.requestFile)
	case len(args) == 1 || len(args) == 2:
		output, err = c.renderTemplate(args[0], args[1:]...)
	default:
		c.Ui.Error("expected TEMPLATE_FILE and an optional DATA_FILE")
		return cli.RunResultHelp
	}
	if err != nil {
		return c.fail("render failed", err)
	}

	c.Ui.Output(output)
	return ExitSuccess
}

func (c *RenderCommand) renderTemplate(templatePath string, dataPath ...string) (string, error) {
	source, err := c.readInput(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}

	var data map[string]interface{}
	if len(dataPath) > 0 {
		if data, err = c.loadData(dataPath[0]); err != nil {
			return "", err
		}
	}

	c.logger().Debug("rendering template",
		zap.String("template", templatePath),
		zap.String("syntax", c.syntax),
		zap.Int("data_keys", len(data)),
	)

	if c.syntax == syntaxGo {
		return c.renderGoTemplate(templatePath, string(source), data)
	}

	return c.renderRequest(&render.Request{
		Template: string(source),
		Data:     data,
	})
}

func (c *RenderCommand) renderGoTemplate(name, source string, data map[string]interface{}) (string, error) {
	tmpl, err := texttemplate.New(filepath.Base(name)).
		Funcs(gotemplate.FuncMap(helpers.Helpers())).
		Parse(source)
	if err != nil {
		return "", fmt.Errorf("parse error: %w", err)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	if c.sanitize {
		return render.SanitizeOutput(out.String()), nil
	}
	return out.String(), nil
}

func (c *RenderCommand) renderRequestFile(path string) (string, error) {
	raw, err := c.readInput(path)
	if err != nil {
		return "", fmt.Errorf("failed to read request: %w", err)
	}

	var req render.Request
	if err := decodeDocument(raw, &req); err != nil {
		return "", err
	}

	return c.renderRequest(&req)
}

func (c *RenderCommand) renderRequest(req *render.Request) (string, error) {
	if c.sanitize {
		req.Sanitize = true
	}

	renderer := render.NewRenderer(c.engine(), c.logger())
	result, err := renderer.Render(context.Background(), req)
	if err != nil {
		return "", err
	}

	c.logger().Debug("rendered request",
		zap.String("path_taken", result.PathTaken),
		zap.Int("variant", result.Variant),
	)
	return result.Output, nil
}
