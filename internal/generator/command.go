package generator

import (
	"context"

	"go.uber.org/zap"

	"github.com/t77yq/bamcfg/internal/objcfg"
)

// CommandGenerator writes command definitions
type CommandGenerator struct {
	base[int]
	missingNames map[string]struct{}
}

func newCommandGenerator(reg *Registry) *CommandGenerator {
	return &CommandGenerator{
		base:         newBase[int](reg, KindCommand),
		missingNames: make(map[string]struct{}),
	}
}

// Generate emits the command with the given id
func (g *CommandGenerator) Generate(ctx context.Context, id int) (Result, error) {
	return g.once(ctx, id, func() (*objcfg.Block, error) {
		cmd, found, err := g.reg.catalog.command(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			g.logger.Warn("Command not found", zap.Int("command_id", id))
			return nil, nil
		}

		return objcfg.NewBlock("command").
			Add("command_name", objcfg.Decode(cmd.Name)).
			Add("command_line", objcfg.Decode(cmd.Line)), nil
	})
}

// GenerateByName emits the first command with that name
func (g *CommandGenerator) GenerateByName(ctx context.Context, name string) (Result, error) {
	if _, ok := g.missingNames[name]; ok {
		return NotFound, nil
	}

	cmd, found, err := g.reg.catalog.commandByName(ctx, name)
	if err != nil {
		return NotFound, g.wrapKey(name, err)
	}
	if !found {
		g.missingNames[name] = struct{}{}
		g.reg.scope.Metrics.Missing(string(g.kind))
		g.logger.Warn("Command not found", zap.String("command_name", name))
		return NotFound, nil
	}
	return g.Generate(ctx, cmd.ID)
}

// Name returns the decoded engine name of a command
func (g *CommandGenerator) Name(ctx context.Context, id int) (string, error) {
	cmd, _, err := g.reg.catalog.command(ctx, id)
	if err != nil {
		return "", err
	}
	return objcfg.Decode(cmd.Name), nil
}

// GenerateAll emits the business activity check command and the event
// handlers of the node's business activities
func (g *CommandGenerator) GenerateAll(ctx context.Context) error {
	if _, err := g.GenerateByName(ctx, g.reg.scope.Naming.CheckCommand); err != nil {
		return err
	}

	bas, err := g.reg.catalog.nodeBusinessActivities(ctx)
	if err != nil {
		return g.wrapAll(err)
	}
	for _, ba := range bas {
		if !ba.HasEventHandler() {
			continue
		}
		if _, err := g.Generate(ctx, ba.EventHandlerCommandID); err != nil {
			return err
		}
	}
	return nil
}

func (g *CommandGenerator) Reset() error {
	clear(g.missingNames)
	return g.base.Reset()
}

// resolve pulls a referenced command and returns its name, or "" when the
// reference is unset or does not resolve
func (g *CommandGenerator) resolve(ctx context.Context, id int) (string, error) {
	if id == 0 {
		return "", nil
	}
	res, err := g.Generate(ctx, id)
	if err != nil || !res.Resolved() {
		return "", err
	}
	return g.Name(ctx, id)
}

// resolveByName pulls a command by name and returns the name it is emitted
// under. A command missing from the datastore keeps the given name, as it
// may be defined outside the generated files.
func (g *CommandGenerator) resolveByName(ctx context.Context, name string) (string, error) {
	if _, err := g.GenerateByName(ctx, name); err != nil {
		return "", err
	}
	cmd, found, err := g.reg.catalog.commandByName(ctx, name)
	if err != nil {
		return "", g.wrapKey(name, err)
	}
	if !found {
		return name, nil
	}
	return objcfg.Decode(cmd.Name), nil
}
