package generator

import (
	"context"

	"go.uber.org/zap"

	"github.com/t77yq/bamcfg/internal/model"
	"github.com/t77yq/bamcfg/internal/objcfg"
)

// TimeperiodGenerator writes timeperiod definitions
type TimeperiodGenerator struct {
	base[int]
}

func newTimeperiodGenerator(reg *Registry) *TimeperiodGenerator {
	return &TimeperiodGenerator{base: newBase[int](reg, KindTimeperiod)}
}

// Generate emits the timeperiod with the given id
func (g *TimeperiodGenerator) Generate(ctx context.Context, id int) (Result, error) {
	return g.once(ctx, id, func() (*objcfg.Block, error) {
		tp, found, err := g.reg.catalog.timeperiod(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			g.logger.Warn("Timeperiod not found", zap.Int("tp_id", id))
			return nil, nil
		}

		block := objcfg.NewBlock("timeperiod").
			Add("timeperiod_name", objcfg.Decode(tp.Name)).
			Add("alias", objcfg.Decode(tp.Alias))
		for _, day := range model.Weekdays {
			block.Add(day, tp.Days[day])
		}
		return block, nil
	})
}

// Name returns the decoded engine name of a timeperiod
func (g *TimeperiodGenerator) Name(ctx context.Context, id int) (string, error) {
	tp, _, err := g.reg.catalog.timeperiod(ctx, id)
	if err != nil {
		return "", err
	}
	return objcfg.Decode(tp.Name), nil
}

// GenerateAll emits the notification periods of the node's business activities
func (g *TimeperiodGenerator) GenerateAll(ctx context.Context) error {
	bas, err := g.reg.catalog.nodeBusinessActivities(ctx)
	if err != nil {
		return g.wrapAll(err)
	}
	for _, ba := range bas {
		if ba.NotificationPeriodID == 0 {
			continue
		}
		if _, err := g.Generate(ctx, ba.NotificationPeriodID); err != nil {
			return err
		}
	}
	return nil
}

// resolve pulls a referenced timeperiod and returns its name, or "" when
// the reference is unset or does not resolve
func (g *TimeperiodGenerator) resolve(ctx context.Context, id int) (string, error) {
	if id == 0 {
		return "", nil
	}
	res, err := g.Generate(ctx, id)
	if err != nil || !res.Resolved() {
		return "", err
	}
	return g.Name(ctx, id)
}
