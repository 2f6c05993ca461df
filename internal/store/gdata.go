package store

import (
	"context"
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/numberguess/internal/persist"
)

// gdataObject is the gdata object key all documents live under.
const gdataObject = "documents"

// Gdata stores documents as YAML in the per-user application data
// directory managed by gdata.
type Gdata struct {
	m *gdata.Manager
}

// OpenGdata opens the gdata storage for appName.
func OpenGdata(appName string) (*Gdata, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("open gdata %q: %w", appName, err)
	}
	return &Gdata{m: m}, nil
}

func (g *Gdata) Load(ctx context.Context, name Name, dst any) (persist.Source, error) {
	if err := name.check(); err != nil {
		return persist.SourceDefault, err
	}
	if !g.m.ObjectPropExists(gdataObject, string(name)) {
		return persist.SourceDefault, nil
	}
	data, err := g.m.LoadObjectProp(gdataObject, string(name))
	if err != nil {
		log.Warn().Err(err).Str("document", string(name)).Msg("read document; using default")
		return persist.SourceDefault, nil
	}
	if err := persist.DecodeInto(data, dst, yaml.Unmarshal); err != nil {
		log.Warn().Err(err).Str("document", string(name)).Msg("malformed document; using default")
		return persist.SourceDefault, nil
	}
	return persist.SourceStored, nil
}

func (g *Gdata) Save(ctx context.Context, name Name, v any) error {
	if err := name.check(); err != nil {
		return err
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", persist.ErrIO, name, err)
	}
	if err := g.m.SaveObjectProp(gdataObject, string(name), data); err != nil {
		return fmt.Errorf("%w: save %s: %v", persist.ErrIO, name, err)
	}
	return nil
}

func (g *Gdata) Close() error { return nil }
