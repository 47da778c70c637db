// Package factory is a generic registry that builds modules from
// configuration. A module is a type name plus a map of raw settings; each
// factory decodes the settings into its own struct.
//
//	reg := factory.NewRegistry[options.Strategy]()
//	reg.Register("truncate", func(conf map[string]any) (options.Strategy, error) {
//	    var c struct{ Drop int `json:"drop"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return options.Truncate{Drop: c.Drop}, nil
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "truncate", Conf: map[string]any{"drop": 2}})
package factory
