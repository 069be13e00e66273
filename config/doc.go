// Package config loads application settings.
//
// Settings may be written as CUE, JSON or YAML. Whatever the input format,
// the document is unified with an embedded CUE schema that supplies
// defaults and rejects out-of-range values and unknown fields before it is
// decoded into a Config.
//
//	cfg, err := config.Load(ctx, billy.NewLocal(dir), "imagedesk.yaml")
//	if err != nil {
//		return err
//	}
//	logger := logging.NewLogger(cfg.LogConfig())
//
// Default returns the schema defaults without reading anything.
package config
