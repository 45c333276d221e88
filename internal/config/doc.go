// Package config loads millwork settings.
//
// Values come, lowest precedence first, from the defaults declared in
// struct tags, an optional YAML config file, a .env file and the process
// environment. Environment keys take the MILLWORK_ prefix and use
// underscores for nesting: MILLWORK_ENGINE_TICK_RATE sets engine.tick_rate.
//
// # Usage
//
//	cfg, err := config.Load(config.Options{EnvDir: "."})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Store.Path)
package config
