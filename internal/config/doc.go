// Package config provides configuration parsing for the fiber engine and
// its tools.
//
// The configuration is stored in fiber.json or fiber.yaml. This package
// handles loading, saving, and validating it, and converts it into
// scheduler, reconciler and telemetry options.
//
// # Configuration File Structure
//
//	{
//	  "debug": true,
//	  "maxRenderRetries": 2,
//	  "timeSliceUnits": 0,
//	  "frameInterval": "5ms",
//	  "inspect": {
//	    "addr": "localhost:7070",
//	    "metrics": true
//	  },
//	  "telemetry": {
//	    "namespace": "fiber",
//	    "tracing": false
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sched := scheduler.New(cfg.SchedulerOptions()...)
//	r := fiber.New(host, sched, cfg.ReconcilerOptions()...)
package config
