// Package config provides configuration parsing for mote projects.
//
// The configuration is stored in mote.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "playground",
//	  "server": {
//	    "host": "localhost",
//	    "port": 8080,
//	    "openBrowser": true
//	  },
//	  "bridge": {
//	    "maxSessions": 100,
//	    "opTimeout": "5s",
//	    "resumeWindow": "2m",
//	    "debug": false
//	  },
//	  "snapshots": {
//	    "dir": "snapshots"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "path": "/metrics"
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
//	fmt.Println("Port:", cfg.Server.Port)
package config
