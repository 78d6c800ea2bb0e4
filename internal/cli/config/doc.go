// Package config defines the nbdb command-line configuration.
//
//   - spec.go: Config struct and defaults
//   - loader.go: layered loading through confloader, validation, saving
//
// A configuration file looks like:
//
//	store:
//	  path: ./nbdb.json
//	  indent: "2"
//	  flush_interval: 30s
//	  sync_log: true
//	log:
//	  level: info
//	  format: text
package config
