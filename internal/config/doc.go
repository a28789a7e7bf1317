// Package config loads the reconcile configuration.
//
// Values are layered, lowest precedence first: built-in defaults, the
// YAML file (reconcile.yaml in the working directory unless a path is
// given), RECONCILE_ environment variables and command-line flags. The
// merged result is validated before it is returned.
//
//	transition:
//	  default_name: v
//	  safety_margin: 1ms
//	  definitions:
//	    fade:
//	      leave_duration: 300ms
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  namespace: reconcile
//	server:
//	  addr: 127.0.0.1:8080
//	  frame_interval: 16ms
//	trace:
//	  exporter: none
//	  sample_ratio: 1
//
// Environment variables name a key with dots replaced by underscores:
// RECONCILE_SERVER_ADDR sets server.addr and
// RECONCILE_TRANSITION_SAFETY_MARGIN sets transition.safety_margin.
package config
