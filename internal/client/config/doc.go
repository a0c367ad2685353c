// Package config loads runtime configuration for the Mori CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file chosen with -c/-config or MORI_CONFIG.
//  3. Command-line flags -a, -f, -i and -t.
//
// Example file:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "feed_url": "ws://127.0.0.1:8080",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s"
//	}
package config
