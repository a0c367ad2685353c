package config

import (
	"encoding/json"
	"os"

	"github.com/mori-tea/mori/internal/timex"
)

// JsonConfig is the on-disk shape of the CLI config file. Durations accept
// "3s" style strings or integer nanoseconds. Missing keys keep the current
// value.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	FeedURL             string         `json:"feed_url"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
}

func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.FeedURL != "" {
		cfg.FeedURL = jc.FeedURL
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
