package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value kept, foreign flags dropped",
			args:    []string{"-c", "mori.json", "-x", "1"},
			allowed: []string{"-c"},
			want:    []string{"-c", "mori.json"},
		},
		{
			name:    "equals form",
			args:    []string{"--config=alt.json", "-a", ":50051"},
			allowed: []string{"--config"},
			want:    []string{"--config=alt.json"},
		},
		{
			name:    "flag followed by another flag has no value",
			args:    []string{"-c", "-a", ":50051"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "several allowed flags keep order",
			args:    []string{"-a", ":50051", "-d", "postgres://x", "-z"},
			allowed: []string{"-a", "-d"},
			want:    []string{"-a", ":50051", "-d", "postgres://x"},
		},
		{
			name:    "empty",
			args:    nil,
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigPath(t *testing.T) {
	noEnv := func(string) string { return "" }
	env := func(k string) string {
		if k == ConfigPathEnv {
			return "/etc/mori/env.json"
		}
		return ""
	}

	assert.Equal(t, "/p/short.json", ConfigPath([]string{"-c", "/p/short.json"}, noEnv))
	assert.Equal(t, "/p/long.json", ConfigPath([]string{"-config", "/p/long.json"}, noEnv))
	assert.Equal(t, "/p/2.json", ConfigPath([]string{"-c", "/p/1.json", "-config", "/p/2.json"}, noEnv))
	assert.Empty(t, ConfigPath([]string{"-x", "1"}, noEnv))

	assert.Equal(t, "/etc/mori/env.json", ConfigPath(nil, env))
	assert.Equal(t, "/p/flag.json", ConfigPath([]string{"-c", "/p/flag.json"}, env), "flag wins over env")
}
