package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port == 0 {
		return errors.New("port is required")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SGK_TEST_NAME", "sgk")
	p := writeFile(t, "name: ${SGK_TEST_NAME}\nport: ${SGK_TEST_PORT:-8081}\n")

	var cfg sample
	require.NoError(t, Load(p, &cfg))
	assert.Equal(t, "sgk", cfg.Name)
	assert.Equal(t, 8081, cfg.Port)
}

func TestLoad_Validates(t *testing.T) {
	p := writeFile(t, "name: x\n")
	var cfg sample
	err := Load(p, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port is required")
}

func TestLoad_MissingFile(t *testing.T) {
	var cfg sample
	assert.Error(t, Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg))
}

func TestLoadOptional(t *testing.T) {
	cfg := sample{Port: 9000}
	require.NoError(t, LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &cfg))
	assert.Equal(t, 9000, cfg.Port)

	empty := sample{}
	assert.Error(t, LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &empty))

	p := writeFile(t, "port: 7000\n")
	require.NoError(t, LoadOptional(p, &cfg))
	assert.Equal(t, 7000, cfg.Port)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("SGK_SET", "v")
	t.Setenv("SGK_EMPTY", "")
	assert.Equal(t, "v", ExpandEnv("${SGK_SET:-d}"))
	assert.Equal(t, "d", ExpandEnv("${SGK_EMPTY:-d}"))
	assert.Equal(t, "", ExpandEnv("${SGK_UNSET_VAR}"))
	assert.Equal(t, "a-v", ExpandEnv("a-$SGK_SET"))
}
