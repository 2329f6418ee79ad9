package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Setenv("ENV_VAR", "env_value")
	t.Setenv("ONLY_ENV", "only_env_value")

	vars := map[string]string{
		"RUNTIME_VAR": "runtime_value",
		"ENV_VAR":     "runtime_override", // This should take precedence over the env var
	}

	assert.Equal(t, "runtime_value", Resolve("${RUNTIME_VAR}", vars))
	assert.Equal(t, "only_env_value", Resolve("${ONLY_ENV}", vars))
	assert.Equal(t, "runtime_override", Resolve("${ENV_VAR}", vars))
	assert.Equal(t, "default_value", Resolve("${MISSING:-default_value}", vars))
	assert.Equal(t, "${NOT_FOUND}", Resolve("${NOT_FOUND}", vars))
	assert.Equal(t, "this is a plain string", Resolve("this is a plain string", vars))
}

func TestResolveBareDollarForm(t *testing.T) {
	t.Setenv("ENV_VAR", "env_value")
	assert.Equal(t, "env_value", Resolve("$ENV_VAR", nil))
	assert.Equal(t, "$NOT_FOUND", Resolve("$NOT_FOUND", nil))
}

func TestResolveMultipleInOneString(t *testing.T) {
	vars := map[string]string{"HOST": "localhost", "PORT": "9200"}
	assert.Equal(t, "http://localhost:9200/logs", Resolve("http://${HOST}:${PORT}/logs", vars))
}
