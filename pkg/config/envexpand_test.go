package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv_ExpandsBracedVar(t *testing.T) {
	os.Setenv("YOKEFLOW_TEST_VAR", "expanded-value")
	defer os.Unsetenv("YOKEFLOW_TEST_VAR")

	out := ExpandEnv([]byte("dsn: ${YOKEFLOW_TEST_VAR}"))
	assert.Equal(t, "dsn: expanded-value", string(out))
}

func TestExpandEnv_MissingVarExpandsEmpty(t *testing.T) {
	out := ExpandEnv([]byte("dsn: ${YOKEFLOW_DEFINITELY_UNSET}"))
	assert.Equal(t, "dsn: ", string(out))
}
