package config

import "os"

// ExpandEnv expands ${VAR}/$VAR references in YAML content before parsing,
// the same shell-style expansion the teacher's pkg/config uses. A missing
// variable expands to the empty string; validation catches fields that end
// up required-but-empty.
func ExpandEnv(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
