package config

import "os"

// expandEnv resolves ${VAR} / $VAR placeholders in raw against the process
// environment, following the teacher's configLoader pattern of expanding
// before unmarshaling YAML.
func expandEnv(raw []byte) []byte {
	return []byte(os.ExpandEnv(string(raw)))
}
