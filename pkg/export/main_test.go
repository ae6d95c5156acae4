package export

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	// Keep wizard settings out of the real config directory.
	dir, err := os.MkdirTemp("", "gtmdeck-export-test")
	if err != nil {
		panic(err)
	}
	os.Setenv("XDG_CONFIG_HOME", dir)

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}
