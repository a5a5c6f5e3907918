package echoapi

import (
	"os"
	"testing"

	"github.com/trezcool/malezi/core"
)

func TestMain(m *testing.M) {
	// error responses must use the production {"error": ...} envelope
	core.Conf.Debug = false
	core.Conf.TestMode = true

	os.Exit(m.Run())
}
