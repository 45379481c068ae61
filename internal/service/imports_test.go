package service

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Buttons = (*fakeSource)(nil)
	_ Sink    = (*fakeSink)(nil)
)

// The state machine must build without audio or GPIO drivers.
func TestServiceImportsNoDrivers(t *testing.T) {
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)

	forbidden := []string{
		"/internal/audio",
		"/internal/input",
		"github.com/gopxl/beep",
		"periph.io/",
	}

	fset := token.NewFileSet()
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
		require.NoError(t, err, name)
		for _, imp := range f.Imports {
			path, _ := strconv.Unquote(imp.Path.Value)
			for _, bad := range forbidden {
				assert.NotContains(t, path, bad, "%s imports %s", name, path)
			}
		}
	}
}
