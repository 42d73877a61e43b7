package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/turtacn/KeyIP-Chat/pkg/errors"
)

// DirSource reads raw documents from a local directory.  Only ".txt" files at
// the top level are considered; names are returned sorted for deterministic
// ingestion order.
type DirSource struct {
	dir string
}

// NewDirSource constructs a DirSource over dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (s *DirSource) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileUnreadable, "failed to read ingestion directory")
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *DirSource) Read(_ context.Context, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeFileUnreadable, "failed to read document file")
	}
	return string(data), nil
}
