package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/maisonlabs/courtier/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Store writes uploaded files under a per-agency directory on the local
// filesystem. Generated names never reuse the client-supplied filename; only
// its extension survives.
type Store struct {
	root  string
	log   *zap.Logger
	genID *snowflake.Node
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	GenID  *snowflake.Node
}

func New(p Params) (*Store, error) {
	root := p.Config.UploadsDir
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{
		root:  root,
		log:   p.Log.Named("storage"),
		genID: p.GenID,
	}, nil
}

// Save streams src to disk and returns the generated filename and the path
// relative to the uploads root.
func (s *Store) Save(agencyID snowflake.ID, originalName string, src io.Reader) (filename, path string, size int64, err error) {
	dir := filepath.Join(s.root, agencyID.String())
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return "", "", 0, fmt.Errorf("create agency dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	filename = s.genID.Generate().String() + ext
	path = filepath.Join(agencyID.String(), filename)

	dst, err := os.Create(filepath.Join(s.root, path))
	if err != nil {
		return "", "", 0, fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	size, err = io.Copy(dst, src)
	if err != nil {
		os.Remove(filepath.Join(s.root, path))
		return "", "", 0, fmt.Errorf("write file: %w", err)
	}
	return filename, path, size, nil
}

// Open returns a reader over a previously stored file.
func (s *Store) Open(path string) (*os.File, error) {
	return os.Open(filepath.Join(s.root, path))
}

// Remove unlinks a stored file. Callers delete the database row first; a
// failed unlink leaves an orphan file, which is logged and tolerated.
func (s *Store) Remove(path string) error {
	err := os.Remove(filepath.Join(s.root, path))
	if err != nil && !os.IsNotExist(err) {
		s.log.Warn("orphan upload left on disk", zap.String("path", path), zap.Error(err))
		return err
	}
	return nil
}
