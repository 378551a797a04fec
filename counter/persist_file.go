package counter

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	c "github.com/d0ngw/hitcounter/common"
)

// DefaultFileName the default snapshot file, relative to the working directory
const DefaultFileName = "counters.json"

// FilePersist implements Persist which keeps the snapshot in a local file
type FilePersist struct {
	path  string
	codec Codec
	perm  os.FileMode
}

// NewFilePersist create FilePersist, empty path is DefaultFileName and nil codec is JSONCodec
func NewFilePersist(path string, codec Codec) *FilePersist {
	if path == "" {
		path = DefaultFileName
	}
	if codec == nil {
		codec = JSONCodec{}
	}
	return &FilePersist{path: path, codec: codec, perm: 0644}
}

// Path the snapshot file path
func (p *FilePersist) Path() string {
	return p.path
}

// Load implements Persist.Load
func (p *FilePersist) Load() (Snapshot, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		c.Infof("snapshot %s not exist,start with empty counters", p.path)
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, &PersistError{Op: "load", Target: p.path, Err: err}
	}
	s, err := p.codec.Unmarshal(data)
	if err != nil {
		return Snapshot{}, &PersistError{Op: "load", Target: p.path, Err: err}
	}
	return s, nil
}

// Save implements Persist.Save, the content is written to a temp file in the same
// directory and then renamed over the target
func (p *FilePersist) Save(s Snapshot) (err error) {
	data, err := p.codec.Marshal(s)
	if err != nil {
		return &PersistError{Op: "save", Target: p.path, Err: err}
	}

	dir, base := filepath.Split(p.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return &PersistError{Op: "save", Target: p.path, Err: err}
	}
	tmpName := tmp.Name()
	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			tmp.Close()
		}
		if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			c.Warnf("remove temp file %s fail,err:%v", tmpName, rmErr)
		}
		err = &PersistError{Op: "save", Target: p.path, Err: err}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(p.perm); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmpName, p.path); err != nil {
		return err
	}
	if syncErr := syncDir(dir); syncErr != nil {
		c.Warnf("sync dir %s fail,err:%v", dir, syncErr)
	}
	return nil
}

// syncDir 持久化目录项,保证rename在宕机后仍然有效
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// Clear implements Persist.Clear
func (p *FilePersist) Clear() error {
	err := os.Remove(p.path)
	if err == nil {
		c.Infof("removed %s", p.path)
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return &PersistError{Op: "clear", Target: p.path, Err: err}
}
