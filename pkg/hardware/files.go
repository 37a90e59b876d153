package hardware

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
)

// fileSet pools open sysfs attribute files. Handles are opened lazily on
// first write and kept open across calls; Close releases every handle that
// was opened, exactly once.
type fileSet struct {
	files map[string]*os.File
}

func newFileSet() *fileSet {
	return &fileSet{files: make(map[string]*os.File)}
}

// writeString rewinds the attribute file and writes value. Sysfs attributes
// consume the whole write; the trailing truncate keeps regular files (used
// in tests) byte-identical to what the kernel would hold.
func (f *fileSet) writeString(path, value string) error {
	fp, ok := f.files[path]
	if !ok {
		var err error
		fp, err = os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		f.files[path] = fp
	}

	if _, err := fp.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind %s: %w", path, err)
	}
	if _, err := fp.WriteString(value); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := fp.Truncate(int64(len(value))); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", path, err)
	}
	return nil
}

// writeInt writes a number as its decimal string representation.
func (f *fileSet) writeInt(path string, value int) error {
	return f.writeString(path, strconv.Itoa(value))
}

// Close closes all opened handles. Errors are logged; closing an already
// closed set is a no-op.
func (f *fileSet) Close() {
	for path, fp := range f.files {
		if err := fp.Close(); err != nil {
			log.Printf("Warning: failed to close %s: %v", path, err)
		}
		delete(f.files, path)
	}
}
