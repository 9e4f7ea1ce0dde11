package loader

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/classvm/classvm/internal/log"
	"github.com/classvm/classvm/pkg/classfile"
)

// ClassLoader loads classes by internal name, caching by name
// (spec.md §4.7).
type ClassLoader interface {
	Load(name string) (*Class, error)
}

// DirClassLoader resolves class names against an ordered classpath of
// directories and archive files (.jar/.jmod), the way load.c's scan does
// (try each entry in order, first hit wins), generalized per SPEC_FULL.md
// §3/§4 to accept zip-backed entries the way daimatz-gojvm's
// JmodClassLoader does.
type DirClassLoader struct {
	ClassPath []string

	registry map[string]*Class
	loading  map[string]bool
	logger   *log.Helper
}

// NewDirClassLoader builds a loader searching classpath in order. A nil
// logger defaults to an error-level std logger.
func NewDirClassLoader(classpath []string, logger *log.Helper) *DirClassLoader {
	if logger == nil {
		logger = log.Default(os.Stderr, log.LevelError)
	}
	return &DirClassLoader{
		ClassPath: classpath,
		registry:  make(map[string]*Class),
		loading:   make(map[string]bool),
		logger:    logger,
	}
}

// Load implements spec.md §4.7's seven steps, including circularity
// detection through the superclass and superinterface chains and
// unlinking partial classes on failure.
func (l *DirClassLoader) Load(name string) (*Class, error) {
	if cls, ok := l.registry[name]; ok {
		return cls, nil
	}
	if l.loading[name] {
		return nil, fmt.Errorf("%s: %w", name, ErrCircularity)
	}

	l.loading[name] = true
	defer delete(l.loading, name)

	cls, err := l.decode(name)
	if err != nil {
		l.logger.Debugf("load %s: %v", name, err)
		return nil, err
	}

	// Super/interfaces are linked, and any circularity detected, before the
	// class is inserted into the registry — insertion only on full success
	// keeps a failed load from shadowing the in-progress circularity check
	// a second recursive Load of the same name must still see.
	if err := l.linkSuper(cls); err != nil {
		return nil, err
	}
	if err := l.linkInterfaces(cls); err != nil {
		return nil, err
	}

	l.registry[name] = cls
	l.logger.Debugf("loaded %s", name)
	return cls, nil
}

func (l *DirClassLoader) decode(name string) (*Class, error) {
	rc, err := l.find(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	cf, err := classfile.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: decoding: %w", name, err)
	}

	actual, err := cf.ClassName()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if actual != name {
		return nil, fmt.Errorf("wanted %s, got %s: %w", name, actual, ErrNameMismatch)
	}

	return &Class{Name: name, File: cf}, nil
}

func (l *DirClassLoader) linkSuper(cls *Class) error {
	if cls.IsTopClass() || cls.File.SuperClass == 0 {
		return nil
	}
	superName, err := cls.File.SuperClassName()
	if err != nil {
		return fmt.Errorf("%s: resolving super: %w", cls.Name, err)
	}
	super, err := l.Load(superName)
	if err != nil {
		return fmt.Errorf("%s: loading super %s: %w", cls.Name, superName, err)
	}
	cls.Super = super
	return nil
}

func (l *DirClassLoader) linkInterfaces(cls *Class) error {
	names, err := cls.File.InterfaceNames()
	if err != nil {
		return fmt.Errorf("%s: resolving interfaces: %w", cls.Name, err)
	}
	cls.Interfaces = make([]*Class, len(names))
	for i, name := range names {
		iface, err := l.Load(name)
		if err != nil {
			return fmt.Errorf("%s: loading interface %s: %w", cls.Name, name, err)
		}
		cls.Interfaces[i] = iface
	}
	return nil
}

// find opens the .class stream for name by trying each classpath entry in
// order. Directory entries are memory-mapped (saferwall-pe/file.go's
// mmap.Map-after-os.Open idiom); .jar/.jmod entries are searched as zip
// archives, the way daimatz-gojvm's JmodClassLoader opens jmod files.
func (l *DirClassLoader) find(name string) (*bytes.Reader, error) {
	rel := name + ".class"
	for _, entry := range l.ClassPath {
		switch {
		case strings.HasSuffix(entry, ".jar"):
			data, ok := readZipMember(entry, rel, 0)
			if ok {
				return bytes.NewReader(data), nil
			}
		case strings.HasSuffix(entry, ".jmod"):
			data, ok := readZipMember(entry, "classes/"+rel, 4) // skip "JM\x01\x00" header
			if ok {
				return bytes.NewReader(data), nil
			}
		default:
			data, ok := readMapped(filepath.Join(entry, rel))
			if ok {
				return bytes.NewReader(data), nil
			}
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
}

func readMapped(path string) ([]byte, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, false
	}
	defer m.Unmap()

	data := make([]byte, len(m))
	copy(data, m)
	return data, true
}

func readZipMember(archivePath, member string, headerSkip int) ([]byte, bool) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, false
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, false
	}
	defer m.Unmap()

	zipData := m[headerSkip:]
	zr, err := zip.NewReader(bytes.NewReader(zipData), stat.Size()-int64(headerSkip))
	if err != nil {
		return nil, false
	}
	for _, file := range zr.File {
		if file.Name != member {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, false
		}
		defer rc.Close()
		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(rc); err != nil {
			return nil, false
		}
		return buf.Bytes(), true
	}
	return nil, false
}

// SplitClasspath splits a PATHSEP-separated classpath string using the
// platform separator (spec.md §6), falling back to "." when empty.
func SplitClasspath(s string) []string {
	if s == "" {
		return []string{"."}
	}
	return strings.Split(s, string(os.PathListSeparator))
}
