package store

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const filePermissions os.FileMode = 0o600

// File is a Store persisted as YAML. Writes made by other processes sharing
// the file are picked up by Get and announced to subscribers once Watch has
// been started.
type File struct {
	path string

	mu       sync.Mutex
	snapshot map[string]string
	watcher  *fsnotify.Watcher
	notifier
}

var _ Store = (*File)(nil)

// OpenFile loads the store at path, creating the parent directory when needed.
// A missing file is an empty store.
func OpenFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "[store.OpenFile] create directory")
	}
	f := &File{path: filepath.Clean(path)}
	values, err := f.read()
	if err != nil {
		return nil, err
	}
	f.snapshot = values
	return f, nil
}

// Path is the backing file.
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloadLocked()
	v, ok := f.snapshot[key]
	return v, ok
}

func (f *File) Set(key, value string) error {
	return f.update(func(values map[string]string) {
		values[key] = value
	})
}

func (f *File) Remove(key string) error {
	return f.update(func(values map[string]string) {
		delete(values, key)
	})
}

func (f *File) Clear() error {
	return f.update(func(values map[string]string) {
		delete(values, AccessTokenKey)
		delete(values, RefreshTokenKey)
	})
}

func (f *File) Subscribe() (<-chan struct{}, func()) {
	return f.subscribe()
}

// Watch starts reporting changes made to the file by other processes. It is a
// no-op when already watching.
func (f *File) Watch() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "[File.Watch] create watcher")
	}
	// Editors and viper replace the file, so the directory is watched rather than the file.
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		_ = watcher.Close()
		return errors.Wrap(err, "[File.Watch] watch directory")
	}
	f.watcher = watcher
	go f.watch(watcher)
	return nil
}

// Close stops the watcher and ends all subscriptions.
func (f *File) Close() error {
	f.mu.Lock()
	watcher := f.watcher
	f.watcher = nil
	f.mu.Unlock()

	f.close()
	if watcher == nil {
		return nil
	}
	return watcher.Close()
}

func (f *File) watch(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			f.mu.Lock()
			changed := f.reloadLocked()
			f.mu.Unlock()
			if changed {
				log.Debug().Str("file", f.path).Msg("session changed by another process")
				f.notify()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Str("file", f.path).Msg("session watcher error")
		}
	}
}

func (f *File) update(mutate func(map[string]string)) error {
	f.mu.Lock()
	f.reloadLocked()
	values := make(map[string]string, len(f.snapshot)+1)
	for k, v := range f.snapshot {
		values[k] = v
	}
	mutate(values)
	if equal(values, f.snapshot) {
		f.mu.Unlock()
		return nil
	}
	if err := f.write(values); err != nil {
		f.mu.Unlock()
		return err
	}
	f.snapshot = values
	f.mu.Unlock()

	f.notify()
	return nil
}

// reloadLocked refreshes the snapshot from disk and reports whether it changed.
// Read errors keep the last known snapshot.
func (f *File) reloadLocked() bool {
	values, err := f.read()
	if err != nil {
		log.Warn().Err(err).Str("file", f.path).Msg("session file unreadable")
		return false
	}
	if equal(values, f.snapshot) {
		return false
	}
	f.snapshot = values
	return true
}

func (f *File) read() (map[string]string, error) {
	values := make(map[string]string)
	if _, err := os.Stat(f.path); os.IsNotExist(err) {
		return values, nil
	}

	v := viper.New()
	v.SetConfigFile(f.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "[File.read] %s", f.path)
	}
	for _, key := range []string{AccessTokenKey, RefreshTokenKey} {
		// viper lower-cases keys
		if v.IsSet(key) {
			values[key] = v.GetString(key)
		}
	}
	return values, nil
}

func (f *File) write(values map[string]string) error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigPermissions(filePermissions)
	for k, val := range values {
		v.Set(k, val)
	}
	if err := v.WriteConfigAs(f.path); err != nil {
		return errors.Wrapf(err, "[File.write] %s", f.path)
	}
	// WriteConfigAs keeps the mode of an existing file.
	return os.Chmod(f.path, filePermissions)
}

func equal(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}
