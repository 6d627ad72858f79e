package config

import (
	"bytes"
	"errors"
	"log/slog"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// ErrConfigType is returned when an in-memory config is loaded without a type.
var ErrConfigType = errors.New("config type is required")

// Viper is a Config implementation backed by github.com/spf13/viper.
//
// Reads take a shared lock and file reloads take an exclusive one, so values
// read per request never observe a half-loaded file.
type Viper struct {
	mu sync.RWMutex
	v  *viper.Viper

	hooksMu sync.Mutex
	hooks   []func()

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewViper loads configuration from the given file path and returns a Viper-backed Config.
//
// The config file type is inferred by Viper from the filename extension. Values
// can be overridden by environment variables where dots become underscores,
// e.g. JWT_SECRET overrides jwt.secret. The file is watched and re-read on
// change; OnChange hooks run after each successful reload.
func NewViper(pathFile string) (*Viper, error) {
	v := viper.New()

	filename := path.Base(pathFile)
	configName := filename[:len(filename)-len(path.Ext(filename))]

	v.AddConfigPath(path.Dir(pathFile))
	v.SetConfigName(configName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	vc := &Viper{v: v}
	if err := vc.watch(v.ConfigFileUsed()); err != nil {
		return nil, err
	}

	return vc, nil
}

// watch re-reads the file whenever it is written, created or renamed into place.
// The directory is watched so editors and mounted volumes that replace the file
// are picked up too.
func (vc *Viper) watch(file string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := w.Add(filepath.Dir(file)); err != nil {
		_ = w.Close()
		return err
	}

	vc.watcher = w
	vc.done = make(chan struct{})
	target := filepath.Clean(file)

	go func() {
		defer close(vc.done)
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				if err := vc.reload(); err != nil {
					slog.Error("config reload failed", "path", file, "error", err)
					continue
				}
				slog.Info("config reloaded", "path", file)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Error("config watcher error", "path", file, "error", err)
			}
		}
	}()

	return nil
}

func (vc *Viper) reload() error {
	vc.mu.Lock()
	err := vc.v.ReadInConfig()
	vc.mu.Unlock()
	if err != nil {
		return err
	}

	vc.hooksMu.Lock()
	hooks := slices.Clone(vc.hooks)
	vc.hooksMu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	return nil
}

// OnChange registers fn to run after every successful reload.
func (vc *Viper) OnChange(fn func()) {
	vc.hooksMu.Lock()
	vc.hooks = append(vc.hooks, fn)
	vc.hooksMu.Unlock()
}

// NewViperFromBytes loads configuration from memory and returns a Viper-backed Config.
// configType should be a format supported by Viper (e.g. "yaml", "json", "toml").
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, ErrConfigType
	}

	v := viper.New()
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

// GetInt returns the value for key as int.
func (vc *Viper) GetInt(key string) int {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	return vc.v.GetInt(key)
}

// GetInt32 returns the value for key as int32.
func (vc *Viper) GetInt32(key string) int32 {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	return vc.v.GetInt32(key)
}

// GetFloat64 returns the value for key as float64.
func (vc *Viper) GetFloat64(key string) float64 {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	return vc.v.GetFloat64(key)
}

// GetBool returns the value for key as bool.
func (vc *Viper) GetBool(key string) bool {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	return vc.v.GetBool(key)
}

// GetSecond returns the value for key as seconds.
func (vc *Viper) GetSecond(key string) time.Duration {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	return time.Duration(vc.v.GetInt64(key)) * time.Second
}

// GetMinute returns the value for key as minutes.
func (vc *Viper) GetMinute(key string) time.Duration {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	return time.Duration(vc.v.GetInt64(key)) * time.Minute
}

// GetString returns the value for key as string.
func (vc *Viper) GetString(key string) string {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	return vc.v.GetString(key)
}

// GetArray returns the value for key split by commas.
func (vc *Viper) GetArray(key string) []string {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	raw := vc.v.GetString(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	return lo.Compact(lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}

// GetStrings returns the value for key as a list of strings.
func (vc *Viper) GetStrings(key string) []string {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	return vc.v.GetStringSlice(key)
}

// Close stops watching the config file.
func (vc *Viper) Close() error {
	if vc.watcher == nil {
		return nil
	}

	err := vc.watcher.Close()
	<-vc.done
	return err
}
