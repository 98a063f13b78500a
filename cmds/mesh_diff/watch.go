package main

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/unixpickle/meshdiff/meshdiff"
)

// settleTime lets editors and exporters finish writing before a re-run.
const settleTime = 500 * time.Millisecond

// WatchInputs runs the pipeline once, and then again every time one of the
// input meshes changes. Runs never overlap.
func WatchInputs(p *meshdiff.Pipeline, idealPath, defectPath string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer watcher.Close()

	inputs := map[string]bool{}
	dirs := map[string]bool{}
	for _, path := range []string{idealPath, defectPath} {
		abs, err := filepath.Abs(path)
		if err != nil {
			return errors.Wrap(err, "resolve input")
		}
		inputs[abs] = true
		// Watch directories, since many tools replace files instead of
		// writing them in place.
		if dir := filepath.Dir(abs); !dirs[dir] {
			dirs[dir] = true
			if err := watcher.Add(dir); err != nil {
				return errors.Wrap(err, "watch "+dir)
			}
		}
	}

	run := func() {
		r := p.Run(idealPath, defectPath)
		p.Log.Infof("Run %s finished with state %s (exit code %d)", r.ID, r.State, r.ExitCode())
		p.Log.Infof("Watching inputs for changes...")
	}
	run()

	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !inputs[abs] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				p.Log.Debugf("input changed: %s", event)
				pending = time.After(settleTime)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.Log.Warnf("watch: %v", err)
		case <-pending:
			pending = nil
			run()
		}
	}
}
