package executor

import (
	"fmt"
	"sync"
	"time"
)

// FakeLauncher is an in-memory Launcher for controller tests. Units stay in
// the running state until the test finishes them.
type FakeLauncher struct {
	mu       sync.Mutex
	units    map[string]Status
	specs    map[string]UnitSpec
	launches []string

	LaunchErr error
}

// NewFakeLauncher returns an empty fake execution substrate.
func NewFakeLauncher() *FakeLauncher {
	return &FakeLauncher{
		units: make(map[string]Status),
		specs: make(map[string]UnitSpec),
	}
}

// Launch records the spec and marks the unit running.
func (f *FakeLauncher) Launch(spec UnitSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LaunchErr != nil {
		return f.LaunchErr
	}
	name := UnitName(spec.JobName)
	f.launches = append(f.launches, name)
	if existing, ok := f.units[name]; ok && existing.State == StateRunning {
		return nil
	}
	f.units[name] = Status{Name: name, State: StateRunning, StartedAt: time.Now().UTC()}
	f.specs[name] = spec
	return nil
}

// Observe reports the unit's status.
func (f *FakeLauncher) Observe(name string) (Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, ok := f.units[name]
	if !ok {
		return Status{}, fmt.Errorf("%w: %s", ErrUnitNotFound, name)
	}
	return status, nil
}

// Terminate discards the unit.
func (f *FakeLauncher) Terminate(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.units, name)
	delete(f.specs, name)
	return nil
}

// Remove discards the record of a finished unit.
func (f *FakeLauncher) Remove(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status, ok := f.units[name]; ok && status.State == StateRunning {
		return fmt.Errorf("unit %s is still running", name)
	}
	delete(f.units, name)
	delete(f.specs, name)
	return nil
}

// Finish moves a running unit to a terminal state, as if the worker process
// exited.
func (f *FakeLauncher) Finish(name string, state State, exitCode int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, ok := f.units[name]
	if !ok {
		return
	}
	status.State = state
	status.ExitCode = exitCode
	status.Message = message
	status.FinishedAt = time.Now().UTC()
	f.units[name] = status
}

// LaunchCount reports how many launches targeted the unit name.
func (f *FakeLauncher) LaunchCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, launched := range f.launches {
		if launched == name {
			count++
		}
	}
	return count
}

// Spec returns the last spec launched for the unit name.
func (f *FakeLauncher) Spec(name string) (UnitSpec, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	spec, ok := f.specs[name]
	return spec, ok
}

// Live reports whether any unit is currently running.
func (f *FakeLauncher) Live() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for name, status := range f.units {
		if status.State == StateRunning {
			names = append(names, name)
		}
	}
	return names
}

var _ Launcher = (*FakeLauncher)(nil)
