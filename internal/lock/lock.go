// Package lock implements the per-spec advisory exclusion lock described
// in spec.md §4.4: a JSON file at <spec>/.lock carrying {pid, created_at,
// ttl_secs}, acquired non-blockingly and released on Guard.Release.
package lock

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/specforge/specforge/internal/atomicfile"
	"github.com/specforge/specforge/internal/specerr"
)

// staleChecks collapses concurrent stale-lock checks for the same path
// into one read + PID-liveness probe: when RunPhase is invoked for
// several phases of the same spec at once, every caller that loses the
// initial atomicfile.CreateExclusive race would otherwise repeat the
// same os.ReadFile/pidAlive work against the same lock file.
var staleChecks singleflight.Group

// staleCheckResult is what one collapsed check produces: either the
// lock file was corrupted, or it parsed into state with a staleness
// verdict.
type staleCheckResult struct {
	state     State
	corrupted bool
	stale     bool
}

func checkStale(path string, now time.Time) (staleCheckResult, error) {
	v, err, _ := staleChecks.Do(path, func() (interface{}, error) {
		existing, readErr := os.ReadFile(path)
		if readErr != nil {
			return staleCheckResult{}, readErr
		}
		var existingState State
		if err := json.Unmarshal(existing, &existingState); err != nil {
			return staleCheckResult{corrupted: true}, nil
		}
		return staleCheckResult{
			state: existingState,
			stale: existingState.expired(now) || !pidAlive(existingState.PID),
		}, nil
	})
	if err != nil {
		return staleCheckResult{}, err
	}
	return v.(staleCheckResult), nil
}

// State is the on-disk representation of a held lock.
type State struct {
	PID       int       `json:"pid"`
	CreatedAt time.Time `json:"created_at"`
	TTLSecs   int       `json:"ttl_secs"`
}

func (s State) expired(now time.Time) bool {
	return now.After(s.CreatedAt.Add(time.Duration(s.TTLSecs) * time.Second))
}

// Guard represents a held lock; Release is idempotent and safe to call
// from a deferred/panic-recovery path.
type Guard struct {
	path     string
	released bool
}

// Release removes the lock file. Calling Release more than once, or on a
// nil Guard, is a no-op.
func (g *Guard) Release() error {
	if g == nil || g.released {
		return nil
	}
	g.released = true
	err := os.Remove(g.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

const defaultTTL = 30 * time.Minute

// Acquire attempts to take the advisory lock at path. force overrides a
// stale lock (TTL expired or owner PID not alive); a live lock always
// fails regardless of force (spec.md §4.4).
func Acquire(path string, ttl time.Duration, force bool) (*Guard, error) {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	now := time.Now().UTC()
	state := State{PID: os.Getpid(), CreatedAt: now, TTLSecs: int(ttl.Seconds())}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}

	if err := atomicfile.CreateExclusive(path, data, 0o644); err == nil {
		return &Guard{path: path}, nil
	} else if !os.IsExist(err) {
		return nil, specerr.Wrap(specerr.KindLockHeld, "failed to create lock file", err)
	}

	check, checkErr := checkStale(path, now)
	if checkErr != nil {
		// Lock file vanished between stat and read; retry once.
		if os.IsNotExist(checkErr) {
			return Acquire(path, ttl, force)
		}
		return nil, specerr.Wrap(specerr.KindLockHeld, "failed to read existing lock", checkErr)
	}

	if check.corrupted {
		if !force {
			return nil, specerr.New(specerr.KindCorruptedLock, "lock file is corrupted; rerun with --force to clear it").
				WithContext("path", path)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, specerr.Wrap(specerr.KindCorruptedLock, "failed to remove corrupted lock", err)
		}
		return Acquire(path, ttl, false)
	}

	if !check.stale {
		return nil, specerr.New(specerr.KindLockHeld, "spec is locked by another process").
			WithContext("owner_pid", strconv.Itoa(check.state.PID)).
			WithSuggestion("wait for the other process to finish, or rerun with --force if it is stale")
	}
	if !force {
		return nil, specerr.New(specerr.KindLockHeld, "lock is stale; rerun with --force to override").
			WithContext("owner_pid", strconv.Itoa(check.state.PID))
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, specerr.Wrap(specerr.KindLockHeld, "failed to remove stale lock", err)
	}
	return Acquire(path, ttl, false)
}
