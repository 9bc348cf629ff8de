// Package controller reconciles job resources toward their desired state.
//
// The controller is level triggered: every pass reads the job's persisted
// state and the observed state of its execution unit, then performs at most
// one corrective action. Work is sharded across a fixed pool of reconcilers
// by hashing the job name, so reconciles for the same job are always
// serialized while different jobs proceed in parallel. Cancellation takes
// the same per-job lock, so it cannot race a pass that is mid-launch. A
// periodic resync
// re-enqueues every active job, which makes the loop self healing after
// missed events or a daemon restart.
package controller
