package indexing

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// State is the lifecycle position of one upload.
type State string

const (
	StateCreated    State = "created"
	StateUploading  State = "uploading"
	StateIndexing   State = "indexing"
	StateReady      State = "ready"
	StateSearchable State = "searchable"
	StateFailed     State = "failed"
)

// States lists every state in lifecycle order.
var States = []State{
	StateCreated,
	StateUploading,
	StateIndexing,
	StateReady,
	StateSearchable,
	StateFailed,
}

var allowedTransitions = map[State][]State{
	StateCreated:   {StateUploading, StateFailed},
	StateUploading: {StateIndexing, StateFailed},
	StateIndexing:  {StateReady, StateFailed},
	StateReady:     {StateSearchable, StateFailed},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to State) bool {
	return slices.Contains(allowedTransitions[from], to)
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// Transition records one state change.
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// Job tracks a single upload through the state machine.
type Job struct {
	SourceID string
	TaskID   string
	VideoID  string
	State    State
	// Reason holds the failure diagnostic once the job has failed.
	Reason  string
	History []Transition

	now func() time.Time
}

// NewJob starts a job in the created state.
func NewJob(sourceID string) *Job {
	return &Job{SourceID: sourceID, State: StateCreated, now: time.Now}
}

// Transition moves the job to the next state or returns an error when the
// move is not allowed.
func (j *Job) Transition(to State) error {
	if !CanTransition(j.State, to) {
		return fmt.Errorf("indexing job %s: illegal transition %s -> %s", j.SourceID, j.State, to)
	}
	now := time.Now
	if j.now != nil {
		now = j.now
	}
	j.History = append(j.History, Transition{From: j.State, To: to, At: now().UTC()})
	j.State = to
	return nil
}

// Fail moves the job to failed with a diagnostic. Failing a terminal job is
// a no-op.
func (j *Job) Fail(reason string) {
	if j.State.Terminal() {
		return
	}
	j.Reason = strings.TrimSpace(reason)
	_ = j.Transition(StateFailed)
}
