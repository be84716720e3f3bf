package job

import (
	"context"
	"sync"
	"time"

	"github.com/backmassage/vconv/internal/ffmpeg"
	"github.com/backmassage/vconv/internal/media"
	"github.com/backmassage/vconv/internal/metrics"
)

// Status tags an Outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Outcome is the single result of a job. On success Output is the written
// file; on failure Diagnostic carries the transcoder's error text.
type Outcome struct {
	Status     Status             `json:"status"`
	Output     string             `json:"output,omitempty"`
	Diagnostic string             `json:"diagnostic,omitempty"`
	Kind       ffmpeg.FailureKind `json:"kind,omitempty"`
}

// Success builds a successful outcome for path.
func Success(path string) Outcome {
	return Outcome{Status: StatusSuccess, Output: path}
}

// Failure builds a failed outcome, classifying the diagnostic text.
func Failure(diagnostic string) Outcome {
	return Outcome{Status: StatusFailure, Diagnostic: diagnostic, Kind: ffmpeg.Classify(diagnostic)}
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool { return o.Status == StatusSuccess }

// State is the lifecycle position of a Job.
type State string

const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
)

// Job is one conversion. Its exported fields are set before the worker
// starts and never change afterwards.
type Job struct {
	ID          string
	Source      string
	Request     media.Request
	Destination string // Empty when no destination could be reserved.
	Started     time.Time

	onComplete func(*Job)
	once       sync.Once
	done       chan struct{}

	mu        sync.Mutex
	completed bool
	outcome   Outcome
	finished  time.Time
}

func newJob(id, source string, req media.Request, onComplete func(*Job)) *Job {
	metrics.JobsInProgress.Inc()
	return &Job{
		ID:         id,
		Source:     source,
		Request:    req,
		Started:    time.Now(),
		onComplete: onComplete,
		done:       make(chan struct{}),
	}
}

// Done is closed after the outcome is recorded and the completion callback
// has returned.
func (j *Job) Done() <-chan struct{} { return j.done }

// Outcome returns the result and true once the job has completed. The
// completion callback already sees the final outcome.
func (j *Job) Outcome() (Outcome, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.completed {
		return Outcome{}, false
	}
	return j.outcome, true
}

// Wait blocks until the job completes or ctx is done. Giving up on the wait
// does not stop the job.
func (j *Job) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-j.done:
		o, _ := j.Outcome()
		return o, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// State reports whether the job is still running.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.completed {
		return StateCompleted
	}
	return StateRunning
}

// Elapsed is the running time so far, or the total once completed.
func (j *Job) Elapsed() time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.finished.IsZero() {
		return time.Since(j.Started)
	}
	return j.finished.Sub(j.Started)
}

// complete records o, runs the callback, then closes done. Only the first
// call has any effect.
func (j *Job) complete(o Outcome) {
	j.once.Do(func() {
		j.mu.Lock()
		j.completed = true
		j.outcome = o
		j.finished = time.Now()
		elapsed := j.finished.Sub(j.Started)
		j.mu.Unlock()

		metrics.JobsInProgress.Dec()
		metrics.JobsTotal.WithLabelValues(string(o.Status)).Inc()
		metrics.JobDuration.Observe(elapsed.Seconds())
		if !o.OK() {
			metrics.JobFailuresTotal.WithLabelValues(string(o.Kind)).Inc()
		}

		if j.onComplete != nil {
			j.onComplete(j)
		}
		close(j.done)
	})
}
