package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the state of a parse job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusEnriching  JobStatus = "enriching"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusDupSkipped JobStatus = "duplicate_skipped"
)

// Failure kinds, so the frontend can tell a scanned PDF apart from a
// generic parse failure.
const (
	FailureNoTextLayer = "no_text_layer"
	FailureParse       = "parse_error"
	FailureStore       = "store_error"
	FailureQueueFull   = "queue_full"
)

// Job tracks the state of a single document parse.
type Job struct {
	mu sync.Mutex

	ID    string `json:"job_id"`
	DocID string `json:"doc_id"`

	Status      JobStatus `json:"status"`
	FailureKind string    `json:"failure_kind,omitempty"`
	Filename    string    `json:"filename"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	force    bool
	errors   []string
}

// Progress tracks parse progress.
type Progress struct {
	PageCount    int      `json:"page_count"`
	ChunkCount   int      `json:"chunk_count"`
	OutlineNodes int      `json:"outline_nodes"`
	Errors       []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

// Fail marks the job failed with a failure kind and message.
func (j *Job) Fail(kind, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusFailed
	j.FailureKind = kind
	j.errors = append(j.errors, msg)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetProgress records parse counts.
func (j *Job) SetProgress(pages, chunks, outlineNodes int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.PageCount = pages
	j.Progress.ChunkCount = chunks
	j.Progress.OutlineNodes = outlineNodes
	j.UpdatedAt = time.Now()
}

// SetDocID records the library document id once known.
func (j *Job) SetDocID(id string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.DocID = id
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw PDF bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw PDF bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetForce marks the job to bypass duplicate detection.
func (j *Job) SetForce(force bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.force = force
}

// Force reports whether duplicate detection is bypassed.
func (j *Job) Force() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.force
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	DocID       string    `json:"doc_id"`
	Status      JobStatus `json:"status"`
	FailureKind string    `json:"failure_kind,omitempty"`
	Filename    string    `json:"filename"`
	Progress    Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:          j.ID,
		DocID:       j.DocID,
		Status:      j.Status,
		FailureKind: j.FailureKind,
		Filename:    j.Filename,
		Progress: Progress{
			PageCount:    j.Progress.PageCount,
			ChunkCount:   j.Progress.ChunkCount,
			OutlineNodes: j.Progress.OutlineNodes,
			Errors:       errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
