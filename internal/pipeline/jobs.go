package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"sync"
	"time"
)

// JobStatus represents the state of a split job.
type JobStatus string

const (
	StatusQueued         JobStatus = "queued"
	StatusExtractingText JobStatus = "extracting_text"
	StatusDetecting      JobStatus = "detecting"
	StatusSplitting      JobStatus = "splitting"
	StatusExtractingQA   JobStatus = "extracting_qa"
	StatusCompleted      JobStatus = "completed"
	StatusFailed         JobStatus = "failed"
	StatusPartial        JobStatus = "partial"
	StatusNoChapters     JobStatus = "no_chapters"
)

// Job tracks the state of one source PDF moving through the pipeline.
type Job struct {
	mu sync.Mutex

	ID       string    `json:"job_id"`
	DocID    string    `json:"doc_id"`
	Filename string    `json:"filename"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	jobDir string
	errors []string
}

// Progress tracks processing progress.
type Progress struct {
	Pages              int      `json:"pages"`
	ChaptersDetected   int      `json:"chapters_detected"`
	ChaptersWritten    int      `json:"chapters_written"`
	ChaptersSkipped    int      `json:"chapters_skipped"`
	QuestionsExtracted int      `json:"questions_extracted"`
	Errors             []string `json:"errors"`
}

// SetJobDir records the job's working directory on disk.
func (j *Job) SetJobDir(dir string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jobDir = dir
}

// SourcePath is the uploaded PDF inside the job directory.
func (j *Job) SourcePath() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return filepath.Join(j.jobDir, "source.pdf")
}

// ChaptersDir holds the split chapter PDFs.
func (j *Job) ChaptersDir() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return filepath.Join(j.jobDir, "chapters")
}

// QADir holds the per-chapter extraction JSON.
func (j *Job) QADir() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return filepath.Join(j.jobDir, "qa")
}

// ManifestPath is the Markdown manifest for the job.
func (j *Job) ManifestPath() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return filepath.Join(j.jobDir, "manifest.md")
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetPages records the source page count.
func (j *Job) SetPages(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Pages = n
	j.UpdatedAt = time.Now()
}

// SetChapters records detection and split counts.
func (j *Job) SetChapters(detected, written, skipped int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ChaptersDetected = detected
	j.Progress.ChaptersWritten = written
	j.Progress.ChaptersSkipped = skipped
	j.UpdatedAt = time.Now()
}

// SetQuestions records the extracted question count.
func (j *Job) SetQuestions(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.QuestionsExtracted = n
	j.UpdatedAt = time.Now()
}

// Snapshot returns a copy safe to serialize.
func (j *Job) Snapshot() Job {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Job{
		ID:        j.ID,
		DocID:     j.DocID,
		Filename:  j.Filename,
		Status:    j.Status,
		Phase:     j.Phase,
		Progress:  j.Progress,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
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
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// ContentHashHex returns the SHA-256 hash of data as a hex string.
// Used to derive stable per-document working directories so reruns of
// the same source land in the same place.
func ContentHashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
