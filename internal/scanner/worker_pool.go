package scanner

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// WorkerPool runs per-file scan tasks in parallel.
type WorkerPool struct {
	ctx            context.Context
	tasks          chan ScanTask
	results        chan ScanTaskResult
	process        func(ScanTask) ScanTaskResult
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	numWorkers     int
	totalTasks     int
	completedTasks int
	mu             sync.RWMutex
}

// ScanTask is one corpus file to scan. Index is the file's position in the
// sorted file list and is used to restore order after parallel processing.
type ScanTask struct {
	Path    string
	RelPath string
	Index   int
}

// ScanTaskResult is the isolated partial result of one file.
type ScanTaskResult struct {
	Task        ScanTask
	Records     []string
	Warnings    []Warning
	ElapsedTime time.Duration
	Skipped     bool
}

// ProgressUpdate reports a finished file.
type ProgressUpdate struct {
	Path        string
	Status      TaskStatus
	Completed   int
	Total       int
	ElapsedTime time.Duration
}

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// NewWorkerPool creates a pool of numWorkers goroutines running process.
// Cancelling ctx stops the workers after their current task.
func NewWorkerPool(ctx context.Context, numWorkers int, process func(ScanTask) ScanTaskResult) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = 4
	}

	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers: numWorkers,
		tasks:      make(chan ScanTask, numWorkers*2),
		results:    make(chan ScanTaskResult, numWorkers*2),
		process:    process,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start launches the workers.
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case task, ok := <-wp.tasks:
			if !ok {
				return
			}

			start := time.Now()
			result := wp.process(task)
			result.Task = task
			result.ElapsedTime = time.Since(start)

			wp.mu.Lock()
			wp.completedTasks++
			wp.mu.Unlock()

			wp.results <- result
		}
	}
}

// SubmitTask queues a task. It returns false once the pool is cancelled.
func (wp *WorkerPool) SubmitTask(task ScanTask) bool {
	wp.mu.Lock()
	wp.totalTasks++
	wp.mu.Unlock()

	select {
	case wp.tasks <- task:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Results returns the channel of finished tasks. It is closed by Wait.
func (wp *WorkerPool) Results() <-chan ScanTaskResult {
	return wp.results
}

// Wait signals that no more tasks will be submitted, waits for the workers
// to drain the queue and closes the results channel.
func (wp *WorkerPool) Wait() {
	close(wp.tasks)
	wp.wg.Wait()
	close(wp.results)
	wp.cancel()
}

// GetStats returns current processing statistics. After Results is drained
// the counts are final.
func (wp *WorkerPool) GetStats() WorkerPoolStats {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	return WorkerPoolStats{
		TotalTasks:     wp.totalTasks,
		CompletedTasks: wp.completedTasks,
		PendingTasks:   wp.totalTasks - wp.completedTasks,
		NumWorkers:     wp.numWorkers,
	}
}

// WorkerPoolStats provides statistics about the worker pool.
type WorkerPoolStats struct {
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	PendingTasks   int `json:"pending_tasks"`
	NumWorkers     int `json:"num_workers"`
}

// ProgressTracker aggregates progress updates for display.
type ProgressTracker struct {
	startTime  time.Time
	lastUpdate ProgressUpdate
	failed     int
	mu         sync.RWMutex
}

// NewProgressTracker creates a new progress tracker.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{startTime: time.Now()}
}

// Update records a progress update.
func (pt *ProgressTracker) Update(update ProgressUpdate) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.lastUpdate = update
	if update.Status == TaskStatusFailed {
		pt.failed++
	}
}

// GetSummary returns a snapshot of the progress so far.
func (pt *ProgressTracker) GetSummary() ProgressSummary {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	return ProgressSummary{
		Completed:   pt.lastUpdate.Completed,
		Total:       pt.lastUpdate.Total,
		Failed:      pt.failed,
		ElapsedTime: time.Since(pt.startTime),
	}
}

// ProgressSummary provides a summary of progress tracking.
type ProgressSummary struct {
	Completed   int           `json:"completed"`
	Total       int           `json:"total"`
	Failed      int           `json:"failed"`
	ElapsedTime time.Duration `json:"elapsed_time"`
}

// PrintProgress writes a single carriage-return progress line to w.
func (pt *ProgressTracker) PrintProgress(w io.Writer) {
	summary := pt.GetSummary()

	fmt.Fprintf(w, "\r🔄 Progress: %d/%d files", summary.Completed, summary.Total)

	if summary.Failed > 0 {
		fmt.Fprintf(w, " (%d skipped)", summary.Failed)
	}

	if summary.Total > 0 {
		percentage := float64(summary.Completed) / float64(summary.Total) * 100
		fmt.Fprintf(w, " [%.1f%%]", percentage)
	}

	fmt.Fprintf(w, " [%v elapsed]", summary.ElapsedTime.Round(time.Second))
}
