package seeder

// minTasksPerThread is the smallest batch that justifies a worker of its own.
const minTasksPerThread = 4

// OptimalThreadCount sizes the worker pool for taskCount requests. The
// result never exceeds maxThreads (treated as 1 when not positive), never
// drops below 1, and only grows by one worker per minTasksPerThread tasks.
func OptimalThreadCount(maxThreads, taskCount int) int {
	if maxThreads < 1 {
		maxThreads = 1
	}

	threads := taskCount / minTasksPerThread
	if threads > maxThreads {
		threads = maxThreads
	}
	if threads < 1 {
		threads = 1
	}

	return threads
}
