// Package task implements the background processing pipeline: a durable
// task queue with a worker pool, crash recovery, stuck-task detection,
// the question generation task itself, and the retention sweeper for
// finished generation jobs.
package task
