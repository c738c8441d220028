package camunda

import (
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// StartWorker opens a job worker for taskType using the client's job limits.
func (c *Client) StartWorker(taskType string, handler worker.JobHandler) {
	step := c.zeebe.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(c.config.MaxJobsActive)
	if c.config.JobTimeout > 0 {
		step = step.Timeout(c.config.JobTimeout)
	}
	c.workers = append(c.workers, step.Open())

	c.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": c.config.MaxJobsActive,
		"timeoutMs":     c.config.JobTimeout.Milliseconds(),
	})
}

// Close stops every worker, waits for in-flight jobs and releases the
// gateway connection.
func (c *Client) Close() error {
	for _, w := range c.workers {
		w.Close()
		w.AwaitClose()
	}
	c.workers = nil
	return c.zeebe.Close()
}
