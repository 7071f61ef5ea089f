// Package jobs holds the scheduled maintenance jobs. Every job talks to the
// CRM through the GraphQL API and reports to its own job log.
package jobs

import (
	"context"
	"fmt"

	"crm/internal/gqlclient"
)

// Func is the signature shared by all jobs.
type Func func(ctx context.Context, exec gqlclient.Executor, log *Log) error

// Run executes job and converts any error or panic into an error log line.
// The returned error is the one that was logged.
func Run(ctx context.Context, name string, job Func, exec gqlclient.Executor, log *Log) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s job panicked: %v", name, r)
		}
		if err != nil {
			log.Errorf("%s job failed: %v", name, err)
		}
	}()
	return job(ctx, exec, log)
}
