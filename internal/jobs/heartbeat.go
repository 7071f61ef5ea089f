package jobs

import (
	"context"
	"errors"

	"crm/internal/gqlclient"
	"crm/internal/graph"
)

var helloQuery = gqlclient.MustQuery(`query Hello { hello }`)

// Heartbeat records that the job runner is alive together with the health of
// the GraphQL endpoint. An unhealthy endpoint is a status, not a job failure.
func Heartbeat(ctx context.Context, exec gqlclient.Executor, log *Log) error {
	var out struct {
		Hello *string `json:"hello"`
	}
	err := exec.Execute(ctx, helloQuery, nil, &out)
	if err == nil && (out.Hello == nil || *out.Hello != graph.HelloMessage) {
		err = errors.New("unexpected hello response")
	}

	status := "OK"
	if err != nil {
		status = "ERROR"
	}
	log.Infof("CRM is alive (GraphQL: %s)", status)
	return nil
}
