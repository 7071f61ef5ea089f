// Command crmjobs runs one CRM maintenance job per invocation. It is meant to
// be started by an external scheduler such as cron.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"crm/internal/config"
	"crm/internal/gqlclient"
	"crm/internal/jobs"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 2
	}
	command := args[0]

	v, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fs := pflag.NewFlagSet("crmjobs", pflag.ContinueOnError)
	fs.String("graphql-url", v.GetString("GRAPHQL_URL"), "GraphQL endpoint of the CRM API")
	fs.Duration("graphql-timeout", v.GetDuration("GRAPHQL_TIMEOUT"), "Timeout of a single GraphQL request")
	fs.Int("threshold", v.GetInt("LOW_STOCK_THRESHOLD"), "Restock products with stock below this value")
	fs.Int("increment", v.GetInt("LOW_STOCK_INCREMENT"), "Amount added to each low-stock product")
	fs.Duration("window", v.GetDuration("REMINDER_WINDOW"), "How far back the reminder scan looks")
	logPath := fs.String("log", "", "Job log file (defaults to the job's configured log)")
	quiet := fs.Bool("quiet", false, "Do not mirror log lines to stdout and stderr")
	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	bindFlags(v, fs)

	cfg, err := config.Load(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	job, defaultLog, err := lookup(command, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		printUsage()
		return 2
	}
	if *logPath == "" {
		*logPath = defaultLog
	}

	log, err := jobs.OpenLog(*logPath, uuid.NewString(), !*quiet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer log.Close()

	client := gqlclient.New(cfg.GraphQLURL, cfg.GraphQLTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.GraphQLTimeout)
	defer cancel()

	if err := jobs.Run(ctx, command, job, client, log); err != nil {
		return 1
	}
	return 0
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	for key, flag := range map[string]string{
		"GRAPHQL_URL":         "graphql-url",
		"GRAPHQL_TIMEOUT":     "graphql-timeout",
		"LOW_STOCK_THRESHOLD": "threshold",
		"LOW_STOCK_INCREMENT": "increment",
		"REMINDER_WINDOW":     "window",
	} {
		// Lookup never returns nil for the flags registered in run.
		_ = v.BindPFlag(key, fs.Lookup(flag))
	}
}

func lookup(command string, cfg config.Config) (jobs.Func, string, error) {
	switch command {
	case "heartbeat":
		return jobs.Heartbeat, cfg.HeartbeatLog, nil
	case "restock":
		return jobs.Restock(cfg.LowStockThreshold, cfg.LowStockIncrement), cfg.LowStockLog, nil
	case "reminders":
		return jobs.Reminders(cfg.ReminderWindow, time.Now), cfg.RemindersLog, nil
	case "report":
		return jobs.WeeklyReport, cfg.ReportLog, nil
	default:
		return nil, "", fmt.Errorf("unknown command %q", command)
	}
}

func printUsage() {
	fmt.Println("CRM maintenance jobs")
	fmt.Println()
	fmt.Println("Usage: crmjobs <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  heartbeat     - Log that the CRM is alive and whether GraphQL answers")
	fmt.Println("  restock       - Top up every product below the low-stock threshold")
	fmt.Println("  reminders     - Log a reminder for every recent order")
	fmt.Println("  report        - Log customer, order and revenue totals")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --graphql-url, --graphql-timeout, --threshold, --increment, --window, --log, --quiet")
}
