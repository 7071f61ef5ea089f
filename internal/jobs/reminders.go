package jobs

import (
	"context"
	"fmt"
	"time"

	"crm/internal/gqlclient"
)

var recentOrdersQuery = gqlclient.MustQuery(`
query RecentOrders($from: DateTime, $to: DateTime) {
  allOrders(orderDateGte: $from, orderDateLte: $to) {
    edges { node { id customer { email } } }
  }
}`)

// Reminder identifies an order to follow up on.
type Reminder struct {
	OrderID       string
	CustomerEmail string
}

// Reminders returns a job that logs a reminder for every order placed within
// window before now().
func Reminders(window time.Duration, now func() time.Time) Func {
	return func(ctx context.Context, exec gqlclient.Executor, log *Log) error {
		until := now()
		reminders, err := FindRecentOrders(ctx, exec, until.Add(-window), until)
		if err != nil {
			return err
		}
		if len(reminders) == 0 {
			log.Infof("No new orders found in the last %s.", describeWindow(window))
			return nil
		}
		for _, r := range reminders {
			log.Infof("Reminder for Order ID: %s, Customer Email: %s", r.OrderID, r.CustomerEmail)
		}
		return nil
	}
}

// FindRecentOrders returns the orders whose order date lies in [since, until].
func FindRecentOrders(ctx context.Context, exec gqlclient.Executor, since, until time.Time) ([]Reminder, error) {
	var out struct {
		AllOrders struct {
			Edges []struct {
				Node struct {
					ID       string `json:"id"`
					Customer *struct {
						Email string `json:"email"`
					} `json:"customer"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"allOrders"`
	}
	vars := map[string]interface{}{
		"from": since.UTC().Format(time.RFC3339Nano),
		"to":   until.UTC().Format(time.RFC3339Nano),
	}
	if err := exec.Execute(ctx, recentOrdersQuery, vars, &out); err != nil {
		return nil, err
	}

	reminders := make([]Reminder, 0, len(out.AllOrders.Edges))
	for _, edge := range out.AllOrders.Edges {
		email := "unknown"
		if edge.Node.Customer != nil {
			email = edge.Node.Customer.Email
		}
		reminders = append(reminders, Reminder{OrderID: edge.Node.ID, CustomerEmail: email})
	}
	return reminders, nil
}

func describeWindow(window time.Duration) string {
	const day = 24 * time.Hour
	if window%day != 0 {
		return window.String()
	}
	if days := int(window / day); days != 1 {
		return fmt.Sprintf("%d days", days)
	}
	return "1 day"
}
