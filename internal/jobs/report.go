package jobs

import (
	"context"

	"crm/internal/gqlclient"

	"github.com/shopspring/decimal"
)

var reportQuery = gqlclient.MustQuery(`
query Report {
  allCustomers { totalCount }
  allOrders { totalCount edges { node { totalAmount } } }
}`)

// Report summarizes customers, orders and revenue.
type Report struct {
	TotalCustomers int
	TotalOrders    int
	TotalRevenue   decimal.Decimal
}

// BuildReport queries the CRM and aggregates the report. Orders without a
// total count as zero revenue.
func BuildReport(ctx context.Context, exec gqlclient.Executor) (Report, error) {
	var out struct {
		AllCustomers struct {
			TotalCount int `json:"totalCount"`
		} `json:"allCustomers"`
		AllOrders struct {
			TotalCount int `json:"totalCount"`
			Edges      []struct {
				Node struct {
					TotalAmount decimal.NullDecimal `json:"totalAmount"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"allOrders"`
	}
	if err := exec.Execute(ctx, reportQuery, nil, &out); err != nil {
		return Report{}, err
	}

	revenue := decimal.Zero
	for _, edge := range out.AllOrders.Edges {
		if edge.Node.TotalAmount.Valid {
			revenue = revenue.Add(edge.Node.TotalAmount.Decimal)
		}
	}
	return Report{
		TotalCustomers: out.AllCustomers.TotalCount,
		TotalOrders:    out.AllOrders.TotalCount,
		TotalRevenue:   revenue,
	}, nil
}

// WeeklyReport builds the report and logs it.
func WeeklyReport(ctx context.Context, exec gqlclient.Executor, log *Log) error {
	report, err := BuildReport(ctx, exec)
	if err != nil {
		return err
	}
	log.Infof("Report: %d customers, %d orders, %s revenue.",
		report.TotalCustomers, report.TotalOrders, report.TotalRevenue.StringFixed(2))
	return nil
}
