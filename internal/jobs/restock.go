package jobs

import (
	"context"
	"errors"

	"crm/internal/gqlclient"
)

var updateLowStockMutation = gqlclient.MustQuery(`
mutation UpdateLowStockProducts($threshold: Int, $incrementBy: Int) {
  updateLowStockProducts(threshold: $threshold, incrementBy: $incrementBy) {
    success
    message
    updatedProducts { id name stock }
  }
}`)

// RestockedProduct is a product as returned after a restock.
type RestockedProduct struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// Restock returns a job that tops up every product below threshold by
// incrementBy and logs each updated product.
func Restock(threshold, incrementBy int) Func {
	return func(ctx context.Context, exec gqlclient.Executor, log *Log) error {
		_, err := RestockLowStock(ctx, exec, log, threshold, incrementBy)
		return err
	}
}

// RestockLowStock runs the updateLowStockProducts mutation.
func RestockLowStock(ctx context.Context, exec gqlclient.Executor, log *Log, threshold, incrementBy int) ([]RestockedProduct, error) {
	var out struct {
		UpdateLowStockProducts *struct {
			Success         bool               `json:"success"`
			Message         string             `json:"message"`
			UpdatedProducts []RestockedProduct `json:"updatedProducts"`
		} `json:"updateLowStockProducts"`
	}
	vars := map[string]interface{}{"threshold": threshold, "incrementBy": incrementBy}
	if err := exec.Execute(ctx, updateLowStockMutation, vars, &out); err != nil {
		return nil, err
	}

	payload := out.UpdateLowStockProducts
	if payload == nil {
		return nil, errors.New("updateLowStockProducts returned no payload")
	}
	if !payload.Success {
		return nil, errors.New(payload.Message)
	}

	for _, p := range payload.UpdatedProducts {
		log.Infof("Updated %s (id %s): stock now %d", p.Name, p.ID, p.Stock)
	}
	log.Infof("%s", payload.Message)
	return payload.UpdatedProducts, nil
}
