package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRepriceCatalog re-derives product prices from their active packs.
	TaskRepriceCatalog = "catalog:reprice"
	// TaskWarmCatalog pre-populates the public listing cache.
	TaskWarmCatalog = "catalog:warm"
)

// RepricePayload scopes a reprice run. An empty ProductID reprices every
// product that has packs.
type RepricePayload struct {
	ProductID    string    `json:"product_id,omitempty"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewRepriceTask constructs an Asynq task for the reprice job.
func NewRepriceTask(productID string, at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(RepricePayload{ProductID: productID, ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRepriceCatalog, body, asynq.Queue(QueueDefault)), nil
}

// WarmPayload configures how many catalog listing pages get warmed.
type WarmPayload struct {
	Pages int `json:"pages"`
}

// NewWarmTask constructs an Asynq task for the catalog cache warmup.
func NewWarmTask(pages int) (*asynq.Task, error) {
	if pages <= 0 {
		pages = defaultWarmPages
	}
	body, err := json.Marshal(WarmPayload{Pages: pages})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWarmCatalog, body, asynq.Queue(QueueDefault)), nil
}
