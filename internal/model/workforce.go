package model

import (
	"encoding/json"
	"time"
)

// Batch is a production run that workers scan via QR.
type Batch struct {
	ID        uint64    `json:"id"`        // batches.id
	Type      string    `json:"type"`      // batches.type, e.g. "sole"
	CreatedAt time.Time `json:"createdAt"` // batches.created_at
}

// WorkerLog records a quantity of work done by a worker, under a role,
// on a batch.  OrderID optionally ties the work to an order.
type WorkerLog struct {
	ID        uint64       `json:"id"`
	WorkerID  uint64       `json:"workerId"`
	RoleID    uint64       `json:"roleId"`
	BatchID   uint64       `json:"batchId"`
	OrderID   *uint64      `json:"orderId"`
	Quantity  int          `json:"quantity"`
	Timestamp time.Time    `json:"timestamp"`
	Worker    *UserSummary `json:"worker,omitempty"`
	Role      *RoleRecord  `json:"role,omitempty"`
	Batch     *Batch       `json:"batch,omitempty"`
}

// WorkerLogFilter narrows worker log listings and stats.  Zero values
// and nil times mean "no filter".
type WorkerLogFilter struct {
	WorkerID uint64
	RoleID   uint64
	BatchID  uint64
	Start    *time.Time
	End      *time.Time
}

// Group-by keys accepted by the stats endpoint.
const (
	GroupByWorker = "workerId"
	GroupByRole   = "roleId"
	GroupByBatch  = "batchId"
)

// WorkerLogStat is one aggregated bucket.  Key holds the value of the
// grouped column.
type WorkerLogStat struct {
	GroupBy  string
	Key      uint64
	Quantity int64
	Count    int64
}

// MarshalJSON renders the bucket keyed by its grouping column, e.g.
// {"workerId":3,"_sum":{"quantity":12},"_count":{"_all":2}}.
func (s WorkerLogStat) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		s.GroupBy: s.Key,
		"_sum":    map[string]int64{"quantity": s.Quantity},
		"_count":  map[string]int64{"_all": s.Count},
	})
}
