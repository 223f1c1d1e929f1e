package bench

import (
	"fmt"
	"math/rand"

	"github.com/kilianp07/invsched/core/model"
)

// GenParams bounds the random instances produced by RandomInstance.
type GenParams struct {
	MaxProcessing int `json:"max_processing"`
	MaxRelease    int `json:"max_release"`
	MaxDelta      int `json:"max_delta"`
	Capacity      int `json:"capacity"`
}

// RandomInstance draws an instance with n jobs. Processing times lie in
// [1, MaxProcessing], release dates in [0, MaxRelease] and deltas in
// [-MaxDelta, MaxDelta]. The instance may be infeasible.
func RandomInstance(name string, n int, p GenParams, rng *rand.Rand) *model.Instance {
	jobs := make([]model.Job, n)
	for i := range jobs {
		jobs[i] = model.Job{
			ID:             fmt.Sprintf("j%d", i+1),
			ProcessingTime: 1 + rng.Intn(max(p.MaxProcessing, 1)),
			ReleaseDate:    rng.Intn(p.MaxRelease + 1),
			InventoryDelta: rng.Intn(2*p.MaxDelta+1) - p.MaxDelta,
		}
	}
	return &model.Instance{
		Name:              name,
		Jobs:              jobs,
		InventoryCapacity: p.Capacity,
		InitialInventory:  rng.Intn(p.Capacity + 1),
	}
}
