package model

// SampleInstance returns the four-job instance used by the demo command.
// Its minimal makespan is 14.
func SampleInstance() *Instance {
	return &Instance{
		Name: "sample",
		Jobs: []Job{
			{ID: "1", ProcessingTime: 5, ReleaseDate: 0, InventoryDelta: -3},
			{ID: "2", ProcessingTime: 3, ReleaseDate: 2, InventoryDelta: 2},
			{ID: "3", ProcessingTime: 4, ReleaseDate: 6, InventoryDelta: -2},
			{ID: "4", ProcessingTime: 2, ReleaseDate: 8, InventoryDelta: 1},
		},
		InventoryCapacity: 10,
		InitialInventory:  5,
	}
}
