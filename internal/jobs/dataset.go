package jobs

import "slices"

// Dataset is an ordered sequence of records sharing the Columns schema.
// It is appended to while a crawl runs and sealed once the crawl is done.
type Dataset struct {
	records []Record
	sealed  bool
}

func NewDataset() *Dataset {
	return &Dataset{}
}

// Append adds records in order. An empty slice is a no-op.
// Appending to a sealed dataset is a programming error and panics.
func (d *Dataset) Append(records []Record) {
	if d.sealed {
		panic("jobs: append to sealed dataset")
	}
	d.records = append(d.records, records...)
}

// Seal marks the dataset as complete, after which it is read only.
func (d *Dataset) Seal() {
	d.sealed = true
}

func (d *Dataset) Sealed() bool {
	return d.sealed
}

func (d *Dataset) Len() int {
	return len(d.records)
}

func (d *Dataset) Empty() bool {
	return len(d.records) == 0
}

// Records returns a copy of the records in insertion order.
func (d *Dataset) Records() []Record {
	return slices.Clone(d.records)
}
