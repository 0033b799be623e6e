package query

// Observer exposes the loading, error and data state of one query slot.
// The slot follows a single key at a time; results for any other key are
// stale and dropped.
type Observer[T any] struct {
	Key     Key
	Loading bool
	Err     error
	Data    T
	HasData bool
}

// Begin points the observer at key and marks it loading. Data from the
// previous key is kept until the new result arrives.
func (o *Observer[T]) Begin(key Key) {
	o.Key = key
	o.Loading = true
	o.Err = nil
}

// Resolve applies a result if key is still the observed key. It reports
// whether the result was applied.
func (o *Observer[T]) Resolve(key Key, data T, err error) bool {
	if key != o.Key {
		return false
	}
	o.Loading = false
	if err != nil {
		o.Err = err
		var zero T
		o.Data = zero
		o.HasData = false
		return true
	}
	o.Err = nil
	o.Data = data
	o.HasData = true
	return true
}

// Reset detaches the observer from any key.
func (o *Observer[T]) Reset() {
	*o = Observer[T]{}
}
