package differ

// Option is a functional option for configuring a Differ.
type Option func(*differ)

// WithAdditive switches relation reconciliation to additive mode: live
// relations missing from the sheet are kept instead of removed.
func WithAdditive(enabled bool) Option {
	return func(d *differ) {
		d.additive = enabled
	}
}

// WithConcurrency overrides how many snapshots are fetched at once.
func WithConcurrency(n int) Option {
	return func(d *differ) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithObserver registers a callback invoked for every entity diff, in row
// order, once all diffs are computed.
func WithObserver(fn func(*EntityDiff)) Option {
	return func(d *differ) {
		d.onDiffed = fn
	}
}
