package station

import "errors"

// MultiWriter fans events out to several sinks. Every sink is attempted;
// the errors are joined.
type MultiWriter struct {
	writers []FrameWriter
}

// NewMultiWriter creates a new MultiWriter. Nil writers are skipped.
func NewMultiWriter(writers ...FrameWriter) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range writers {
		if w != nil {
			mw.writers = append(mw.writers, w)
		}
	}
	return mw
}

// Add appends a sink.
func (mw *MultiWriter) Add(w FrameWriter) {
	if w != nil {
		mw.writers = append(mw.writers, w)
	}
}

// Len returns the number of sinks.
func (mw *MultiWriter) Len() int { return len(mw.writers) }

// WriteFrame sends a frame to all writers.
func (mw *MultiWriter) WriteFrame(e FrameEvent) error {
	var errs []error
	for _, w := range mw.writers {
		if err := w.WriteFrame(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteAlerts sends a report to every writer that accepts reports.
func (mw *MultiWriter) WriteAlerts(e AlertEvent) error {
	var errs []error
	for _, w := range mw.writers {
		if aw, ok := w.(AlertWriter); ok {
			if err := aw.WriteAlerts(e); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// WriteLink sends a status change to every writer that accepts them.
func (mw *MultiWriter) WriteLink(e LinkEvent) error {
	var errs []error
	for _, w := range mw.writers {
		if lw, ok := w.(LinkWriter); ok {
			if err := lw.WriteLink(e); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every writer that implements Close.
func (mw *MultiWriter) Close() error {
	var errs []error
	for _, w := range mw.writers {
		if c, ok := w.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
